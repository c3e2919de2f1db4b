package usecase

import (
	"context"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/jindalsaj/aura/internal/connector"
	propertydomain "github.com/jindalsaj/aura/internal/property/domain"
	recorddomain "github.com/jindalsaj/aura/internal/record/domain"
	sourcedomain "github.com/jindalsaj/aura/internal/source/domain"
	"github.com/jindalsaj/aura/internal/sync/domain"
)

// -------- test fakes --------

type sessionKey struct {
	userID     string
	sourceType sourcedomain.SourceType
}

// fakeSessionRepo is an in-memory SessionRepository with the same
// single-flight and monotonic-progress rules as the database-backed one.
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[sessionKey]*domain.SyncSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[sessionKey]*domain.SyncSession)}
}

func (f *fakeSessionRepo) get(userID string, sourceType sourcedomain.SourceType) *domain.SyncSession {
	key := sessionKey{userID, sourceType}
	if s, ok := f.sessions[key]; ok {
		return s
	}
	s := &domain.SyncSession{
		ID:         string(sourceType) + "-session",
		UserID:     userID,
		SourceType: sourceType,
		Status:     domain.StatusIdle,
	}
	f.sessions[key] = s
	return s
}

func (f *fakeSessionRepo) GetOrCreate(userID string, sourceType sourcedomain.SourceType) (*domain.SyncSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := *f.get(userID, sourceType)
	return &s, nil
}

func (f *fakeSessionRepo) TryMarkSyncing(userID string, sourceType sourcedomain.SourceType) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.get(userID, sourceType)
	if s.Status == domain.StatusSyncing {
		return false, nil
	}
	s.Status = domain.StatusSyncing
	s.Progress = domain.ProgressStarted
	s.ErrorDetail = ""
	return true, nil
}

func (f *fakeSessionRepo) SetProgress(userID string, sourceType sourcedomain.SourceType, progress int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.get(userID, sourceType)
	if s.Status == domain.StatusSyncing && progress > s.Progress {
		s.Progress = progress
	}
	return nil
}

func (f *fakeSessionRepo) MarkCompleted(userID string, sourceType sourcedomain.SourceType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.get(userID, sourceType)
	now := time.Now()
	s.Status = domain.StatusCompleted
	s.Progress = domain.ProgressDone
	s.LastSync = &now
	s.ErrorDetail = ""
	return nil
}

func (f *fakeSessionRepo) MarkError(userID string, sourceType sourcedomain.SourceType, detail string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.get(userID, sourceType)
	s.Status = domain.StatusError
	s.Progress = domain.ProgressStarted
	s.ErrorDetail = detail
	return nil
}

func (f *fakeSessionRepo) ListByUser(userID string) ([]domain.SyncSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.SyncSession
	for key, s := range f.sessions {
		if key.userID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) Get(userID string, sourceType sourcedomain.SourceType) (*domain.SyncSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := sessionKey{userID, sourceType}
	if s, ok := f.sessions[key]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, nil
}

// fakeRecordRepo dedups on (user, source, external id) like the real one.
type fakeRecordRepo struct {
	mu      sync.Mutex
	records map[string]*recorddomain.Record
	err     error
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: make(map[string]*recorddomain.Record)}
}

func (f *fakeRecordRepo) Persist(records []*recorddomain.Record) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	stored := 0
	for _, rec := range records {
		key := rec.UserID + "|" + string(rec.SourceType) + "|" + rec.ExternalID
		if _, ok := f.records[key]; ok {
			continue
		}
		f.records[key] = rec
		stored++
	}
	return stored, nil
}

func (f *fakeRecordRepo) GetByUser(userID string, sourceType sourcedomain.SourceType, kind string, limit, offset int) ([]recorddomain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recorddomain.Record
	for _, rec := range f.records {
		if rec.UserID == userID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (f *fakeRecordRepo) CountByUser(userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, rec := range f.records {
		if rec.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeRecordRepo) CountBySource(userID string) (map[sourcedomain.SourceType]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[sourcedomain.SourceType]int64)
	for _, rec := range f.records {
		if rec.UserID == userID {
			counts[rec.SourceType]++
		}
	}
	return counts, nil
}

type fakePropertyRepo struct {
	properties []propertydomain.Property
}

func (f *fakePropertyRepo) Create(p *propertydomain.Property) error { return nil }
func (f *fakePropertyRepo) GetByUser(userID string) ([]propertydomain.Property, error) {
	return f.properties, nil
}
func (f *fakePropertyRepo) GetByID(userID, id string) (*propertydomain.Property, error) {
	return nil, nil
}
func (f *fakePropertyRepo) Update(p *propertydomain.Property) error { return nil }
func (f *fakePropertyRepo) Delete(userID, id string) error          { return nil }

// fakeCredentials hands out static credentials, or a per-source error.
type fakeCredentials struct {
	connections []sourcedomain.Credential
	errs        map[sourcedomain.SourceType]error
}

func (f *fakeCredentials) Ensure(ctx context.Context, userID string, sourceType sourcedomain.SourceType) (*sourcedomain.Credential, error) {
	if err, ok := f.errs[sourceType]; ok {
		return nil, err
	}
	return &sourcedomain.Credential{
		ID:          string(sourceType) + "-cred",
		UserID:      userID,
		SourceType:  sourceType,
		AccessToken: "token",
		Active:      true,
	}, nil
}

func (f *fakeCredentials) ListConnections(userID string) ([]sourcedomain.Credential, error) {
	return f.connections, nil
}

func (f *fakeCredentials) ConnectGoogle(ctx context.Context, userID, code string) (*sourcedomain.Identity, error) {
	return nil, nil
}
func (f *fakeCredentials) ProvisionGoogle(userID string, token *oauth2.Token) error {
	return nil
}
func (f *fakeCredentials) ConnectBank(ctx context.Context, userID, publicToken string) error {
	return nil
}
func (f *fakeCredentials) ConnectWhatsApp(ctx context.Context, userID, accessToken string) error {
	return nil
}
func (f *fakeCredentials) Toggle(userID string, sourceType sourcedomain.SourceType) (bool, error) {
	return false, nil
}
func (f *fakeCredentials) Disconnect(userID string, sourceType sourcedomain.SourceType) error {
	return nil
}

// fakeConnector serves canned items, optionally failing first, optionally
// blocking until released.
type fakeConnector struct {
	sourceType sourcedomain.SourceType
	items      []domain.RawItem
	err        error
	failTimes  int
	block      chan struct{}

	mu      sync.Mutex
	fetches int
}

func (f *fakeConnector) SourceType() sourcedomain.SourceType { return f.sourceType }

func (f *fakeConnector) Fetch(ctx context.Context, cred *sourcedomain.Credential, sel domain.Selector) ([]domain.RawItem, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	f.fetches++
	n := f.fetches
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.failTimes > 0 && n <= f.failTimes {
		return nil, domain.Transient(context.DeadlineExceeded)
	}
	return f.items, nil
}

type recordedNotification struct {
	userID     string
	sourceType sourcedomain.SourceType
	failed     bool
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []recordedNotification
}

func (f *fakeNotifier) SyncCompleted(ctx context.Context, userID string, outcome domain.SyncOutcome) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedNotification{userID, outcome.SourceType, false})
}

func (f *fakeNotifier) SyncFailed(ctx context.Context, userID string, sourceType sourcedomain.SourceType, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedNotification{userID, sourceType, true})
}

var _ connector.Connector = (*fakeConnector)(nil)
