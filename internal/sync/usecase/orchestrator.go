package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/jindalsaj/aura/internal/connector"
	propertydomain "github.com/jindalsaj/aura/internal/property/domain"
	propertyrepo "github.com/jindalsaj/aura/internal/property/repository"
	recorddomain "github.com/jindalsaj/aura/internal/record/domain"
	recordrepo "github.com/jindalsaj/aura/internal/record/repository"
	"github.com/jindalsaj/aura/internal/relevance"
	sourcedomain "github.com/jindalsaj/aura/internal/source/domain"
	sourceusecase "github.com/jindalsaj/aura/internal/source/usecase"
	"github.com/jindalsaj/aura/internal/sync/domain"
	"github.com/jindalsaj/aura/internal/sync/repository"
	"github.com/jindalsaj/aura/pkg/config"
)

type syncUsecase struct {
	sessionRepo  repository.SessionRepository
	recordRepo   recordrepo.RecordRepository
	propertyRepo propertyrepo.PropertyRepository
	credentials  sourceusecase.CredentialUsecase
	connectors   connector.Registry
	filter       *relevance.Filter
	notifier     EventNotifier
	tracker      Tracker
	config       *config.Config
}

// NewSyncUsecase wires the orchestrator. notifier and tracker may be nil.
func NewSyncUsecase(
	sessionRepo repository.SessionRepository,
	recordRepo recordrepo.RecordRepository,
	propertyRepo propertyrepo.PropertyRepository,
	credentials sourceusecase.CredentialUsecase,
	connectors connector.Registry,
	filter *relevance.Filter,
	notifier EventNotifier,
	tracker Tracker,
	cfg *config.Config,
) SyncUsecase {
	return &syncUsecase{
		sessionRepo:  sessionRepo,
		recordRepo:   recordRepo,
		propertyRepo: propertyRepo,
		credentials:  credentials,
		connectors:   connectors,
		filter:       filter,
		notifier:     notifier,
		tracker:      tracker,
		config:       cfg,
	}
}

func (u *syncUsecase) TriggerSync(ctx context.Context, userID string, sourceType sourcedomain.SourceType, sel domain.Selector) (<-chan domain.SyncOutcome, error) {
	conn, err := u.connectors.Get(sourceType)
	if err != nil {
		return nil, err
	}

	// A never-connected or paused source is rejected up front; only sources
	// with an active credential get a session claimed and a unit launched.
	connections, err := u.credentials.ListConnections(userID)
	if err != nil {
		return nil, err
	}
	connected := false
	for _, c := range connections {
		if c.SourceType == sourceType && c.Active {
			connected = true
			break
		}
	}
	if !connected {
		return nil, sourcedomain.ErrNotConnected
	}

	claimed, err := u.sessionRepo.TryMarkSyncing(userID, sourceType)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, domain.ErrAlreadySyncing
	}

	done := make(chan domain.SyncOutcome, 1)
	go func() {
		// The run outlives the triggering request.
		outcome := u.runUnit(context.Background(), userID, conn, sel)
		done <- outcome
		close(done)
	}()
	return done, nil
}

func (u *syncUsecase) SyncAll(ctx context.Context, userID string, sel domain.Selector) (<-chan domain.SyncOutcome, error) {
	connections, err := u.credentials.ListConnections(userID)
	if err != nil {
		return nil, err
	}

	out := make(chan domain.SyncOutcome, len(connections))
	var wg sync.WaitGroup
	started := 0

	for _, conn := range connections {
		if !conn.Active {
			continue
		}
		done, err := u.TriggerSync(ctx, userID, conn.SourceType, sel)
		if err == domain.ErrAlreadySyncing {
			log.Printf("[Sync] Skipping %s for user %s: already syncing", conn.SourceType, userID)
			continue
		}
		if err != nil {
			log.Printf("[Sync] Failed to trigger %s for user %s: %v", conn.SourceType, userID, err)
			continue
		}
		started++
		wg.Add(1)
		go func(done <-chan domain.SyncOutcome) {
			defer wg.Done()
			out <- <-done
		}(done)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	if started == 0 {
		log.Printf("[Sync] No sources started for user %s", userID)
	}
	return out, nil
}

// runUnit drives one source through the full pipeline. Every exit path moves
// the session to completed or error; a panic in any stage becomes an error
// state rather than a stuck "syncing" row.
func (u *syncUsecase) runUnit(ctx context.Context, userID string, conn connector.Connector, sel domain.Selector) (outcome domain.SyncOutcome) {
	sourceType := conn.SourceType()
	outcome = domain.SyncOutcome{SourceType: sourceType}
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			outcome.Err = fmt.Errorf("sync panicked: %v", r)
			log.Printf("[Sync] Panic in %s sync for user %s: %v", sourceType, userID, r)
			u.fail(ctx, userID, sourceType, outcome.Err)
		}
	}()

	cred, err := u.credentials.Ensure(ctx, userID, sourceType)
	if err != nil {
		outcome.Err = err
		u.fail(ctx, userID, sourceType, err)
		return outcome
	}
	u.setProgress(userID, sourceType, domain.ProgressCredentials)

	items, err := u.fetchWithRetry(ctx, conn, cred, sel)
	if err != nil {
		outcome.Err = err
		u.fail(ctx, userID, sourceType, err)
		return outcome
	}
	outcome.Fetched = len(items)
	u.setProgress(userID, sourceType, domain.ProgressFetched)

	properties, err := u.propertyRepo.GetByUser(userID)
	if err != nil {
		outcome.Err = err
		u.fail(ctx, userID, sourceType, err)
		return outcome
	}

	records := u.filterItems(ctx, userID, sourceType, items, properties)
	outcome.Relevant = len(records)

	stored, err := u.recordRepo.Persist(records)
	outcome.Stored = stored
	if err != nil {
		// Some records may still have been stored; the session is an error
		// either way so the user knows the run was incomplete.
		outcome.Err = err
		u.fail(ctx, userID, sourceType, err)
		return outcome
	}
	u.setProgress(userID, sourceType, domain.ProgressPersisted)

	if err := u.sessionRepo.MarkCompleted(userID, sourceType); err != nil {
		log.Printf("[Sync] Failed to mark %s completed for user %s: %v", sourceType, userID, err)
	}

	log.Printf("[Sync] %s sync for user %s done in %s: fetched=%d relevant=%d stored=%d",
		sourceType, userID, time.Since(start).Round(time.Millisecond), outcome.Fetched, outcome.Relevant, outcome.Stored)

	if u.notifier != nil {
		u.notifier.SyncCompleted(ctx, userID, outcome)
	}
	if u.tracker != nil {
		u.tracker.Track(userID, "sync_completed", map[string]interface{}{
			"source":   string(sourceType),
			"fetched":  outcome.Fetched,
			"relevant": outcome.Relevant,
			"stored":   outcome.Stored,
		})
	}
	return outcome
}

func (u *syncUsecase) fetchWithRetry(ctx context.Context, conn connector.Connector, cred *sourcedomain.Credential, sel domain.Selector) ([]domain.RawItem, error) {
	attempts := u.config.SyncFetchAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.NewExponential(500*time.Millisecond))

	var items []domain.RawItem
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		fetchCtx, cancel := context.WithTimeout(ctx, u.config.SyncFetchTimeout)
		defer cancel()

		batch, err := conn.Fetch(fetchCtx, cred, sel)
		if err != nil {
			if domain.IsTransient(err) {
				log.Printf("[Sync] Transient %s fetch error, will retry: %v", conn.SourceType(), err)
				return retry.RetryableError(err)
			}
			return err
		}
		items = batch
		return nil
	})
	return items, err
}

func (u *syncUsecase) filterItems(ctx context.Context, userID string, sourceType sourcedomain.SourceType, items []domain.RawItem, properties []propertydomain.Property) []*recorddomain.Record {
	records := make([]*recorddomain.Record, 0, len(items))
	for _, item := range items {
		result := u.filter.Score(ctx, item.RelevanceText(), properties)
		if !result.Relevant {
			continue
		}
		records = append(records, recorddomain.Normalize(userID, sourceType, item, recorddomain.Relevance{
			Confidence: result.Confidence,
			Reason:     result.Reason,
			Method:     result.Method,
		}))
	}
	return records
}

func (u *syncUsecase) setProgress(userID string, sourceType sourcedomain.SourceType, progress int) {
	if err := u.sessionRepo.SetProgress(userID, sourceType, progress); err != nil {
		log.Printf("[Sync] Failed to set %s progress for user %s: %v", sourceType, userID, err)
	}
}

func (u *syncUsecase) fail(ctx context.Context, userID string, sourceType sourcedomain.SourceType, err error) {
	log.Printf("[Sync] %s sync failed for user %s: %v", sourceType, userID, err)
	if merr := u.sessionRepo.MarkError(userID, sourceType, err.Error()); merr != nil {
		log.Printf("[Sync] Failed to mark %s errored for user %s: %v", sourceType, userID, merr)
	}
	if u.notifier != nil {
		u.notifier.SyncFailed(ctx, userID, sourceType, err.Error())
	}
	if u.tracker != nil {
		u.tracker.Track(userID, "sync_failed", map[string]interface{}{
			"source": string(sourceType),
			"error":  err.Error(),
		})
	}
}
