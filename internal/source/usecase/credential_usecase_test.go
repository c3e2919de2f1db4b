package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/jindalsaj/aura/internal/source/domain"
	"github.com/jindalsaj/aura/pkg/config"
)

// -------- test fakes --------

type fakeCredRepo struct {
	creds map[string]*domain.Credential // keyed by userID|sourceType

	upserts     int
	tokenWrites int
	deactivated []string
}

func newFakeCredRepo() *fakeCredRepo {
	return &fakeCredRepo{creds: make(map[string]*domain.Credential)}
}

func credKey(userID string, sourceType domain.SourceType) string {
	return userID + "|" + string(sourceType)
}

func (f *fakeCredRepo) Upsert(cred *domain.Credential) error {
	f.upserts++
	if cred.ID == "" {
		cred.ID = credKey(cred.UserID, cred.SourceType)
	}
	copied := *cred
	f.creds[credKey(cred.UserID, cred.SourceType)] = &copied
	return nil
}

func (f *fakeCredRepo) Get(userID string, sourceType domain.SourceType) (*domain.Credential, error) {
	cred, ok := f.creds[credKey(userID, sourceType)]
	if !ok || !cred.Active {
		return nil, domain.ErrNotConnected
	}
	copied := *cred
	return &copied, nil
}

func (f *fakeCredRepo) UpdateTokens(id, accessToken, refreshToken string, expiresAt *time.Time) error {
	f.tokenWrites++
	for _, cred := range f.creds {
		if cred.ID == id {
			cred.AccessToken = accessToken
			if refreshToken != "" {
				cred.RefreshToken = refreshToken
			}
			cred.ExpiresAt = expiresAt
		}
	}
	return nil
}

func (f *fakeCredRepo) Deactivate(id string) error {
	f.deactivated = append(f.deactivated, id)
	for _, cred := range f.creds {
		if cred.ID == id {
			cred.Active = false
		}
	}
	return nil
}

func (f *fakeCredRepo) ToggleActive(userID string, sourceType domain.SourceType) (bool, error) {
	cred, ok := f.creds[credKey(userID, sourceType)]
	if !ok {
		return false, domain.ErrNotConnected
	}
	cred.Active = !cred.Active
	return cred.Active, nil
}

func (f *fakeCredRepo) ListByUser(userID string) ([]domain.Credential, error) {
	var out []domain.Credential
	for _, cred := range f.creds {
		if cred.UserID == userID {
			out = append(out, *cred)
		}
	}
	return out, nil
}

func (f *fakeCredRepo) Delete(userID string, sourceType domain.SourceType) error {
	delete(f.creds, credKey(userID, sourceType))
	return nil
}

type fakeGoogle struct {
	exchangeToken *oauth2.Token
	refreshToken  *oauth2.Token
	refreshErr    error
	refreshCalls  int
}

func (f *fakeGoogle) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return f.exchangeToken, nil
}

func (f *fakeGoogle) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	f.refreshCalls++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.refreshToken, nil
}

func (f *fakeGoogle) GetProfile(ctx context.Context, accessToken string) (*domain.Identity, error) {
	return &domain.Identity{Email: "user@example.com", Name: "Test User"}, nil
}

type fakeBank struct{}

func (f *fakeBank) ExchangePublicToken(ctx context.Context, publicToken string) (string, string, error) {
	return "plaid-access-token", "plaid-item", nil
}

func testConfig() *config.Config {
	return &config.Config{SyncRefreshTimeout: time.Second}
}

func seedCredential(repo *fakeCredRepo, expiresAt *time.Time, refreshToken string) {
	repo.creds[credKey("7", domain.SourceMail)] = &domain.Credential{
		ID:           "cred-mail",
		UserID:       "7",
		SourceType:   domain.SourceMail,
		AccessToken:  "old-access",
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		Active:       true,
	}
}

func TestEnsure_ValidCredentialPassesThrough(t *testing.T) {
	repo := newFakeCredRepo()
	future := time.Now().Add(time.Hour)
	seedCredential(repo, &future, "refresh")
	google := &fakeGoogle{}
	uc := NewCredentialUsecase(repo, google, &fakeBank{}, testConfig())

	cred, err := uc.Ensure(context.Background(), "7", domain.SourceMail)
	require.NoError(t, err)
	assert.Equal(t, "old-access", cred.AccessToken)
	assert.Zero(t, google.refreshCalls)
	assert.Zero(t, repo.tokenWrites)
}

func TestEnsure_ExpiredCredentialIsRefreshedOnce(t *testing.T) {
	repo := newFakeCredRepo()
	past := time.Now().Add(-time.Minute)
	seedCredential(repo, &past, "refresh")
	newExpiry := time.Now().Add(time.Hour)
	google := &fakeGoogle{refreshToken: &oauth2.Token{
		AccessToken: "new-access",
		Expiry:      newExpiry,
	}}
	uc := NewCredentialUsecase(repo, google, &fakeBank{}, testConfig())

	cred, err := uc.Ensure(context.Background(), "7", domain.SourceMail)
	require.NoError(t, err)
	assert.Equal(t, "new-access", cred.AccessToken)
	assert.Equal(t, 1, google.refreshCalls)
	assert.Equal(t, 1, repo.tokenWrites)

	// The refreshed token is durable, not just in-memory.
	stored, err := repo.Get("7", domain.SourceMail)
	require.NoError(t, err)
	assert.Equal(t, "new-access", stored.AccessToken)
}

func TestEnsure_RefreshFailureDeactivatesCredential(t *testing.T) {
	repo := newFakeCredRepo()
	past := time.Now().Add(-time.Minute)
	seedCredential(repo, &past, "refresh")
	google := &fakeGoogle{refreshErr: errors.New("invalid_grant")}
	uc := NewCredentialUsecase(repo, google, &fakeBank{}, testConfig())

	_, err := uc.Ensure(context.Background(), "7", domain.SourceMail)
	assert.ErrorIs(t, err, domain.ErrCredentialExpired)
	assert.Equal(t, []string{"cred-mail"}, repo.deactivated)

	// A later Ensure sees the deactivated credential as not connected.
	_, err = uc.Ensure(context.Background(), "7", domain.SourceMail)
	assert.ErrorIs(t, err, domain.ErrNotConnected)
}

func TestEnsure_ExpiredWithoutRefreshTokenDeactivates(t *testing.T) {
	repo := newFakeCredRepo()
	past := time.Now().Add(-time.Minute)
	seedCredential(repo, &past, "")
	google := &fakeGoogle{}
	uc := NewCredentialUsecase(repo, google, &fakeBank{}, testConfig())

	_, err := uc.Ensure(context.Background(), "7", domain.SourceMail)
	assert.ErrorIs(t, err, domain.ErrCredentialExpired)
	assert.Zero(t, google.refreshCalls)
	assert.Equal(t, []string{"cred-mail"}, repo.deactivated)
}

func TestEnsure_NotConnected(t *testing.T) {
	repo := newFakeCredRepo()
	uc := NewCredentialUsecase(repo, &fakeGoogle{}, &fakeBank{}, testConfig())

	_, err := uc.Ensure(context.Background(), "7", domain.SourceBank)
	assert.ErrorIs(t, err, domain.ErrNotConnected)
}

func TestConnectGoogle_ProvisionsAllGoogleSources(t *testing.T) {
	repo := newFakeCredRepo()
	google := &fakeGoogle{exchangeToken: &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       time.Now().Add(time.Hour),
	}}
	uc := NewCredentialUsecase(repo, google, &fakeBank{}, testConfig())

	identity, err := uc.ConnectGoogle(context.Background(), "7", "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", identity.Email)

	for _, sourceType := range []domain.SourceType{domain.SourceMail, domain.SourceDrive, domain.SourceCalendar} {
		cred, err := repo.Get("7", sourceType)
		require.NoError(t, err, "expected credential for %s", sourceType)
		assert.Equal(t, "access", cred.AccessToken)
		assert.Equal(t, "refresh", cred.RefreshToken)
	}
}

func TestToggle_PausesAndResumesWithoutReauth(t *testing.T) {
	repo := newFakeCredRepo()
	future := time.Now().Add(time.Hour)
	seedCredential(repo, &future, "refresh")
	uc := NewCredentialUsecase(repo, &fakeGoogle{}, &fakeBank{}, testConfig())

	active, err := uc.Toggle("7", domain.SourceMail)
	require.NoError(t, err)
	assert.False(t, active)
	_, err = uc.Ensure(context.Background(), "7", domain.SourceMail)
	assert.ErrorIs(t, err, domain.ErrNotConnected)

	// A second toggle flips it right back, tokens intact.
	active, err = uc.Toggle("7", domain.SourceMail)
	require.NoError(t, err)
	assert.True(t, active)
	cred, err := uc.Ensure(context.Background(), "7", domain.SourceMail)
	require.NoError(t, err)
	assert.Equal(t, "old-access", cred.AccessToken)
}

func TestToggle_UnconnectedSource(t *testing.T) {
	uc := NewCredentialUsecase(newFakeCredRepo(), &fakeGoogle{}, &fakeBank{}, testConfig())
	_, err := uc.Toggle("7", domain.SourceBank)
	assert.ErrorIs(t, err, domain.ErrNotConnected)
}

func TestConnectBank_StoresExchangedToken(t *testing.T) {
	repo := newFakeCredRepo()
	uc := NewCredentialUsecase(repo, &fakeGoogle{}, &fakeBank{}, testConfig())

	require.NoError(t, uc.ConnectBank(context.Background(), "7", "public-token"))

	cred, err := repo.Get("7", domain.SourceBank)
	require.NoError(t, err)
	assert.Equal(t, "plaid-access-token", cred.AccessToken)
	// No expiry: Plaid access tokens live until revoked.
	assert.Nil(t, cred.ExpiresAt)
}
