package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	authdomain "github.com/jindalsaj/aura/internal/auth/domain"
	sourcedomain "github.com/jindalsaj/aura/internal/source/domain"
	"github.com/jindalsaj/aura/pkg/config"
)

// -------- test fakes --------

type fakeUserRepo struct {
	usersByEmail  map[string]*authdomain.User
	refreshTokens map[string]*authdomain.RefreshToken
	creates       int
	updates       int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		usersByEmail:  make(map[string]*authdomain.User),
		refreshTokens: make(map[string]*authdomain.RefreshToken),
	}
}

func (f *fakeUserRepo) Create(user *authdomain.User) error {
	f.creates++
	if user.ID == "" {
		user.ID = "user-" + user.Email
	}
	copied := *user
	f.usersByEmail[user.Email] = &copied
	return nil
}

func (f *fakeUserRepo) FindByEmail(email string) (*authdomain.User, error) {
	user, ok := f.usersByEmail[email]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) FindByID(id string) (*authdomain.User, error) {
	for _, user := range f.usersByEmail {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Update(user *authdomain.User) error {
	f.updates++
	copied := *user
	f.usersByEmail[user.Email] = &copied
	return nil
}

func (f *fakeUserRepo) SaveRefreshToken(token *authdomain.RefreshToken) error {
	f.refreshTokens[token.Token] = token
	return nil
}

func (f *fakeUserRepo) FindRefreshToken(token string) (*authdomain.RefreshToken, error) {
	return f.refreshTokens[token], nil
}

func (f *fakeUserRepo) DeleteRefreshToken(token string) error {
	delete(f.refreshTokens, token)
	return nil
}

type fakeGoogleAuth struct {
	token       *oauth2.Token
	exchangeErr error
	identity    *sourcedomain.Identity
	exchanges   int
}

func (f *fakeGoogleAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	f.exchanges++
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.token, nil
}

func (f *fakeGoogleAuth) GetProfile(ctx context.Context, accessToken string) (*sourcedomain.Identity, error) {
	return f.identity, nil
}

type fakeProvisioner struct {
	userIDs []string
	tokens  []*oauth2.Token
}

func (f *fakeProvisioner) ProvisionGoogle(userID string, token *oauth2.Token) error {
	f.userIDs = append(f.userIDs, userID)
	f.tokens = append(f.tokens, token)
	return nil
}

func authTestConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  time.Minute,
		JWTRefreshExpiry: time.Hour,
	}
}

func googleAuthFixture() *fakeGoogleAuth {
	return &fakeGoogleAuth{
		token: &oauth2.Token{
			AccessToken:  "google-access",
			RefreshToken: "google-refresh",
			Expiry:       time.Now().Add(time.Hour),
		},
		identity: &sourcedomain.Identity{
			Email:     "user@example.com",
			Name:      "Test User",
			AvatarURL: "https://example.com/avatar.png",
		},
	}
}

func TestGoogleSignIn_FirstSignInCreatesUserAndProvisionsSources(t *testing.T) {
	users := newFakeUserRepo()
	google := googleAuthFixture()
	provisioner := &fakeProvisioner{}
	uc := NewAuthUsecase(users, google, provisioner, authTestConfig())

	resp, err := uc.GoogleSignIn(context.Background(), "auth-code")
	require.NoError(t, err)
	require.NotNil(t, resp.User)
	assert.Equal(t, "user@example.com", resp.User.Email)
	assert.Equal(t, "google", resp.User.Provider)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	// The single-use code is exchanged exactly once; the resulting token is
	// handed straight to credential provisioning.
	assert.Equal(t, 1, google.exchanges)
	require.Len(t, provisioner.userIDs, 1)
	assert.Equal(t, resp.User.ID, provisioner.userIDs[0])
	assert.Equal(t, "google-refresh", provisioner.tokens[0].RefreshToken)
}

func TestGoogleSignIn_ExistingUserIsUpdatedNotDuplicated(t *testing.T) {
	users := newFakeUserRepo()
	users.usersByEmail["user@example.com"] = &authdomain.User{
		ID:       "user-1",
		Email:    "user@example.com",
		Name:     "Old Name",
		Provider: "google",
	}
	google := googleAuthFixture()
	provisioner := &fakeProvisioner{}
	uc := NewAuthUsecase(users, google, provisioner, authTestConfig())

	resp, err := uc.GoogleSignIn(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "user-1", resp.User.ID)
	assert.Equal(t, "Test User", resp.User.Name)
	assert.Zero(t, users.creates)
	assert.Equal(t, 1, users.updates)

	// Re-consenting re-provisions credentials for the same account.
	assert.Equal(t, []string{"user-1"}, provisioner.userIDs)
}

func TestGoogleSignIn_ExchangeFailureCreatesNothing(t *testing.T) {
	users := newFakeUserRepo()
	google := googleAuthFixture()
	google.exchangeErr = errors.New("invalid_grant")
	provisioner := &fakeProvisioner{}
	uc := NewAuthUsecase(users, google, provisioner, authTestConfig())

	_, err := uc.GoogleSignIn(context.Background(), "bad-code")
	require.Error(t, err)
	assert.Zero(t, users.creates)
	assert.Empty(t, provisioner.userIDs)
}

func TestValidateToken_RoundTrip(t *testing.T) {
	users := newFakeUserRepo()
	uc := NewAuthUsecase(users, googleAuthFixture(), &fakeProvisioner{}, authTestConfig())

	resp, err := uc.GoogleSignIn(context.Background(), "auth-code")
	require.NoError(t, err)

	user, err := uc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)
}
