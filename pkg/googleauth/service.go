package googleauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	sourcedomain "github.com/jindalsaj/aura/internal/source/domain"
)

// Scopes requested when a user connects their Google account. Read-only
// everywhere; the aggregator never writes to the user's data.
var Scopes = []string{
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/drive.metadata.readonly",
	"https://www.googleapis.com/auth/calendar.readonly",
}

type Service struct {
	config *oauth2.Config
}

func NewService(clientID, clientSecret, redirectURI string) *Service {
	return &Service{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Endpoint:     google.Endpoint,
			Scopes:       Scopes,
		},
	}
}

// AuthURL builds the consent URL. Offline access with forced consent so a
// refresh token is always issued.
func (s *Service) AuthURL(state string) string {
	return s.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades an authorization code for tokens.
func (s *Service) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return s.config.Exchange(ctx, code)
}

// Refresh obtains a fresh access token using the stored refresh token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	stale := &oauth2.Token{RefreshToken: refreshToken}
	return s.config.TokenSource(ctx, stale).Token()
}

// GetProfile fetches the user's Google profile with an access token.
func (s *Service) GetProfile(ctx context.Context, accessToken string) (*sourcedomain.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", "https://www.googleapis.com/oauth2/v3/userinfo", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("userinfo request failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var identity sourcedomain.Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, err
	}
	return &identity, nil
}
