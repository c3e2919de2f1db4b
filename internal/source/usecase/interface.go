package usecase

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/jindalsaj/aura/internal/source/domain"
)

// CredentialUsecase owns the credential lifecycle: connecting sources,
// handing out usable tokens, and retiring credentials that can no longer be
// refreshed.
type CredentialUsecase interface {
	// ConnectGoogle exchanges an OAuth authorization code and provisions
	// credentials for every Google-backed source (mail, drive, calendar).
	ConnectGoogle(ctx context.Context, userID, code string) (*domain.Identity, error)
	// ProvisionGoogle stores an already-exchanged Google token as credentials
	// for every Google-backed source. Used when sign-in and source connection
	// share one consent, since authorization codes are single-use.
	ProvisionGoogle(userID string, token *oauth2.Token) error
	// ConnectBank exchanges a Plaid Link public token for a credential.
	ConnectBank(ctx context.Context, userID, publicToken string) error
	// ConnectWhatsApp stores a WhatsApp Business API token.
	ConnectWhatsApp(ctx context.Context, userID, accessToken string) error
	// Ensure returns a credential whose access token is valid right now,
	// refreshing it first if needed. ErrNotConnected when the source was never
	// connected or was deactivated; ErrCredentialExpired when the refresh
	// failed and the credential has been deactivated.
	Ensure(ctx context.Context, userID string, sourceType domain.SourceType) (*domain.Credential, error)
	ListConnections(userID string) ([]domain.Credential, error)
	// Toggle flips a connected source between paused and active and returns
	// the new state. Tokens are kept, so resuming needs no re-authentication.
	Toggle(userID string, sourceType domain.SourceType) (bool, error)
	Disconnect(userID string, sourceType domain.SourceType) error
}
