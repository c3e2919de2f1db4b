package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/oauth2"

	"github.com/jindalsaj/aura/internal/source/domain"
	"github.com/jindalsaj/aura/internal/source/repository"
	"github.com/jindalsaj/aura/pkg/config"
)

// GoogleTokenProvider is the part of the Google OAuth service the credential
// lifecycle needs.
type GoogleTokenProvider interface {
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
	GetProfile(ctx context.Context, accessToken string) (*domain.Identity, error)
}

// BankTokenExchanger is the part of the Plaid client the credential
// lifecycle needs.
type BankTokenExchanger interface {
	ExchangePublicToken(ctx context.Context, publicToken string) (accessToken, itemID string, err error)
}

var googleSources = []domain.SourceType{domain.SourceMail, domain.SourceDrive, domain.SourceCalendar}

type credentialUsecase struct {
	credRepo repository.CredentialRepository
	google   GoogleTokenProvider
	bank     BankTokenExchanger
	config   *config.Config
}

func NewCredentialUsecase(credRepo repository.CredentialRepository, google GoogleTokenProvider, bank BankTokenExchanger, cfg *config.Config) CredentialUsecase {
	return &credentialUsecase{
		credRepo: credRepo,
		google:   google,
		bank:     bank,
		config:   cfg,
	}
}

func (u *credentialUsecase) ConnectGoogle(ctx context.Context, userID, code string) (*domain.Identity, error) {
	token, err := u.google.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google code exchange failed: %w", err)
	}

	identity, err := u.google.GetProfile(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	if err := u.ProvisionGoogle(userID, token); err != nil {
		return nil, err
	}
	return identity, nil
}

func (u *credentialUsecase) ProvisionGoogle(userID string, token *oauth2.Token) error {
	// One consent grants all three Google sources; each gets its own
	// credential row so they expire and refresh independently.
	var expiresAt *time.Time
	if !token.Expiry.IsZero() {
		t := token.Expiry
		expiresAt = &t
	}
	for _, sourceType := range googleSources {
		cred := &domain.Credential{
			UserID:       userID,
			SourceType:   sourceType,
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
			ExpiresAt:    expiresAt,
			Active:       true,
		}
		if err := u.credRepo.Upsert(cred); err != nil {
			return fmt.Errorf("failed to store %s credential: %w", sourceType, err)
		}
	}
	log.Printf("[Credential] Google sources connected for user %s", userID)
	return nil
}

func (u *credentialUsecase) ConnectBank(ctx context.Context, userID, publicToken string) error {
	accessToken, itemID, err := u.bank.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return fmt.Errorf("plaid token exchange failed: %w", err)
	}
	_ = itemID

	// Plaid access tokens do not expire; no refresh token either.
	cred := &domain.Credential{
		UserID:      userID,
		SourceType:  domain.SourceBank,
		AccessToken: accessToken,
		Active:      true,
	}
	if err := u.credRepo.Upsert(cred); err != nil {
		return err
	}
	log.Printf("[Credential] Bank connected for user %s", userID)
	return nil
}

func (u *credentialUsecase) ConnectWhatsApp(ctx context.Context, userID, accessToken string) error {
	if accessToken == "" {
		return errors.New("access token is required")
	}
	cred := &domain.Credential{
		UserID:      userID,
		SourceType:  domain.SourceWhatsApp,
		AccessToken: accessToken,
		Active:      true,
	}
	if err := u.credRepo.Upsert(cred); err != nil {
		return err
	}
	log.Printf("[Credential] WhatsApp connected for user %s", userID)
	return nil
}

func (u *credentialUsecase) Ensure(ctx context.Context, userID string, sourceType domain.SourceType) (*domain.Credential, error) {
	cred, err := u.credRepo.Get(userID, sourceType)
	if err != nil {
		return nil, err
	}

	if !cred.Expired() {
		return cred, nil
	}

	if cred.RefreshToken == "" {
		// Nothing to refresh with; the user has to reconnect.
		if err := u.credRepo.Deactivate(cred.ID); err != nil {
			log.Printf("[Credential] Failed to deactivate %s: %v", cred.ID, err)
		}
		return nil, domain.ErrCredentialExpired
	}

	refreshCtx, cancel := context.WithTimeout(ctx, u.config.SyncRefreshTimeout)
	defer cancel()

	token, err := u.google.Refresh(refreshCtx, cred.RefreshToken)
	if err != nil {
		log.Printf("[Credential] Refresh failed for user %s source %s: %v", userID, sourceType, err)
		if derr := u.credRepo.Deactivate(cred.ID); derr != nil {
			log.Printf("[Credential] Failed to deactivate %s: %v", cred.ID, derr)
		}
		return nil, domain.ErrCredentialExpired
	}

	var expiresAt *time.Time
	if !token.Expiry.IsZero() {
		t := token.Expiry
		expiresAt = &t
	}
	if err := u.credRepo.UpdateTokens(cred.ID, token.AccessToken, token.RefreshToken, expiresAt); err != nil {
		return nil, err
	}

	cred.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		cred.RefreshToken = token.RefreshToken
	}
	cred.ExpiresAt = expiresAt
	return cred, nil
}

func (u *credentialUsecase) ListConnections(userID string) ([]domain.Credential, error) {
	return u.credRepo.ListByUser(userID)
}

func (u *credentialUsecase) Toggle(userID string, sourceType domain.SourceType) (bool, error) {
	if !sourceType.Valid() {
		return false, domain.ErrNotConnected
	}
	active, err := u.credRepo.ToggleActive(userID, sourceType)
	if err != nil {
		return false, err
	}
	log.Printf("[Credential] Source %s for user %s toggled active=%t", sourceType, userID, active)
	return active, nil
}

func (u *credentialUsecase) Disconnect(userID string, sourceType domain.SourceType) error {
	if !sourceType.Valid() {
		return domain.ErrNotConnected
	}
	return u.credRepo.Delete(userID, sourceType)
}
