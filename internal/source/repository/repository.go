package repository

import (
	"time"

	"github.com/jindalsaj/aura/internal/source/domain"
)

// CredentialRepository stores per-(user, source) credentials. Tokens are
// encrypted before they hit the database and decrypted on the way out.
type CredentialRepository interface {
	// Upsert stores the credential, replacing any existing row for the same
	// (user, source) pair.
	Upsert(cred *domain.Credential) error
	// Get returns the credential or ErrNotConnected when no active row exists.
	Get(userID string, sourceType domain.SourceType) (*domain.Credential, error)
	// UpdateTokens persists a refreshed token pair for an existing credential.
	UpdateTokens(id, accessToken, refreshToken string, expiresAt *time.Time) error
	// Deactivate flags the credential as unusable until the user reconnects.
	Deactivate(id string) error
	// ToggleActive flips the active flag without touching tokens and reports
	// the new state. ErrNotConnected when no row exists for the pair.
	ToggleActive(userID string, sourceType domain.SourceType) (bool, error)
	ListByUser(userID string) ([]domain.Credential, error)
	Delete(userID string, sourceType domain.SourceType) error
}
