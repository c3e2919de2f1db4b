package domain

import (
	"errors"
	"time"
)

// SourceType identifies an external data source a user can connect.
type SourceType string

const (
	SourceMail     SourceType = "mail"
	SourceDrive    SourceType = "drive"
	SourceCalendar SourceType = "calendar"
	SourceBank     SourceType = "bank"
	SourceWhatsApp SourceType = "whatsapp"
)

// AllSourceTypes lists every supported source, in display order.
var AllSourceTypes = []SourceType{SourceMail, SourceDrive, SourceCalendar, SourceBank, SourceWhatsApp}

func (s SourceType) Valid() bool {
	switch s {
	case SourceMail, SourceDrive, SourceCalendar, SourceBank, SourceWhatsApp:
		return true
	}
	return false
}

var (
	// ErrNotConnected means the user has no active credential for the source.
	ErrNotConnected = errors.New("source not connected")
	// ErrCredentialExpired means the access token expired and the refresh
	// attempt failed; the credential has been deactivated and the user must
	// re-authenticate.
	ErrCredentialExpired = errors.New("credential expired")
)

// Credential holds the per-user OAuth/API tokens for one source.
// Tokens are encrypted at rest; the repository returns them decrypted.
// One row per (user_id, source_type).
type Credential struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	UserID       string     `json:"user_id" gorm:"uniqueIndex:idx_user_source;not null"`
	SourceType   SourceType `json:"source_type" gorm:"uniqueIndex:idx_user_source;not null"`
	AccessToken  string     `json:"-"`
	RefreshToken string     `json:"-"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	Active       bool       `json:"active" gorm:"default:true"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Expired reports whether the access token needs a refresh before use.
// A small skew avoids handing out tokens that die mid-request.
func (c *Credential) Expired() bool {
	if c.ExpiresAt == nil {
		return false
	}
	return time.Now().After(c.ExpiresAt.Add(-30 * time.Second))
}

// Identity is the profile returned by a credential provider.
type Identity struct {
	Subject   string `json:"sub"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"picture"`
}
