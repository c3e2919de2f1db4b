package domain

import (
	"time"

	sourcedomain "github.com/jindalsaj/aura/internal/source/domain"
)

// SyncStatus is the state of one (user, source) sync session.
type SyncStatus string

const (
	StatusIdle      SyncStatus = "idle"
	StatusSyncing   SyncStatus = "syncing"
	StatusCompleted SyncStatus = "completed"
	StatusError     SyncStatus = "error"
)

// Progress checkpoints within one sync run. Progress is monotonically
// non-decreasing between trigger and finish.
const (
	ProgressStarted     = 0
	ProgressCredentials = 10
	ProgressFetched     = 50
	ProgressPersisted   = 90
	ProgressDone        = 100
)

// SyncSession tracks sync state for one (user, source) pair. Created lazily
// on the first trigger and reused for every later sync of that source.
// While status is "syncing" the session row is owned by the running unit;
// the single-flight rule in the repository enforces that ownership.
type SyncSession struct {
	ID          string                  `json:"id" gorm:"primaryKey"`
	UserID      string                  `json:"user_id" gorm:"uniqueIndex:idx_user_source_session;not null"`
	SourceType  sourcedomain.SourceType `json:"source_type" gorm:"uniqueIndex:idx_user_source_session;not null"`
	Status      SyncStatus              `json:"status" gorm:"default:idle"`
	Progress    int                     `json:"progress" gorm:"default:0"`
	LastSync    *time.Time              `json:"last_sync,omitempty"`
	ErrorDetail string                  `json:"error_detail,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

// SyncOutcome is the result of one sync unit, delivered on the channel
// returned by TriggerSync. The durable, pollable result is the SyncSession.
type SyncOutcome struct {
	SourceType sourcedomain.SourceType `json:"source_type"`
	Fetched    int                     `json:"fetched"`
	Relevant   int                     `json:"relevant"`
	Stored     int                     `json:"stored"`
	Err        error                   `json:"-"`
}
