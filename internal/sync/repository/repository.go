package repository

import (
	sourcedomain "github.com/jindalsaj/aura/internal/source/domain"
	"github.com/jindalsaj/aura/internal/sync/domain"
)

// SessionRepository owns the durable per-(user, source) sync state. All
// transitions go through it so the single-flight and monotonic-progress
// rules hold no matter which goroutine is driving the session.
type SessionRepository interface {
	GetOrCreate(userID string, sourceType sourcedomain.SourceType) (*domain.SyncSession, error)
	// TryMarkSyncing atomically moves the session to "syncing" with progress 0.
	// It reports false when the session is already syncing, in which case the
	// caller must not start another run.
	TryMarkSyncing(userID string, sourceType sourcedomain.SourceType) (bool, error)
	// SetProgress raises progress for a running session. Lower values than the
	// current one are ignored.
	SetProgress(userID string, sourceType sourcedomain.SourceType, progress int) error
	MarkCompleted(userID string, sourceType sourcedomain.SourceType) error
	MarkError(userID string, sourceType sourcedomain.SourceType, detail string) error
	ListByUser(userID string) ([]domain.SyncSession, error)
	Get(userID string, sourceType sourcedomain.SourceType) (*domain.SyncSession, error)
}
