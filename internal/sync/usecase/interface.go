package usecase

import (
	"context"

	sourcedomain "github.com/jindalsaj/aura/internal/source/domain"
	"github.com/jindalsaj/aura/internal/sync/domain"
	"github.com/jindalsaj/aura/internal/sync/dto"
)

// SyncUsecase coordinates sync runs across a user's connected sources.
type SyncUsecase interface {
	// TriggerSync starts a background sync for one source. It returns
	// immediately with a channel that delivers the single outcome when the
	// run finishes. ErrAlreadySyncing when a run for the same (user, source)
	// is still in flight.
	TriggerSync(ctx context.Context, userID string, sourceType sourcedomain.SourceType, sel domain.Selector) (<-chan domain.SyncOutcome, error)
	// SyncAll triggers every connected source concurrently. Sources that are
	// already syncing are skipped. The returned channel carries one outcome
	// per started unit and closes when all of them finished.
	SyncAll(ctx context.Context, userID string, sel domain.Selector) (<-chan domain.SyncOutcome, error)
	// GetSyncStatus reports per-source state plus the aggregate.
	GetSyncStatus(userID string) (*dto.SyncStatusResponse, error)
}

// EventNotifier delivers user-facing notifications about finished syncs.
type EventNotifier interface {
	SyncCompleted(ctx context.Context, userID string, outcome domain.SyncOutcome)
	SyncFailed(ctx context.Context, userID string, sourceType sourcedomain.SourceType, reason string)
}

// Tracker records product analytics events. Implementations must be
// fire-and-forget; a broken tracker never affects a sync.
type Tracker interface {
	Track(userID, event string, properties map[string]interface{})
}
