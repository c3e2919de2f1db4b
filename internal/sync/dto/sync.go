package dto

import (
	"time"

	sourcedomain "github.com/jindalsaj/aura/internal/source/domain"
	syncdomain "github.com/jindalsaj/aura/internal/sync/domain"
)

// TriggerSyncRequest selects what to sync. All fields are optional; the
// default is the last 30 days.
type TriggerSyncRequest struct {
	Days  int      `json:"days,omitempty"`
	IDs   []string `json:"ids,omitempty"`
	Query string   `json:"query,omitempty"`
}

// Selector converts the request into the internal selector shape.
func (r *TriggerSyncRequest) Selector() syncdomain.Selector {
	if len(r.IDs) > 0 {
		return syncdomain.Selector{IDs: r.IDs}
	}
	sel := syncdomain.DefaultSelector()
	if r.Days > 0 {
		sel.Window = syncdomain.WindowDays(r.Days)
	}
	sel.ContentFilter = r.Query
	return sel
}

// SourceSyncStatus is the per-source slice of the status report.
type SourceSyncStatus struct {
	SourceType  sourcedomain.SourceType `json:"source_type"`
	Status      syncdomain.SyncStatus   `json:"status"`
	Progress    int                     `json:"progress"`
	LastSync    *time.Time              `json:"last_sync,omitempty"`
	ErrorDetail string                  `json:"error_detail,omitempty"`
}

// SyncStatusResponse aggregates the connected sources' sessions.
type SyncStatusResponse struct {
	Status   syncdomain.SyncStatus `json:"status"`
	Progress int                   `json:"progress"`
	Sources  []SourceSyncStatus    `json:"sources"`
}

// TriggerSyncResponse acknowledges an accepted trigger.
type TriggerSyncResponse struct {
	Message string                    `json:"message"`
	Sources []sourcedomain.SourceType `json:"sources"`
}
