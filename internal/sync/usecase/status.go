package usecase

import (
	sourcedomain "github.com/jindalsaj/aura/internal/source/domain"
	"github.com/jindalsaj/aura/internal/sync/domain"
	"github.com/jindalsaj/aura/internal/sync/dto"
)

func (u *syncUsecase) GetSyncStatus(userID string) (*dto.SyncStatusResponse, error) {
	connections, err := u.credentials.ListConnections(userID)
	if err != nil {
		return nil, err
	}

	sessions, err := u.sessionRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	bySource := make(map[sourcedomain.SourceType]domain.SyncSession, len(sessions))
	for _, s := range sessions {
		bySource[s.SourceType] = s
	}

	resp := &dto.SyncStatusResponse{Status: domain.StatusIdle, Sources: []dto.SourceSyncStatus{}}
	synced := 0
	progressSum := 0
	for _, conn := range connections {
		entry := dto.SourceSyncStatus{
			SourceType: conn.SourceType,
			Status:     domain.StatusIdle,
		}
		if s, ok := bySource[conn.SourceType]; ok {
			entry.Status = s.Status
			entry.Progress = s.Progress
			entry.LastSync = s.LastSync
			entry.ErrorDetail = s.ErrorDetail
			synced++
			progressSum += s.Progress
		}
		resp.Sources = append(resp.Sources, entry)
	}

	resp.Status = aggregateStatus(resp.Sources)
	// Overall progress is the floor of the mean across sources that have a
	// session; never-synced sources don't drag the number down.
	if synced > 0 {
		resp.Progress = progressSum / synced
	}
	return resp, nil
}

// aggregateStatus folds per-source states into one: any run in flight wins,
// then any failure, then completed if at least one source ever finished.
func aggregateStatus(sources []dto.SourceSyncStatus) domain.SyncStatus {
	anyError := false
	anyCompleted := false
	for _, s := range sources {
		switch s.Status {
		case domain.StatusSyncing:
			return domain.StatusSyncing
		case domain.StatusError:
			anyError = true
		case domain.StatusCompleted:
			anyCompleted = true
		}
	}
	if anyError {
		return domain.StatusError
	}
	if anyCompleted {
		return domain.StatusCompleted
	}
	return domain.StatusIdle
}
