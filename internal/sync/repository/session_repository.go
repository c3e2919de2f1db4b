package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	sourcedomain "github.com/jindalsaj/aura/internal/source/domain"
	"github.com/jindalsaj/aura/internal/sync/domain"
)

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) GetOrCreate(userID string, sourceType sourcedomain.SourceType) (*domain.SyncSession, error) {
	var session domain.SyncSession
	err := r.db.Where(domain.SyncSession{UserID: userID, SourceType: sourceType}).
		Attrs(domain.SyncSession{
			ID:       uuid.NewString(),
			Status:   domain.StatusIdle,
			Progress: domain.ProgressStarted,
		}).
		FirstOrCreate(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) TryMarkSyncing(userID string, sourceType sourcedomain.SourceType) (bool, error) {
	if _, err := r.GetOrCreate(userID, sourceType); err != nil {
		return false, err
	}
	// Conditional update: the WHERE clause loses the race for us, so two
	// concurrent triggers cannot both claim the session.
	res := r.db.Model(&domain.SyncSession{}).
		Where("user_id = ? AND source_type = ? AND status <> ?", userID, sourceType, domain.StatusSyncing).
		Updates(map[string]interface{}{
			"status":       domain.StatusSyncing,
			"progress":     domain.ProgressStarted,
			"error_detail": "",
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *sessionRepository) SetProgress(userID string, sourceType sourcedomain.SourceType, progress int) error {
	return r.db.Model(&domain.SyncSession{}).
		Where("user_id = ? AND source_type = ? AND status = ? AND progress < ?",
			userID, sourceType, domain.StatusSyncing, progress).
		Update("progress", progress).Error
}

func (r *sessionRepository) MarkCompleted(userID string, sourceType sourcedomain.SourceType) error {
	now := time.Now()
	return r.db.Model(&domain.SyncSession{}).
		Where("user_id = ? AND source_type = ?", userID, sourceType).
		Updates(map[string]interface{}{
			"status":       domain.StatusCompleted,
			"progress":     domain.ProgressDone,
			"last_sync":    &now,
			"error_detail": "",
		}).Error
}

func (r *sessionRepository) MarkError(userID string, sourceType sourcedomain.SourceType, detail string) error {
	return r.db.Model(&domain.SyncSession{}).
		Where("user_id = ? AND source_type = ?", userID, sourceType).
		Updates(map[string]interface{}{
			"status":       domain.StatusError,
			"progress":     domain.ProgressStarted,
			"error_detail": detail,
		}).Error
}

func (r *sessionRepository) ListByUser(userID string) ([]domain.SyncSession, error) {
	var sessions []domain.SyncSession
	err := r.db.Where("user_id = ?", userID).Order("source_type ASC").Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepository) Get(userID string, sourceType sourcedomain.SourceType) (*domain.SyncSession, error) {
	var session domain.SyncSession
	err := r.db.Where("user_id = ? AND source_type = ?", userID, sourceType).First(&session).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}
