package repository

import (
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jindalsaj/aura/internal/record/domain"
	sourcedomain "github.com/jindalsaj/aura/internal/source/domain"
)

type recordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) RecordRepository {
	return &recordRepository{db: db}
}

func (r *recordRepository) Persist(records []*domain.Record) (int, error) {
	stored := 0
	var firstErr error
	for _, rec := range records {
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		var existing domain.Record
		err := r.db.Where("user_id = ? AND source_type = ? AND external_id = ?",
			rec.UserID, rec.SourceType, rec.ExternalID).First(&existing).Error
		if err == nil {
			// Already stored by an earlier sync of an overlapping window.
			continue
		}
		if err != gorm.ErrRecordNotFound {
			log.Printf("[RecordRepository] Lookup failed for %s/%s: %v", rec.SourceType, rec.ExternalID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := r.db.Create(rec).Error; err != nil {
			log.Printf("[RecordRepository] Insert failed for %s/%s: %v", rec.SourceType, rec.ExternalID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		stored++
	}
	return stored, firstErr
}

func (r *recordRepository) GetByUser(userID string, sourceType sourcedomain.SourceType, kind string, limit, offset int) ([]domain.Record, error) {
	query := r.db.Where("user_id = ?", userID)
	if sourceType != "" {
		query = query.Where("source_type = ?", sourceType)
	}
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var records []domain.Record
	err := query.Order("occurred_at DESC").Limit(limit).Offset(offset).Find(&records).Error
	return records, err
}

func (r *recordRepository) CountByUser(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Record{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *recordRepository) CountBySource(userID string) (map[sourcedomain.SourceType]int64, error) {
	var rows []struct {
		SourceType sourcedomain.SourceType
		Count      int64
	}
	err := r.db.Model(&domain.Record{}).
		Select("source_type, COUNT(*) as count").
		Where("user_id = ?", userID).
		Group("source_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[sourcedomain.SourceType]int64, len(rows))
	for _, row := range rows {
		counts[row.SourceType] = row.Count
	}
	return counts, nil
}
