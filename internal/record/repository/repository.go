package repository

import (
	"github.com/jindalsaj/aura/internal/record/domain"
	sourcedomain "github.com/jindalsaj/aura/internal/source/domain"
)

// RecordRepository persists normalized records with dedup on
// (user_id, source_type, external_id).
type RecordRepository interface {
	// Persist stores each record that does not already exist and skips the
	// rest. It returns the number actually inserted. A failure on one record
	// does not abort the others; the first error is returned after the loop.
	Persist(records []*domain.Record) (int, error)
	GetByUser(userID string, sourceType sourcedomain.SourceType, kind string, limit, offset int) ([]domain.Record, error)
	CountByUser(userID string) (int64, error)
	// CountBySource returns stored-record counts grouped by source type.
	CountBySource(userID string) (map[sourcedomain.SourceType]int64, error)
}
