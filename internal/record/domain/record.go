package domain

import (
	"database/sql/driver"
	"encoding/json"
	"math"
	"time"

	sourcedomain "github.com/jindalsaj/aura/internal/source/domain"
	syncdomain "github.com/jindalsaj/aura/internal/sync/domain"
)

// JSONMap is a custom type to handle JSON objects in GORM.
type JSONMap map[string]interface{}

// Value implements driver.Valuer
func (m JSONMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	if len(bytes) == 0 {
		*m = JSONMap{}
		return nil
	}
	return json.Unmarshal(bytes, m)
}

// Record is the persisted, normalized form of a RawItem that survived the
// relevance filter. At most one record exists per (user_id, source_type,
// external_id) no matter how often the same window is re-synced.
type Record struct {
	ID         string                  `json:"id" gorm:"primaryKey"`
	UserID     string                  `json:"user_id" gorm:"uniqueIndex:idx_user_source_external;not null"`
	SourceType sourcedomain.SourceType `json:"source_type" gorm:"uniqueIndex:idx_user_source_external;not null"`
	ExternalID string                  `json:"external_id" gorm:"uniqueIndex:idx_user_source_external;not null"`
	Kind       syncdomain.RecordKind   `json:"kind" gorm:"index;not null"`
	Title      string                  `json:"title"`
	Sender     string                  `json:"sender,omitempty"`
	Recipient  string                  `json:"recipient,omitempty"`
	Content    string                  `json:"content" gorm:"type:text"`
	Amount     float64                 `json:"amount,omitempty"`
	Category   string                  `json:"category,omitempty"`
	OccurredAt time.Time               `json:"occurred_at"`

	RelevanceConfidence float64 `json:"relevance_confidence"`
	RelevanceReason     string  `json:"relevance_reason"`
	RelevanceMethod     string  `json:"relevance_method"` // keyword_only or classifier_confirmed

	Metadata  JSONMap   `json:"metadata,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}

// Relevance is the filter annotation attached to a stored record.
type Relevance struct {
	Confidence float64
	Reason     string
	Method     string
}

// Normalize converts a raw item plus its relevance annotation into the
// persisted record shape. Kind-specific fields are filled from the variant.
func Normalize(userID string, sourceType sourcedomain.SourceType, item syncdomain.RawItem, rel Relevance) *Record {
	rec := &Record{
		UserID:              userID,
		SourceType:          sourceType,
		ExternalID:          item.ExternalID(),
		Kind:                item.Kind(),
		OccurredAt:          item.Timestamp(),
		RelevanceConfidence: rel.Confidence,
		RelevanceReason:     rel.Reason,
		RelevanceMethod:     rel.Method,
	}

	switch v := item.(type) {
	case *syncdomain.MailItem:
		rec.Title = v.Subject
		rec.Sender = v.From
		rec.Recipient = v.To
		rec.Content = v.Body
		if len(v.Attachments) > 0 {
			atts := make([]map[string]interface{}, 0, len(v.Attachments))
			for _, a := range v.Attachments {
				atts = append(atts, map[string]interface{}{
					"filename":  a.Filename,
					"mime_type": a.MimeType,
					"size":      a.Size,
				})
			}
			rec.Metadata = JSONMap{"thread_id": v.ThreadID, "attachments": atts}
		} else if v.ThreadID != "" {
			rec.Metadata = JSONMap{"thread_id": v.ThreadID}
		}
	case *syncdomain.FileItem:
		rec.Title = v.Name
		rec.Content = v.Description
		rec.Metadata = JSONMap{"mime_type": v.MimeType, "size": v.Size}
	case *syncdomain.EventItem:
		rec.Title = v.Summary
		rec.Content = v.Description
		rec.Metadata = JSONMap{"location": v.Location, "attendees": v.Attendees}
	case *syncdomain.TransactionItem:
		rec.Title = v.Name
		// Store as a positive amount regardless of debit/credit sign.
		rec.Amount = math.Abs(v.Amount)
		rec.Category = v.Category
		rec.Content = v.Name
		rec.Metadata = JSONMap{
			"account_id":    v.AccountID,
			"merchant_name": v.Merchant,
			"categories":    v.Categories,
			"pending":       v.Pending,
		}
	case *syncdomain.ChatItem:
		rec.Sender = v.From
		rec.Recipient = v.To
		rec.Content = v.Text
	default:
		rec.Content = item.RelevanceText()
	}

	return rec
}
