package repository

import (
	"time"

	authdomain "github.com/jindalsaj/aura/internal/auth/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeviceTokenRepository is the push registration store. Sync completion and
// failure notifications fan out to every token a user has registered.
type DeviceTokenRepository interface {
	Register(userID, token, deviceInfo string) error
	ListByUser(userID string) ([]authdomain.DeviceToken, error)
	Remove(token string) error
	RemoveAllForUser(userID string) error
}

type deviceTokenRepository struct {
	db *gorm.DB
}

func NewDeviceTokenRepository(db *gorm.DB) DeviceTokenRepository {
	return &deviceTokenRepository{db: db}
}

// Register upserts on the token itself: re-registering from the same device
// moves the token to the current user instead of failing the unique index.
func (r *deviceTokenRepository) Register(userID, token, deviceInfo string) error {
	row := &authdomain.DeviceToken{
		ID:         uuid.New().String(),
		UserID:     userID,
		Token:      token,
		DeviceInfo: deviceInfo,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "device_info", "updated_at"}),
	}).Create(row).Error
}

func (r *deviceTokenRepository) ListByUser(userID string) ([]authdomain.DeviceToken, error) {
	var tokens []authdomain.DeviceToken
	if err := r.db.Where("user_id = ?", userID).Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

// Remove drops a single registration, used both for explicit unregister and
// for pruning tokens FCM reports as stale.
func (r *deviceTokenRepository) Remove(token string) error {
	return r.db.Where("token = ?", token).Delete(&authdomain.DeviceToken{}).Error
}

func (r *deviceTokenRepository) RemoveAllForUser(userID string) error {
	return r.db.Where("user_id = ?", userID).Delete(&authdomain.DeviceToken{}).Error
}
