package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jindalsaj/aura/internal/property/domain"
)

// ErrPropertyNotFound is returned for lookups of missing or foreign rows.
var ErrPropertyNotFound = errors.New("property not found")

type propertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) PropertyRepository {
	return &propertyRepository{db: db}
}

func (r *propertyRepository) Create(property *domain.Property) error {
	if property.ID == "" {
		property.ID = uuid.NewString()
	}
	return r.db.Create(property).Error
}

func (r *propertyRepository) GetByUser(userID string) ([]domain.Property, error) {
	var properties []domain.Property
	err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&properties).Error
	return properties, err
}

func (r *propertyRepository) GetByID(userID, id string) (*domain.Property, error) {
	var property domain.Property
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&property).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrPropertyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *propertyRepository) Update(property *domain.Property) error {
	res := r.db.Model(&domain.Property{}).
		Where("id = ? AND user_id = ?", property.ID, property.UserID).
		Updates(map[string]interface{}{
			"name":          property.Name,
			"address":       property.Address,
			"property_type": property.PropertyType,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPropertyNotFound
	}
	return nil
}

func (r *propertyRepository) Delete(userID, id string) error {
	res := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&domain.Property{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPropertyNotFound
	}
	return nil
}
