package repository

import "github.com/jindalsaj/aura/internal/property/domain"

// PropertyRepository stores the user's tracked properties.
type PropertyRepository interface {
	Create(property *domain.Property) error
	GetByUser(userID string) ([]domain.Property, error)
	GetByID(userID, id string) (*domain.Property, error)
	Update(property *domain.Property) error
	Delete(userID, id string) error
}
