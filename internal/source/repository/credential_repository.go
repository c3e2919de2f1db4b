package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jindalsaj/aura/internal/source/domain"
	"github.com/jindalsaj/aura/pkg/crypto"
)

type credentialRepository struct {
	db     *gorm.DB
	cipher *crypto.Cipher
}

func NewCredentialRepository(db *gorm.DB, cipher *crypto.Cipher) CredentialRepository {
	return &credentialRepository{db: db, cipher: cipher}
}

func (r *credentialRepository) Upsert(cred *domain.Credential) error {
	if cred.ID == "" {
		cred.ID = uuid.NewString()
	}
	encrypted, err := r.encrypt(cred)
	if err != nil {
		return err
	}

	var existing domain.Credential
	err = r.db.Where("user_id = ? AND source_type = ?", cred.UserID, cred.SourceType).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.db.Create(encrypted).Error
	}
	if err != nil {
		return err
	}

	encrypted.ID = existing.ID
	cred.ID = existing.ID
	return r.db.Model(&domain.Credential{}).Where("id = ?", existing.ID).
		Updates(map[string]interface{}{
			"access_token":  encrypted.AccessToken,
			"refresh_token": encrypted.RefreshToken,
			"expires_at":    encrypted.ExpiresAt,
			"active":        true,
		}).Error
}

func (r *credentialRepository) Get(userID string, sourceType domain.SourceType) (*domain.Credential, error) {
	var cred domain.Credential
	err := r.db.Where("user_id = ? AND source_type = ? AND active = ?", userID, sourceType, true).
		First(&cred).Error
	if err == gorm.ErrRecordNotFound {
		return nil, domain.ErrNotConnected
	}
	if err != nil {
		return nil, err
	}
	if err := r.decrypt(&cred); err != nil {
		return nil, fmt.Errorf("failed to decrypt credential %s: %w", cred.ID, err)
	}
	return &cred, nil
}

func (r *credentialRepository) UpdateTokens(id, accessToken, refreshToken string, expiresAt *time.Time) error {
	encAccess, err := r.cipher.Encrypt(accessToken)
	if err != nil {
		return err
	}
	updates := map[string]interface{}{
		"access_token": encAccess,
		"expires_at":   expiresAt,
	}
	if refreshToken != "" {
		encRefresh, err := r.cipher.Encrypt(refreshToken)
		if err != nil {
			return err
		}
		updates["refresh_token"] = encRefresh
	}
	return r.db.Model(&domain.Credential{}).Where("id = ?", id).Updates(updates).Error
}

func (r *credentialRepository) Deactivate(id string) error {
	return r.db.Model(&domain.Credential{}).Where("id = ?", id).Update("active", false).Error
}

func (r *credentialRepository) ToggleActive(userID string, sourceType domain.SourceType) (bool, error) {
	result := r.db.Model(&domain.Credential{}).
		Where("user_id = ? AND source_type = ?", userID, sourceType).
		Update("active", gorm.Expr("NOT active"))
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, domain.ErrNotConnected
	}

	var cred domain.Credential
	if err := r.db.Select("active").
		Where("user_id = ? AND source_type = ?", userID, sourceType).
		First(&cred).Error; err != nil {
		return false, err
	}
	return cred.Active, nil
}

func (r *credentialRepository) ListByUser(userID string) ([]domain.Credential, error) {
	var creds []domain.Credential
	if err := r.db.Where("user_id = ?", userID).Find(&creds).Error; err != nil {
		return nil, err
	}
	// Tokens stay encrypted here; listing is for connection status only.
	for i := range creds {
		creds[i].AccessToken = ""
		creds[i].RefreshToken = ""
	}
	return creds, nil
}

func (r *credentialRepository) Delete(userID string, sourceType domain.SourceType) error {
	return r.db.Where("user_id = ? AND source_type = ?", userID, sourceType).
		Delete(&domain.Credential{}).Error
}

func (r *credentialRepository) encrypt(cred *domain.Credential) (*domain.Credential, error) {
	encAccess, err := r.cipher.Encrypt(cred.AccessToken)
	if err != nil {
		return nil, err
	}
	encRefresh, err := r.cipher.Encrypt(cred.RefreshToken)
	if err != nil {
		return nil, err
	}
	clone := *cred
	clone.AccessToken = encAccess
	clone.RefreshToken = encRefresh
	return &clone, nil
}

func (r *credentialRepository) decrypt(cred *domain.Credential) error {
	access, err := r.cipher.Decrypt(cred.AccessToken)
	if err != nil {
		return err
	}
	refresh, err := r.cipher.Decrypt(cred.RefreshToken)
	if err != nil {
		return err
	}
	cred.AccessToken = access
	cred.RefreshToken = refresh
	return nil
}
