package repositories

import (
	"errors"
	"fmt"

	"recipebox/internal/models"

	"gorm.io/gorm"
)

// GORMTokenRepository is a GORM implementation of TokenRepository.
type GORMTokenRepository struct {
	db *gorm.DB
}

// NewGORMTokenRepository creates a new instance of GORMTokenRepository.
func NewGORMTokenRepository(db *gorm.DB) *GORMTokenRepository {
	return &GORMTokenRepository{
		db: db,
	}
}

// Create stores a freshly issued token.
func (r *GORMTokenRepository) Create(token *models.Token) error {
	if err := r.db.Create(token).Error; err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}
	return nil
}

// GetByKey retrieves a token by its key.
func (r *GORMTokenRepository) GetByKey(key string) (*models.Token, error) {
	var token models.Token
	if err := r.db.First(&token, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("token: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return &token, nil
}

// DeleteByKey revokes a token. Deleting an unknown key is not an error.
func (r *GORMTokenRepository) DeleteByKey(key string) error {
	if err := r.db.Delete(&models.Token{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
