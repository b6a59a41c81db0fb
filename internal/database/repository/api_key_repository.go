package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nodegate/rpc-gateway-backend/internal/models"
	"gorm.io/gorm"
)

// APIKeyRepository handles database operations for APIKey entities
type APIKeyRepository struct {
	db *gorm.DB
}

// NewAPIKeyRepository creates a new APIKeyRepository instance
func NewAPIKeyRepository(db *gorm.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// GetByHash retrieves an API key by its credential hash
func (r *APIKeyRepository) GetByHash(ctx context.Context, hash string) (*models.APIKey, error) {
	var apiKey models.APIKey
	if err := r.db.WithContext(ctx).Where("key_hash = ?", hash).First(&apiKey).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Return nil, nil when not found
		}
		return nil, err
	}
	return &apiKey, nil
}

// ListByAccountID retrieves all API keys for an account, newest first
func (r *APIKeyRepository) ListByAccountID(ctx context.Context, accountID string) ([]models.APIKey, error) {
	var apiKeys []models.APIKey
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&apiKeys).Error
	if err != nil {
		return nil, err
	}
	return apiKeys, nil
}

// Create adds a new API key
func (r *APIKeyRepository) Create(ctx context.Context, apiKey *models.APIKey) (*models.APIKey, error) {
	if err := r.db.WithContext(ctx).Create(apiKey).Error; err != nil {
		return nil, err
	}
	return apiKey, nil
}

// UpdateOwned modifies an API key only if it belongs to the given account.
// Returns whether a row was affected.
func (r *APIKeyRepository) UpdateOwned(ctx context.Context, accountID, id string, updates map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.APIKey{}).
		Where("id = ? AND account_id = ?", id, accountID).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// RevokeOwned flips the active flag to false for an account-owned key.
// The row is retained for audit and usage history.
func (r *APIKeyRepository) RevokeOwned(ctx context.Context, accountID, id string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.APIKey{}).
		Where("id = ? AND account_id = ? AND is_active = ?", id, accountID, true).
		Update("is_active", false)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Deactivate flips the active flag to false regardless of ownership.
// Used by verification when it observes an expired key.
func (r *APIKeyRepository) Deactivate(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&models.APIKey{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

// UpdateLastUsed updates the last used timestamp for an API key
func (r *APIKeyRepository) UpdateLastUsed(ctx context.Context, id string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.APIKey{}).
		Where("id = ?", id).
		Update("last_used_at", now).Error
}
