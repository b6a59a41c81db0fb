package api_key

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/nodegate/rpc-gateway-backend/internal/database/repository"
	"github.com/nodegate/rpc-gateway-backend/internal/models"
)

// KeyPrefix is the fixed literal prefix of every issued credential
const KeyPrefix = "ngk"

// keyPattern matches a well-formed credential: prefix, underscore, 32 random
// bytes hex-encoded. Anything else is rejected before hashing or lookup.
var keyPattern = regexp.MustCompile(`^` + KeyPrefix + `_[0-9a-f]{64}$`)

// ErrNameRequired is returned by Create when the key name is empty
var ErrNameRequired = errors.New("key name is required")

// Defaults are the limits applied to a new key when the create request
// leaves them unset
type Defaults struct {
	RateLimit    int
	MonthlyLimit models.Limit
}

// Service handles API key lifecycle operations
type Service struct {
	apiKeyRepo *repository.APIKeyRepository
	defaults   Defaults
}

// NewService creates a new API key service
func NewService(db *gorm.DB, defaults Defaults) *Service {
	return &Service{
		apiKeyRepo: repository.NewAPIKeyRepository(db),
		defaults:   defaults,
	}
}

// GeneratedKey is the transient output of key generation. The plaintext
// exists only here and in the caller's possession; storage sees the hash.
type GeneratedKey struct {
	Plaintext     string
	Hash          string
	DisplayPrefix string
}

// CreateKeyRequest carries the caller-supplied options for a new key
type CreateKeyRequest struct {
	Name          string        `json:"name" binding:"required"`
	ExpiresInDays *int          `json:"expires_in_days"`
	RateLimit     *int          `json:"rate_limit"`
	MonthlyLimit  *models.Limit `json:"monthly_limit"`
}

// UpdateKeyRequest carries a partial update; only supplied fields change
type UpdateKeyRequest struct {
	Name         *string       `json:"name"`
	RateLimit    *int          `json:"rate_limit"`
	MonthlyLimit *models.Limit `json:"monthly_limit"`
}

// CreatedKey is a key record augmented with its one-time plaintext credential
type CreatedKey struct {
	models.APIKey
	Plaintext string `json:"key"`
}

// Verification is the result of a successful credential check
type Verification struct {
	AccountID    string
	KeyID        string
	RateLimit    int
	MonthlyLimit models.Limit
}

// GenerateKey produces a new credential, its storage hash and a truncated
// display prefix for UI listings
func GenerateKey() (*GeneratedKey, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate key material: %w", err)
	}
	plaintext := KeyPrefix + "_" + hex.EncodeToString(buf)
	return &GeneratedKey{
		Plaintext:     plaintext,
		Hash:          HashKey(plaintext),
		DisplayPrefix: plaintext[:12] + "...",
	}, nil
}

// HashKey computes the hex-encoded SHA-256 storage hash of a credential
func HashKey(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// IsValidFormat reports whether a candidate credential is well-formed.
// Used as a fast rejection so malformed input never reaches the store.
func IsValidFormat(candidate string) bool {
	return keyPattern.MatchString(candidate)
}

// Create generates and persists a new API key for an account. The returned
// plaintext credential is shown exactly once.
func (s *Service) Create(ctx context.Context, accountID string, req CreateKeyRequest) (*CreatedKey, error) {
	if req.Name == "" {
		return nil, ErrNameRequired
	}

	generated, err := GenerateKey()
	if err != nil {
		return nil, err
	}

	var expiresAt *time.Time
	if req.ExpiresInDays != nil {
		t := time.Now().Add(time.Duration(*req.ExpiresInDays) * 24 * time.Hour)
		expiresAt = &t
	}

	apiKey := &models.APIKey{
		ID:            uuid.NewString(),
		Name:          req.Name,
		AccountID:     accountID,
		KeyHash:       generated.Hash,
		DisplayPrefix: generated.DisplayPrefix,
		IsActive:      true,
		ExpiresAt:     expiresAt,
		RateLimit:     s.defaults.RateLimit,
		MonthlyLimit:  s.defaults.MonthlyLimit,
	}
	if req.RateLimit != nil {
		apiKey.RateLimit = *req.RateLimit
	}
	if req.MonthlyLimit != nil {
		apiKey.MonthlyLimit = *req.MonthlyLimit
	}

	// Creation must be visible to the caller or fail loudly
	created, err := s.apiKeyRepo.Create(ctx, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create API key: %w", err)
	}

	return &CreatedKey{
		APIKey:    *created,
		Plaintext: generated.Plaintext,
	}, nil
}

// Verify checks a candidate credential against the store. It returns
// (nil, nil) for any credential that should be treated as unauthenticated:
// malformed, unknown, revoked or expired. A non-nil error means the store
// was unreachable and the caller should surface a transient failure, not a
// denial.
func (s *Service) Verify(ctx context.Context, candidate string) (*Verification, error) {
	if !IsValidFormat(candidate) {
		return nil, nil
	}

	apiKey, err := s.apiKeyRepo.GetByHash(ctx, HashKey(candidate))
	if err != nil {
		return nil, fmt.Errorf("failed to look up API key: %w", err)
	}
	if apiKey == nil || !apiKey.IsActive {
		return nil, nil
	}

	// Lazy expiry: deactivate on first observation instead of sweeping
	if apiKey.Expired(time.Now()) {
		if err := s.apiKeyRepo.Deactivate(ctx, apiKey.ID); err != nil {
			logrus.WithError(err).WithField("key_id", apiKey.ID).
				Warn("Failed to deactivate expired API key")
		}
		return nil, nil
	}

	// Best effort; dropping this update never blocks the request
	if err := s.apiKeyRepo.UpdateLastUsed(ctx, apiKey.ID); err != nil {
		logrus.WithError(err).WithField("key_id", apiKey.ID).
			Warn("Failed to update API key last used timestamp")
	}

	return &Verification{
		AccountID:    apiKey.AccountID,
		KeyID:        apiKey.ID,
		RateLimit:    apiKey.RateLimit,
		MonthlyLimit: apiKey.MonthlyLimit,
	}, nil
}

// List returns all key records for an account, newest first. The hash never
// leaves the store's projection; listings expose the display prefix only.
func (s *Service) List(ctx context.Context, accountID string) ([]models.APIKey, error) {
	keys, err := s.apiKeyRepo.ListByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list API keys: %w", err)
	}
	return keys, nil
}

// Revoke deactivates an account-owned key. Returns whether a row was
// affected; revoking a foreign or already-revoked key reports false.
func (s *Service) Revoke(ctx context.Context, accountID, keyID string) (bool, error) {
	revoked, err := s.apiKeyRepo.RevokeOwned(ctx, accountID, keyID)
	if err != nil {
		return false, fmt.Errorf("failed to revoke API key: %w", err)
	}
	return revoked, nil
}

// Update applies a partial update to an account-owned key
func (s *Service) Update(ctx context.Context, accountID, keyID string, req UpdateKeyRequest) (bool, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		if *req.Name == "" {
			return false, ErrNameRequired
		}
		updates["name"] = *req.Name
	}
	if req.RateLimit != nil {
		updates["rate_limit"] = *req.RateLimit
	}
	if req.MonthlyLimit != nil {
		updates["monthly_limit"] = *req.MonthlyLimit
	}
	if len(updates) == 0 {
		return false, nil
	}

	updated, err := s.apiKeyRepo.UpdateOwned(ctx, accountID, keyID, updates)
	if err != nil {
		return false, fmt.Errorf("failed to update API key: %w", err)
	}
	return updated, nil
}
