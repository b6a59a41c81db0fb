package models

import (
	"time"
)

// APIKey represents a hashed API credential and its limits.
// The plaintext credential is never stored; only its SHA-256 hash and a
// truncated display prefix survive creation.
type APIKey struct {
	ID            string     `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Name          string     `json:"name" gorm:"type:varchar(255);not null"`
	AccountID     string     `json:"account_id" gorm:"not null;index"`
	KeyHash       string     `json:"-" gorm:"type:varchar(64);not null;uniqueIndex"`
	DisplayPrefix string     `json:"display_prefix" gorm:"type:varchar(20);not null"`
	IsActive      bool       `json:"is_active" gorm:"default:true;index"`
	LastUsedAt    *time.Time `json:"last_used_at"`
	ExpiresAt     *time.Time `json:"expires_at"`
	RateLimit     int        `json:"rate_limit" gorm:"not null;default:10"`
	MonthlyLimit  Limit      `json:"monthly_limit" gorm:"type:bigint;not null;default:-1"`
}

// TableName specifies the table name for the APIKey model
func (APIKey) TableName() string {
	return "api_keys"
}

// Expired reports whether the key's expiry timestamp has passed
func (k *APIKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && k.ExpiresAt.Before(now)
}
