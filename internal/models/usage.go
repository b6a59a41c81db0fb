package models

import (
	"time"
)

// UsageRow accumulates request accounting for one account on one calendar
// day (UTC). Exactly one row exists per (account_id, day); increments go
// through an atomic upsert, never a read-modify-write.
type UsageRow struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	AccountID    string    `json:"account_id" gorm:"not null;uniqueIndex:idx_usage_account_day"`
	Day          time.Time `json:"day" gorm:"not null;uniqueIndex:idx_usage_account_day"`
	Requests     int64     `json:"requests" gorm:"not null;default:0"`
	SuccessCount int64     `json:"success_count" gorm:"not null;default:0"`
	ErrorCount   int64     `json:"error_count" gorm:"not null;default:0"`
	BytesIn      int64     `json:"bytes_in" gorm:"not null;default:0"`
	BytesOut     int64     `json:"bytes_out" gorm:"not null;default:0"`
}

// TableName specifies the table name for the UsageRow model
func (UsageRow) TableName() string {
	return "usage_rows"
}

// StartOfDay truncates t to midnight UTC
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfMonth truncates t to the first of the month, midnight UTC
func StartOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
