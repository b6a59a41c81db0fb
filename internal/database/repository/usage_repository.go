package repository

import (
	"context"
	"time"

	"github.com/nodegate/rpc-gateway-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UsageRepository handles database operations for UsageRow entities
type UsageRepository struct {
	db *gorm.DB
}

// NewUsageRepository creates a new UsageRepository instance
func NewUsageRepository(db *gorm.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// IncrementDaily applies one request's accounting to the (account, day) row.
// The increment is an atomic upsert at the storage layer so concurrent
// requests across processes never lose updates.
func (r *UsageRepository) IncrementDaily(ctx context.Context, accountID string, day time.Time, success bool, bytesIn, bytesOut int64) error {
	successDelta := int64(0)
	errorDelta := int64(1)
	if success {
		successDelta = 1
		errorDelta = 0
	}

	row := models.UsageRow{
		AccountID:    accountID,
		Day:          models.StartOfDay(day),
		Requests:     1,
		SuccessCount: successDelta,
		ErrorCount:   errorDelta,
		BytesIn:      bytesIn,
		BytesOut:     bytesOut,
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account_id"}, {Name: "day"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"requests":      gorm.Expr("requests + 1"),
			"success_count": gorm.Expr("success_count + ?", successDelta),
			"error_count":   gorm.Expr("error_count + ?", errorDelta),
			"bytes_in":      gorm.Expr("bytes_in + ?", bytesIn),
			"bytes_out":     gorm.Expr("bytes_out + ?", bytesOut),
			"updated_at":    time.Now(),
		}),
	}).Create(&row).Error
}

// SumRequestsSince sums the request counts for an account from the given
// boundary (inclusive) to now
func (r *UsageRepository) SumRequestsSince(ctx context.Context, accountID string, since time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.UsageRow{}).
		Select("COALESCE(SUM(requests), 0)").
		Where("account_id = ? AND day >= ?", accountID, since).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// ListRange retrieves the usage rows for an account between two days
// (inclusive), oldest first
func (r *UsageRepository) ListRange(ctx context.Context, accountID string, from, to time.Time) ([]models.UsageRow, error) {
	var rows []models.UsageRow
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND day >= ? AND day <= ?", accountID, models.StartOfDay(from), models.StartOfDay(to)).
		Order("day ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
