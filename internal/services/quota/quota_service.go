package quota

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/nodegate/rpc-gateway-backend/internal/database/repository"
	"github.com/nodegate/rpc-gateway-backend/internal/models"
	"github.com/nodegate/rpc-gateway-backend/internal/services"
)

// EventPublisher receives one usage event per recorded sample. Publishing is
// best effort; a nil publisher disables it.
type EventPublisher interface {
	PublishUsageEvent(ctx context.Context, event services.UsageEvent) error
}

// Service enforces daily and monthly request ceilings against persisted
// usage totals and records per-request accounting
type Service struct {
	usageRepo    *repository.UsageRepository
	publisher    EventPublisher
	storeTimeout time.Duration
}

// NewService creates a new quota service. publisher may be nil.
func NewService(db *gorm.DB, publisher EventPublisher, storeTimeout time.Duration) *Service {
	return &Service{
		usageRepo:    repository.NewUsageRepository(db),
		publisher:    publisher,
		storeTimeout: storeTimeout,
	}
}

// UsageCheck is the outcome of a quota admission decision
type UsageCheck struct {
	Allowed      bool
	DailyUsage   int64
	MonthlyUsage int64
	// ExceededCeiling names the ceiling that denied the request:
	// "daily" or "monthly". Empty when allowed.
	ExceededCeiling string
	// FailedOpen is set when the store was unreachable and the request was
	// admitted anyway. Availability of the proxied service takes priority
	// over strict quota enforcement.
	FailedOpen bool
}

// UsageSample is one completed upstream attempt's accounting
type UsageSample struct {
	AccountID string
	KeyID     string
	Method    string
	Success   bool
	LatencyMs int64
	BytesIn   int64
	BytesOut  int64
}

// CheckUsage decides admission against the daily and monthly ceilings.
// Unlimited ceilings always pass. A store failure fails OPEN and is logged.
func (s *Service) CheckUsage(ctx context.Context, accountID, keyID string, daily, monthly models.Limit) UsageCheck {
	if daily.IsUnlimited() && monthly.IsUnlimited() {
		return UsageCheck{Allowed: true}
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	now := time.Now()

	dailyUsage, err := s.usageRepo.SumRequestsSince(ctx, accountID, models.StartOfDay(now))
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"account_id": accountID,
			"key_id":     keyID,
		}).Error("Quota store unreachable, failing open")
		return UsageCheck{Allowed: true, FailedOpen: true}
	}

	monthlyUsage, err := s.usageRepo.SumRequestsSince(ctx, accountID, models.StartOfMonth(now))
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"account_id": accountID,
			"key_id":     keyID,
		}).Error("Quota store unreachable, failing open")
		return UsageCheck{Allowed: true, FailedOpen: true, DailyUsage: dailyUsage}
	}

	check := UsageCheck{
		Allowed:      true,
		DailyUsage:   dailyUsage,
		MonthlyUsage: monthlyUsage,
	}
	if daily.Exceeded(dailyUsage) {
		check.Allowed = false
		check.ExceededCeiling = "daily"
	} else if monthly.Exceeded(monthlyUsage) {
		check.Allowed = false
		check.ExceededCeiling = "monthly"
	}
	return check
}

// RecordUsage applies one sample to the (account, day) usage row and
// publishes a usage event. It never fails the request path: persistence or
// publish errors are logged and swallowed, because accounting must not turn
// a completed upstream call into a caller-visible failure.
func (s *Service) RecordUsage(ctx context.Context, sample UsageSample) {
	// Detach from the caller's cancellation: a client that disconnects after
	// the upstream attempt completed still gets billed for it.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.storeTimeout)
	defer cancel()

	err := s.usageRepo.IncrementDaily(recordCtx, sample.AccountID, time.Now(), sample.Success, sample.BytesIn, sample.BytesOut)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"account_id": sample.AccountID,
			"key_id":     sample.KeyID,
		}).Error("Failed to record usage")
	}

	if s.publisher == nil {
		return
	}
	event := services.UsageEvent{
		AccountID: sample.AccountID,
		KeyID:     sample.KeyID,
		Method:    sample.Method,
		Success:   sample.Success,
		LatencyMs: sample.LatencyMs,
		BytesIn:   sample.BytesIn,
		BytesOut:  sample.BytesOut,
		Timestamp: time.Now(),
	}
	if err := s.publisher.PublishUsageEvent(recordCtx, event); err != nil {
		logrus.WithError(err).WithField("account_id", sample.AccountID).
			Warn("Failed to publish usage event")
	}
}
