package quota

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nodegate/rpc-gateway-backend/internal/database"
	"github.com/nodegate/rpc-gateway-backend/internal/models"
	"github.com/nodegate/rpc-gateway-backend/internal/services"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func record(s *Service, accountID string, success bool) {
	s.RecordUsage(context.Background(), UsageSample{
		AccountID: accountID,
		KeyID:     "key-1",
		Method:    "getBalance",
		Success:   success,
		LatencyMs: 12,
		BytesIn:   100,
		BytesOut:  250,
	})
}

func TestRecordUsageAccumulates(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, nil, 5*time.Second)

	// k successes and m failures on the same day
	for i := 0; i < 3; i++ {
		record(service, "acct-1", true)
	}
	for i := 0; i < 2; i++ {
		record(service, "acct-1", false)
	}

	var row models.UsageRow
	require.NoError(t, db.Where("account_id = ?", "acct-1").First(&row).Error)
	assert.EqualValues(t, 5, row.Requests)
	assert.EqualValues(t, 3, row.SuccessCount)
	assert.EqualValues(t, 2, row.ErrorCount)
	assert.EqualValues(t, 500, row.BytesIn)
	assert.EqualValues(t, 1250, row.BytesOut)

	// Exactly one row per account per day
	var count int64
	db.Model(&models.UsageRow{}).Where("account_id = ?", "acct-1").Count(&count)
	assert.EqualValues(t, 1, count)

	check := service.CheckUsage(context.Background(), "acct-1", "key-1", models.Limit(100), models.Limit(1000))
	assert.True(t, check.Allowed)
	assert.EqualValues(t, 5, check.DailyUsage)
	assert.EqualValues(t, 5, check.MonthlyUsage)
}

func TestCheckUsageDailyCeiling(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, nil, 5*time.Second)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		record(service, "acct-1", true)
	}

	check := service.CheckUsage(ctx, "acct-1", "key-1", models.Limit(5), models.Unlimited)
	assert.True(t, check.Allowed)

	record(service, "acct-1", true)

	// Crossing the ceiling flips the next check without a restart
	check = service.CheckUsage(ctx, "acct-1", "key-1", models.Limit(5), models.Unlimited)
	assert.False(t, check.Allowed)
	assert.Equal(t, "daily", check.ExceededCeiling)
	assert.EqualValues(t, 5, check.DailyUsage)
}

func TestCheckUsageMonthlyCeiling(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, nil, 5*time.Second)
	ctx := context.Background()

	// Usage from earlier this month counts toward the monthly ceiling only
	earlier := models.StartOfMonth(time.Now())
	require.NoError(t, db.Create(&models.UsageRow{
		AccountID: "acct-1",
		Day:       earlier,
		Requests:  8,
	}).Error)

	record(service, "acct-1", true)
	record(service, "acct-1", true)

	check := service.CheckUsage(ctx, "acct-1", "key-1", models.Limit(5), models.Limit(10))
	if models.StartOfDay(time.Now()).Equal(earlier) {
		// First of the month: the seeded row shares today's day bucket
		assert.False(t, check.Allowed)
	} else {
		assert.False(t, check.Allowed)
		assert.Equal(t, "monthly", check.ExceededCeiling)
		assert.EqualValues(t, 2, check.DailyUsage)
		assert.EqualValues(t, 10, check.MonthlyUsage)
	}
}

func TestCheckUsageUnlimitedSkipsStore(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, nil, 5*time.Second)

	// Unlimited ceilings pass without touching the store
	require.NoError(t, db.Migrator().DropTable(&models.UsageRow{}))
	check := service.CheckUsage(context.Background(), "acct-1", "key-1", models.Unlimited, models.Unlimited)
	assert.True(t, check.Allowed)
	assert.False(t, check.FailedOpen)
}

func TestCheckUsageFailsOpenOnStoreFailure(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, nil, 5*time.Second)

	require.NoError(t, db.Migrator().DropTable(&models.UsageRow{}))

	check := service.CheckUsage(context.Background(), "acct-1", "key-1", models.Limit(5), models.Limit(10))
	assert.True(t, check.Allowed)
	assert.True(t, check.FailedOpen)
}

func TestRecordUsageSwallowsStoreFailure(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, nil, 5*time.Second)

	require.NoError(t, db.Migrator().DropTable(&models.UsageRow{}))

	// Must not panic or surface an error to the request path
	record(service, "acct-1", true)
}

type capturingPublisher struct {
	events []services.UsageEvent
}

func (p *capturingPublisher) PublishUsageEvent(_ context.Context, event services.UsageEvent) error {
	p.events = append(p.events, event)
	return nil
}

func TestRecordUsagePublishesEvent(t *testing.T) {
	db := setupTestDB(t)
	publisher := &capturingPublisher{}
	service := NewService(db, publisher, 5*time.Second)

	record(service, "acct-1", true)

	require.Len(t, publisher.events, 1)
	event := publisher.events[0]
	assert.Equal(t, "acct-1", event.AccountID)
	assert.Equal(t, "key-1", event.KeyID)
	assert.Equal(t, "getBalance", event.Method)
	assert.True(t, event.Success)
	assert.EqualValues(t, 100, event.BytesIn)
	assert.EqualValues(t, 250, event.BytesOut)
}

func TestRecordUsageSurvivesCallerCancellation(t *testing.T) {
	db := setupTestDB(t)
	service := NewService(db, nil, 5*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	service.RecordUsage(ctx, UsageSample{
		AccountID: "acct-1",
		KeyID:     "key-1",
		Success:   true,
	})

	var count int64
	db.Model(&models.UsageRow{}).Where("account_id = ?", "acct-1").Count(&count)
	assert.EqualValues(t, 1, count)
}
