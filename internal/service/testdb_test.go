package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"civicity/couponhub/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// One connection so concurrent sessions share the in-memory database
	// and writes serialize.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, model.AutoMigrate(db))
	return db
}

func seedCoupon(t *testing.T, db *gorm.DB, prefix string, active bool, startsAt, expiresAt *time.Time) *model.Coupon {
	coupon := &model.Coupon{
		MerchantID: uuid.New(),
		CodePrefix: prefix,
		Active:     active,
		StartsAt:   startsAt,
		ExpiresAt:  expiresAt,
	}
	require.NoError(t, db.Create(coupon).Error)
	return coupon
}

func timePtr(t time.Time) *time.Time { return &t }
