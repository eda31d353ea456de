package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"civicity/couponhub/internal/repository"
)

func TestCatalogService_CreateCoupon(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(repository.NewPGCouponRepository(db), repository.NewMemoryCatalogCache(), time.Minute, zap.NewNop())
	ctx := context.Background()

	t.Run("defaults prefix", func(t *testing.T) {
		coupon, err := svc.CreateCoupon(ctx, CreateCouponInput{MerchantID: uuid.New()})
		require.NoError(t, err)
		assert.Equal(t, "CIVI", coupon.CodePrefix)
		assert.True(t, coupon.Active)
		assert.NotEqual(t, uuid.Nil, coupon.ID)
	})

	t.Run("rejects bad prefix", func(t *testing.T) {
		_, err := svc.CreateCoupon(ctx, CreateCouponInput{MerchantID: uuid.New(), CodePrefix: "summer"})
		assert.ErrorIs(t, err, ErrInvalidCodePrefix)

		_, err = svc.CreateCoupon(ctx, CreateCouponInput{MerchantID: uuid.New(), CodePrefix: "X"})
		assert.ErrorIs(t, err, ErrInvalidCodePrefix)
	})
}

func TestCatalogService_GetCoupon_ReadThroughCache(t *testing.T) {
	db := newTestDB(t)
	cache := repository.NewMemoryCatalogCache()
	svc := NewCatalogService(repository.NewPGCouponRepository(db), cache, time.Minute, zap.NewNop())
	ctx := context.Background()
	coupon := seedCoupon(t, db, "PARK", true, nil, nil)

	// First read populates the cache.
	got, err := svc.GetCoupon(ctx, coupon.ID)
	require.NoError(t, err)
	assert.Equal(t, coupon.ID, got.ID)

	raw, err := cache.Get(ctx, "coupon:"+coupon.ID.String())
	require.NoError(t, err)
	assert.NotNil(t, raw)

	// Second read is served from the cache even if the row disappears.
	require.NoError(t, db.Unscoped().Delete(coupon).Error)
	got, err = svc.GetCoupon(ctx, coupon.ID)
	require.NoError(t, err)
	assert.Equal(t, coupon.ID, got.ID)
}

func TestCatalogService_GetCoupon_NotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewCatalogService(repository.NewPGCouponRepository(db), repository.NewMemoryCatalogCache(), time.Minute, zap.NewNop())

	_, err := svc.GetCoupon(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrCouponNotFound)
}

func TestCatalogService_DeactivateCoupon_InvalidatesCache(t *testing.T) {
	db := newTestDB(t)
	cache := repository.NewMemoryCatalogCache()
	svc := NewCatalogService(repository.NewPGCouponRepository(db), cache, time.Minute, zap.NewNop())
	ctx := context.Background()
	coupon := seedCoupon(t, db, "PARK", true, nil, nil)

	_, err := svc.GetCoupon(ctx, coupon.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeactivateCoupon(ctx, coupon.ID))

	raw, err := cache.Get(ctx, "coupon:"+coupon.ID.String())
	require.NoError(t, err)
	assert.Nil(t, raw)

	got, err := svc.GetCoupon(ctx, coupon.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	err = svc.DeactivateCoupon(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrCouponNotFound)
}

func TestStaticRoleLookup(t *testing.T) {
	admin := uuid.New()
	moderator := uuid.New()
	lookup := NewStaticRoleLookup(
		[]string{admin.String(), "not-a-uuid"},
		[]string{moderator.String()},
	)
	ctx := context.Background()

	role, err := lookup.RoleOf(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	role, err = lookup.RoleOf(ctx, moderator)
	require.NoError(t, err)
	assert.Equal(t, RoleModerator, role)

	role, err = lookup.RoleOf(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, RoleUser, role)
}
