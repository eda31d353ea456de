package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"civicity/couponhub/internal/model"
	"civicity/couponhub/internal/repository"
)

type redemptionFixture struct {
	svc            *redemptionService
	instanceRepo   repository.CouponInstanceRepository
	redemptionRepo repository.RedemptionRepository
	db             *gorm.DB
}

func newRedemptionFixture(t *testing.T) *redemptionFixture {
	db := newTestDB(t)
	instanceRepo := repository.NewPGCouponInstanceRepository(db)
	redemptionRepo := repository.NewPGRedemptionRepository(db)
	svc := NewRedemptionService(instanceRepo, redemptionRepo, zap.NewNop()).(*redemptionService)
	return &redemptionFixture{
		svc:            svc,
		instanceRepo:   instanceRepo,
		redemptionRepo: redemptionRepo,
		db:             db,
	}
}

func (f *redemptionFixture) seedAssignedInstance(t *testing.T, coupon *model.Coupon, code string, userID uuid.UUID) *model.CouponInstance {
	instance := &model.CouponInstance{
		CouponID:         coupon.ID,
		Code:             code,
		Status:           model.InstanceStatusAssigned,
		AssignedToUserID: &userID,
		IssuedBy:         uuid.New(),
	}
	require.NoError(t, f.db.Create(instance).Error)
	return instance
}

func TestRedeem_Success(t *testing.T) {
	f := newRedemptionFixture(t)
	coupon := seedCoupon(t, f.db, "SUMMER", true, nil, nil)
	userID := uuid.New()
	instance := f.seedAssignedInstance(t, coupon, "SUMMER-GOODCODE", userID)
	ctx := context.Background()

	redeemedAt, err := f.svc.Redeem(ctx, coupon.ID, "SUMMER-GOODCODE", userID)
	require.NoError(t, err)
	assert.False(t, redeemedAt.IsZero())

	got, err := f.instanceRepo.GetByCouponAndCode(ctx, coupon.ID, "SUMMER-GOODCODE")
	require.NoError(t, err)
	assert.Equal(t, model.InstanceStatusRedeemed, got.Status)
	require.NotNil(t, got.RedeemedAt)
	require.NotNil(t, got.AssignedToUserID)
	assert.Equal(t, userID, *got.AssignedToUserID)

	count, err := f.redemptionRepo.CountByInstance(ctx, instance.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	var entry model.Redemption
	require.NoError(t, f.db.First(&entry, "coupon_instance_id = ?", instance.ID).Error)
	assert.Equal(t, coupon.ID, entry.CouponID)
	assert.Equal(t, coupon.MerchantID, entry.MerchantID)
	assert.Equal(t, userID, entry.UserID)
}

func TestRedeem_PreconditionOrder(t *testing.T) {
	f := newRedemptionFixture(t)
	ctx := context.Background()

	t.Run("unknown code", func(t *testing.T) {
		coupon := seedCoupon(t, f.db, "CIVI", true, nil, nil)
		_, err := f.svc.Redeem(ctx, coupon.ID, "CIVI-NOPE", uuid.New())
		assert.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("empty code", func(t *testing.T) {
		coupon := seedCoupon(t, f.db, "CIVI", true, nil, nil)
		_, err := f.svc.Redeem(ctx, coupon.ID, "   ", uuid.New())
		assert.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("inactive coupon wins over ownership", func(t *testing.T) {
		coupon := seedCoupon(t, f.db, "CIVI", false, nil, nil)
		userID := uuid.New()
		f.seedAssignedInstance(t, coupon, "CIVI-INACTIVE", userID)

		// Even the owning user gets the inactive error.
		_, err := f.svc.Redeem(ctx, coupon.ID, "CIVI-INACTIVE", userID)
		assert.ErrorIs(t, err, ErrCouponInactive)
	})

	t.Run("not yet started coupon", func(t *testing.T) {
		coupon := seedCoupon(t, f.db, "CIVI", true, timePtr(time.Now().Add(time.Hour)), nil)
		userID := uuid.New()
		f.seedAssignedInstance(t, coupon, "CIVI-FUTURE", userID)

		_, err := f.svc.Redeem(ctx, coupon.ID, "CIVI-FUTURE", userID)
		assert.ErrorIs(t, err, ErrCouponInactive)
	})

	t.Run("expired coupon", func(t *testing.T) {
		coupon := seedCoupon(t, f.db, "CIVI", true, nil, timePtr(time.Now().Add(-time.Minute)))
		userID := uuid.New()
		f.seedAssignedInstance(t, coupon, "CIVI-EXPIRED", userID)

		_, err := f.svc.Redeem(ctx, coupon.ID, "CIVI-EXPIRED", userID)
		assert.ErrorIs(t, err, ErrCouponExpired)
	})
}

func TestRedeem_Ownership(t *testing.T) {
	f := newRedemptionFixture(t)
	coupon := seedCoupon(t, f.db, "CIVI", true, nil, nil)
	owner := uuid.New()
	stranger := uuid.New()
	ctx := context.Background()

	f.seedAssignedInstance(t, coupon, "CIVI-OWNED", owner)

	// A leaked code string is useless to anyone but the assignee.
	_, err := f.svc.Redeem(ctx, coupon.ID, "CIVI-OWNED", stranger)
	assert.ErrorIs(t, err, ErrNotYourCode)

	// Still unredeemed for the owner afterwards.
	redeemedAt, err := f.svc.Redeem(ctx, coupon.ID, "CIVI-OWNED", owner)
	require.NoError(t, err)
	assert.False(t, redeemedAt.IsZero())

	// Ownership failure also applies to already redeemed instances.
	_, err = f.svc.Redeem(ctx, coupon.ID, "CIVI-OWNED", stranger)
	assert.ErrorIs(t, err, ErrNotYourCode)
}

func TestRedeem_UnassignedInstance(t *testing.T) {
	f := newRedemptionFixture(t)
	coupon := seedCoupon(t, f.db, "CIVI", true, nil, nil)
	ctx := context.Background()

	require.NoError(t, f.db.Create(&model.CouponInstance{
		CouponID: coupon.ID,
		Code:     "CIVI-FREE",
		Status:   model.InstanceStatusAvailable,
		IssuedBy: uuid.New(),
	}).Error)

	_, err := f.svc.Redeem(ctx, coupon.ID, "CIVI-FREE", uuid.New())
	assert.ErrorIs(t, err, ErrNotYourCode)
}

func TestRedeem_ExpiryBoundaryIsInclusive(t *testing.T) {
	f := newRedemptionFixture(t)
	boundary := time.Now().Add(time.Hour).Truncate(time.Second)
	coupon := seedCoupon(t, f.db, "CIVI", true, nil, &boundary)
	userID := uuid.New()
	f.seedAssignedInstance(t, coupon, "CIVI-EDGE", userID)

	// Evaluate exactly at the expiry instant.
	f.svc.now = func() time.Time { return boundary }

	redeemedAt, err := f.svc.Redeem(context.Background(), coupon.ID, "CIVI-EDGE", userID)
	require.NoError(t, err)
	assert.True(t, redeemedAt.Equal(boundary))

	// One nanosecond past the boundary is expired.
	f2 := newRedemptionFixture(t)
	coupon2 := seedCoupon(t, f2.db, "CIVI", true, nil, &boundary)
	f2.seedAssignedInstance(t, coupon2, "CIVI-EDGE", userID)
	f2.svc.now = func() time.Time { return boundary.Add(time.Nanosecond) }

	_, err = f2.svc.Redeem(context.Background(), coupon2.ID, "CIVI-EDGE", userID)
	assert.ErrorIs(t, err, ErrCouponExpired)
}

func TestRedeem_DoubleRedemptionIsRejected(t *testing.T) {
	f := newRedemptionFixture(t)
	coupon := seedCoupon(t, f.db, "SUMMER", true, nil, nil)
	userID := uuid.New()
	instance := f.seedAssignedInstance(t, coupon, "SUMMER-ONCE", userID)
	ctx := context.Background()

	_, err := f.svc.Redeem(ctx, coupon.ID, "SUMMER-ONCE", userID)
	require.NoError(t, err)

	_, err = f.svc.Redeem(ctx, coupon.ID, "SUMMER-ONCE", userID)
	assert.ErrorIs(t, err, ErrAlreadyRedeemed)

	count, err := f.redemptionRepo.CountByInstance(ctx, instance.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRedeem_ConcurrentAttemptsExactlyOneWins(t *testing.T) {
	f := newRedemptionFixture(t)
	coupon := seedCoupon(t, f.db, "SUMMER", true, nil, nil)
	userID := uuid.New()
	instance := f.seedAssignedInstance(t, coupon, "SUMMER-RACE", userID)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Redeem(ctx, coupon.ID, "SUMMER-RACE", userID)
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case assert.ErrorIs(t, err, ErrAlreadyRedeemed):
			conflicts++
		}
	}
	assert.Equal(t, 1, successes, "exactly one attempt must win")
	assert.Equal(t, 1, conflicts, "the loser must observe already redeemed")

	count, err := f.redemptionRepo.CountByInstance(ctx, instance.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "exactly one ledger entry")
}

// End-to-end scenario: issue a batch, assign one code, redeem it once.
func TestIssuanceAndRedemption_EndToEnd(t *testing.T) {
	db := newTestDB(t)
	couponRepo := repository.NewPGCouponRepository(db)
	instanceRepo := repository.NewPGCouponInstanceRepository(db)
	redemptionRepo := repository.NewPGRedemptionRepository(db)
	catalog := NewCatalogService(couponRepo, repository.NewMemoryCatalogCache(), time.Minute, zap.NewNop())
	issuance := NewIssuanceService(catalog, instanceRepo, true, 5, zap.NewNop())
	redemption := NewRedemptionService(instanceRepo, redemptionRepo, zap.NewNop())
	ctx := context.Background()

	coupon, err := catalog.CreateCoupon(ctx, CreateCouponInput{
		MerchantID: uuid.New(),
		CodePrefix: "SUMMER",
	})
	require.NoError(t, err)

	created, err := issuance.IssueBatch(ctx, coupon.ID, 3, uuid.New())
	require.NoError(t, err)
	require.Equal(t, 3, created)

	var instances []model.CouponInstance
	require.NoError(t, db.Where("coupon_id = ?", coupon.ID).Find(&instances).Error)
	require.Len(t, instances, 3)
	for _, inst := range instances {
		assert.Regexp(t, `^SUMMER-[ABCDEFGHJKLMNPQRSTUVWXYZ23456789]{8}$`, inst.Code)
	}

	u1 := uuid.New()
	u2 := uuid.New()
	target := instances[0]
	require.NoError(t, issuance.AssignInstance(ctx, coupon.ID, target.ID, u1))

	// Wrong user first: rejected, state untouched.
	_, err = redemption.Redeem(ctx, coupon.ID, target.Code, u2)
	assert.ErrorIs(t, err, ErrNotYourCode)

	redeemedAt, err := redemption.Redeem(ctx, coupon.ID, target.Code, u1)
	require.NoError(t, err)
	assert.False(t, redeemedAt.IsZero())

	_, err = redemption.Redeem(ctx, coupon.ID, target.Code, u1)
	assert.ErrorIs(t, err, ErrAlreadyRedeemed)

	count, err := redemptionRepo.CountByInstance(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
