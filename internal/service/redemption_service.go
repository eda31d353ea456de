package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"civicity/couponhub/internal/model"
	"civicity/couponhub/internal/repository"
)

// RedemptionService drives the assigned -> redeemed transition. It is the
// only mutator of redeemed state and the only writer of the ledger.
type RedemptionService interface {
	// Redeem validates a code presented by a user and redeems it exactly
	// once. Returns the redemption timestamp.
	Redeem(ctx context.Context, couponID uuid.UUID, code string, userID uuid.UUID) (time.Time, error)
}

type redemptionService struct {
	instanceRepo   repository.CouponInstanceRepository
	redemptionRepo repository.RedemptionRepository
	logger         *zap.Logger

	now func() time.Time
}

var _ RedemptionService = (*redemptionService)(nil)

func NewRedemptionService(
	instanceRepo repository.CouponInstanceRepository,
	redemptionRepo repository.RedemptionRepository,
	logger *zap.Logger,
) RedemptionService {
	return &redemptionService{
		instanceRepo:   instanceRepo,
		redemptionRepo: redemptionRepo,
		logger:         logger,
		now:            time.Now,
	}
}

// Redeem applies the precondition chain in order, short-circuiting on the
// first failure, then performs the transition as a conditional write so that
// of two concurrent attempts exactly one wins and the other observes
// ErrAlreadyRedeemed.
func (s *redemptionService) Redeem(ctx context.Context, couponID uuid.UUID, code string, userID uuid.UUID) (time.Time, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return time.Time{}, ErrInvalidCode
	}

	instance, err := s.instanceRepo.GetByCouponAndCode(ctx, couponID, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, ErrInvalidCode
		}
		return time.Time{}, fmt.Errorf("load instance: %w", err)
	}
	coupon := instance.Coupon

	now := s.now()
	if !coupon.Active {
		return time.Time{}, ErrCouponInactive
	}
	if coupon.StartsAt != nil && now.Before(*coupon.StartsAt) {
		return time.Time{}, ErrCouponInactive
	}
	if instance.AssignedToUserID == nil || *instance.AssignedToUserID != userID {
		return time.Time{}, ErrNotYourCode
	}
	if instance.Status == model.InstanceStatusRedeemed {
		return time.Time{}, ErrAlreadyRedeemed
	}
	// Expiry bound is inclusive: a coupon expiring exactly now still redeems.
	if coupon.ExpiresAt != nil && now.After(*coupon.ExpiresAt) {
		return time.Time{}, ErrCouponExpired
	}

	redeemedAt := now.UTC()
	entry := &model.Redemption{
		CouponID:         coupon.ID,
		CouponInstanceID: instance.ID,
		UserID:           userID,
		MerchantID:       coupon.MerchantID,
		RedeemedAt:       redeemedAt,
	}
	won, err := s.redemptionRepo.Redeem(ctx, instance.ID, redeemedAt, entry)
	if err != nil {
		// The transaction rolled back, so the store is consistent, but a
		// failure here may hide a transition/ledger mismatch in the store
		// itself. Logged distinctly for out-of-band reconciliation.
		s.logger.Error("redemption ledger write failed",
			zap.String("coupon_id", coupon.ID.String()),
			zap.String("instance_id", instance.ID.String()),
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return time.Time{}, fmt.Errorf("redeem instance: %w", err)
	}
	if !won {
		return time.Time{}, ErrAlreadyRedeemed
	}

	s.logger.Info("coupon redeemed",
		zap.String("coupon_id", coupon.ID.String()),
		zap.String("instance_id", instance.ID.String()),
		zap.String("user_id", userID.String()))
	return redeemedAt, nil
}
