package repository

import (
	"context"

	"github.com/google/uuid"

	"civicity/couponhub/internal/model"
)

type CouponInstanceRepository interface {
	// CreateBatch inserts instances, silently skipping rows whose
	// (coupon_id, code) pair already exists. Returns the number of rows
	// actually inserted.
	CreateBatch(ctx context.Context, instances []model.CouponInstance) (int64, error)

	// GetByCouponAndCode loads the unique instance for (couponID, code) with
	// its owning coupon joined in.
	GetByCouponAndCode(ctx context.Context, couponID uuid.UUID, code string) (*model.CouponInstance, error)

	// Assign conditionally transitions an available instance to assigned.
	// Returns false when no instance of the coupon was in the available state
	// under that ID.
	Assign(ctx context.Context, couponID, instanceID, userID uuid.UUID) (bool, error)

	CountByCoupon(ctx context.Context, couponID uuid.UUID) (int64, error)
}
