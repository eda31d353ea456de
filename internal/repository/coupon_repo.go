package repository

import (
	"context"

	"github.com/google/uuid"

	"civicity/couponhub/internal/model"
)

type CouponRepository interface {
	Create(ctx context.Context, coupon *model.Coupon) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error)
	List(ctx context.Context) ([]model.Coupon, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}
