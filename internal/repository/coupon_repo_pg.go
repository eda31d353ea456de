package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"civicity/couponhub/internal/model"
)

type pgCouponRepository struct {
	db *gorm.DB
}

func NewPGCouponRepository(db *gorm.DB) CouponRepository {
	return &pgCouponRepository{db: db}
}

func (r *pgCouponRepository) Create(ctx context.Context, coupon *model.Coupon) error {
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *pgCouponRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	var coupon model.Coupon
	if err := r.db.WithContext(ctx).First(&coupon, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *pgCouponRepository) List(ctx context.Context) ([]model.Coupon, error) {
	var coupons []model.Coupon
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&coupons).Error; err != nil {
		return nil, err
	}
	return coupons, nil
}

func (r *pgCouponRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&model.Coupon{}).
		Where("id = ?", id).
		Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
