package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"civicity/couponhub/internal/model"
)

type pgCouponInstanceRepository struct {
	db *gorm.DB
}

func NewPGCouponInstanceRepository(db *gorm.DB) CouponInstanceRepository {
	return &pgCouponInstanceRepository{db: db}
}

func (r *pgCouponInstanceRepository) CreateBatch(ctx context.Context, instances []model.CouponInstance) (int64, error) {
	if len(instances) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "coupon_id"}, {Name: "code"}},
			DoNothing: true,
		}).
		Create(&instances)
	return res.RowsAffected, res.Error
}

func (r *pgCouponInstanceRepository) GetByCouponAndCode(ctx context.Context, couponID uuid.UUID, code string) (*model.CouponInstance, error) {
	var instance model.CouponInstance
	err := r.db.WithContext(ctx).
		Joins("Coupon").
		Where("coupon_instances.coupon_id = ? AND coupon_instances.code = ?", couponID, code).
		First(&instance).Error
	if err != nil {
		return nil, err
	}
	return &instance, nil
}

func (r *pgCouponInstanceRepository) Assign(ctx context.Context, couponID, instanceID, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.CouponInstance{}).
		Where("id = ? AND coupon_id = ? AND status = ?", instanceID, couponID, model.InstanceStatusAvailable).
		Updates(map[string]interface{}{
			"status":              model.InstanceStatusAssigned,
			"assigned_to_user_id": userID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *pgCouponInstanceRepository) CountByCoupon(ctx context.Context, couponID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.CouponInstance{}).
		Where("coupon_id = ?", couponID).
		Count(&n).Error
	return n, err
}
