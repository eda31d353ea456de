package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"civicity/couponhub/internal/model"
)

type pgRedemptionRepository struct {
	db *gorm.DB
}

func NewPGRedemptionRepository(db *gorm.DB) RedemptionRepository {
	return &pgRedemptionRepository{db: db}
}

func (r *pgRedemptionRepository) Redeem(ctx context.Context, instanceID uuid.UUID, redeemedAt time.Time, entry *model.Redemption) (bool, error) {
	won := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.CouponInstance{}).
			Where("id = ? AND status = ?", instanceID, model.InstanceStatusAssigned).
			Updates(map[string]interface{}{
				"status":      model.InstanceStatusRedeemed,
				"redeemed_at": redeemedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Race lost. Nothing changed; commit the empty transaction.
			return nil
		}
		if err := tx.Create(entry).Error; err != nil {
			// Rolls back the status transition, keeping transition and
			// ledger consistent.
			return err
		}
		won = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return won, nil
}

func (r *pgRedemptionRepository) CountByInstance(ctx context.Context, instanceID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Redemption{}).
		Where("coupon_instance_id = ?", instanceID).
		Count(&n).Error
	return n, err
}
