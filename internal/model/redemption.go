package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Redemption is an append-only ledger entry. Exactly one exists per redeemed
// instance; the unique index on coupon_instance_id backs that invariant.
type Redemption struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CouponID         uuid.UUID `gorm:"type:uuid;not null;index" json:"coupon_id"`
	CouponInstanceID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"coupon_instance_id"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	MerchantID       uuid.UUID `gorm:"type:uuid;not null;index" json:"merchant_id"`
	RedeemedAt       time.Time `gorm:"not null" json:"redeemed_at"`
	CreatedAt        time.Time `json:"created_at"`
}

func (Redemption) TableName() string { return "redemptions" }

func (r *Redemption) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
