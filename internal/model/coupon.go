package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Coupon struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	MerchantID uuid.UUID      `gorm:"type:uuid;not null;index" json:"merchant_id"`
	CodePrefix string         `gorm:"type:varchar(16);not null" json:"code_prefix"`
	Active     bool           `gorm:"not null;default:true" json:"active"`
	StartsAt   *time.Time     `json:"starts_at,omitempty"`
	ExpiresAt  *time.Time     `json:"expires_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Coupon) TableName() string { return "coupons" }

func (c *Coupon) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// RedeemableAt reports whether the coupon is active and t lies within its
// validity window. Both window ends are inclusive; unset ends are open.
func (c *Coupon) RedeemableAt(t time.Time) bool {
	if !c.Active {
		return false
	}
	if c.StartsAt != nil && t.Before(*c.StartsAt) {
		return false
	}
	if c.ExpiresAt != nil && t.After(*c.ExpiresAt) {
		return false
	}
	return true
}
