package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InstanceStatus string

const (
	InstanceStatusAvailable InstanceStatus = "available"
	InstanceStatusAssigned  InstanceStatus = "assigned"
	InstanceStatusRedeemed  InstanceStatus = "redeemed"
)

// CouponInstance is one single-use redemption code belonging to exactly one
// coupon. Codes are unique per coupon, not globally.
type CouponInstance struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CouponID         uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_coupon_instances_coupon_code" json:"coupon_id"`
	Code             string         `gorm:"type:varchar(32);not null;uniqueIndex:idx_coupon_instances_coupon_code" json:"code"`
	Status           InstanceStatus `gorm:"type:varchar(16);not null;default:'available';index" json:"status"`
	AssignedToUserID *uuid.UUID     `gorm:"type:uuid" json:"assigned_to_user_id,omitempty"`
	RedeemedAt       *time.Time     `json:"redeemed_at,omitempty"`
	IssuedBy         uuid.UUID      `gorm:"type:uuid;not null" json:"issued_by"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`

	Coupon Coupon `gorm:"foreignKey:CouponID" json:"-"`
}

func (CouponInstance) TableName() string { return "coupon_instances" }

func (i *CouponInstance) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
