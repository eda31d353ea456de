package service

import "errors"

var (
	ErrCouponNotFound      = errors.New("coupon not found")
	ErrCouponInactive      = errors.New("coupon inactive")
	ErrCouponExpired       = errors.New("coupon expired")
	ErrInvalidCode         = errors.New("invalid code")
	ErrNotYourCode         = errors.New("code is not assigned to this user")
	ErrAlreadyRedeemed     = errors.New("code already redeemed")
	ErrInstanceNotFound    = errors.New("coupon instance not found")
	ErrInstanceUnavailable = errors.New("coupon instance not available for assignment")
	ErrInvalidCodePrefix   = errors.New("invalid code prefix")
	ErrCodeSpaceExhausted  = errors.New("code space exhausted after bounded retries")
)
