package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"civicity/couponhub/internal/service"
	"civicity/couponhub/pkg/response"
)

// RedeemHandler serves code redemption for any authenticated end user.
type RedeemHandler struct {
	redemptionService service.RedemptionService
}

func NewRedeemHandler(redemptionService service.RedemptionService) *RedeemHandler {
	return &RedeemHandler{redemptionService: redemptionService}
}

type RedeemRequest struct {
	Code string `json:"code" binding:"required"`
}

type RedeemResponse struct {
	RedeemedAt time.Time `json:"redeemed_at"`
}

func (h *RedeemHandler) Redeem(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	couponID, err := uuid.Parse(c.Param("coupon_id"))
	if err != nil {
		response.BadRequest(c, response.CodeInvalidCode, "invalid coupon id")
		return
	}

	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidRequest, "invalid request: "+err.Error())
		return
	}

	redeemedAt, err := h.redemptionService.Redeem(c.Request.Context(), couponID, req.Code, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCode):
			response.BadRequest(c, response.CodeInvalidCode, "invalid code")
		case errors.Is(err, service.ErrCouponInactive):
			response.BadRequest(c, response.CodeCouponInactive, "coupon is not active")
		case errors.Is(err, service.ErrNotYourCode):
			response.BadRequest(c, response.CodeNotYourCode, "code is not assigned to you")
		case errors.Is(err, service.ErrAlreadyRedeemed):
			response.BadRequest(c, response.CodeAlreadyRedeemed, "code already redeemed")
		case errors.Is(err, service.ErrCouponExpired):
			response.BadRequest(c, response.CodeCouponExpired, "coupon expired")
		default:
			response.InternalError(c, "redemption failed")
		}
		return
	}

	response.OK(c, RedeemResponse{RedeemedAt: redeemedAt})
}
