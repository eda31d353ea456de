package handler

import (
	"errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"civicity/couponhub/internal/service"
	"civicity/couponhub/pkg/response"
)

// CouponHandler serves the admin-gated coupon operations: catalog lifecycle,
// batch issuance and instance assignment.
type CouponHandler struct {
	catalogService  service.CatalogService
	issuanceService service.IssuanceService
}

func NewCouponHandler(catalogService service.CatalogService, issuanceService service.IssuanceService) *CouponHandler {
	return &CouponHandler{
		catalogService:  catalogService,
		issuanceService: issuanceService,
	}
}

type CreateCouponRequest struct {
	MerchantID string     `json:"merchant_id" binding:"required,uuid"`
	CodePrefix string     `json:"code_prefix"`
	StartsAt   *time.Time `json:"starts_at,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

func (h *CouponHandler) Create(c *gin.Context) {
	var req CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidRequest, "invalid request: "+err.Error())
		return
	}

	coupon, err := h.catalogService.CreateCoupon(c.Request.Context(), service.CreateCouponInput{
		MerchantID: uuid.MustParse(req.MerchantID),
		CodePrefix: req.CodePrefix,
		StartsAt:   req.StartsAt,
		ExpiresAt:  req.ExpiresAt,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCodePrefix) {
			response.BadRequest(c, response.CodeInvalidRequest, err.Error())
			return
		}
		response.InternalError(c, "failed to create coupon")
		return
	}

	response.OK(c, coupon)
}

func (h *CouponHandler) List(c *gin.Context) {
	coupons, err := h.catalogService.ListCoupons(c.Request.Context())
	if err != nil {
		response.InternalError(c, "failed to list coupons")
		return
	}
	response.OK(c, coupons)
}

func (h *CouponHandler) Deactivate(c *gin.Context) {
	couponID, err := uuid.Parse(c.Param("coupon_id"))
	if err != nil {
		response.BadRequest(c, response.CodeInvalidRequest, "invalid coupon id")
		return
	}

	if err := h.catalogService.DeactivateCoupon(c.Request.Context(), couponID); err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			response.NotFound(c, "coupon not found")
			return
		}
		response.InternalError(c, "failed to deactivate coupon")
		return
	}

	response.OK(c, gin.H{"deactivated": true})
}

type IssueBatchRequest struct {
	Count int `json:"count"`
}

type IssueBatchResponse struct {
	Generated int `json:"generated"`
}

// IssueBatch creates a batch of fresh redemption codes for a coupon. The
// request body is optional; an absent or out-of-range count is clamped.
func (h *CouponHandler) IssueBatch(c *gin.Context) {
	actorID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	couponID, err := uuid.Parse(c.Param("coupon_id"))
	if err != nil {
		response.BadRequest(c, response.CodeInvalidRequest, "invalid coupon id")
		return
	}

	var req IssueBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, response.CodeInvalidRequest, "invalid request: "+err.Error())
		return
	}

	generated, err := h.issuanceService.IssueBatch(c.Request.Context(), couponID, req.Count, actorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCouponNotFound):
			response.NotFound(c, "coupon not found")
		case errors.Is(err, service.ErrCouponInactive):
			response.BadRequest(c, response.CodeCouponInactive, "coupon is not active")
		default:
			response.InternalError(c, "failed to issue batch")
		}
		return
	}

	response.OK(c, IssueBatchResponse{Generated: generated})
}

type AssignInstanceRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

func (h *CouponHandler) Assign(c *gin.Context) {
	couponID, err := uuid.Parse(c.Param("coupon_id"))
	if err != nil {
		response.BadRequest(c, response.CodeInvalidRequest, "invalid coupon id")
		return
	}
	instanceID, err := uuid.Parse(c.Param("instance_id"))
	if err != nil {
		response.BadRequest(c, response.CodeInvalidRequest, "invalid instance id")
		return
	}

	var req AssignInstanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidRequest, "invalid request: "+err.Error())
		return
	}

	err = h.issuanceService.AssignInstance(c.Request.Context(), couponID, instanceID, uuid.MustParse(req.UserID))
	if err != nil {
		if errors.Is(err, service.ErrInstanceUnavailable) {
			response.BadRequest(c, response.CodeInvalidRequest, "instance not available for assignment")
			return
		}
		response.InternalError(c, "failed to assign instance")
		return
	}

	response.OK(c, gin.H{"assigned": true})
}
