package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the error envelope returned by every failing endpoint. Error is
// a stable machine-readable code; Message is short human-readable text. No
// internal identifiers or stack traces ever appear here.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Stable error codes.
const (
	CodeInvalidRequest  = "invalid_request"
	CodeUnauthenticated = "unauthenticated"
	CodeForbidden       = "forbidden"
	CodeNotFound        = "not_found"
	CodeInternal        = "internal_error"

	CodeInvalidCode     = "invalid_code"
	CodeNotYourCode     = "not_your_code"
	CodeAlreadyRedeemed = "already_redeemed"
	CodeCouponInactive  = "coupon_inactive"
	CodeCouponExpired   = "coupon_expired"
)

func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

func Fail(c *gin.Context, httpStatus int, code string, message string) {
	c.JSON(httpStatus, ErrorBody{Error: code, Message: message})
}

func BadRequest(c *gin.Context, code string, message string) {
	Fail(c, http.StatusBadRequest, code, message)
}

func Unauthorized(c *gin.Context, message string) {
	Fail(c, http.StatusUnauthorized, CodeUnauthenticated, message)
}

func Forbidden(c *gin.Context, message string) {
	Fail(c, http.StatusForbidden, CodeForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	Fail(c, http.StatusNotFound, CodeNotFound, message)
}

func InternalError(c *gin.Context, message string) {
	Fail(c, http.StatusInternalServerError, CodeInternal, message)
}
