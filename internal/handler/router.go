package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"civicity/couponhub/internal/config"
	"civicity/couponhub/internal/handler/middleware"
	"civicity/couponhub/internal/service"
	jwtpkg "civicity/couponhub/pkg/jwt"
)

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	jwtManager *jwtpkg.Manager,
	roleLookup service.RoleLookup,
	couponHandler *CouponHandler,
	redeemHandler *RedeemHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// All coupon routes require an authenticated caller.
	api := r.Group("/api/v1")
	api.Use(middleware.JWTAuth(jwtManager))
	{
		// Redemption: any authenticated end user.
		api.POST("/coupons/:coupon_id/redeem", redeemHandler.Redeem)
	}

	// Admin operations: catalog lifecycle, batch issuance, assignment.
	admin := api.Group("/coupons")
	admin.Use(middleware.RequireRole(roleLookup, service.RoleAdmin, service.RoleModerator))
	{
		admin.POST("", couponHandler.Create)
		admin.GET("", couponHandler.List)
		admin.POST("/:coupon_id/deactivate", couponHandler.Deactivate)
		admin.POST("/:coupon_id/instances/batch", couponHandler.IssueBatch)
		admin.POST("/:coupon_id/instances/:instance_id/assign", couponHandler.Assign)
	}

	return r
}
