package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"civicity/couponhub/internal/service"
	jwtpkg "civicity/couponhub/pkg/jwt"
	"civicity/couponhub/pkg/response"
)

// RequireRole resolves the authenticated user's role and admits the request
// only if it is one of the given roles. Must run after JWTAuth.
func RequireRole(lookup service.RoleLookup, roles ...service.Role) gin.HandlerFunc {
	allowed := make(map[service.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		claimsVal, exists := c.Get(ContextKeyUserClaims)
		if !exists {
			response.Unauthorized(c, "missing authentication")
			c.Abort()
			return
		}
		claims, ok := claimsVal.(*jwtpkg.Claims)
		if !ok {
			response.Unauthorized(c, "invalid claims")
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			response.Unauthorized(c, "invalid user id")
			c.Abort()
			return
		}

		role, err := lookup.RoleOf(c.Request.Context(), userID)
		if err != nil {
			response.InternalError(c, "role lookup failed")
			c.Abort()
			return
		}
		if _, ok := allowed[role]; !ok {
			response.Forbidden(c, "insufficient role")
			c.Abort()
			return
		}

		c.Next()
	}
}
