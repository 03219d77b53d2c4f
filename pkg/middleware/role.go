package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/exceleasy/pkg/errs"
	"github.com/yeisme/exceleasy/pkg/internal/types"
)

// RequireAuth 要求已认证，否则 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetPrincipal(c); !ok {
			abortWithError(c, errs.Unauthorized("unauthorized"))
			return
		}

		c.Next()
	}
}

// RequireMinRole 要求最小角色，未认证 401，角色不足 403.
func RequireMinRole(minRole types.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			abortWithError(c, errs.Unauthorized("unauthorized"))
			return
		}

		if p.Role < minRole {
			abortWithError(c, errs.Forbidden("forbidden: insufficient role"))
			return
		}

		c.Next()
	}
}
