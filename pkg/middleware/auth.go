// Package middleware 提供认证、限流、熔断、日志与指标等 gin 中间件.
package middleware

import (
	"errors"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yeisme/exceleasy/pkg/configs"
	ctxPkg "github.com/yeisme/exceleasy/pkg/context"
	"github.com/yeisme/exceleasy/pkg/errs"
	"github.com/yeisme/exceleasy/pkg/internal/store"
	"github.com/yeisme/exceleasy/pkg/internal/types"
	"github.com/yeisme/exceleasy/pkg/log"
	"github.com/yeisme/exceleasy/pkg/rule"
)

const principalGinKey = "principal"

// Claims Bearer 令牌的声明：sub 为用户 ID.
type Claims struct {
	Role     string `json:"role,omitempty"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// AuthMiddleware 解析请求者身份并写入 context，同时登记到用户目录.
//   - header 模式信任 oauth2-proxy 注入的 X-Auth-Request-Email / X-Forwarded-Email，角色来自 X-Role
//   - jwt 模式校验 HS256 的 Authorization: Bearer 令牌
//   - skip_paths 前缀下的路径不做认证；enabled=false 时所有请求使用 default_user.
func AuthMiddleware(conf configs.AuthConfig, users store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isSkippedPath(c.Request.URL.Path, conf.SkipPaths) {
			c.Next()
			return
		}

		var (
			p   types.Principal
			err error
		)

		switch {
		case !conf.Enabled:
			p = types.Principal{UserID: conf.DefaultUser, Role: types.RoleUser}
		case conf.Mode == configs.AuthModeJWT:
			p, err = principalFromJWT(c, conf)
		default:
			p, err = principalFromHeaders(c, conf)
		}

		if err == nil {
			err = rule.ValidateVar(p.UserID, "required,max=255,printascii")
			if err != nil {
				err = errs.Unauthorized("invalid principal id")
			}
		}

		if err != nil {
			abortWithError(c, err)
			return
		}

		if slices.Contains(conf.AdminUsers, p.UserID) {
			p.Role = types.RoleAdmin
		}

		if users != nil {
			if terr := users.Touch(c.Request.Context(), p); terr != nil {
				log.Ctx(c.Request.Context()).Warn().Err(terr).Str("user", p.UserID).Msg("touch user")
			}
		}

		c.Set(principalGinKey, p)
		c.Request = c.Request.WithContext(ctxPkg.WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

func principalFromHeaders(c *gin.Context, conf configs.AuthConfig) (types.Principal, error) {
	email := strings.TrimSpace(c.GetHeader("X-Auth-Request-Email"))
	if email == "" {
		email = strings.TrimSpace(c.GetHeader("X-Forwarded-Email"))
	}

	if email == "" && conf.DevAllowQuery {
		email = strings.TrimSpace(c.Query("user"))
	}

	if email == "" {
		return types.Principal{}, errs.Unauthorized("unauthorized")
	}

	username := strings.TrimSpace(c.GetHeader("X-Auth-Request-User"))
	if username == "" {
		username = strings.TrimSpace(c.GetHeader("X-Forwarded-User"))
	}

	return types.Principal{
		UserID:   email,
		Username: username,
		Role:     types.ParseRole(c.GetHeader("X-Role")),
	}, nil
}

func principalFromJWT(c *gin.Context, conf configs.AuthConfig) (types.Principal, error) {
	raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return types.Principal{}, errs.Unauthorized("missing bearer token")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(conf.JWTLeeway),
		jwt.WithExpirationRequired(),
	}
	if conf.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(conf.JWTIssuer))
	}

	var claims Claims

	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), &claims, func(*jwt.Token) (any, error) {
		return []byte(conf.JWTSecret), nil
	}, opts...)
	if err != nil {
		msg := "invalid token"
		if errors.Is(err, jwt.ErrTokenExpired) {
			msg = "token expired"
		}

		return types.Principal{}, errs.Unauthorized("%s", msg)
	}

	return types.Principal{
		UserID:   claims.Subject,
		Username: claims.Username,
		Role:     types.ParseRole(claims.Role),
	}, nil
}

// GetPrincipal 当前请求者.
func GetPrincipal(c *gin.Context) (types.Principal, bool) {
	if v, ok := c.Get(principalGinKey); ok {
		if p, ok2 := v.(types.Principal); ok2 {
			return p, true
		}
	}

	return ctxPkg.GetPrincipal(c.Request.Context())
}

func isSkippedPath(path string, skips []string) bool {
	if path == "" || len(skips) == 0 {
		return false
	}

	for _, p := range skips {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}

// abortWithError 以统一的错误格式结束请求.
func abortWithError(c *gin.Context, err error) {
	status, body := errs.Response(err)
	c.AbortWithStatusJSON(status, body)
}
