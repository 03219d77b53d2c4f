package configs

import (
	"time"

	"github.com/spf13/viper"
)

// AuthMode 身份来源.
type AuthMode string

const (
	// AuthModeHeader 信任反向代理（如 oauth2-proxy）注入的请求头.
	AuthModeHeader AuthMode = "header"
	// AuthModeJWT 校验 Authorization: Bearer 令牌.
	AuthModeJWT AuthMode = "jwt"
)

// AuthConfig 控制身份认证与角色映射.
type AuthConfig struct {
	Enabled       bool          `mapstructure:"enabled"` // 开启认证校验
	Mode          AuthMode      `mapstructure:"mode"            rule:"oneof=header jwt"`
	SkipPaths     []string      `mapstructure:"skip_paths"`      // 跳过认证的路径前缀（如 /metrics、/health）
	DevAllowQuery bool          `mapstructure:"dev_allow_query"` // 开发模式允许用 ?user= 便于本地调试
	DefaultUser   string        `mapstructure:"default_user"`    // 认证关闭时使用的身份
	AdminUsers    []string      `mapstructure:"admin_users"`     // 直接提升为 admin 的用户
	JWTSecret     string        `mapstructure:"jwt_secret"      rule:"required_if=Mode jwt"`
	JWTIssuer     string        `mapstructure:"jwt_issuer"`
	JWTLeeway     time.Duration `mapstructure:"jwt_leeway"`
}

// setDefaults 设置认证默认值.
func (c *AuthConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.mode", AuthModeHeader)
	v.SetDefault("auth.dev_allow_query", false)
	v.SetDefault("auth.default_user", "local@exceleasy.dev")
	v.SetDefault("auth.admin_users", []string{})
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_issuer", "")
	v.SetDefault("auth.jwt_leeway", "30s")
	v.SetDefault("auth.skip_paths", []string{
		"/metrics",
		"/debug/pprof",
		"/health",
		"/swagger",
	})
}
