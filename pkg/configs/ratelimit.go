package configs

import "github.com/spf13/viper"

const (
	// 默认速率限制配置.
	DefaultRateLimitEnabled = false
	DefaultRateLimitRPS     = 20.0
	DefaultRateLimitBurst   = 40
	DefaultRateLimitKey     = "ip"
	DefaultRateLimitMaxKeys = 10000
)

// RateLimitConfig 速率限制配置.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"      rule:"gt=0"`  // 每秒允许的请求数
	Burst   int     `mapstructure:"burst"    rule:"min=1"` // 突发容量
	// Key 选择限流维度：global（全局）、ip（按客户端IP）、user（按认证用户）、header:Header-Name（按请求头）
	Key string `mapstructure:"key"`
	// MaxKeys LRU 中保留的限流器数量上限
	MaxKeys int `mapstructure:"max_keys" rule:"min=1"`
}

// setDefaults 设置限流默认值.
func (c *RateLimitConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("rate_limit.enabled", DefaultRateLimitEnabled)
	v.SetDefault("rate_limit.rps", DefaultRateLimitRPS)
	v.SetDefault("rate_limit.burst", DefaultRateLimitBurst)
	v.SetDefault("rate_limit.key", DefaultRateLimitKey)
	v.SetDefault("rate_limit.max_keys", DefaultRateLimitMaxKeys)
}
