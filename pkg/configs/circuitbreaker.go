package configs

import (
	"time"

	"github.com/spf13/viper"
)

// CircuitBreakerConfig 记录存储持续不可用时对 /api 请求快速失败.
// 只有 5xx（store_error、internal_error）计入失败，4xx 属于调用方问题.
type CircuitBreakerConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	FailureRate float64       `mapstructure:"failure_rate"  rule:"gt=0,lte=1"`
	MinRequests uint32        `mapstructure:"min_requests"  rule:"min=1"`
	Interval    time.Duration `mapstructure:"interval"`      // 关闭状态下计数清零的周期
	OpenFor     time.Duration `mapstructure:"open_for"`      // 打开后多久进入半开
	HalfOpenMax uint32        `mapstructure:"half_open_max"` // 半开时放行的探测请求数
}

// setDefaults 设置熔断器默认值.
func (c *CircuitBreakerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("circuit_breaker.enabled", false)
	v.SetDefault("circuit_breaker.failure_rate", 0.5)
	v.SetDefault("circuit_breaker.min_requests", 20)
	v.SetDefault("circuit_breaker.interval", "60s")
	v.SetDefault("circuit_breaker.open_for", "30s")
	v.SetDefault("circuit_breaker.half_open_max", 5)
}
