package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultPort         = 8080      // 监听端口
	DefaultHost         = "0.0.0.0" // 监听地址
	DefaultReloadConfig = false     // 是否启用配置热重载
	DefaultDebug        = false     // 是否启用调试模式
	DefaultTimeout      = 30        // 超时时间，单位秒
)

// DefaultAllowOrigins 默认允许跨域的前端来源.
var DefaultAllowOrigins = []string{
	"http://localhost:3000",
	"https://excel-analysis-mauve.vercel.app",
}

type (
	// ServerConfig 服务器配置.
	ServerConfig struct {
		Port         int        `mapstructure:"port"          rule:"min=1,max=65535"`
		Host         string     `mapstructure:"host"          rule:"ip"`
		ReloadConfig bool       `mapstructure:"reload_config"`
		Debug        bool       `mapstructure:"debug"`
		Timeout      int        `mapstructure:"timeout"       rule:"min=1,max=300"`
		CORS         CORSConfig `mapstructure:"cors"`
	}

	// CORSConfig 跨域配置，前端独立部署时需要.
	CORSConfig struct {
		AllowOrigins     []string `mapstructure:"allow_origins"     rule:"dive,url"`
		AllowCredentials bool     `mapstructure:"allow_credentials"`
		MaxAgeSeconds    int      `mapstructure:"max_age_seconds"   rule:"min=0"`
	}
)

// GetTimeoutDuration 返回超时时间作为time.Duration.
func (s *ServerConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

// setDefaults 设置服务器配置的默认值.
func (s *ServerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.reload_config", DefaultReloadConfig)
	v.SetDefault("server.debug", DefaultDebug)
	v.SetDefault("server.timeout", DefaultTimeout)
	v.SetDefault("server.cors.allow_origins", DefaultAllowOrigins)
	v.SetDefault("server.cors.allow_credentials", true)
	v.SetDefault("server.cors.max_age_seconds", 43200)
}
