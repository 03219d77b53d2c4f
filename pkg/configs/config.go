// Package configs 管理 exceleasy 的全部配置：服务、日志、存储后端、事件、认证与导入流水线.
// 支持 YAML、JSON、TOML、dotenv 格式，环境变量前缀为 EXCELEASY，可选热重载.
//
// Example:
//
//	if err := configs.InitConfig("./"); err != nil {
//		log.Fatal(err)
//	}
//
//	cfg := configs.GetConfig()
//	fmt.Println(cfg.Server.Port, cfg.Ingest.MaxUploadBytes)
//
// Example accessing DB config:
//
//	dsn := configs.GetConfig().DB.GetDSN()
//	fmt.Println("DSN:", dsn)
package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/yeisme/exceleasy/pkg/rule"
)

// AppVersion 当前构建版本，可通过 -ldflags "-X" 覆盖.
var AppVersion = "0.1.0"

// EnvPrefix 环境变量前缀.
const EnvPrefix = "EXCELEASY"

type (
	// AppConfig 全局应用程序配置.
	AppConfig struct {
		Server         ServerConfig         `mapstructure:"server"`          // ServerConfig 服务端口、调试、CORS
		Log            LogConfig            `mapstructure:"log"`             // LogConfig 日志相关配置
		DB             DBConfig             `mapstructure:"db"`              // DBConfig 关系型数据库
		Store          StoreConfig          `mapstructure:"store"`           // StoreConfig 记录存储后端选择
		Mongo          MongoConfig          `mapstructure:"mongo"`           // MongoConfig 文档数据库
		S3             S3Config             `mapstructure:"s3"`              // S3Config 原始文件保留
		KV             KVConfig             `mapstructure:"kv"`              // KVConfig 幂等键存储
		MQ             MQConfig             `mapstructure:"mq"`              // MQConfig 消息队列
		Events         EventsConfig         `mapstructure:"events"`          // EventsConfig 事件开关
		Metrics        MetricsConfig        `mapstructure:"metrics"`         // MetricsConfig 指标
		Tracing        TracingConfig        `mapstructure:"tracing"`         // TracingConfig 链路追踪
		RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`      // RateLimitConfig 限流
		CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"` // CircuitBreakerConfig 熔断
		Auth           AuthConfig           `mapstructure:"auth"`            // AuthConfig 认证
		Ingest         IngestConfig         `mapstructure:"ingest"`          // IngestConfig 上传与解析
		Jobs           JobsConfig           `mapstructure:"jobs"`            // JobsConfig 定时任务
	}
)

var (
	// globalConfig 全局配置实例.
	globalConfig AppConfig
	// appViper 全局 Viper 实例.
	appViper *viper.Viper
	// reloadHooks 热重载回调.
	reloadHooks []func(*AppConfig)
)

// InitConfig 加载应用程序配置，支持多种格式(yaml、json、toml、dotenv)并启用热重载.
// path 为空或目录内没有配置文件时只使用默认值与环境变量.
func InitConfig(path string) error {
	appViper = viper.New()
	// 设置默认值
	setAllDefaults(appViper)

	appViper.SetEnvPrefix(EnvPrefix)
	appViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	appViper.AutomaticEnv()

	hasFile := false

	if path != "" {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			// 是文件，使用SetConfigFile，Viper会自动检测类型
			appViper.SetConfigFile(path)

			hasFile = true
		} else {
			exts := []string{"yaml", "yml", "json", "toml", "env", "dotenv"}

			for _, dir := range []string{path, filepath.Join(path, "configs")} {
				for _, ext := range exts {
					cfg := filepath.Join(dir, "config."+ext)
					if _, err := os.Stat(cfg); err == nil {
						appViper.SetConfigFile(cfg)

						hasFile = true

						break
					}
				}

				if hasFile {
					break
				}
			}
		}
	}

	if hasFile {
		if err := appViper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg AppConfig
	if err := appViper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := rule.ValidateStruct(&cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	globalConfig = cfg

	if hasFile {
		reloadConfigs(appViper, globalConfig.Server.ReloadConfig)
	}

	return nil
}

// setAllDefaults 设置所有配置的默认值.
func setAllDefaults(v *viper.Viper) {
	var c AppConfig

	c.Server.setDefaults(v)
	c.Log.setDefaults(v)
	c.DB.setDefaults(v)
	c.Store.setDefaults(v)
	c.Mongo.setDefaults(v)
	c.S3.setDefaults(v)
	c.KV.setDefaults(v)
	c.MQ.setDefaults(v)
	c.Events.setDefaults(v)
	c.Metrics.setDefaults(v)
	c.Tracing.setDefaults(v)
	c.RateLimit.setDefaults(v)
	c.CircuitBreaker.setDefaults(v)
	c.Auth.setDefaults(v)
	c.Ingest.setDefaults(v)
	c.Jobs.setDefaults(v)
}

func reloadConfigs(v *viper.Viper, isHotReload bool) {
	if !isHotReload {
		return
	}
	// 启用配置热重载，校验失败时保留旧配置
	v.OnConfigChange(func(e fsnotify.Event) {
		fmt.Println("Config file changed:", e.Name)

		var next AppConfig
		if err := v.Unmarshal(&next); err != nil {
			fmt.Printf("Error reloading config: %v\n", err)

			return
		}

		if err := rule.ValidateStruct(&next); err != nil {
			fmt.Printf("Rejected reloaded config: %v\n", err)

			return
		}

		globalConfig = next

		for _, fn := range reloadHooks {
			fn(&globalConfig)
		}
	})
	v.WatchConfig()
}

// OnReload 注册热重载成功后的回调，需在 InitConfig 之后、服务启动前调用.
func OnReload(fn func(*AppConfig)) {
	reloadHooks = append(reloadHooks, fn)
}

// GetConfig 返回全局配置实例.
func GetConfig() *AppConfig {
	return &globalConfig
}

// GetViper 返回加载配置所用的 Viper 实例.
func GetViper() *viper.Viper {
	return appViper
}

// redactedMark 替换敏感字段的占位符.
const redactedMark = "******"

// Redacted 返回隐去口令与密钥后的配置副本，用于打印与诊断.
func (c AppConfig) Redacted() AppConfig {
	mask := func(s *string) {
		if *s != "" {
			*s = redactedMark
		}
	}

	mask(&c.DB.Password)
	mask(&c.DB.DSN)
	mask(&c.Mongo.URI)
	mask(&c.S3.SecretAccessKey)
	mask(&c.KV.Redis.Password)
	mask(&c.KV.NATS.Password)
	mask(&c.MQ.Common.Password)
	mask(&c.MQ.NATS.JWT)
	mask(&c.MQ.NATS.NKey)
	mask(&c.MQ.Redis.Password)
	mask(&c.Auth.JWTSecret)

	return c
}
