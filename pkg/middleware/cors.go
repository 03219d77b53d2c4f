package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/exceleasy/pkg/configs"
)

// CORSMiddleware 只放行配置的前端来源；调试模式放行全部.
func CORSMiddleware(cfg configs.ServerConfig) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = append(config.AllowHeaders, "Authorization", "Idempotency-Key", "X-Request-ID")
	config.ExposeHeaders = []string{"Content-Disposition", "ETag", "Idempotency-Replayed"}
	config.AllowCredentials = cfg.CORS.AllowCredentials

	origins := cfg.CORS.AllowOrigins
	if len(origins) == 0 {
		origins = configs.DefaultAllowOrigins
	}

	config.AllowOrigins = origins

	if cfg.CORS.MaxAgeSeconds > 0 {
		config.MaxAge = time.Duration(cfg.CORS.MaxAgeSeconds) * time.Second
	}

	// AllowAllOrigins 与 AllowCredentials 不能同时开启
	if cfg.Debug && !config.AllowCredentials {
		config.AllowAllOrigins = true
		config.AllowOrigins = nil
	}

	return cors.New(config)
}
