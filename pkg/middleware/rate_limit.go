package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/yeisme/exceleasy/pkg/configs"
)

// RateLimitMiddleware 返回一个基于配置的限流中间件.
// 多键模式下限流器保存在有界 LRU 中，最久未访问的键先被淘汰.
func RateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	keyMode := strings.ToLower(strings.TrimSpace(cfg.Key))
	if keyMode == "global" || keyMode == "" {
		limiter := rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)

		return func(c *gin.Context) {
			if !limiter.Allow() {
				abortTooMany(c)
				return
			}

			c.Next()
		}
	}

	size := cfg.MaxKeys
	if size <= 0 {
		size = configs.DefaultRateLimitMaxKeys
	}

	limiters, _ := lru.New[string, *rate.Limiter](size)

	var mu sync.Mutex

	getLimiter := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		if l, ok := limiters.Get(key); ok {
			return l
		}

		l := rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)
		limiters.Add(key, l)

		return l
	}

	return func(c *gin.Context) {
		key := limiterKey(c, keyMode)
		if !getLimiter(key).Allow() {
			abortTooMany(c)
			return
		}

		c.Next()
	}
}

// limiterKey 按 ip / user / header:Name 取限流维度，取不到时回退到客户端 IP.
func limiterKey(c *gin.Context, mode string) string {
	var key string

	switch {
	case strings.HasPrefix(mode, "header:"):
		key = c.GetHeader(strings.TrimPrefix(mode, "header:"))
	case mode == "user":
		if p, ok := GetPrincipal(c); ok {
			key = "u:" + p.UserID
		}
	}

	if key == "" {
		key = clientIP(c)
	}

	if key == "" {
		key = "unknown"
	}

	return key
}

func abortTooMany(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded, please try again later", "code": "rate_limited"})
}

func clientIP(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
		if err == nil {
			ip = host
		} else {
			ip = c.Request.RemoteAddr
		}
	}

	return ip
}
