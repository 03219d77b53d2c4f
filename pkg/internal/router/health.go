package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/exceleasy/pkg/internal/handle"
)

// RegisterHealthCheckRoute /health 为存活探针，/health/<component> 检查单个依赖.
func RegisterHealthCheckRoute(r gin.IRouter) {
	g := r.Group("/health")
	g.GET("", handle.Liveness)

	for _, c := range handle.HealthComponents {
		g.GET("/"+string(c), handle.Health(c))
	}
}
