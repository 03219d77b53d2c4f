package handle

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/exceleasy/pkg/context"
	"github.com/yeisme/exceleasy/pkg/internal/storage"
)

const healthTimeout = 2 * time.Second

// HealthComponents 可检查的组件.
var HealthComponents = []storage.Component{
	storage.ComponentDB,
	storage.ComponentMongo,
	storage.ComponentStore,
	storage.ComponentS3,
	storage.ComponentKV,
	storage.ComponentMQ,
}

// Health 返回单个组件的健康检查处理器；未启用的组件视为不可用.
//
//	@Summary		组件健康检查
//	@Tags			健康检查
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Failure		503	{object}	map[string]string
//	@Router			/health/db [get]
//	@Router			/health/mongo [get]
//	@Router			/health/store [get]
//	@Router			/health/s3 [get]
//	@Router			/health/mq [get]
//	@Router			/health/kv [get]
func Health(component storage.Component) gin.HandlerFunc {
	return func(c *gin.Context) {
		mgr := ctxPkg.GetManager(c.Request.Context())
		if mgr == nil {
			unhealthy(c, component, "storage manager not initialized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		if err := mgr.Health(ctx, component); err != nil {
			msg := err.Error()
			if errors.Is(err, storage.ErrNotConfigured) {
				msg = string(component) + " not configured"
			}

			unhealthy(c, component, msg)

			return
		}

		c.JSON(http.StatusOK, gin.H{"component": component, "status": "ok"})
	}
}

func unhealthy(c *gin.Context, component storage.Component, msg string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"component": component, "status": "unhealthy", "error": msg})
}

// Liveness 进程存活探针，不访问任何依赖.
//
//	@Summary	存活探针
//	@Tags		健康检查
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/health [get]
func Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
