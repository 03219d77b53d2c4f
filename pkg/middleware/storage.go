package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/exceleasy/pkg/context"
	"github.com/yeisme/exceleasy/pkg/internal/storage"
)

// StorageMiddleware 把存储管理器注入 request context，健康检查等处理器从中取用.
func StorageMiddleware(manager *storage.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.WithStorageManager(c.Request.Context(), manager)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
