package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/exceleasy/pkg/internal/handle"
	"github.com/yeisme/exceleasy/pkg/internal/types"
	"github.com/yeisme/exceleasy/pkg/middleware"
)

// RegisterFilesRoutes 注册普通用户的文件路由.
func RegisterFilesRoutes(g *gin.RouterGroup, h *handle.Handler, maxUploadBytes int64) {
	filesRoutes := g.Group("/files")
	{
		// 上传，请求体按文件上限截断
		filesRoutes.POST("/upload", middleware.BodyLimitMiddleware(maxUploadBytes), h.Upload)
		// 预览（含行数据）
		filesRoutes.GET("/:id", h.Preview)
		// 删除
		filesRoutes.DELETE("/:id", h.Delete)
	}

	g.GET("/history", h.History)
	g.GET("/download/:id", h.Download)
	g.GET("/logs", h.UserLogs)
}

// RegisterAdminRoutes 注册管理员路由.
func RegisterAdminRoutes(g *gin.RouterGroup, h *handle.Handler) {
	adminRoutes := g.Group("/admin", middleware.RequireMinRole(types.RoleAdmin))
	{
		adminRoutes.GET("/files", h.AdminFiles)
		adminRoutes.GET("/files/:id", h.AdminFile)
		adminRoutes.DELETE("/files/:id", h.AdminDelete)
		adminRoutes.GET("/users", h.AdminUsers)
		adminRoutes.GET("/logs", h.AdminLogs)

		// 定时任务
		adminRoutes.GET("/jobs", handle.SchedulerJobs)
		adminRoutes.POST("/jobs/:name/run", handle.SchedulerRunJob)
	}
}
