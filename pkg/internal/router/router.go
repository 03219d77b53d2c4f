// Package router 管理路由配置，把处理器和中间件绑定到 gin 引擎.
package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/exceleasy/pkg/configs"
	"github.com/yeisme/exceleasy/pkg/internal/handle"
	"github.com/yeisme/exceleasy/pkg/internal/store"
	"github.com/yeisme/exceleasy/pkg/middleware"
)

// Options 注册路由所需的依赖.
type Options struct {
	Handler        *handle.Handler
	Auth           configs.AuthConfig
	Users          store.UserStore
	MaxUploadBytes int64
	Server         configs.ServerConfig
}

// Register 绑定全部路由：
//
//	/health/*          无需认证
//	/api/*             需认证
//	/api/admin/*       需管理员
//	/swagger/*any      仅 debug
func Register(r *gin.Engine, opts Options) {
	RegisterHealthCheckRoute(r)
	RegisterSwaggerRoute(r, opts.Server)

	api := r.Group("/api",
		// 下载内容已是 zip 容器，不再压缩
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/download"})),
		middleware.AuthMiddleware(opts.Auth, opts.Users),
		middleware.RequireAuth(),
	)

	RegisterFilesRoutes(api, opts.Handler, opts.MaxUploadBytes)
	RegisterAdminRoutes(api, opts.Handler)
}
