// Package handle 提供请求处理器的实现，把 HTTP 请求转换为 service 调用.
package handle

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/exceleasy/pkg/errs"
	"github.com/yeisme/exceleasy/pkg/internal/service"
	"github.com/yeisme/exceleasy/pkg/internal/types"
	"github.com/yeisme/exceleasy/pkg/log"
	"github.com/yeisme/exceleasy/pkg/middleware"
	"github.com/yeisme/exceleasy/pkg/rule"
)

// Handler 文件与管理接口的处理器.
type Handler struct {
	files *service.FileService
}

// New 创建处理器.
func New(files *service.FileService) *Handler {
	return &Handler{files: files}
}

// principal 取出当前请求者，缺失时直接响应 401.
func principal(c *gin.Context) (types.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		fail(c, errs.Unauthorized("authentication required"))
		return types.Principal{}, false
	}

	return p, true
}

// fail 以统一的错误格式结束请求.
func fail(c *gin.Context, err error) {
	status, body := errs.Response(err)
	if status >= 500 {
		l := log.Ctx(c.Request.Context())
		l.Error().Err(err).Str("route", c.FullPath()).Msg("request failed")
	}

	c.AbortWithStatusJSON(status, body)
}

// bindQuery 绑定并校验查询参数.
func bindQuery(c *gin.Context, dst any) error {
	if err := c.ShouldBindQuery(dst); err != nil {
		return validationError(err)
	}

	if err := rule.ValidateStruct(dst); err != nil {
		return validationError(err)
	}

	return nil
}

func validationError(err error) error {
	if ve := rule.Errors(err); len(ve) > 0 {
		return errs.Validation("%s", ve.String())
	}

	return errs.Validation("%s", err.Error())
}
