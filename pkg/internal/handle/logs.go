package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/exceleasy/pkg/internal/types"
)

// AdminLogs 全部活动日志，最新的在前.
//
//	@Summary		活动日志
//	@Tags			管理
//	@Produce		json
//	@Param			limit	query		int	false	"条数，默认 20，最多 200"
//	@Success		200		{object}	types.LogsResponse
//	@Failure		403		{object}	errs.Body
//	@Router			/api/admin/logs [get]
func (h *Handler) AdminLogs(c *gin.Context) {
	h.logs(c, true)
}

// UserLogs 当前用户自己的活动记录.
//
//	@Summary		我的活动
//	@Tags			文件
//	@Produce		json
//	@Param			limit	query		int	false	"条数，默认 20，最多 200"
//	@Success		200		{object}	types.LogsResponse
//	@Failure		401		{object}	errs.Body
//	@Router			/api/logs [get]
func (h *Handler) UserLogs(c *gin.Context) {
	h.logs(c, false)
}

func (h *Handler) logs(c *gin.Context, admin bool) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var q types.LogQuery
	if err := bindQuery(c, &q); err != nil {
		fail(c, err)
		return
	}

	var (
		entries []types.ActivityLogEntry
		err     error
	)

	if admin {
		entries, err = h.files.AdminLogs(c.Request.Context(), p, q)
	} else {
		entries, err = h.files.UserLogs(c.Request.Context(), p, q)
	}

	if err != nil {
		fail(c, err)
		return
	}

	if entries == nil {
		entries = []types.ActivityLogEntry{}
	}

	c.JSON(http.StatusOK, types.LogsResponse{Logs: entries})
}
