package handle

import (
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/exceleasy/pkg/log"
)

// Download 下载文件：保留了原始文件时原样返回，否则返回由行数据生成的 .xlsx.
//
//	@Summary		下载文件
//	@Tags			文件
//	@Produce		application/octet-stream
//	@Param			id				path		string	true	"文件 ID"
//	@Param			If-None-Match	header		string	false	"ETag"
//	@Success		200				{file}		binary
//	@Success		304				{string}	string	"未修改"
//	@Failure		404				{object}	errs.Body
//	@Router			/api/download/{id} [get]
func (h *Handler) Download(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	dl, err := h.files.Download(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		fail(c, err)
		return
	}
	defer dl.Body.Close()

	c.Header("ETag", dl.ETag)
	c.Header("Cache-Control", "private, no-cache")

	if etagMatches(c.GetHeader("If-None-Match"), dl.ETag) {
		c.Status(http.StatusNotModified)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": dl.FileName}))
	c.Header("Content-Type", dl.ContentType)

	if dl.Size > 0 {
		c.Header("Content-Length", strconv.FormatInt(dl.Size, 10))
	}

	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, dl.Body); err != nil {
		l := log.Ctx(c.Request.Context())
		l.Warn().Err(err).Str("file", dl.FileName).Msg("download interrupted")
	}
}

// etagMatches 弱比较 If-None-Match.
func etagMatches(header, etag string) bool {
	if header == "" || etag == "" {
		return false
	}

	want := strings.TrimPrefix(etag, "W/")

	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == want {
			return true
		}
	}

	return false
}
