package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/exceleasy/pkg/errs"
	"github.com/yeisme/exceleasy/pkg/internal/types"
	"github.com/yeisme/exceleasy/pkg/middleware"
	"github.com/yeisme/exceleasy/pkg/rule"
)

const (
	formFileField     = "file"
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotency-Replayed"
)

// Upload 上传并导入一个表格文件.
//
//	@Summary		上传表格文件
//	@Description	上传 .xls/.xlsx 文件，解析第一个工作表并保存；携带 Idempotency-Key 时重复提交返回已有记录
//	@Tags			文件
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file			formData	file				true	"表格文件"
//	@Param			Idempotency-Key	header		string				false	"幂等键"
//	@Success		201				{object}	types.FileRecord	"导入成功"
//	@Success		200				{object}	types.FileRecord	"幂等重放"
//	@Failure		400				{object}	errs.Body			"校验或解析失败"
//	@Failure		401				{object}	errs.Body			"未认证"
//	@Router			/api/files/upload [post]
func (h *Handler) Upload(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	if middleware.BodyTooLarge(c, nil) {
		fail(c, h.files.RejectOversize(ctx, p, "", c.Request.ContentLength))
		return
	}

	fh, err := c.FormFile(formFileField)
	if err != nil {
		if middleware.BodyTooLarge(c, err) {
			fail(c, h.files.RejectOversize(ctx, p, "", c.Request.ContentLength))
			return
		}

		fail(c, errs.Validation("No file uploaded"))

		return
	}

	key := c.GetHeader(idempotencyHeader)
	if err := rule.ValidateVar(key, "omitempty,max=128,printascii"); err != nil {
		fail(c, errs.Validation("invalid %s header", idempotencyHeader))
		return
	}

	f, err := fh.Open()
	if err != nil {
		fail(c, errs.Validation("No file uploaded"))
		return
	}
	defer f.Close()

	res, err := h.files.Ingest(ctx, p, types.Upload{
		FileName:       fh.Filename,
		DeclaredMIME:   fh.Header.Get("Content-Type"),
		DeclaredSize:   fh.Size,
		Body:           f,
		IdempotencyKey: key,
	})
	if err != nil {
		fail(c, err)
		return
	}

	if res.Replayed {
		c.Header(replayedHeader, "true")
		c.JSON(http.StatusOK, res.Record.Meta())

		return
	}

	c.JSON(http.StatusCreated, res.Record.Meta())
}

// History 当前用户的上传历史，最新的在前.
//
//	@Summary		上传历史
//	@Tags			文件
//	@Produce		json
//	@Success		200	{object}	types.HistoryResponse
//	@Failure		401	{object}	errs.Body
//	@Router			/api/history [get]
func (h *Handler) History(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	files, err := h.files.GetHistory(c.Request.Context(), p)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, types.HistoryResponse{Files: files})
}

// Preview 返回文件元数据与全部行.
//
//	@Summary		预览文件
//	@Tags			文件
//	@Produce		json
//	@Param			id	path		string	true	"文件 ID"
//	@Success		200	{object}	types.FileRecord
//	@Failure		404	{object}	errs.Body
//	@Router			/api/files/{id} [get]
func (h *Handler) Preview(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	rec, err := h.files.GetFilePreview(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// Delete 删除自己的文件；管理员可删除任意文件.
//
//	@Summary		删除文件
//	@Tags			文件
//	@Produce		json
//	@Param			id	path		string	true	"文件 ID"
//	@Success		200	{object}	types.DeleteResponse
//	@Failure		404	{object}	errs.Body
//	@Router			/api/files/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	rec, err := h.files.DeleteFile(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, types.DeleteResponse{Message: "File deleted successfully", ID: rec.ID})
}
