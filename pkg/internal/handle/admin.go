package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/exceleasy/pkg/internal/types"
)

// AdminFiles 所有用户的文件，支持按文件名或所有者检索与分页.
//
//	@Summary		管理员文件列表
//	@Tags			管理
//	@Produce		json
//	@Param			q			query		string	false	"检索关键字"
//	@Param			page		query		int		false	"页码"
//	@Param			page_size	query		int		false	"每页条数"
//	@Success		200			{object}	types.FilePage
//	@Failure		403			{object}	errs.Body
//	@Router			/api/admin/files [get]
func (h *Handler) AdminFiles(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var q types.FileQuery
	if err := bindQuery(c, &q); err != nil {
		fail(c, err)
		return
	}

	page, err := h.files.GetAdminFiles(c.Request.Context(), p, q)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// AdminFile 管理员查看任意文件.
//
//	@Summary		管理员查看文件
//	@Tags			管理
//	@Produce		json
//	@Param			id	path		string	true	"文件 ID"
//	@Success		200	{object}	types.FileRecord
//	@Failure		403	{object}	errs.Body
//	@Failure		404	{object}	errs.Body
//	@Router			/api/admin/files/{id} [get]
func (h *Handler) AdminFile(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	rec, err := h.files.GetAdminFile(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// AdminDelete 管理员删除任意文件.
//
//	@Summary		管理员删除文件
//	@Tags			管理
//	@Produce		json
//	@Param			id	path		string	true	"文件 ID"
//	@Success		200	{object}	types.DeleteResponse
//	@Failure		403	{object}	errs.Body
//	@Failure		404	{object}	errs.Body
//	@Router			/api/admin/files/{id} [delete]
func (h *Handler) AdminDelete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	rec, err := h.files.DeleteAdminFile(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, types.DeleteResponse{Message: "File deleted successfully", ID: rec.ID})
}

// AdminUsers 用户目录.
//
//	@Summary		用户列表
//	@Tags			管理
//	@Produce		json
//	@Success		200	{object}	types.UsersResponse
//	@Failure		403	{object}	errs.Body
//	@Router			/api/admin/users [get]
func (h *Handler) AdminUsers(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	users, err := h.files.ListUsers(c.Request.Context(), p)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, types.UsersResponse{Users: users})
}
