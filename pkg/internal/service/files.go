package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeisme/exceleasy/pkg/errs"
	"github.com/yeisme/exceleasy/pkg/internal/types"
	nlog "github.com/yeisme/exceleasy/pkg/log"
	"github.com/yeisme/exceleasy/pkg/queue"
)

// GetHistory 请求者自己的文件，只有元数据.
func (s *FileService) GetHistory(ctx context.Context, p types.Principal) ([]types.FileRecord, error) {
	return withRetry(ctx, s, "list_by_owner", func() ([]types.FileRecord, error) {
		return s.files.ListByOwner(ctx, p.UserID)
	})
}

// GetAdminFiles 所有用户的文件，非管理员返回 Forbidden.
func (s *FileService) GetAdminFiles(ctx context.Context, p types.Principal, q types.FileQuery) (*types.FilePage, error) {
	if !p.IsAdmin() {
		return nil, errs.Forbidden("admin access required")
	}

	q = q.Normalize()

	type page struct {
		files []types.FileRecord
		total int64
	}

	res, err := withRetry(ctx, s, "list_all", func() (page, error) {
		files, total, err := s.files.ListAll(ctx, q)
		return page{files: files, total: total}, err
	})
	if err != nil {
		return nil, err
	}

	return &types.FilePage{Files: res.files, Total: res.total, Page: q.Page, Size: q.PageSize}, nil
}

// GetFilePreview 带行数据的记录；非所有者且非管理员得到 NotFound，不暴露记录是否存在.
func (s *FileService) GetFilePreview(ctx context.Context, id string, p types.Principal) (*types.FileRecord, error) {
	rec, err := withRetry(ctx, s, "get", func() (*types.FileRecord, error) {
		return s.files.Get(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	if !p.CanAccess(rec.Owner) {
		return nil, notFound(id)
	}

	return rec, nil
}

// GetAdminFile 管理员查看任意文件.
func (s *FileService) GetAdminFile(ctx context.Context, id string, p types.Principal) (*types.FileRecord, error) {
	if !p.IsAdmin() {
		return nil, errs.Forbidden("admin access required")
	}

	return s.GetFilePreview(ctx, id, p)
}

// DeleteFile 删除记录与原始文件；成功或失败都追加一条活动日志.
func (s *FileService) DeleteFile(ctx context.Context, id string, p types.Principal) (*types.FileRecord, error) {
	rec, err := withRetry(ctx, s, "delete", func() (*types.FileRecord, error) {
		return s.files.Delete(ctx, id, p)
	})
	if err != nil {
		if errors.Is(err, errs.ErrForbidden) {
			err = notFound(id)
		}

		s.logs.Error(ctx, p, fmt.Sprintf("failed to delete file %s", id), map[string]string{"fileId": id})

		return nil, err
	}

	s.logs.Success(ctx, p, fmt.Sprintf("deleted file %s", rec.FileName), map[string]string{"fileId": rec.ID})
	s.dropBlob(ctx, rec.BlobKey)

	s.events.FileDeleted(ctx, queue.FileDeletedPayload{
		File:      queue.FileRef{ID: rec.ID, Owner: rec.Owner, FileName: rec.FileName},
		DeletedBy: p.UserID,
		BlobKey:   rec.BlobKey,
	})

	nlog.Ctx(ctx).Info().Str("file_id", rec.ID).Str("by", p.UserID).Msg("file deleted")

	return rec, nil
}

// DeleteAdminFile 管理员删除任意文件.
func (s *FileService) DeleteAdminFile(ctx context.Context, id string, p types.Principal) (*types.FileRecord, error) {
	if !p.IsAdmin() {
		return nil, errs.Forbidden("admin access required")
	}

	return s.DeleteFile(ctx, id, p)
}

// ListUsers 用户目录，仅管理员.
func (s *FileService) ListUsers(ctx context.Context, p types.Principal) ([]types.User, error) {
	if !p.IsAdmin() {
		return nil, errs.Forbidden("admin access required")
	}

	return withRetry(ctx, s, "list_users", func() ([]types.User, error) {
		return s.users.List(ctx)
	})
}

// AdminLogs 全部用户的最近活动.
func (s *FileService) AdminLogs(ctx context.Context, p types.Principal, q types.LogQuery) ([]types.ActivityLogEntry, error) {
	if !p.IsAdmin() {
		return nil, errs.Forbidden("admin access required")
	}

	return withRetry(ctx, s, "recent_logs", func() ([]types.ActivityLogEntry, error) {
		return s.logs.Recent(ctx, q.EffectiveLimit())
	})
}

// UserLogs 请求者自己的最近活动.
func (s *FileService) UserLogs(ctx context.Context, p types.Principal, q types.LogQuery) ([]types.ActivityLogEntry, error) {
	return withRetry(ctx, s, "recent_logs", func() ([]types.ActivityLogEntry, error) {
		return s.logs.RecentForUser(ctx, p.UserID, q.EffectiveLimit())
	})
}

func notFound(id string) error {
	return errs.NotFound("file %s not found", id)
}
