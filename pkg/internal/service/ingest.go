package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/yeisme/exceleasy/pkg/cache"
	"github.com/yeisme/exceleasy/pkg/errs"
	"github.com/yeisme/exceleasy/pkg/internal/storage/s3"
	"github.com/yeisme/exceleasy/pkg/internal/store"
	"github.com/yeisme/exceleasy/pkg/internal/types"
	nlog "github.com/yeisme/exceleasy/pkg/log"
	"github.com/yeisme/exceleasy/pkg/metrics"
	"github.com/yeisme/exceleasy/pkg/queue"
	"github.com/yeisme/exceleasy/pkg/tracing"
)

// IngestResult 导入结果；Replayed 表示命中 Idempotency-Key，返回的是已有记录.
type IngestResult struct {
	Record   *types.FileRecord
	Replayed bool
}

// Ingest 校验 → 解析 → 入库 → 记录活动日志.
// 校验或解析失败时不创建记录，记一条 error 日志并返回原错误.
func (s *FileService) Ingest(ctx context.Context, p types.Principal, u types.Upload) (*IngestResult, error) {
	ctx, span := tracing.StartSpan(ctx, "service.ingest")
	defer span.End()

	l := nlog.Ctx(ctx)

	if rec := s.replay(ctx, p, u.IdempotencyKey); rec != nil {
		l.Info().Str("file_id", rec.ID).Msg("idempotent upload replayed")
		return &IngestResult{Record: rec, Replayed: true}, nil
	}

	blob, err := s.validator.Validate(u)
	if err != nil {
		s.reject(ctx, p, u.FileName, u.DeclaredSize, err)
		return nil, err
	}

	table, err := s.decoder.Decode(ctx, blob)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
			err = errs.Decode(err, "spreadsheet took too long to parse")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			err = errs.Decode(err, "upload cancelled")
		}

		s.reject(ctx, p, blob.FileName, blob.Size(), err)

		return nil, err
	}

	checksum := strconv.FormatUint(xxhash.Sum64(blob.Data), 16)
	blobKey := s.keepBlob(ctx, blob)

	rec, err := withRetry(ctx, s, "create", func() (*types.FileRecord, error) {
		rec, err := s.files.Create(ctx, types.NewFileRecord{
			Owner:       p.UserID,
			FileName:    blob.FileName,
			SizeBytes:   blob.Size(),
			ContentType: blob.ContentType,
			Checksum:    checksum,
			BlobKey:     blobKey,
			Table:       *table,
		})
		if errors.Is(err, store.ErrOwnerNotRegistered) {
			// 认证时登记失败，补登记后交给重试
			if terr := s.users.Touch(ctx, p); terr != nil {
				l.Warn().Err(terr).Str("user", p.UserID).Msg("register owner")
			}
		}

		return rec, err
	})
	if err != nil {
		span.RecordError(err)
		s.dropBlob(ctx, blobKey)
		metrics.IngestTotal.WithLabelValues("failed").Inc()
		s.logs.Error(ctx, p, fmt.Sprintf("failed to save file %s", blob.FileName), nil)

		return nil, err
	}

	metrics.IngestTotal.WithLabelValues("success").Inc()
	metrics.UploadBytes.Observe(float64(rec.SizeBytes))

	s.logs.Success(ctx, p, fmt.Sprintf("uploaded file %s", rec.FileName), map[string]string{
		"fileId":    rec.ID,
		"sizeBytes": strconv.FormatInt(rec.SizeBytes, 10),
		"rows":      strconv.Itoa(rec.RowCount),
	})

	s.remember(ctx, p, u.IdempotencyKey, rec.ID)

	s.events.FileIngested(ctx, queue.FileIngestedPayload{
		File:        queue.FileRef{ID: rec.ID, Owner: rec.Owner, FileName: rec.FileName},
		SizeBytes:   rec.SizeBytes,
		ContentType: rec.ContentType,
		SheetName:   rec.SheetName,
		RowCount:    rec.RowCount,
		Checksum:    rec.Checksum,
		BlobKey:     rec.BlobKey,
	})

	l.Info().Str("file_id", rec.ID).Str("file", rec.FileName).Int("rows", rec.RowCount).Msg("file ingested")

	return &IngestResult{Record: rec}, nil
}

// RejectOversize 请求体在传输层被截断时的拒绝路径，与校验失败一样记一条 error 日志.
func (s *FileService) RejectOversize(ctx context.Context, p types.Principal, fileName string, size int64) error {
	err := errs.Validation("%s", s.validator.SizeMessage())
	s.reject(ctx, p, fileName, size, err)

	return err
}

// reject 校验/解析失败：一条 error 日志，原因作为 action.
func (s *FileService) reject(ctx context.Context, p types.Principal, fileName string, size int64, err error) {
	reason := errs.Message(err)

	metrics.IngestTotal.WithLabelValues("rejected").Inc()
	nlog.Ctx(ctx).Info().Err(err).Str("file", fileName).Msg("upload rejected")

	s.logs.Error(ctx, p, reason, map[string]string{"fileName": fileName})

	s.events.FileRejected(ctx, queue.FileRejectedPayload{
		Owner:     p.UserID,
		FileName:  fileName,
		SizeBytes: size,
		Kind:      string(errs.KindOf(err)),
		Reason:    reason,
	})
}

// keepBlob 保留原始文件，失败时降级为不保留.
func (s *FileService) keepBlob(ctx context.Context, b *types.Blob) string {
	if s.blobs == nil || !s.cfg.KeepBlob {
		return ""
	}

	key := s3.ObjectKey(s.blobPrefix, store.NewID(), b.FileName, s.now())
	if err := s.blobs.PutBlob(ctx, key, bytes.NewReader(b.Data), b.Size(), b.ContentType); err != nil {
		nlog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("keep original upload")
		return ""
	}

	return key
}

// dropBlob 尽力删除；残留对象由定时清理处理.
func (s *FileService) dropBlob(ctx context.Context, key string) {
	if key == "" || s.blobs == nil {
		return
	}

	if err := s.blobs.RemoveBlob(context.WithoutCancel(ctx), key); err != nil {
		nlog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("remove blob")
	}
}

func (s *FileService) idemKey(p types.Principal, key string) string {
	return s.idem.Key(p.UserID, key)
}

// replay 命中 Idempotency-Key 且记录仍存在时返回记录.
func (s *FileService) replay(ctx context.Context, p types.Principal, key string) *types.FileRecord {
	if s.idem == nil || key == "" {
		return nil
	}

	id, found, err := cache.Lookup[string](ctx, s.idem, s.idemKey(p, key))
	if err != nil {
		nlog.Ctx(ctx).Warn().Err(err).Msg("idempotency lookup")
		return nil
	}

	if !found {
		return nil
	}

	rec, err := s.files.Get(ctx, id)
	if err != nil || rec.Owner != p.UserID {
		return nil
	}

	meta := rec.Meta()

	return &meta
}

func (s *FileService) remember(ctx context.Context, p types.Principal, key, id string) {
	if s.idem == nil || key == "" {
		return
	}

	if err := cache.Set(ctx, s.idem, s.idemKey(p, key), id, s.cfg.IdempotencyTTL); err != nil {
		nlog.Ctx(ctx).Warn().Err(err).Msg("store idempotency key")
	}
}
