// Package service 文件导入流水线与历史/管理查询.
package service

import (
	"context"
	"io"
	"time"

	"github.com/yeisme/exceleasy/pkg/cache"
	"github.com/yeisme/exceleasy/pkg/configs"
	"github.com/yeisme/exceleasy/pkg/internal/activity"
	"github.com/yeisme/exceleasy/pkg/internal/blob"
	"github.com/yeisme/exceleasy/pkg/internal/store"
	"github.com/yeisme/exceleasy/pkg/internal/types"
	"github.com/yeisme/exceleasy/pkg/queue"
)

// Decoder 受限并发的表格解析.
type Decoder interface {
	Decode(ctx context.Context, blob *types.Blob) (*types.Table, error)
}

// BlobStore 原始文件的对象存储，由 storage/s3 实现.
type BlobStore interface {
	PutBlob(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	GetBlob(ctx context.Context, key string) (io.ReadCloser, int64, error)
	RemoveBlob(ctx context.Context, key string) error
}

// Deps FileService 的依赖，可选项为 nil 时对应功能关闭.
type Deps struct {
	Files     store.FileStore
	Users     store.UserStore
	Activity  *activity.Logger
	Validator *blob.Validator
	Decoder   Decoder
	Ingest    configs.IngestConfig

	Blobs       BlobStore    // 可选：保留原始文件
	BlobPrefix  string       // 原始文件对象前缀
	Idempotency *cache.Cache // 可选：Idempotency-Key 去重
	Events      *queue.Publisher
}

// FileService 文件相关的业务操作，所有调用都需要已认证的 Principal.
type FileService struct {
	files     store.FileStore
	users     store.UserStore
	logs      *activity.Logger
	validator *blob.Validator
	decoder   Decoder
	cfg       configs.IngestConfig

	blobs      BlobStore
	blobPrefix string
	idem       *cache.Cache
	events     *queue.Publisher

	retryDelay time.Duration
	now        func() time.Time
}

// NewFileService 用显式依赖创建服务.
func NewFileService(d Deps) *FileService {
	return &FileService{
		files:      d.Files,
		users:      d.Users,
		logs:       d.Activity,
		validator:  d.Validator,
		decoder:    d.Decoder,
		cfg:        d.Ingest,
		blobs:      d.Blobs,
		blobPrefix: d.BlobPrefix,
		idem:       d.Idempotency,
		events:     d.Events,
		retryDelay: defaultRetryDelay,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// MaxUploadBytes 上传大小上限，HTTP 层据此限制请求体.
func (s *FileService) MaxUploadBytes() int64 {
	return s.validator.MaxBytes()
}
