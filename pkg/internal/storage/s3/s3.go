// Package s3 保存上传的原始表格文件（MinIO / S3 兼容存储）.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yeisme/exceleasy/pkg/configs"
	"github.com/yeisme/exceleasy/pkg/errs"
	nlog "github.com/yeisme/exceleasy/pkg/log"
)

// BlobInfo 对象的基本信息.
type BlobInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Client 包装 MinIO 客户端，绑定单个 bucket.
type Client struct {
	*minio.Client

	bucket string
	prefix string
}

// New 初始化 MinIO 客户端，bucket 不存在时创建.
func New(ctx context.Context, cfg *configs.S3Config) (*Client, error) {
	endpoint := cfg.Endpoint
	secure := cfg.UseSSL
	// 允许传完整 schema 的 endpoint
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		secure = secure || u.Scheme == "https"
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	cli.SetAppInfo("exceleasy", configs.AppVersion)

	exists, err := cli.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.BucketName, err)
	}

	if !exists {
		if err := cli.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.BucketName, err)
		}

		nlog.Logger().Info().Str("bucket", cfg.BucketName).Msg("bucket created")
	}

	nlog.Logger().Info().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.BucketName).Msg("s3 connected")

	return &Client{Client: cli, bucket: cfg.BucketName, prefix: cfg.KeyPrefix}, nil
}

// Bucket 绑定的 bucket 名.
func (c *Client) Bucket() string {
	return c.bucket
}

// Prefix 原始文件的对象前缀.
func (c *Client) Prefix() string {
	return c.prefix
}

// ObjectKey 生成原始文件的对象键：<prefix><yyyy>/<mm>/<id><ext>.
func ObjectKey(prefix, id, fileName string, at time.Time) string {
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("%s%s/%s%s", prefix, at.UTC().Format("2006/01"), id, ext)
}

// PutBlob 上传对象.
func (c *Client) PutBlob(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := c.PutObject(ctx, c.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return errs.Store(err, "put blob")
	}

	return nil
}

// GetBlob 打开对象读取流；对象不存在时返回 NotFound.
func (c *Client) GetBlob(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	obj, err := c.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, errs.Store(err, "get blob")
	}

	// GetObject 惰性请求，Stat 才会暴露 NoSuchKey
	st, err := obj.Stat()
	if err != nil {
		_ = obj.Close()

		if isNoSuchKey(err) {
			return nil, 0, errs.NotFound("blob %s not found", key)
		}

		return nil, 0, errs.Store(err, "stat blob")
	}

	return obj, st.Size, nil
}

// RemoveBlob 删除对象，对象不存在视为成功.
func (c *Client) RemoveBlob(ctx context.Context, key string) error {
	err := c.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && !isNoSuchKey(err) {
		return errs.Store(err, "remove blob")
	}

	return nil
}

// ListBlobs 递归列出前缀下的对象.
func (c *Client) ListBlobs(ctx context.Context, prefix string) ([]BlobInfo, error) {
	var out []BlobInfo

	for obj := range c.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, errs.Store(obj.Err, "list blobs")
		}

		out = append(out, BlobInfo{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}

	return out, nil
}

// HealthCheck 检查 bucket 可访问.
func (c *Client) HealthCheck(ctx context.Context) error {
	ok, err := c.BucketExists(ctx, c.bucket)
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("bucket %s missing", c.bucket)
	}

	return nil
}

// Close 无连接需要释放.
func (c *Client) Close() error {
	return nil
}

func isNoSuchKey(err error) bool {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		return resp.Code == "NoSuchKey"
	}

	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
