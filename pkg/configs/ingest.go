package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultMaxUploadBytes 单个上传文件的大小上限（5 MiB）.
	DefaultMaxUploadBytes int64 = 5 * 1024 * 1024
	// MIMETypeXLS 旧版 Excel 二进制格式.
	MIMETypeXLS = "application/vnd.ms-excel"
	// MIMETypeXLSX Office Open XML 表格格式.
	MIMETypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	DefaultMaxConcurrentDecodes = 4
	DefaultDecodeTimeout        = 30 * time.Second
	DefaultIdempotencyTTL       = 24 * time.Hour
)

// IngestConfig 上传校验与表格解析配置.
type IngestConfig struct {
	MaxUploadBytes       int64         `mapstructure:"max_upload_bytes"       rule:"min=1"`
	AllowedMIMETypes     []string      `mapstructure:"allowed_mime_types"     rule:"min=1"`
	SniffContent         bool          `mapstructure:"sniff_content"`
	MaxConcurrentDecodes int64         `mapstructure:"max_concurrent_decodes" rule:"min=1,max=256"`
	DecodeTimeout        time.Duration `mapstructure:"decode_timeout"`
	KeepBlob             bool          `mapstructure:"keep_blob"` // 保留原始文件到 S3（需要 s3.enabled）
	IdempotencyTTL       time.Duration `mapstructure:"idempotency_ttl"`
}

// setDefaults 设置导入流水线默认值.
func (c *IngestConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("ingest.max_upload_bytes", DefaultMaxUploadBytes)
	v.SetDefault("ingest.allowed_mime_types", []string{MIMETypeXLS, MIMETypeXLSX})
	v.SetDefault("ingest.sniff_content", true)
	v.SetDefault("ingest.max_concurrent_decodes", DefaultMaxConcurrentDecodes)
	v.SetDefault("ingest.decode_timeout", DefaultDecodeTimeout)
	v.SetDefault("ingest.keep_blob", true)
	v.SetDefault("ingest.idempotency_ttl", DefaultIdempotencyTTL)
}
