package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/yeisme/exceleasy/pkg/configs"
	"github.com/yeisme/exceleasy/pkg/errs"
	"github.com/yeisme/exceleasy/pkg/internal/decoder"
	"github.com/yeisme/exceleasy/pkg/internal/types"
	nlog "github.com/yeisme/exceleasy/pkg/log"
	"github.com/yeisme/exceleasy/pkg/tracing"
)

// Download 下载内容，调用方负责关闭 Body.
type Download struct {
	FileName    string
	ContentType string
	Size        int64
	ETag        string
	Body        io.ReadCloser
}

// Download 优先返回保留的原始文件，否则由已存储的行重新生成 .xlsx.
func (s *FileService) Download(ctx context.Context, id string, p types.Principal) (*Download, error) {
	ctx, span := tracing.StartSpan(ctx, "service.download")
	defer span.End()

	rec, err := s.GetFilePreview(ctx, id, p)
	if err != nil {
		return nil, err
	}

	if rec.BlobKey != "" && s.blobs != nil {
		body, size, err := s.blobs.GetBlob(ctx, rec.BlobKey)
		switch {
		case err == nil:
			return &Download{
				FileName:    rec.FileName,
				ContentType: rec.ContentType,
				Size:        size,
				ETag:        `"` + rec.Checksum + `"`,
				Body:        body,
			}, nil
		case errors.Is(err, errs.ErrNotFound):
			nlog.Ctx(ctx).Warn().Str("key", rec.BlobKey).Msg("retained blob missing, regenerating")
		default:
			nlog.Ctx(ctx).Warn().Err(err).Str("key", rec.BlobKey).Msg("read retained blob, regenerating")
		}
	}

	var buf bytes.Buffer

	table := &types.Table{Sheet: rec.SheetName, Columns: rec.Columns, Rows: rec.Rows}
	if err := decoder.WriteXLSX(&buf, table); err != nil {
		return nil, errs.Store(err, "render spreadsheet")
	}

	return &Download{
		FileName:    xlsxName(rec.FileName),
		ContentType: configs.MIMETypeXLSX,
		Size:        int64(buf.Len()),
		ETag:        `W/"` + rec.Checksum + `"`,
		Body:        io.NopCloser(&buf),
	}, nil
}

// xlsxName 把扩展名换成 .xlsx.
func xlsxName(name string) string {
	ext := filepath.Ext(name)
	if strings.EqualFold(ext, ".xlsx") {
		return name
	}

	return strings.TrimSuffix(name, ext) + ".xlsx"
}
