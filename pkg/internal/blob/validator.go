// Package blob 在解析前校验上传的表格文件：大小、声明的 MIME 类型与文件头.
package blob

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/yeisme/exceleasy/pkg/configs"
	"github.com/yeisme/exceleasy/pkg/errs"
	"github.com/yeisme/exceleasy/pkg/internal/types"
)

// MsgInvalidType 类型不符时返回给客户端的提示.
const MsgInvalidType = "Please upload a valid Excel file (.xls or .xlsx)"

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Validator 上传校验器，无状态，可并发使用.
type Validator struct {
	maxBytes int64
	allowed  map[string]struct{}
	sniff    bool
}

// NewValidator 根据导入配置创建校验器.
func NewValidator(cfg configs.IngestConfig) *Validator {
	allowed := make(map[string]struct{}, len(cfg.AllowedMIMETypes))
	for _, t := range cfg.AllowedMIMETypes {
		allowed[normalizeMIME(t)] = struct{}{}
	}

	maxBytes := cfg.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = configs.DefaultMaxUploadBytes
	}

	return &Validator{maxBytes: maxBytes, allowed: allowed, sniff: cfg.SniffContent}
}

// MaxBytes 单个文件的大小上限.
func (v *Validator) MaxBytes() int64 { return v.maxBytes }

// SizeMessage 超限时返回给客户端的提示.
func (v *Validator) SizeMessage() string {
	const mib = 1024 * 1024
	if v.maxBytes%mib == 0 {
		return fmt.Sprintf("File size must be less than %dMB", v.maxBytes/mib)
	}

	return fmt.Sprintf("File size must be less than %d bytes", v.maxBytes)
}

// Validate 校验上传并读出内容.声明的大小不可信，读取时按上限截断，超出即拒绝.
// 所有拒绝都是 errs.KindValidation，且不产生副作用.
func (v *Validator) Validate(u types.Upload) (*types.Blob, error) {
	name := strings.TrimSpace(filepath.Base(u.FileName))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, errs.Validation("file name is required")
	}

	if u.DeclaredSize > v.maxBytes {
		return nil, errs.Validation("%s", v.SizeMessage())
	}

	ctype := normalizeMIME(u.DeclaredMIME)
	if _, ok := v.allowed[ctype]; !ok {
		return nil, errs.Validation("%s", MsgInvalidType)
	}

	if u.Body == nil {
		return nil, errs.Validation("file is empty")
	}

	data, err := io.ReadAll(io.LimitReader(u.Body, v.maxBytes+1))
	if err != nil {
		if isTooLarge(err) {
			return nil, errs.Validation("%s", v.SizeMessage())
		}

		return nil, errs.Validation("failed to read upload: %v", err)
	}

	if int64(len(data)) > v.maxBytes {
		return nil, errs.Validation("%s", v.SizeMessage())
	}

	if len(data) == 0 {
		return nil, errs.Validation("file is empty")
	}

	format, ok := detectFormat(data)
	if v.sniff {
		if !ok || !looksLikeSpreadsheet(data) {
			return nil, errs.Validation("%s", MsgInvalidType)
		}
	} else if !ok {
		format = formatFromDeclared(ctype, name)
	}

	return &types.Blob{
		FileName:    name,
		ContentType: ctype,
		Format:      format,
		Data:        data,
	}, nil
}

// normalizeMIME 去掉参数并转小写，例如 "Application/VND.ms-excel; charset=binary".
func normalizeMIME(s string) string {
	s = strings.TrimSpace(s)
	if mt, _, err := mime.ParseMediaType(s); err == nil {
		return mt
	}

	return strings.ToLower(s)
}

// detectFormat 按文件头判断容器格式.
func detectFormat(data []byte) (types.Format, bool) {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return types.FormatXLSX, true
	case bytes.HasPrefix(data, oleMagic):
		return types.FormatXLS, true
	default:
		return "", false
	}
}

// looksLikeSpreadsheet 用 mimetype 复核：结果或其父类型须为 ZIP / OLE 容器.
func looksLikeSpreadsheet(data []byte) bool {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		switch {
		case m.Is("application/zip"),
			m.Is("application/x-ole-storage"),
			m.Is(configs.MIMETypeXLSX),
			m.Is(configs.MIMETypeXLS):
			return true
		}
	}

	return false
}

// formatFromDeclared 关闭嗅探时按声明类型和扩展名推断格式.
func formatFromDeclared(ctype, name string) types.Format {
	if ctype == configs.MIMETypeXLS || strings.EqualFold(filepath.Ext(name), ".xls") {
		return types.FormatXLS
	}

	return types.FormatXLSX
}

// isTooLarge http.MaxBytesReader 超限时返回的错误.
func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
