package types

import (
	"io"
	"time"
)

// Format 表格容器格式.
type Format string

const (
	FormatXLSX Format = "xlsx" // Office Open XML（ZIP 容器）
	FormatXLS  Format = "xls"  // BIFF8（OLE2 复合文档）
)

// Blob 通过校验的原始上传.
type Blob struct {
	FileName    string
	ContentType string
	Format      Format
	Data        []byte
}

// Size 字节数.
func (b Blob) Size() int64 { return int64(len(b.Data)) }

// FileRecord 一次成功导入的表格文件.
type FileRecord struct {
	ID          string    `json:"id"`
	FileName    string    `json:"fileName"`
	Owner       string    `json:"owner"`
	OwnerName   string    `json:"ownerName,omitempty"`
	UploadedAt  time.Time `json:"uploadedAt"`
	SizeBytes   int64     `json:"sizeBytes"`
	ContentType string    `json:"contentType"`
	SheetName   string    `json:"sheetName"`
	Columns     []string  `json:"columns"`
	RowCount    int       `json:"rowCount"`
	Checksum    string    `json:"checksum"`
	BlobKey     string    `json:"-"`
	// Rows 仅在预览接口中返回，列表接口只返回元数据
	Rows []Row `json:"rows,omitempty"`
}

// Meta 去掉行数据后的副本.
func (f FileRecord) Meta() FileRecord {
	f.Rows = nil
	return f
}

// NewFileRecord 创建记录所需的输入.
type NewFileRecord struct {
	Owner       string
	FileName    string
	SizeBytes   int64
	ContentType string
	Checksum    string
	BlobKey     string
	Table       Table
}

// Upload 一次上传请求携带的原始文件.
type Upload struct {
	FileName     string
	DeclaredMIME string
	DeclaredSize int64
	Body         io.Reader
	// IdempotencyKey 可选，重复提交时返回已有记录
	IdempotencyKey string
}

// FileQuery 管理员文件列表的检索与分页参数.
type FileQuery struct {
	Q        string `form:"q"         rule:"omitempty,max=255"`
	Page     int    `form:"page"      rule:"omitempty,min=1"`
	PageSize int    `form:"page_size" rule:"omitempty,min=1,max=200"`
}

const (
	DefaultPage     = 1
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Normalize 填充分页默认值.
func (q FileQuery) Normalize() FileQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}

	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}

	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}

	return q
}

// Offset 分页偏移量.
func (q FileQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// FilePage 分页结果.
type FilePage struct {
	Files []FileRecord `json:"files"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Size  int          `json:"pageSize"`
}

// HistoryResponse GET /api/history 响应.
type HistoryResponse struct {
	Files []FileRecord `json:"files"`
}

// DeleteResponse 删除成功响应.
type DeleteResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}
