// Package model 定义 gorm 持久化模型.
package model

import (
	"time"

	"gorm.io/datatypes"
)

// FileRecord 文件元数据，行数据单独存放在 FilePayload 中.
type FileRecord struct {
	ID          string                      `gorm:"primaryKey;size:26"`
	Owner       string                      `gorm:"size:255;not null;index:idx_owner_uploaded,priority:1"`
	FileName    string                      `gorm:"size:512;not null;index"`
	SizeBytes   int64                       `gorm:"not null"`
	ContentType string                      `gorm:"size:255"`
	SheetName   string                      `gorm:"size:255"`
	Columns     datatypes.JSONSlice[string] `gorm:"column:columns"`
	RowCount    int                         `gorm:"not null;default:0"`
	Checksum    string                      `gorm:"size:32"`
	BlobKey     string                      `gorm:"size:1024"`
	UploadedAt  time.Time                   `gorm:"not null;index;index:idx_owner_uploaded,priority:2"`

	OwnerUser User         `gorm:"foreignKey:Owner;references:ID;constraint:OnDelete:RESTRICT"`
	Payload   *FilePayload `gorm:"foreignKey:FileID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName 表名.
func (FileRecord) TableName() string { return "file_records" }

// FilePayload 一个文件的全部行，按列顺序编码的二维数组.
type FilePayload struct {
	FileID string         `gorm:"primaryKey;size:26"`
	Rows   datatypes.JSON `gorm:"not null"`
}

// TableName 表名.
func (FilePayload) TableName() string { return "file_payloads" }
