package model

import (
	"time"

	"gorm.io/datatypes"
)

// Activity 审计日志，只追加，与文件记录没有外键关联.
type Activity struct {
	ID        uint              `gorm:"primaryKey"`
	UserID    string            `gorm:"size:255;not null;default:'';index:idx_user_time,priority:1"`
	Username  string            `gorm:"size:255;not null"`
	Action    string            `gorm:"size:1024;not null"`
	Status    string            `gorm:"size:16;not null"`
	Timestamp time.Time         `gorm:"not null;index;index:idx_user_time,priority:2"`
	Metadata  datatypes.JSONMap `gorm:"type:json"`
}

// TableName 表名.
func (Activity) TableName() string { return "activity_logs" }

// All 需要迁移的全部模型，按依赖顺序.
func All() []any {
	return []any{&User{}, &FileRecord{}, &FilePayload{}, &Activity{}}
}
