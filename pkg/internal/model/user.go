package model

import "time"

// User 用户目录，认证中间件在每次请求时登记.
type User struct {
	ID         string    `gorm:"primaryKey;size:255"`
	Username   string    `gorm:"size:255;index"`
	Role       string    `gorm:"size:32;not null;default:user"`
	CreatedAt  time.Time `gorm:"not null"`
	LastSeenAt time.Time `gorm:"index"`
}

// TableName 表名.
func (User) TableName() string { return "users" }
