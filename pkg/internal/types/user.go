package types

import "time"

// User 用户目录条目，请求经过认证时自动登记.
type User struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"createdAt"`
	LastSeenAt time.Time `json:"lastSeenAt"`
	FileCount  int64     `json:"fileCount"`
}

// UsersResponse 管理员用户列表响应.
type UsersResponse struct {
	Users []User `json:"users"`
}
