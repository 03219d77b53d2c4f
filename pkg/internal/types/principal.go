package types

import "strings"

// Role 角色，数值越大权限越高.
type Role int

const (
	RoleUser Role = iota
	RoleAdmin
)

// ParseRole 解析角色名，未知值按普通用户处理.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin", "administrator", "owner":
		return RoleAdmin
	default:
		return RoleUser
	}
}

func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}

	return "user"
}

// Principal 已认证的请求者.
type Principal struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     Role   `json:"-"`
}

// IsAdmin 是否为管理员.
func (p Principal) IsAdmin() bool { return p.Role >= RoleAdmin }

// CanAccess 是否可以访问 owner 名下的记录.
func (p Principal) CanAccess(owner string) bool {
	return p.IsAdmin() || p.UserID == owner
}

// DisplayName 用于活动日志的名字.
func (p Principal) DisplayName() string {
	if p.Username != "" {
		return p.Username
	}

	return p.UserID
}
