package types

import "time"

// ActivityStatus 活动结果.
type ActivityStatus string

const (
	StatusSuccess ActivityStatus = "success"
	StatusError   ActivityStatus = "error"
	StatusWarning ActivityStatus = "warning"
)

// ActivityLogEntry 审计日志条目，只追加.
type ActivityLogEntry struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	Username  string            `json:"username"` // 仅用于展示，可能重名或变更
	Action    string            `json:"action"`
	Status    ActivityStatus    `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// LogQuery 日志查询参数.
type LogQuery struct {
	Limit int `form:"limit" rule:"omitempty,min=1,max=200"`
}

const (
	DefaultLogLimit = 20
	MaxLogLimit     = 200
)

// EffectiveLimit 返回有效条数.
func (q LogQuery) EffectiveLimit() int {
	switch {
	case q.Limit <= 0:
		return DefaultLogLimit
	case q.Limit > MaxLogLimit:
		return MaxLogLimit
	default:
		return q.Limit
	}
}

// LogsResponse 日志列表响应.
type LogsResponse struct {
	Logs []ActivityLogEntry `json:"logs"`
}
