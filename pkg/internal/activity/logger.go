// Package activity 只追加的活动日志. 写入失败只记录日志与指标，不影响调用方.
package activity

import (
	"context"
	"time"

	"github.com/yeisme/exceleasy/pkg/internal/store"
	"github.com/yeisme/exceleasy/pkg/internal/types"
	nlog "github.com/yeisme/exceleasy/pkg/log"
	"github.com/yeisme/exceleasy/pkg/metrics"
)

// appendTimeout 单次写入的超时，与请求取消无关.
const appendTimeout = 5 * time.Second

// Logger 活动日志.
type Logger struct {
	store store.ActivityStore
	now   func() time.Time
}

// New 创建活动日志.
func New(st store.ActivityStore) *Logger {
	return &Logger{store: st, now: func() time.Time { return time.Now().UTC() }}
}

// Append 以 p 的名义追加一条日志，metadata 可为 nil.
// 归属按 UserID 记录，用户名只作展示.
func (l *Logger) Append(ctx context.Context, p types.Principal, action string, status types.ActivityStatus, metadata map[string]string) {
	entry := types.ActivityLogEntry{
		UserID:    p.UserID,
		Username:  p.DisplayName(),
		Action:    action,
		Status:    status,
		Timestamp: l.now(),
		Metadata:  metadata,
	}

	// 请求已取消也要落盘
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), appendTimeout)
	defer cancel()

	if err := l.store.Append(wctx, entry); err != nil {
		metrics.ActivityAppendFailures.Inc()
		nlog.Ctx(ctx).Error().Err(err).
			Str("user", p.UserID).
			Str("action", action).
			Str("status", string(status)).
			Msg("append activity log")
	}
}

// Success 追加成功日志.
func (l *Logger) Success(ctx context.Context, p types.Principal, action string, metadata map[string]string) {
	l.Append(ctx, p, action, types.StatusSuccess, metadata)
}

// Error 追加失败日志.
func (l *Logger) Error(ctx context.Context, p types.Principal, action string, metadata map[string]string) {
	l.Append(ctx, p, action, types.StatusError, metadata)
}

// Recent 全部用户最新的 n 条.
func (l *Logger) Recent(ctx context.Context, n int) ([]types.ActivityLogEntry, error) {
	return l.store.Recent(ctx, "", n)
}

// RecentForUser 指定用户 ID 最新的 n 条.
func (l *Logger) RecentForUser(ctx context.Context, userID string, n int) ([]types.ActivityLogEntry, error) {
	return l.store.Recent(ctx, userID, n)
}
