// Package context 把存储管理器与请求者身份放进 context，供中间件与处理器之间传递.
package context

import (
	"context"

	"github.com/yeisme/exceleasy/pkg/internal/storage"
	"github.com/yeisme/exceleasy/pkg/internal/types"
	"github.com/yeisme/exceleasy/pkg/scheduler"
)

type ContextKey string

const (
	StorageManagerKey ContextKey = "storageManager"
	PrincipalKey      ContextKey = "principal"
	SchedulerKey      ContextKey = "scheduler"
)

// WithStorageManager 将 Manager 存储到 context 中.
func WithStorageManager(ctx context.Context, mgr *storage.Manager) context.Context {
	return context.WithValue(ctx, StorageManagerKey, mgr)
}

// GetManager 从 context 中获取 Manager.
func GetManager(ctx context.Context) *storage.Manager {
	if mgr, ok := ctx.Value(StorageManagerKey).(*storage.Manager); ok {
		return mgr
	}

	return nil
}

// WithPrincipal 记录已认证的请求者.
func WithPrincipal(ctx context.Context, p types.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// GetPrincipal 取出请求者，未认证时 ok 为 false.
func GetPrincipal(ctx context.Context) (types.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(types.Principal)
	return p, ok && p.UserID != ""
}

// WithScheduler 记录定时任务调度器.
func WithScheduler(ctx context.Context, sched *scheduler.Scheduler) context.Context {
	return context.WithValue(ctx, SchedulerKey, sched)
}

// GetScheduler 取出调度器，未注入时返回 nil.
func GetScheduler(ctx context.Context) *scheduler.Scheduler {
	sched, _ := ctx.Value(SchedulerKey).(*scheduler.Scheduler)
	return sched
}
