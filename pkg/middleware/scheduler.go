package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/exceleasy/pkg/context"
	"github.com/yeisme/exceleasy/pkg/scheduler"
)

// SchedulerMiddleware 注入调度器，管理端的任务查询与手动触发依赖它.
func SchedulerMiddleware(sched *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sched != nil {
			c.Request = c.Request.WithContext(context.WithScheduler(c.Request.Context(), sched))
		}

		c.Next()
	}
}

// GetScheduler 取出调度器，未注入时返回 nil.
func GetScheduler(c *gin.Context) *scheduler.Scheduler {
	return context.GetScheduler(c.Request.Context())
}
