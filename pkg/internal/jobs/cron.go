// Package jobs 负责注册与实现业务定时任务（基于 scheduler）。
package jobs

import (
	"context"
	"fmt"

	"github.com/yeisme/exceleasy/pkg/configs"
	"github.com/yeisme/exceleasy/pkg/scheduler"
)

// RegisterCronJobs 按配置注册业务定时任务：
//   - jobs.orphan_sweep_cron 清理没有记录引用的原始文件（需要启用对象存储）
func RegisterCronJobs(sched *scheduler.Scheduler, cfg configs.JobsConfig, sweeper *OrphanSweeper) error {
	if sched == nil {
		return fmt.Errorf("scheduler is nil")
	}

	if !cfg.Enabled {
		return nil
	}

	if sweeper != nil && cfg.OrphanSweepCron != "" {
		err := sched.AddCron(JobOrphanSweep, cfg.OrphanSweepCron, func(ctx context.Context) error {
			_, err := sweeper.Run(ctx)
			return err
		})
		if err != nil {
			return fmt.Errorf("register %s: %w", JobOrphanSweep, err)
		}
	}

	return nil
}
