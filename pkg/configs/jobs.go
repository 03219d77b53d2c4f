package configs

import (
	"time"

	"github.com/spf13/viper"
)

// JobsConfig 定时任务配置.
type JobsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// OrphanSweepCron 清理无记录引用的原始文件，cron 表达式
	OrphanSweepCron string `mapstructure:"orphan_sweep_cron"`
	// OrphanGrace 新上传对象在该时间内不会被视为孤儿
	OrphanGrace time.Duration `mapstructure:"orphan_grace"`
}

// setDefaults 设置定时任务默认值.
func (c *JobsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.orphan_sweep_cron", "17 * * * *")
	v.SetDefault("jobs.orphan_grace", time.Hour)
}
