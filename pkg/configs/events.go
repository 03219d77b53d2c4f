package configs

import "github.com/spf13/viper"

// EventsConfig 控制文件事件发布的开关（全局与分主题）.
type EventsConfig struct {
	Enabled bool             `mapstructure:"enabled"` // 总开关，需要 mq.enabled
	File    FileEventsConfig `mapstructure:"file"`
}

// FileEventsConfig 文件导入领域的事件开关.
type FileEventsConfig struct {
	Ingested bool `mapstructure:"ingested"`
	Rejected bool `mapstructure:"rejected"`
	Deleted  bool `mapstructure:"deleted"`
}

// setDefaults 设置事件开关的默认值.
func (c *EventsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("events.enabled", true)

	v.SetDefault("events.file.ingested", true)
	v.SetDefault("events.file.deleted", true)
	// 被拒绝的上传量可能较大，默认关闭
	v.SetDefault("events.file.rejected", false)
}
