package configs

import "github.com/spf13/viper"

// StoreBackend 文件记录存储后端.
type StoreBackend string

const (
	StoreBackendSQL   StoreBackend = "sql"   // gorm，见 DBConfig
	StoreBackendMongo StoreBackend = "mongo" // MongoDB，见 MongoConfig
)

// StoreConfig 选择文件记录、活动日志与用户目录的持久化后端.
type StoreConfig struct {
	Backend StoreBackend `mapstructure:"backend" rule:"oneof=sql mongo"`
}

// setDefaults 设置存储后端默认值.
func (c *StoreConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("store.backend", StoreBackendSQL)
}
