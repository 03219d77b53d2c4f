package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultMongoURI            = "mongodb://localhost:27017"
	DefaultMongoDatabase       = "exceleasy"
	DefaultMongoConnectTimeout = 10 * time.Second
)

// MongoConfig MongoDB 连接配置，仅在 store.backend=mongo 时使用.
type MongoConfig struct {
	URI            string        `mapstructure:"uri"             rule:"required"`
	Database       string        `mapstructure:"database"        rule:"required"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	MaxPoolSize    uint64        `mapstructure:"max_pool_size"`
}

// setDefaults 设置 MongoDB 配置的默认值.
func (c *MongoConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("mongo.uri", DefaultMongoURI)
	v.SetDefault("mongo.database", DefaultMongoDatabase)
	v.SetDefault("mongo.connect_timeout", DefaultMongoConnectTimeout)
	v.SetDefault("mongo.max_pool_size", 0)
}
