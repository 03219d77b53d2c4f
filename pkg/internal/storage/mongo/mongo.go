// Package mongo MongoDB 连接管理，store.backend=mongo 时使用.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/yeisme/exceleasy/pkg/configs"
	nlog "github.com/yeisme/exceleasy/pkg/log"
)

// Client 包装 mongo.Client 与目标数据库名.
type Client struct {
	*mongo.Client

	database string
}

// New 连接并 Ping 主节点.
func New(ctx context.Context, cfg *configs.MongoConfig) (*Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName("exceleasy")

	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
		opts.SetServerSelectionTimeout(cfg.ConnectTimeout)
	}

	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	cli, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	nlog.Logger().Info().Str("database", cfg.Database).Msg("mongo connected")

	return &Client{Client: cli, database: cfg.Database}, nil
}

// Database 配置的数据库名.
func (c *Client) Database() string {
	return c.database
}

// Ping 检查主节点可达.
func (c *Client) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx, readpref.Primary())
}

// Close 断开连接.
func (c *Client) Close(ctx context.Context) error {
	return c.Disconnect(ctx)
}
