// Package storage 聚合应用用到的全部存储资源，启动时按配置初始化.
//
//	mgr, err := storage.New(ctx, configs.GetConfig())
//	if err != nil {
//	    // 处理错误
//	}
//	defer mgr.Close(ctx)
//
//	st := mgr.Store()       // 记录存储，按 store.backend 选择
//	blobs := mgr.S3         // 可能为 nil（s3.enabled=false）
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeisme/exceleasy/pkg/configs"
	dbc "github.com/yeisme/exceleasy/pkg/internal/storage/db"
	kvc "github.com/yeisme/exceleasy/pkg/internal/storage/kv"
	mongoc "github.com/yeisme/exceleasy/pkg/internal/storage/mongo"
	mqc "github.com/yeisme/exceleasy/pkg/internal/storage/mq"
	s3c "github.com/yeisme/exceleasy/pkg/internal/storage/s3"
	"github.com/yeisme/exceleasy/pkg/internal/store"
	nlog "github.com/yeisme/exceleasy/pkg/log"
)

// Component 可做健康检查的存储组件名.
type Component string

const (
	ComponentDB    Component = "db"
	ComponentMongo Component = "mongo"
	ComponentS3    Component = "s3"
	ComponentKV    Component = "kv"
	ComponentMQ    Component = "mq"
	ComponentStore Component = "store"
)

// ErrNotConfigured 组件未启用.
var ErrNotConfigured = errors.New("component not configured")

// Manager 聚合所有存储资源. 可选组件未启用时为 nil.
type Manager struct {
	DB    *dbc.Client
	Mongo *mongoc.Client
	S3    *s3c.Client
	KV    *kvc.Client
	MQ    *mqc.Client

	store store.Store
}

// New 按配置初始化存储. 记录存储后端所需的连接是必需的，其余组件受 enabled 控制.
// 任一组件失败时关闭已打开的连接并返回错误.
func New(ctx context.Context, cfg *configs.AppConfig) (m *Manager, err error) {
	m = &Manager{}

	defer func() {
		if err != nil {
			_ = m.Close(ctx)
			m = nil
		}
	}()

	switch cfg.Store.Backend {
	case configs.StoreBackendMongo:
		if m.Mongo, err = mongoc.New(ctx, &cfg.Mongo); err != nil {
			return m, fmt.Errorf("init mongo: %w", err)
		}

		m.store = store.NewMongoStore(m.Mongo.Client, m.Mongo.Database())
	default:
		if m.DB, err = dbc.New(ctx, &cfg.DB, cfg.Metrics.Enabled); err != nil {
			return m, fmt.Errorf("init db: %w", err)
		}

		m.store = store.NewSQLStore(m.DB.DB)
	}

	if cfg.S3.Enabled {
		if m.S3, err = s3c.New(ctx, &cfg.S3); err != nil {
			return m, fmt.Errorf("init s3: %w", err)
		}
	}

	if cfg.KV.Enabled {
		if m.KV, err = kvc.New(ctx, &cfg.KV); err != nil {
			return m, fmt.Errorf("init kv: %w", err)
		}
	}

	if cfg.MQ.Enabled {
		if m.MQ, err = mqc.New(ctx, &cfg.MQ, cfg.Metrics.Enabled); err != nil {
			return m, fmt.Errorf("init mq: %w", err)
		}
	}

	nlog.Logger().Info().
		Str("store", string(cfg.Store.Backend)).
		Bool("s3", m.S3 != nil).
		Bool("kv", m.KV != nil).
		Bool("mq", m.MQ != nil).
		Msg("storage manager initialized")

	return m, nil
}

// NewWithStore 用现成的记录存储构造 Manager，供测试与工具使用.
func NewWithStore(st store.Store) *Manager {
	return &Manager{store: st}
}

// Store 记录存储.
func (m *Manager) Store() store.Store {
	return m.store
}

// GetS3Client 获取 S3 客户端.
func (m *Manager) GetS3Client() *s3c.Client {
	return m.S3
}

// GetDBClient 获取 DB 客户端.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetKVClient 获取 KV 客户端.
func (m *Manager) GetKVClient() *kvc.Client {
	return m.KV
}

// GetMQClient 获取 MQ 客户端.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}

// Health 检查单个组件；未启用时返回 ErrNotConfigured.
func (m *Manager) Health(ctx context.Context, c Component) error {
	switch c {
	case ComponentDB:
		if m.DB == nil {
			return ErrNotConfigured
		}

		return m.DB.Ping(ctx)
	case ComponentStore:
		if m.store == nil {
			return ErrNotConfigured
		}

		return m.store.Ping(ctx)
	case ComponentMongo:
		if m.Mongo == nil {
			return ErrNotConfigured
		}

		return m.Mongo.Ping(ctx)
	case ComponentS3:
		if m.S3 == nil {
			return ErrNotConfigured
		}

		return m.S3.HealthCheck(ctx)
	case ComponentKV:
		if m.KV == nil {
			return ErrNotConfigured
		}

		_, err := m.KV.Exists(ctx, "health.probe")

		return err
	case ComponentMQ:
		if m.MQ == nil {
			return ErrNotConfigured
		}

		return nil
	default:
		return fmt.Errorf("unknown component %q", c)
	}
}

// Close 关闭全部连接，返回合并后的错误.
func (m *Manager) Close(ctx context.Context) error {
	var errList []error

	if m.MQ != nil {
		errList = append(errList, m.MQ.Close())
	}

	if m.KV != nil {
		errList = append(errList, m.KV.Close())
	}

	if m.S3 != nil {
		errList = append(errList, m.S3.Close())
	}

	if m.Mongo != nil {
		errList = append(errList, m.Mongo.Close(ctx))
	}

	if m.DB != nil {
		errList = append(errList, m.DB.Close())
	}

	return errors.Join(errList...)
}
