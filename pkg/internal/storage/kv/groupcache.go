package kv

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/golang/groupcache"

	"github.com/yeisme/exceleasy/pkg/configs"
)

// GroupcacheKV 本节点写入的键保存在本地 map 中；配置了对等节点时，
// 本地缺失的键通过 groupcache 向拥有该键的节点读取.
type GroupcacheKV struct {
	group *groupcache.Group
	pool  *groupcache.HTTPPool

	mu   sync.RWMutex
	data map[string][]byte
	now  func() time.Time
}

var errGroupMiss = errors.New("groupcache: local miss")

// NewGroupcacheKV 创建 Groupcache KV 实例.
func NewGroupcacheKV(_ context.Context, config any) (KVStore, error) {
	cfg, ok := config.(*configs.GroupcacheKVConfig)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("invalid Groupcache config: %T", config)
	}

	g := &GroupcacheKV{data: make(map[string][]byte), now: time.Now}

	// 同名 group 只能注册一次
	g.group = groupcache.GetGroup(cfg.Name)
	if g.group == nil {
		g.group = groupcache.NewGroup(cfg.Name, cfg.CacheBytes, groupcache.GetterFunc(g.load))
	}

	if len(cfg.Peers) > 0 {
		g.pool = groupcache.NewHTTPPoolOpts(cfg.Self, &groupcache.HTTPPoolOptions{})
		g.pool.Set(cfg.Peers...)
	}

	return g, nil
}

// load groupcache 回源：只从本地 map 取值.
func (g *GroupcacheKV) load(_ context.Context, key string, dest groupcache.Sink) error {
	g.mu.RLock()
	v, ok := g.data[key]
	g.mu.RUnlock()

	if !ok {
		return errGroupMiss
	}

	return dest.SetBytes(v)
}

// Get 先查本地，再查对等节点.
func (g *GroupcacheKV) Get(ctx context.Context, key string) ([]byte, error) {
	g.mu.RLock()
	raw, ok := g.data[key]
	g.mu.RUnlock()

	if !ok {
		if g.pool == nil {
			return nil, notFound(key)
		}

		if err := g.group.Get(ctx, key, groupcache.AllocatingByteSliceSink(&raw)); err != nil {
			return nil, notFound(key)
		}
	}

	v, expired, err := decodeWithTTL(raw, g.now())
	if err != nil {
		return nil, err
	}

	if expired {
		_ = g.Delete(ctx, key)
		return nil, notFound(key)
	}

	out := make([]byte, len(v))
	copy(out, v)

	return out, nil
}

// Set 写入本地 map，带 TTL 包装.
func (g *GroupcacheKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	enc, err := encodeWithTTL(value, ttl, g.now())
	if err != nil {
		return err
	}

	cp := make([]byte, len(enc))
	copy(cp, enc)

	g.mu.Lock()
	g.data[key] = cp
	g.mu.Unlock()

	return nil
}

// Delete 只删除本地副本.
func (g *GroupcacheKV) Delete(_ context.Context, key string) error {
	g.mu.Lock()
	delete(g.data, key)
	g.mu.Unlock()

	return nil
}

// Exists 检查键是否存在且未过期.
func (g *GroupcacheKV) Exists(ctx context.Context, key string) (bool, error) {
	_, err := g.Get(ctx, key)
	if IsNotFound(err) {
		return false, nil
	}

	return err == nil, err
}

// Keys 列出本地未过期的键.
func (g *GroupcacheKV) Keys(_ context.Context, pattern string) ([]string, error) {
	now := g.now()

	g.mu.RLock()
	keys := make([]string, 0, len(g.data))

	for k, raw := range g.data {
		if !matchKey(pattern, k) {
			continue
		}

		if _, expired, err := decodeWithTTL(raw, now); err == nil && !expired {
			keys = append(keys, k)
		}
	}
	g.mu.RUnlock()

	sort.Strings(keys)

	return keys, nil
}

// Close groupcache 没有显式的关闭方法.
func (g *GroupcacheKV) Close() error {
	return nil
}

func init() {
	RegisterKVFactory(KVTypeGroupcache, NewGroupcacheKV)
}
