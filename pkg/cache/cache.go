// Package cache 在 KV 存储之上提供带命名空间的泛型缓存.
//
// 值用 sonic 编码，键由命名空间与调用方给出的各部分经 xxhash 组成，
// 只包含字母数字和点，任何 KV 后端都能接受.
//
//	c := cache.New(kvClient, "idem")
//	id, found, err := cache.Lookup[string](ctx, c, c.Key(owner, key))
//
// 缓存未命中不是错误：Lookup 返回 found=false.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cespare/xxhash/v2"

	"github.com/yeisme/exceleasy/pkg/internal/storage/kv"
)

// Cache 基于 KV 存储的缓存.
type Cache struct {
	kvStore   kv.KVStore
	namespace string
}

// New 创建缓存实例，namespace 为空时不加前缀.
func New(kvStore kv.KVStore, namespace string) *Cache {
	return &Cache{kvStore: kvStore, namespace: namespace}
}

// Key 由若干部分生成定长键.各部分以 0 字节分隔后哈希，避免拼接歧义.
func (c *Cache) Key(parts ...string) string {
	sum := xxhash.Sum64String(strings.Join(parts, "\x00"))
	id := strconv.FormatUint(sum, 16)

	if c.namespace == "" {
		return id
	}

	return c.namespace + "." + id
}

// Lookup 读取缓存值；未命中返回 found=false 且 err 为 nil.
func Lookup[T any](ctx context.Context, c *Cache, key string) (value T, found bool, err error) {
	data, err := c.kvStore.Get(ctx, key)
	if kv.IsNotFound(err) {
		return value, false, nil
	}

	if err != nil {
		return value, false, err
	}

	if err := sonic.Unmarshal(data, &value); err != nil {
		return value, false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return value, true, nil
}

// Get 读取缓存值，未命中时返回包装了 kv.ErrKeyNotFound 的错误.
func Get[T any](ctx context.Context, c *Cache, key string) (T, error) {
	value, found, err := Lookup[T](ctx, c, key)
	if err == nil && !found {
		err = fmt.Errorf("cache %s: %w", key, kv.ErrKeyNotFound)
	}

	return value, err
}

// Set 写入缓存值.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return c.kvStore.Set(ctx, key, data, ttl)
}

// GetOrSet 命中则返回缓存值，否则调用 getter 并写回；写回失败不影响返回值.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, getter func() (T, error), ttl time.Duration) (T, error) {
	if value, found, err := Lookup[T](ctx, c, key); err == nil && found {
		return value, nil
	}

	value, err := getter()
	if err != nil {
		return value, err
	}

	_ = Set(ctx, c, key, value, ttl)

	return value, nil
}

// Delete 删除缓存键.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.kvStore.Delete(ctx, key)
}

// Exists 检查缓存键是否存在.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	return c.kvStore.Exists(ctx, key)
}

// Clear 删除本命名空间下的全部键.
func (c *Cache) Clear(ctx context.Context) error {
	pattern := "*"
	if c.namespace != "" {
		pattern = c.namespace + ".*"
	}

	keys, err := c.kvStore.Keys(ctx, pattern)
	if err != nil {
		return err
	}

	for _, key := range keys {
		if err := c.kvStore.Delete(ctx, key); err != nil {
			return err
		}
	}

	return nil
}
