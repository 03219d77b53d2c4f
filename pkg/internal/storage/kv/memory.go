package kv

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryEntry struct {
	value    []byte
	expireAt time.Time // 零值表示不过期
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expireAt.IsZero() && !now.Before(e.expireAt)
}

// MemoryKV 进程内 KV，过期键在访问时惰性清理.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
	now  func() time.Time
}

// NewMemoryKV 创建内存 KV 实例，不需要配置.
func NewMemoryKV(context.Context, any) (KVStore, error) {
	return &MemoryKV{data: make(map[string]memoryEntry), now: time.Now}, nil
}

// Get 获取键的值的副本.
func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.data[key]
	m.mu.RUnlock()

	if !ok {
		return nil, notFound(key)
	}

	if e.expired(m.now()) {
		m.evict(key)
		return nil, notFound(key)
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)

	return out, nil
}

// Set 保存值的副本.
func (m *MemoryKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := memoryEntry{value: make([]byte, len(value))}
	copy(e.value, value)

	if ttl > 0 {
		e.expireAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.data[key] = e
	m.mu.Unlock()

	return nil
}

// Delete 删除键.
func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()

	return nil
}

// Exists 检查键是否存在且未过期.
func (m *MemoryKV) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.Get(ctx, key)
	if IsNotFound(err) {
		return false, nil
	}

	return err == nil, err
}

// Keys 列出未过期的键，按字典序.
func (m *MemoryKV) Keys(_ context.Context, pattern string) ([]string, error) {
	now := m.now()

	m.mu.RLock()
	keys := make([]string, 0, len(m.data))

	for k, e := range m.data {
		if !e.expired(now) && matchKey(pattern, k) {
			keys = append(keys, k)
		}
	}
	m.mu.RUnlock()

	sort.Strings(keys)

	return keys, nil
}

// Close 无需操作.
func (m *MemoryKV) Close() error {
	return nil
}

// evict 删除仍处于过期状态的键，避免误删并发写入的新值.
func (m *MemoryKV) evict(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.data[key]; ok && e.expired(m.now()) {
		delete(m.data, key)
	}
}

func init() {
	RegisterKVFactory(KVTypeMemory, NewMemoryKV)
}
