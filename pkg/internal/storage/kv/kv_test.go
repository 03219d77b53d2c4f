package kv_test

import (
	"context"
	crand "crypto/rand"
	"fmt"
	mrand "math/rand"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/exceleasy/pkg/configs"
	"github.com/yeisme/exceleasy/pkg/internal/storage/kv"
)

func TestNewDispatchesSubConfig(t *testing.T) {
	c, err := kv.New(context.Background(), &configs.KVConfig{Type: "memory"})
	require.NoError(t, err)
	assert.Equal(t, kv.KVTypeMemory, c.Type)

	c, err = kv.New(context.Background(), &configs.KVConfig{
		Type:       "groupcache",
		Groupcache: configs.GroupcacheKVConfig{Name: "test-dispatch", CacheBytes: 1 << 20},
	})
	require.NoError(t, err)
	assert.Equal(t, kv.KVTypeGroupcache, c.Type)

	_, err = kv.New(context.Background(), &configs.KVConfig{Type: "etcd"})
	assert.Error(t, err)
}

func TestLocalStores(t *testing.T) {
	stores := map[string]func(t *testing.T) kv.KVStore{
		"memory": func(t *testing.T) kv.KVStore {
			s, err := kv.NewKVStore(context.Background(), kv.KVTypeMemory, nil)
			require.NoError(t, err)

			return s
		},
		"groupcache": func(t *testing.T) kv.KVStore {
			cfg := &configs.GroupcacheKVConfig{Name: "test-" + t.Name(), CacheBytes: 1 << 20}
			s, err := kv.NewKVStore(context.Background(), kv.KVTypeGroupcache, cfg)
			require.NoError(t, err)

			return s
		},
	}

	for name, mk := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := mk(t)
			defer s.Close()

			_, err := s.Get(ctx, "missing")
			require.ErrorIs(t, err, kv.ErrKeyNotFound)

			require.NoError(t, s.Set(ctx, "idem.alice.k1", []byte("01HX"), 0))
			require.NoError(t, s.Set(ctx, "idem.bob.k1", []byte("01HY"), 0))
			require.NoError(t, s.Set(ctx, "other", []byte("x"), 0))

			v, err := s.Get(ctx, "idem.alice.k1")
			require.NoError(t, err)
			assert.Equal(t, []byte("01HX"), v)

			v[0] = 'Z'
			again, _ := s.Get(ctx, "idem.alice.k1")
			assert.Equal(t, []byte("01HX"), again, "callers get a copy")

			keys, err := s.Keys(ctx, "idem.*")
			require.NoError(t, err)
			assert.Equal(t, []string{"idem.alice.k1", "idem.bob.k1"}, keys)

			require.NoError(t, s.Set(ctx, "short", []byte("v"), 20*time.Millisecond))
			ok, err := s.Exists(ctx, "short")
			require.NoError(t, err)
			assert.True(t, ok)

			time.Sleep(40 * time.Millisecond)

			ok, err = s.Exists(ctx, "short")
			require.NoError(t, err)
			assert.False(t, ok, "expired keys disappear")

			_, err = s.Get(ctx, "short")
			assert.True(t, kv.IsNotFound(err))

			require.NoError(t, s.Delete(ctx, "other"))
			require.NoError(t, s.Delete(ctx, "other"), "deleting a missing key is not an error")

			ok, err = s.Exists(ctx, "other")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func BenchmarkMemoryKV(b *testing.B) {
	store, err := kv.NewKVStore(context.Background(), kv.KVTypeMemory, nil)
	if err != nil {
		b.Fatalf("create memory kv: %v", err)
	}

	benchKV(b, "memory", store)
	benchKVParallel(b, "memory", store)
	_ = store.Close()
}

func BenchmarkGroupcacheKV(b *testing.B) {
	cfg := &configs.GroupcacheKVConfig{
		Name:       "bench-groupcache-" + b.Name(),
		CacheBytes: 32 * 1024 * 1024, // 32MB
		Peers:      []string{},
		Self:       "http://127.0.0.1:0",
	}

	store, err := kv.NewKVStore(context.Background(), kv.KVTypeGroupcache, cfg)
	if err != nil {
		b.Fatalf("create groupcache kv: %v", err)
	}

	benchKV(b, "groupcache", store)
	benchKVParallel(b, "groupcache", store)
	_ = store.Close()
}

// 可选：ENABLE_REDIS_BENCH=1，REDIS_ADDR 默认 127.0.0.1:6379.
func BenchmarkRedisKV(b *testing.B) {
	if os.Getenv("ENABLE_REDIS_BENCH") == "" {
		b.Skip("set ENABLE_REDIS_BENCH=1 to enable")
	}

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "127.0.0.1:6379"
	}

	cfg := &configs.RedisKVConfig{Addr: addr, Password: "", DB: 0}

	store, err := kv.NewKVStore(context.Background(), kv.KVTypeRedis, cfg)
	if err != nil {
		b.Skipf("redis not available: %v", err)
		return
	}

	benchKV(b, "redis", store)
	benchKVParallel(b, "redis", store)
	_ = store.Close()
}

// 可选：ENABLE_NATS_BENCH=1，NATS_URL 默认 nats://127.0.0.1:4222.
func BenchmarkNATSKV(b *testing.B) {
	if os.Getenv("ENABLE_NATS_BENCH") == "" {
		b.Skip("set ENABLE_NATS_BENCH=1 to enable")
	}

	url := os.Getenv("NATS_URL")
	if url == "" {
		url = "nats://127.0.0.1:4222"
	}

	bucket := os.Getenv("NATS_BUCKET")
	if bucket == "" {
		bucket = "bench-kv"
	}

	cfg := &configs.NATSKVConfig{URL: url, User: "", Password: "", Bucket: bucket}

	store, err := kv.NewKVStore(context.Background(), kv.KVTypeNATS, cfg)
	if err != nil {
		b.Skipf("nats not available: %v", err)
		return
	}

	benchKV(b, "nats", store)
	benchKVParallel(b, "nats", store)
	_ = store.Close()
}

// randBytes 生成 n 个随机字节，crypto/rand 失败时退回固定种子.
func randBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := crand.Read(b); err != nil {
		mr := mrand.New(mrand.NewSource(42))
		for i := range b {
			b[i] = byte(mr.Intn(256))
		}
	}

	return b
}

// benchKV 执行基本的 Set/Get/Delete 基准测试.
func benchKV(b *testing.B, name string, store kv.KVStore) {
	ctx := context.Background()
	sizes := []int{32, 1024, 64 * 1024}
	ttls := []time.Duration{0, 5 * time.Second}

	for _, size := range sizes {
		payload := randBytes(size)
		for _, ttl := range ttls {
			b.Run(fmt.Sprintf("%s/size=%d/ttl=%s", name, size, ttl), func(b *testing.B) {
				b.ReportAllocs()

				for i := 0; b.Loop(); i++ {
					// NATS KV 的键只允许字母数字和 -/_=.
					key := fmt.Sprintf("bench-%s-%d", name, i)
					if err := store.Set(ctx, key, payload, ttl); err != nil {
						b.Fatalf("set failed: %v", err)
					}

					if _, err := store.Get(ctx, key); err != nil {
						b.Fatalf("get failed: %v", err)
					}

					if err := store.Delete(ctx, key); err != nil {
						b.Fatalf("delete failed: %v", err)
					}
				}
			})
		}
	}
}

// benchKVParallel 执行并行的 Set/Get/Delete 基准测试.
func benchKVParallel(b *testing.B, name string, store kv.KVStore) {
	ctx := context.Background()
	size := 1024
	payload := randBytes(size)

	var ctr uint64

	b.Run(fmt.Sprintf("%s/parallel", name), func(b *testing.B) {
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				i := atomic.AddUint64(&ctr, 1)

				key := fmt.Sprintf("bench-%s-p-%d", name, i)
				if err := store.Set(ctx, key, payload, 0); err != nil {
					b.Fatalf("set failed: %v", err)
				}

				if _, err := store.Get(ctx, key); err != nil {
					b.Fatalf("get failed: %v", err)
				}

				if err := store.Delete(ctx, key); err != nil {
					b.Fatalf("delete failed: %v", err)
				}
			}
		})
	})
}
