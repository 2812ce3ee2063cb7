// Package cache 在 KV 存储之上提供类型安全的泛型缓存.
//
// 值经 sonic 序列化为 JSON 存入底层 KV（memory/redis/nats/groupcache 均可），
// TTL 由底层存储负责. GetOrSet 通过 singleflight 合并同一 key 的并发回源，
// 避免列表查询在缓存失效瞬间击穿数据库.
//
//	summaries, err := cache.GetOrSet(ctx, c, "ingest:list:active", func() ([]Summary, error) {
//	    return loadFromDB(ctx)
//	}, 30*time.Second)
//
// 缓存未命中与回源错误通过 error 区分，写缓存失败不影响返回值.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"golang.org/x/sync/singleflight"

	"github.com/yeisme/ingestvault/pkg/internal/storage/kv"
)

// Cache 基于KV存储的缓存实现.
// sf 对同一 key 的并发回源做合并，防止缓存击穿.
type Cache struct {
	kvStore kv.KVStore
	sf      singleflight.Group
}

// NewCache 创建一个新的缓存实例.
func NewCache(kvStore kv.KVStore) *Cache {
	return &Cache{
		kvStore: kvStore,
	}
}

// Get 泛型获取缓存值.
func Get[T any](ctx context.Context, c *Cache, key string) (T, error) {
	var zero T

	data, err := c.kvStore.Get(ctx, key)
	if err != nil {
		return zero, err
	}

	var value T
	if err := sonic.Unmarshal(data, &value); err != nil {
		return zero, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return value, nil
}

// Set 泛型设置缓存值.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return c.kvStore.Set(ctx, key, data, ttl)
}

// Delete 删除缓存键.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.kvStore.Delete(ctx, key)
}

// Exists 检查缓存键是否存在.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	return c.kvStore.Exists(ctx, key)
}

// GetOrSet 获取缓存值，如果不存在则通过 getter 回源并写入缓存.
// 同一 key 的并发未命中只会触发一次回源（singleflight）.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, getter func() (T, error), ttl time.Duration) (T, error) {
	var zero T

	// 尝试获取
	if value, err := Get[T](ctx, c, key); err == nil {
		return value, nil
	}

	v, err, _ := c.sf.Do(key, func() (any, error) {
		// 合并期间可能已有别的调用回填过缓存
		if value, getErr := Get[T](ctx, c, key); getErr == nil {
			return value, nil
		}

		value, getErr := getter()
		if getErr != nil {
			return zero, getErr
		}

		// 缓存写入失败不影响返回值
		_ = Set(ctx, c, key, value, ttl)

		return value, nil
	})
	if err != nil {
		return zero, err
	}

	value, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected cached value type for key %q", key)
	}

	return value, nil
}

// Clear 清空缓存（如果支持）.
func (c *Cache) Clear(ctx context.Context) error {
	keys, err := c.kvStore.Keys(ctx, "*")
	if err != nil {
		return err
	}

	for _, key := range keys {
		// 部分KV存储可能不支持删除所有键
		if delErr := c.kvStore.Delete(ctx, key); delErr != nil {
			return delErr
		}
	}

	return nil
}
