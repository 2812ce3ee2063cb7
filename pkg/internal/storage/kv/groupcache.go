package kv

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/groupcache"

	"github.com/yeisme/ingestvault/pkg/configs"
)

// GroupcacheKV 进程内缓存, 写入本地表, 读取经由 groupcache 组
// (配置了 peers 时读取可分摊到对等节点). TTL 由 ttlEnvelope 补齐.
type GroupcacheKV struct {
	group *groupcache.Group
	pool  *groupcache.HTTPPool

	mu    sync.RWMutex
	local map[string][]byte
}

// NewGroupcacheKV 创建 groupcache 缓存组.
func NewGroupcacheKV(cfg *configs.GroupcacheKVConfig) (*GroupcacheKV, error) {
	g := &GroupcacheKV{local: make(map[string][]byte)}

	getter := groupcache.GetterFunc(func(_ context.Context, key string, dest groupcache.Sink) error {
		g.mu.RLock()
		value, ok := g.local[key]
		g.mu.RUnlock()

		if !ok {
			return fmt.Errorf("key not found: %s", key)
		}

		return dest.SetBytes(value)
	})

	g.group = groupcache.NewGroup(cfg.Name, cfg.CacheBytes, getter)

	if len(cfg.Peers) > 0 {
		g.pool = groupcache.NewHTTPPoolOpts(cfg.Self, &groupcache.HTTPPoolOptions{})
		g.pool.Set(cfg.Peers...)
	}

	return g, nil
}

func (g *GroupcacheKV) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	if err := g.group.Get(ctx, key, groupcache.AllocatingByteSliceSink(&data)); err != nil {
		return nil, fmt.Errorf("groupcache get %s: %w", key, err)
	}

	value, expired, err := unwrapTTL(data, time.Now())
	if err != nil {
		return nil, err
	}

	if expired {
		_ = g.Delete(ctx, key)
		return nil, fmt.Errorf("key not found: %s", key)
	}

	out := make([]byte, len(value))
	copy(out, value)

	return out, nil
}

func (g *GroupcacheKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	wrapped, err := wrapTTL(value, ttl)
	if err != nil {
		return err
	}

	stored := make([]byte, len(wrapped))
	copy(stored, wrapped)

	g.mu.Lock()
	g.local[key] = stored
	g.mu.Unlock()

	return nil
}

func (g *GroupcacheKV) Delete(ctx context.Context, key string) error {
	g.mu.Lock()
	delete(g.local, key)
	g.mu.Unlock()

	return nil
}

func (g *GroupcacheKV) Exists(ctx context.Context, key string) (bool, error) {
	g.mu.RLock()
	data, ok := g.local[key]
	g.mu.RUnlock()

	if !ok {
		return false, nil
	}

	_, expired, err := unwrapTTL(data, time.Now())
	if err != nil {
		return false, err
	}

	return !expired, nil
}

func (g *GroupcacheKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	keys := make([]string, 0, len(g.local))

	for key := range g.local {
		if pattern == "" || pattern == "*" || key == pattern {
			keys = append(keys, key)
		}
	}

	return keys, nil
}

func (g *GroupcacheKV) Close() error {
	// groupcache 没有显式关闭
	return nil
}
