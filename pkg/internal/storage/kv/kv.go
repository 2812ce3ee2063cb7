// Package kv 提供键值存储抽象与多种后端实现.
package kv

import (
	"context"
	"fmt"
	"time"

	"github.com/yeisme/ingestvault/pkg/configs"
)

// Client 包装具体的 KVStore 实现.
type Client struct {
	KVStore
}

// KVStore 键值存储接口.
type KVStore interface {
	// Get 获取键的值, 不存在或已过期返回错误.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set 设置键的值, ttl<=0 表示不过期.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete 删除键.
	Delete(ctx context.Context, key string) error
	// Exists 检查键是否存在.
	Exists(ctx context.Context, key string) (bool, error)
	// Keys 列出键, 仅用于调试和 Clear.
	Keys(ctx context.Context, pattern string) ([]string, error)
	// Close 关闭底层连接.
	Close() error
}

// KVType 键值存储后端类型.
type KVType string

const (
	KVTypeMemory     KVType = "memory"
	KVTypeRedis      KVType = "redis"
	KVTypeNATS       KVType = "nats"
	KVTypeGroupcache KVType = "groupcache"
)

// SupportedKVTypes 返回全部可用的后端类型.
func SupportedKVTypes() []KVType {
	return []KVType{KVTypeMemory, KVTypeRedis, KVTypeNATS, KVTypeGroupcache}
}

// NewKVClient 按配置选择后端并建立连接.
func NewKVClient(ctx context.Context) (*Client, error) {
	cfg := configs.GetConfig().KV

	var (
		store KVStore
		err   error
	)

	switch KVType(cfg.Type) {
	case KVTypeMemory:
		store = NewMemoryKV()
	case KVTypeRedis:
		store, err = NewRedisKV(ctx, &cfg.Redis)
	case KVTypeNATS:
		store, err = NewNATSKV(ctx, &cfg.NATS)
	case KVTypeGroupcache:
		store, err = NewGroupcacheKV(&cfg.Groupcache)
	default:
		return nil, fmt.Errorf("unsupported KV type: %s", cfg.Type)
	}

	if err != nil {
		return nil, err
	}

	return &Client{KVStore: store}, nil
}
