// Package storage 聚合持久化与外部存储资源（DB、S3、KV、MQ），
// 为上层提供统一的初始化入口与客户端获取方法.
//
// Example:
//
// 初始化
//
//	 ctx := context.Background()
//	 mgr, err := storage.Init(ctx)
//
//		if err != nil {
//		    // 处理错误
//		}
//
// 获取存储客户端
//
//	dbClient := mgr.GetDBClient()
//	s3Client := mgr.GetS3Client()
package storage

import (
	"context"
	"sync"

	dbc "github.com/yeisme/ingestvault/pkg/internal/storage/db"
	kvc "github.com/yeisme/ingestvault/pkg/internal/storage/kv"
	mqc "github.com/yeisme/ingestvault/pkg/internal/storage/mq"
	s3c "github.com/yeisme/ingestvault/pkg/internal/storage/s3"
	nlog "github.com/yeisme/ingestvault/pkg/log"
)

// Manager 聚合所有存储资源.
// DB 与 S3 是核心依赖，初始化失败直接报错；
// KV 与 MQ 属于增强能力（缓存、事件），失败时降级为 nil 并记录警告.
type Manager struct {
	DB *dbc.Client
	S3 *s3c.Client
	KV *kvc.Client
	MQ *mqc.Client
}

var (
	mgr     *Manager
	mgrOnce sync.Once
)

// Init 初始化默认存储，使用全局配置. 重复调用只返回已初始化实例.
func Init(ctx context.Context) (*Manager, error) {
	var err error

	mgrOnce.Do(func() {
		m := &Manager{}

		// DB
		if dbi, e := dbc.New(ctx); e != nil {
			err = e

			return
		} else {
			m.DB = dbi
		}

		// S3
		if s3i, e := s3c.New(ctx); e != nil {
			err = e

			return
		} else {
			m.S3 = s3i
		}

		// KV：失败降级，缓存相关功能自动关闭
		if kvi, e := kvc.NewKVClient(ctx); e != nil {
			nlog.Logger().Warn().Err(e).Msg("kv store unavailable, caching disabled")
		} else {
			m.KV = kvi
		}

		// MQ：失败降级，事件发布自动关闭
		if mqi, e := mqc.New(ctx); e != nil {
			nlog.Logger().Warn().Err(e).Msg("mq unavailable, event publishing disabled")
		} else {
			m.MQ = mqi
		}

		mgr = m

		nlog.Logger().Info().Msg("storage manager initialized")
	})

	return mgr, err
}

// GetDBClient 获取 DB 客户端.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetS3Client 获取 S3 客户端.
func (m *Manager) GetS3Client() *s3c.Client {
	return m.S3
}

// GetKVClient 获取 KV 客户端.
func (m *Manager) GetKVClient() *kvc.Client {
	return m.KV
}

// GetMQClient 获取 MQ 客户端.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}

// Close 关闭全部存储连接，按依赖的反序释放.
func (m *Manager) Close() error {
	if m.MQ != nil {
		_ = m.MQ.Close()
	}

	if m.KV != nil {
		_ = m.KV.Close()
	}

	if m.S3 != nil {
		_ = m.S3.Close()
	}

	if m.DB != nil {
		if sqlDB, err := m.DB.DB.DB(); err == nil {
			return sqlDB.Close()
		}
	}

	return nil
}
