// Package service 实现摄取流程的业务逻辑：创建事务、部分更新、标签变更与
// 对象列表的预签名链接补全，不处理 HTTP 细节.
package service

import (
	"context"
	"time"

	appcache "github.com/yeisme/ingestvault/pkg/cache"
	"github.com/yeisme/ingestvault/pkg/configs"
	ctxPkg "github.com/yeisme/ingestvault/pkg/context"
	"github.com/yeisme/ingestvault/pkg/internal/storage/db"
	"github.com/yeisme/ingestvault/pkg/internal/storage/mq"
	"github.com/yeisme/ingestvault/pkg/internal/storage/s3"
	nlog "github.com/yeisme/ingestvault/pkg/log"
	"github.com/yeisme/ingestvault/pkg/middleware"
)

// AccessGate 写操作门禁：返回 false 时整个操作以 ErrForbidden 失败，不产生写入.
// 读操作（列表、详情、对象列表）不经过门禁.
type AccessGate func(ctx context.Context) bool

// ObjectSigner 为对象签发限时下载链接的能力抽象.
type ObjectSigner interface {
	PresignedGetURL(ctx context.Context, bucket, key string, expiry time.Duration) (string, error)
}

// SignerFactory 针对指定对象存储 host 创建签名客户端.
// 对象记录自带存储位置，签名必须针对对象所在 host 进行.
type SignerFactory func(host string) (ObjectSigner, error)

// IngestService 负责摄取流程相关业务逻辑.
type IngestService struct {
	dbClient *db.Client
	mqClient *mq.Client

	// sourceCache 缓存 Source 精简视图，避免反复加载几何大字段所在的行.
	// 为 nil 时直接查库.
	sourceCache *appcache.Cache

	gate          AccessGate
	newSigner     SignerFactory
	presignExpiry time.Duration
}

// NewIngestService 从 context 获取依赖实例.
// DB 缺失说明初始化流程有误，直接 Fatal；MQ/KV 缺失时对应能力降级.
func NewIngestService(c context.Context) *IngestService {
	dbc := ctxPkg.GetDBClient(c)
	if dbc == nil || dbc.DB == nil {
		nlog.Logger().Fatal().Msg("db client not initialized")
	}

	svc := &IngestService{
		dbClient:      dbc,
		mqClient:      ctxPkg.GetMQClient(c),
		gate:          middleware.HasWriteAccess,
		newSigner:     minioSignerFactory,
		presignExpiry: presignExpiry(),
	}

	if kvc := ctxPkg.GetKVClient(c); kvc != nil {
		svc.sourceCache = appcache.NewCache(kvc.KVStore)
	}

	return svc
}

// minioSignerFactory 为指定 host 创建 MinIO 客户端，凭证沿用全局配置.
func minioSignerFactory(host string) (ObjectSigner, error) {
	return s3.NewForHost(host)
}

func presignExpiry() time.Duration {
	secs := configs.GetConfig().S3.PresignExpirySeconds
	if secs <= 0 {
		secs = configs.DefaultS3PresignExpirySeconds
	}

	return time.Duration(secs) * time.Second
}
