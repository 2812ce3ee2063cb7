// Package context 在请求上下文中传递存储管理器, 并提供带 trace 标识的 logger.
package context

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/ingestvault/pkg/internal/storage"
	dbc "github.com/yeisme/ingestvault/pkg/internal/storage/db"
	kvc "github.com/yeisme/ingestvault/pkg/internal/storage/kv"
	mqc "github.com/yeisme/ingestvault/pkg/internal/storage/mq"
	s3c "github.com/yeisme/ingestvault/pkg/internal/storage/s3"
)

type contextKey struct{}

// WithStorageManager 把存储管理器挂到 context, 由 StorageMiddleware
// 和后台任务在入口处调用; service 层只从 context 取客户端.
func WithStorageManager(ctx context.Context, mgr *storage.Manager) context.Context {
	return context.WithValue(ctx, contextKey{}, mgr)
}

// GetManager 取回存储管理器, 未注入时返回 nil.
func GetManager(ctx context.Context) *storage.Manager {
	if mgr, ok := ctx.Value(contextKey{}).(*storage.Manager); ok {
		return mgr
	}

	return nil
}

// GetDBClient 从 context 中获取 DB 客户端.
func GetDBClient(ctx context.Context) *dbc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetDBClient()
	}

	return nil
}

// GetS3Client 从 context 中获取对象存储客户端.
func GetS3Client(ctx context.Context) *s3c.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetS3Client()
	}

	return nil
}

// GetKVClient 从 context 中获取 KV 客户端.
func GetKVClient(ctx context.Context) *kvc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetKVClient()
	}

	return nil
}

// GetMQClient 从 context 中获取 MQ 客户端.
func GetMQClient(ctx context.Context) *mqc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetMQClient()
	}

	return nil
}

// WithTraceContext 返回带 trace_id/span_id 字段的 logger, 无活跃 span 时原样返回.
func WithTraceContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return logger
	}

	sc := span.SpanContext()

	return logger.With().
		Str("trace_id", sc.TraceID().String()).
		Str("span_id", sc.SpanID().String()).
		Logger()
}
