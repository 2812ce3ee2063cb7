package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/ingestvault/pkg/context"
	"github.com/yeisme/ingestvault/pkg/internal/storage"
)

// StorageMiddleware 将存储管理器挂到请求 context 上，
// 下游 service 层通过 context 取用 DB/S3/KV/MQ 客户端.
func StorageMiddleware(manager *storage.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(
			context.WithStorageManager(c.Request.Context(), manager))
		c.Next()
	}
}
