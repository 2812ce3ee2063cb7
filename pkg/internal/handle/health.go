package handle

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/ingestvault/pkg/context"
)

const healthTimeout = 2 * time.Second

func healthOK(c *gin.Context, component string) {
	c.JSON(http.StatusOK, gin.H{"component": component, "status": "ok"})
}

func healthFail(c *gin.Context, component, reason string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"component": component, "status": "unhealthy", "error": reason})
}

// HealthDB 数据库健康检查，对连接池做带超时的 ping.
func HealthDB(c *gin.Context) {
	dbc := ctxPkg.GetDBClient(c.Request.Context())
	if dbc == nil || dbc.DB == nil { // dbc.DB 来自于嵌入的 *gorm.DB
		healthFail(c, "db", "db client not initialized")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	sqlDB, err := dbc.DB.DB()
	if err != nil {
		healthFail(c, "db", err.Error())
		return
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		healthFail(c, "db", err.Error())
		return
	}

	healthOK(c, "db")
}

// HealthS3 对象存储健康检查.
func HealthS3(c *gin.Context) {
	s3c := ctxPkg.GetS3Client(c.Request.Context())
	if s3c == nil || s3c.Client == nil { // s3c.Client 为底层 *minio.Client
		healthFail(c, "s3", "s3 client not initialized")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := s3c.HealthCheck(ctx); err != nil {
		healthFail(c, "s3", err.Error())
		return
	}

	healthOK(c, "s3")
}

// HealthMQ 消息队列健康检查.
func HealthMQ(c *gin.Context) {
	mqc := ctxPkg.GetMQClient(c.Request.Context())
	if mqc == nil { // publisher 与 subscriber 初始化在 New 中, 判空即可
		healthFail(c, "mq", "mq client not initialized")
		return
	}

	healthOK(c, "mq")
}
