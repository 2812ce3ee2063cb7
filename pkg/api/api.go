// Package api 将各路由组装配到 gin 引擎上，是 app 与 router 之间的门面.
package api

import (
	"github.com/gin-gonic/gin"

	appcache "github.com/yeisme/ingestvault/pkg/cache"
	"github.com/yeisme/ingestvault/pkg/configs"
	"github.com/yeisme/ingestvault/pkg/internal/router"
	"github.com/yeisme/ingestvault/pkg/internal/storage"
	"github.com/yeisme/ingestvault/pkg/middleware"
)

// RegisterGroup 注册全部业务路由到传入的 gin 引擎，挂载在 /api/v1 下.
// KV 可用时为读接口启用响应缓存；对象列表接口始终带熔断.
func RegisterGroup(e *gin.Engine, mgr *storage.Manager) *gin.Engine {
	v1 := e.Group("/api/v1")

	mw := router.IngestRouteMiddleware{
		ObjectsBreaker: middleware.CircuitBreakerMiddleware(configs.GetConfig().CircuitBreaker),
	}

	if mgr != nil && mgr.KV != nil {
		cacheCfg := middleware.DefaultCacheConfig(appcache.NewCache(mgr.KV.KVStore))
		mw.ListCache = middleware.CacheMiddleware(cacheCfg)
	}

	router.RegisterIngestRoutes(v1, mw)
	router.RegisterHealthCheckRoute(v1)
	router.RegisterSchedulerRoutes(v1)
	router.RegisterSwaggerRoute(e)

	return e
}
