// Package router 管理路由配置，将摄取流程相关路径绑定到 handle 层.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/ingestvault/pkg/internal/handle"
)

// IngestRouteMiddleware 按路由注入的可选中间件：
// ListCache 用于列表读的响应缓存（详情读不缓存，保证改后即读的一致性），
// ObjectsBreaker 用于对象列表接口的熔断. 为 nil 的项直接跳过.
type IngestRouteMiddleware struct {
	ListCache      gin.HandlerFunc
	ObjectsBreaker gin.HandlerFunc
}

// RegisterIngestRoutes 注册摄取流程路由.
//
//	GET    /processes                 列表（分页+过滤）
//	POST   /processes                 创建
//	GET    /processes/:id             详情
//	PATCH  /processes/:id             部分更新
//	POST   /processes/:id/tags        添加标签
//	DELETE /processes/:id/tags/:tag   按值删除标签
//	GET    /processes/:id/objects     对象列表（带预签名下载链接）
func RegisterIngestRoutes(g *gin.RouterGroup, mw IngestRouteMiddleware) {
	procs := g.Group("/processes")
	{
		procs.GET("", wrap(mw.ListCache, handle.ListIngestProcesses)...)
		procs.POST("", handle.CreateIngestProcess)

		single := procs.Group("/:id")
		{
			single.GET("", handle.GetIngestProcess)
			single.PATCH("", handle.PatchIngestProcess)

			single.POST("/tags", handle.AddIngestTag)
			single.DELETE("/tags/:tag", handle.DeleteIngestTag)

			// 对象列表依赖外部对象存储，挂熔断保护
			single.GET("/objects", wrap(mw.ObjectsBreaker, handle.ListIngestObjects)...)
		}
	}
}

// wrap 将可选中间件与最终处理器拼成 handler 链.
func wrap(mw gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	if mw == nil {
		return []gin.HandlerFunc{h}
	}

	return []gin.HandlerFunc{mw, h}
}
