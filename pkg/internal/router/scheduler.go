package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/ingestvault/pkg/internal/handle"
)

// RegisterSchedulerRoutes 注册后台任务调度管理路由，用于查看和控制定时任务.
//
//	GET    /scheduler/jobs          列出已注册任务及最近执行情况
//	POST   /scheduler/jobs/stop     停止所有正在运行的任务
//	DELETE /scheduler/jobs/:id      按任务 ID 移除任务
//	GET    /scheduler/queue/waiting 查看等待队列长度
func RegisterSchedulerRoutes(g *gin.RouterGroup) {
	g.GET("/scheduler/jobs", handle.SchedulerJobs)
	g.POST("/scheduler/jobs/stop", handle.SchedulerStopJobs)
	g.DELETE("/scheduler/jobs/:id", handle.SchedulerRemoveJob)
	g.GET("/scheduler/queue/waiting", handle.SchedulerQueueWaiting)
}
