// Package jobs 负责注册与实现业务定时任务（基于 scheduler）。
package jobs

import (
	"context"
	"fmt"

	ctxPkg "github.com/yeisme/ingestvault/pkg/context"
	"github.com/yeisme/ingestvault/pkg/internal/service"
	"github.com/yeisme/ingestvault/pkg/internal/storage"
	"github.com/yeisme/ingestvault/pkg/log"
	"github.com/yeisme/ingestvault/pkg/metrics"
	"github.com/yeisme/ingestvault/pkg/scheduler"
)

// RegisterCronJobs 配置业务定时任务：
//   - 每 5 分钟刷新各状态摄取流程数量的 prometheus 指标
//   - 每天 04:00 将全部来源的精简视图预热进 KV 缓存
func RegisterCronJobs(sched *scheduler.Scheduler, mgr *storage.Manager) error {
	if sched == nil {
		return fmt.Errorf("scheduler is nil")
	}

	if mgr == nil {
		return fmt.Errorf("storage manager is nil")
	}

	// 将 storage manager 注入到 context，便于 service 使用
	baseCtx := ctxPkg.WithStorageManager(context.Background(), mgr)

	if err := sched.AddCron(baseCtx, JobIngestStatsRefresh, CronIngestStatsRefresh, runIngestStatsRefresh); err != nil {
		return err
	}

	return sched.AddCron(baseCtx, JobSourceCacheWarm, CronSourceCacheWarm, runSourceCacheWarm)
}

// runIngestStatsRefresh 统计各状态的摄取流程数量并写入 gauge。
func runIngestStatsRefresh(ctx context.Context) {
	l := log.Logger().With().Str("job", JobIngestStatsRefresh).Logger()

	svc := service.NewIngestService(ctx)

	counts, err := svc.CountByState(ctx)
	if err != nil {
		l.Error().Err(err).Msg("count by state failed")
		return
	}

	var total int64

	for state, n := range counts {
		metrics.IngestProcessesByState.WithLabelValues(string(state)).Set(float64(n))
		total += n
	}

	l.Debug().Int64("total", total).Msg("ingest stats refreshed")
}

// runSourceCacheWarm 将全部来源的精简视图写入 KV 缓存。
func runSourceCacheWarm(ctx context.Context) {
	l := log.Logger().With().Str("job", JobSourceCacheWarm).Logger()

	svc := service.NewIngestService(ctx)

	n, err := svc.WarmSourceCache(ctx)
	if err != nil {
		l.Error().Err(err).Msg("source cache warm failed")
		return
	}

	if n > 0 {
		l.Info().Int("sources", n).Msg("source cache warmed")
	}
}
