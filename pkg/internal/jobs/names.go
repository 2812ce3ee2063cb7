package jobs

// 任务名称常量，便于统一管理与引用.
const (
	JobIngestStatsRefresh = "ingest.stats.refresh"
	JobSourceCacheWarm    = "source.cache.warm"
)

// Cron 表达式常量（可选，但推荐一并集中管理）.
const (
	CronIngestStatsRefresh = "*/5 * * * *" // 每 5 分钟刷新状态统计
	CronSourceCacheWarm    = "0 4 * * *"   // 每天 04:00 预热来源缓存
)
