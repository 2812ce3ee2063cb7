// Package queue 定义消息主题常量与通配模式，供发布/订阅使用.
package queue

// 主题命名规范：iv.<域>.<动作>[.<状态>]，尽量稳定且向后兼容.
// 域：ingest(摄取流程)、tag(标签)、object(存储对象)
// 动作/状态：created/updated/completed/failed、added/removed 等

const (
	// 摄取流程生命周期.
	TopicIngestCreated   = "iv.ingest.created"   // 摄取流程登记完成（对象组已分配）
	TopicIngestUpdated   = "iv.ingest.updated"   // 摄取流程字段被部分更新
	TopicIngestCompleted = "iv.ingest.completed" // 摄取流程进入 complete 状态
	TopicIngestFailed    = "iv.ingest.failed"    // 摄取流程进入 failed 状态

	// 标签变更.
	TopicIngestTagAdded   = "iv.ingest.tag.added"   // 摄取流程新增标签
	TopicIngestTagRemoved = "iv.ingest.tag.removed" // 摄取流程删除标签（按值删除）

	// 存储对象访问.
	TopicObjectAccessed = "iv.object.accessed" // 对象被签发下载链接（用于热点统计）
)

// 主题分组，用于批量订阅或权限控制.
var (
	// 摄取流程相关主题集合.
	IngestTopics = []string{
		TopicIngestCreated, TopicIngestUpdated,
		TopicIngestCompleted, TopicIngestFailed,
	}

	// 标签相关主题集合.
	TagTopics = []string{
		TopicIngestTagAdded, TopicIngestTagRemoved,
	}
)
