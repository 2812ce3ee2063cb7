package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
// 建议在发布消息时填充 TraceID、OccurredAt、Producer 等，便于追踪链路与审计.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪/关联 ID，可来自中间件或业务生成.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC，RFC3339）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本，便于向后兼容演进.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
// T 即不同主题对应的负载结构体.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// -------------------------- 摄取流程领域 --------------------------

// IngestRef 标识一个摄取流程及其对象组.
type IngestRef struct {
	IngestProcessID uint   `json:"ingest_process_id"`
	ObjectGroupID   uint   `json:"object_group_id,omitempty"`
	SourceID        uint   `json:"source_id,omitempty"`
	State           string `json:"state,omitempty"`
}

// IngestCreatedPayload 摄取流程登记完成.
type IngestCreatedPayload struct {
	Ingest IngestRef `json:"ingest"`
	Tags   []string  `json:"tags,omitempty"`
}

// IngestUpdatedPayload 摄取流程被部分更新，Fields 列出实际写入的列名.
type IngestUpdatedPayload struct {
	Ingest IngestRef `json:"ingest"`
	Fields []string  `json:"fields,omitempty"`
}

// IngestStateChangedPayload 摄取流程进入终态（complete/failed）.
type IngestStateChangedPayload struct {
	Ingest        IngestRef `json:"ingest"`
	PreviousState string    `json:"previous_state,omitempty"`
}

// -------------------------- 标签领域 --------------------------

// TagChangedPayload 标签新增/删除后的状态，Tags 为变更后的完整标签列表.
type TagChangedPayload struct {
	Ingest IngestRef `json:"ingest"`
	Tag    string    `json:"tag"`
	Tags   []string  `json:"tags"`
}

// -------------------------- 存储对象领域 --------------------------

// ObjectAccessedPayload 对象被签发下载链接.
type ObjectAccessedPayload struct {
	Ingest IngestRef `json:"ingest"`
	Host   string    `json:"host"`
	Bucket string    `json:"bucket"`
	Key    string    `json:"key"`
}
