package queue

import "github.com/ThreeDotsLabs/watermill/message"

// -------------------------- 基于业务封装 events --------------------------

// PublishIngestCreated 发布 iv.ingest.created 事件。
// 摄取流程与其对象组在同一事务中登记完成后发布，通知下游开始投递对象。
// 可通过可选项 opts 注入 TraceID、Producer 等头部信息。
func PublishIngestCreated(pub message.Publisher, payload IngestCreatedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicIngestCreated, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicIngestCreated, msg)
}

// PublishIngestUpdated 发布 iv.ingest.updated 事件。
func PublishIngestUpdated(pub message.Publisher, payload IngestUpdatedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicIngestUpdated, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicIngestUpdated, msg)
}

// PublishIngestCompleted 发布 iv.ingest.completed 事件。
func PublishIngestCompleted(pub message.Publisher, payload IngestStateChangedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicIngestCompleted, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicIngestCompleted, msg)
}

// PublishIngestFailed 发布 iv.ingest.failed 事件。
func PublishIngestFailed(pub message.Publisher, payload IngestStateChangedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicIngestFailed, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicIngestFailed, msg)
}

// PublishObjectAccessed 发布 iv.object.accessed 事件，供下游做热点统计。
func PublishObjectAccessed(pub message.Publisher, payload ObjectAccessedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicObjectAccessed, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicObjectAccessed, msg)
}

// PublishIngestTagAdded 发布 iv.ingest.tag.added 事件。
func PublishIngestTagAdded(pub message.Publisher, payload TagChangedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicIngestTagAdded, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicIngestTagAdded, msg)
}

// PublishIngestTagRemoved 发布 iv.ingest.tag.removed 事件。
func PublishIngestTagRemoved(pub message.Publisher, payload TagChangedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicIngestTagRemoved, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicIngestTagRemoved, msg)
}
