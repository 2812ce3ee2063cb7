package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yeisme/ingestvault/pkg/internal/model"
	nlog "github.com/yeisme/ingestvault/pkg/log"
	"github.com/yeisme/ingestvault/pkg/queue"
)

// 标签变更遵循"提交后重读"：返回的始终是重读时刻已提交的完整标签列表，
// 而不是调用方写入前的内存快照. 并发变更按各自提交顺序生效.

// AddTag 为摄取流程追加一个标签并返回提交后的完整标签列表.
// (ingest_process_id, tag) 不做唯一约束，重复添加会产生重复行.
func (s *IngestService) AddTag(ctx context.Context, id uint, tag string) ([]string, error) {
	if !s.gate(ctx) {
		return nil, ErrForbidden
	}

	if err := s.ensureExists(ctx, id); err != nil {
		return nil, err
	}

	row := model.IngestProcessTag{IngestProcessID: id, Tag: tag}
	if err := s.dbClient.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("add tag to ingest process %d: %w", id, err)
	}

	tags, err := s.tagList(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publishTagChanged(ctx, queue.TopicIngestTagAdded, id, tag, tags)

	return tags, nil
}

// DeleteTag 按值删除标签：匹配 (id, tag) 的所有行都会被删除（含重复行）.
// 删除不存在的标签不是错误，返回未变化的当前列表.
func (s *IngestService) DeleteTag(ctx context.Context, id uint, tag string) ([]string, error) {
	if !s.gate(ctx) {
		return nil, ErrForbidden
	}

	if err := s.ensureExists(ctx, id); err != nil {
		return nil, err
	}

	err := s.dbClient.WithContext(ctx).
		Where("ingest_process_id = ? AND tag = ?", id, tag).
		Delete(&model.IngestProcessTag{}).Error
	if err != nil {
		return nil, fmt.Errorf("delete tag from ingest process %d: %w", id, err)
	}

	tags, err := s.tagList(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publishTagChanged(ctx, queue.TopicIngestTagRemoved, id, tag, tags)

	return tags, nil
}

// ensureExists 确认摄取流程存在，不存在时返回 ErrNotFound.
func (s *IngestService) ensureExists(ctx context.Context, id uint) error {
	var proc model.IngestProcess

	err := s.dbClient.WithContext(ctx).Select("id").First(&proc, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	if err != nil {
		return fmt.Errorf("load ingest process %d: %w", id, err)
	}

	return nil
}

// tagList 重读流程当前已提交的标签列表，按插入序返回.
func (s *IngestService) tagList(ctx context.Context, id uint) ([]string, error) {
	var rows []model.IngestProcessTag

	err := s.dbClient.WithContext(ctx).
		Where("ingest_process_id = ?", id).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list tags of ingest process %d: %w", id, err)
	}

	tags := make([]string, 0, len(rows))
	for _, r := range rows {
		tags = append(tags, r.Tag)
	}

	return tags, nil
}

func (s *IngestService) publishTagChanged(ctx context.Context, topic string, id uint, tag string, tags []string) {
	cfg := s.eventsConfig()
	if cfg == nil {
		return
	}

	if topic == queue.TopicIngestTagAdded && !cfg.Ingest.TagAdded {
		return
	}

	if topic == queue.TopicIngestTagRemoved && !cfg.Ingest.TagRemoved {
		return
	}

	payload := queue.TagChangedPayload{
		Ingest: queue.IngestRef{IngestProcessID: id},
		Tag:    tag,
		Tags:   tags,
	}

	var err error
	if topic == queue.TopicIngestTagAdded {
		err = queue.PublishIngestTagAdded(s.mqClient.Publisher(), payload, s.eventOpts(ctx)...)
	} else {
		err = queue.PublishIngestTagRemoved(s.mqClient.Publisher(), payload, s.eventOpts(ctx)...)
	}

	if err != nil {
		nlog.Logger().Warn().Err(err).Uint("id", id).Str("topic", topic).Msg("publish tag event failed")
	}
}
