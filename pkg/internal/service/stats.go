package service

import (
	"context"
	"fmt"

	"github.com/yeisme/ingestvault/pkg/internal/model"
)

// CountByState 统计各状态下的摄取流程数量，供指标刷新任务使用.
// 所有已知状态都会出现在结果里，没有流程的状态计数为 0.
func (s *IngestService) CountByState(ctx context.Context) (map[model.IngestState]int64, error) {
	type stateCount struct {
		State model.IngestState
		N     int64
	}

	var rows []stateCount

	err := s.dbClient.WithContext(ctx).
		Model(&model.IngestProcess{}).
		Select("state, count(*) as n").
		Group("state").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count ingest processes by state: %w", err)
	}

	counts := map[model.IngestState]int64{
		model.IngestStatePending:   0,
		model.IngestStateRunning:   0,
		model.IngestStateComplete:  0,
		model.IngestStateFailed:    0,
		model.IngestStateAbandoned: 0,
	}
	for _, r := range rows {
		counts[r.State] = r.N
	}

	return counts, nil
}

// ListSourceIDs 返回全部来源 id，供来源缓存预热任务使用.
func (s *IngestService) ListSourceIDs(ctx context.Context) ([]uint, error) {
	var ids []uint

	err := s.dbClient.WithContext(ctx).
		Model(&model.Source{}).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list source ids: %w", err)
	}

	return ids, nil
}

// WarmSourceCache 将全部来源的精简视图写入缓存. 没有配置 KV 时为 no-op.
func (s *IngestService) WarmSourceCache(ctx context.Context) (int, error) {
	if s.sourceCache == nil {
		return 0, nil
	}

	ids, err := s.ListSourceIDs(ctx)
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		if _, err := s.sourceSummary(ctx, id); err != nil {
			return 0, err
		}
	}

	return len(ids), nil
}
