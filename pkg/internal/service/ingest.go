package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	appcache "github.com/yeisme/ingestvault/pkg/cache"
	"github.com/yeisme/ingestvault/pkg/configs"
	"github.com/yeisme/ingestvault/pkg/internal/model"
	"github.com/yeisme/ingestvault/pkg/internal/query"
	"github.com/yeisme/ingestvault/pkg/internal/types"
	nlog "github.com/yeisme/ingestvault/pkg/log"
	"github.com/yeisme/ingestvault/pkg/queue"
)

// ListFilterColumns 列表接口允许过滤的列白名单.
var ListFilterColumns = []string{
	"id", "state", "comments", "source_id", "access_group_id",
	"object_group_id", "created_on", "completed_on",
}

// sourceCacheTTL Source 精简视图的缓存时长.
const sourceCacheTTL = 10 * time.Minute

// List 分页列出摄取流程，标签与来源（精简投影）随行返回.
// 不返回总数，分页为 offset 式：调用方通过下一页是否为空判断是否还有数据.
func (s *IngestService) List(ctx context.Context, q *query.Query) ([]types.IngestProcessResponse, error) {
	var procs []model.IngestProcess

	tx := s.preloaded(ctx)
	if err := q.Apply(tx).Order("id").Find(&procs).Error; err != nil {
		return nil, fmt.Errorf("list ingest processes: %w", err)
	}

	out := make([]types.IngestProcessResponse, 0, len(procs))
	for i := range procs {
		out = append(out, *toResponse(&procs[i]))
	}

	return out, nil
}

// Get 按 id 返回单个摄取流程，加载策略与 List 一致.
func (s *IngestService) Get(ctx context.Context, id uint) (*types.IngestProcessResponse, error) {
	var proc model.IngestProcess

	if err := s.preloaded(ctx).First(&proc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("get ingest process %d: %w", id, err)
	}

	return toResponse(&proc), nil
}

// Create 登记一个新的摄取流程. 对象组与流程本体在同一事务中写入，
// 任一步失败则整体回滚；未知 source_id 以 ValidationError 拒绝.
// 返回前解析并附上 Source 精简视图，调用方无需二次请求.
func (s *IngestService) Create(ctx context.Context, req *types.CreateIngestProcessRequest) (*types.IngestProcessResponse, error) {
	if !s.gate(ctx) {
		return nil, ErrForbidden
	}

	var proc model.IngestProcess

	err := s.dbClient.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sources int64
		if err := tx.Model(&model.Source{}).Where("id = ?", req.SourceID).Count(&sources).Error; err != nil {
			return fmt.Errorf("check source %d: %w", req.SourceID, err)
		}

		if sources == 0 {
			return &ValidationError{Field: "source_id", Reason: fmt.Sprintf("source %d does not exist", req.SourceID)}
		}

		// 先建空对象组，拿到 id 后写入流程本体
		group := model.ObjectGroup{}
		if err := tx.Create(&group).Error; err != nil {
			return fmt.Errorf("create object group: %w", err)
		}

		tags := make([]model.IngestProcessTag, 0, len(req.Tags))
		for _, t := range req.Tags {
			tags = append(tags, model.IngestProcessTag{Tag: t})
		}

		sourceID := req.SourceID
		proc = model.IngestProcess{
			State:         req.State,
			Comments:      req.Comments,
			SourceID:      &sourceID,
			AccessGroupID: req.AccessGroupID,
			ObjectGroupID: group.ID,
			Tags:          tags,
		}

		if err := tx.Create(&proc).Error; err != nil {
			return fmt.Errorf("create ingest process: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	res := toResponse(&proc)

	// 附上 Source 精简视图（走缓存，避免重复加载几何大字段所在的行）
	src, err := s.sourceSummary(ctx, req.SourceID)
	if err != nil {
		return nil, err
	}

	res.Source = src

	s.publishCreated(ctx, res)

	return res, nil
}

// Patch 部分更新：只写入显式提供的字段，目标 id 不存在时返回 ErrNotFound.
// 提交后重新读取完整行作为响应，绝不用空结果拼装响应对象.
func (s *IngestService) Patch(ctx context.Context, id uint, req *types.PatchIngestProcessRequest) (*types.IngestProcessResponse, error) {
	if !s.gate(ctx) {
		return nil, ErrForbidden
	}

	changes := req.Changes()

	var prevState model.IngestState

	err := s.dbClient.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var proc model.IngestProcess
		if err := tx.Select("id", "state").First(&proc, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}

			return fmt.Errorf("load ingest process %d: %w", id, err)
		}

		prevState = proc.State

		// 空的字段集合是合法的 no-op，存在性检查已经完成
		if len(changes) == 0 {
			return nil
		}

		if err := tx.Model(&model.IngestProcess{}).Where("id = ?", id).Updates(changes).Error; err != nil {
			return fmt.Errorf("update ingest process %d: %w", id, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	res, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publishUpdated(ctx, res, changes, prevState)

	return res, nil
}

// preloaded 返回带统一加载策略的查询：标签按插入序、来源排除几何大字段.
func (s *IngestService) preloaded(ctx context.Context) *gorm.DB {
	return s.dbClient.WithContext(ctx).
		Model(&model.IngestProcess{}).
		Preload("Tags", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("id")
		}).
		Preload("Source", func(tx *gorm.DB) *gorm.DB {
			return tx.Select(model.SourceSummaryColumns)
		})
}

// sourceSummary 取 Source 的精简视图，有 KV 缓存时优先走缓存.
func (s *IngestService) sourceSummary(ctx context.Context, id uint) (*types.SourceSummary, error) {
	fetch := func() (types.SourceSummary, error) {
		var src model.Source
		if err := s.dbClient.WithContext(ctx).Select(model.SourceSummaryColumns).First(&src, id).Error; err != nil {
			return types.SourceSummary{}, fmt.Errorf("load source %d: %w", id, err)
		}

		return types.SourceSummary{ID: src.ID, Name: src.Name, Description: src.Description}, nil
	}

	if s.sourceCache == nil {
		v, err := fetch()
		if err != nil {
			return nil, err
		}

		return &v, nil
	}

	v, err := appcache.GetOrSet(ctx, s.sourceCache, sourceCacheKey(id), fetch, sourceCacheTTL)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

func sourceCacheKey(id uint) string {
	return fmt.Sprintf("source:summary:%d", id)
}

// toResponse 将实体映射为响应表示. Tags 始终为非 nil 切片并保持插入序.
func toResponse(proc *model.IngestProcess) *types.IngestProcessResponse {
	// Tags 关联行按主键升序即插入序
	sort.Slice(proc.Tags, func(i, j int) bool { return proc.Tags[i].ID < proc.Tags[j].ID })

	tags := make([]string, 0, len(proc.Tags))
	for _, t := range proc.Tags {
		tags = append(tags, t.Tag)
	}

	res := &types.IngestProcessResponse{
		ID:            proc.ID,
		State:         proc.State,
		Comments:      proc.Comments,
		SourceID:      proc.SourceID,
		AccessGroupID: proc.AccessGroupID,
		ObjectGroupID: proc.ObjectGroupID,
		CreatedOn:     proc.CreatedOn,
		CompletedOn:   proc.CompletedOn,
		Tags:          tags,
	}

	if proc.Source != nil {
		res.Source = &types.SourceSummary{
			ID:          proc.Source.ID,
			Name:        proc.Source.Name,
			Description: proc.Source.Description,
		}
	}

	return res
}

// -------------------------- 事件发布（尽力而为） --------------------------

func (s *IngestService) publishCreated(ctx context.Context, res *types.IngestProcessResponse) {
	cfg := s.eventsConfig()
	if cfg == nil || !cfg.Ingest.Created {
		return
	}

	payload := queue.IngestCreatedPayload{Ingest: ingestRef(res), Tags: res.Tags}
	if err := queue.PublishIngestCreated(s.mqClient.Publisher(), payload, s.eventOpts(ctx)...); err != nil {
		nlog.Logger().Warn().Err(err).Uint("id", res.ID).Msg("publish ingest.created failed")
	}
}

func (s *IngestService) publishUpdated(ctx context.Context, res *types.IngestProcessResponse, changes map[string]any, prevState model.IngestState) {
	cfg := s.eventsConfig()
	if cfg == nil || !cfg.Ingest.Updated {
		return
	}

	fields := make([]string, 0, len(changes))
	for f := range changes {
		fields = append(fields, f)
	}

	sort.Strings(fields)

	payload := queue.IngestUpdatedPayload{Ingest: ingestRef(res), Fields: fields}
	if err := queue.PublishIngestUpdated(s.mqClient.Publisher(), payload, s.eventOpts(ctx)...); err != nil {
		nlog.Logger().Warn().Err(err).Uint("id", res.ID).Msg("publish ingest.updated failed")
	}

	// 进入终态时额外广播一次状态事件
	if prevState == res.State {
		return
	}

	stateChanged := queue.IngestStateChangedPayload{Ingest: ingestRef(res), PreviousState: string(prevState)}

	var err error

	switch res.State {
	case model.IngestStateComplete:
		err = queue.PublishIngestCompleted(s.mqClient.Publisher(), stateChanged, s.eventOpts(ctx)...)
	case model.IngestStateFailed:
		err = queue.PublishIngestFailed(s.mqClient.Publisher(), stateChanged, s.eventOpts(ctx)...)
	default:
		return
	}

	if err != nil {
		nlog.Logger().Warn().Err(err).Uint("id", res.ID).Str("state", string(res.State)).Msg("publish ingest state event failed")
	}
}

// eventsConfig 返回事件配置；MQ 不可用或事件总开关关闭时返回 nil.
func (s *IngestService) eventsConfig() *configs.EventsConfig {
	if s.mqClient == nil || s.mqClient.Publisher() == nil {
		return nil
	}

	cfg := configs.GetConfig()
	if cfg == nil || !cfg.Events.Enabled {
		return nil
	}

	return &cfg.Events
}

func (s *IngestService) eventOpts(ctx context.Context) []func(*queue.EventHeader) {
	opts := []func(*queue.EventHeader){queue.WithProducer("ingestvault")}

	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.HasTraceID() {
		opts = append(opts, queue.WithTraceID(sc.TraceID().String()))
	}

	return opts
}

func ingestRef(res *types.IngestProcessResponse) queue.IngestRef {
	ref := queue.IngestRef{
		IngestProcessID: res.ID,
		ObjectGroupID:   res.ObjectGroupID,
		State:           string(res.State),
	}

	if res.SourceID != nil {
		ref.SourceID = *res.SourceID
	}

	return ref
}
