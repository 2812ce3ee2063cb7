package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yeisme/ingestvault/pkg/internal/model"
	"github.com/yeisme/ingestvault/pkg/internal/types"
	nlog "github.com/yeisme/ingestvault/pkg/log"
	"github.com/yeisme/ingestvault/pkg/metrics"
	"github.com/yeisme/ingestvault/pkg/queue"
)

// ListObjects 列出摄取流程的对象组内全部对象，并为每个对象补全限时下载链接.
// 对象组为空时直接返回空列表，不触发任何对象存储调用.
// 任一对象签名失败则整个调用以 DependencyError 失败，绝不返回部分结果.
func (s *IngestService) ListObjects(ctx context.Context, id uint) ([]types.SecureObject, error) {
	var proc model.IngestProcess

	err := s.dbClient.WithContext(ctx).Select("id", "object_group_id").First(&proc, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("load ingest process %d: %w", id, err)
	}

	var objs []model.Object

	err = s.dbClient.WithContext(ctx).
		Where("object_group_id = ?", proc.ObjectGroupID).
		Order("id").
		Find(&objs).Error
	if err != nil {
		return nil, fmt.Errorf("load objects of group %d: %w", proc.ObjectGroupID, err)
	}

	out := make([]types.SecureObject, 0, len(objs))
	if len(objs) == 0 {
		return out, nil
	}

	// 同一对象组的对象位于同一个存储端点，以首个对象的 host 建连
	signer, err := s.newSigner(objs[0].Host)
	if err != nil {
		return nil, &DependencyError{Dependency: "object store", Err: err}
	}

	for _, obj := range objs {
		u, signErr := signer.PresignedGetURL(ctx, obj.Bucket, obj.Key, s.presignExpiry)
		if signErr != nil {
			return nil, &DependencyError{
				Dependency: "object store",
				Err:        fmt.Errorf("presign %s/%s: %w", obj.Bucket, obj.Key, signErr),
			}
		}

		metrics.PresignedURLsIssued.WithLabelValues(obj.Host).Inc()

		out = append(out, types.SecureObject{
			ID:           obj.ID,
			Host:         obj.Host,
			Bucket:       obj.Bucket,
			Key:          obj.Key,
			PreSignedURL: u,
		})
	}

	s.publishObjectsAccessed(ctx, &proc, objs)

	return out, nil
}

// publishObjectsAccessed 广播对象被签发下载链接，供下游做热点统计.
func (s *IngestService) publishObjectsAccessed(ctx context.Context, proc *model.IngestProcess, objs []model.Object) {
	cfg := s.eventsConfig()
	if cfg == nil {
		return
	}

	ref := queue.IngestRef{IngestProcessID: proc.ID, ObjectGroupID: proc.ObjectGroupID}

	for _, obj := range objs {
		payload := queue.ObjectAccessedPayload{Ingest: ref, Host: obj.Host, Bucket: obj.Bucket, Key: obj.Key}
		if err := queue.PublishObjectAccessed(s.mqClient.Publisher(), payload, s.eventOpts(ctx)...); err != nil {
			nlog.Logger().Warn().Err(err).Uint("id", proc.ID).Msg("publish object.accessed failed")

			return
		}
	}
}
