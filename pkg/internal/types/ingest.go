// Package types 定义 HTTP 层的请求与响应结构.
package types

import (
	"time"

	"github.com/yeisme/ingestvault/pkg/internal/model"
)

// CreateIngestProcessRequest 创建摄取流程的请求体.
// SourceID 创建时必填；Tags 为初始标签集合.
type CreateIngestProcessRequest struct {
	State         model.IngestState `json:"state"           binding:"required,oneof=pending running complete failed abandoned"`
	Comments      *string           `json:"comments"`
	SourceID      uint              `json:"source_id"       binding:"required"`
	AccessGroupID *uint             `json:"access_group_id"`
	Tags          []string          `json:"tags"`
}

// PatchIngestProcessRequest 部分更新请求体：只更新显式出现的字段（exclude-unset 语义）.
// 指针为 nil 表示“未提供”，不会清空既有值.
type PatchIngestProcessRequest struct {
	State         *model.IngestState `json:"state"           binding:"omitempty,oneof=pending running complete failed abandoned"`
	Comments      *string            `json:"comments"`
	SourceID      *uint              `json:"source_id"`
	AccessGroupID *uint              `json:"access_group_id"`
	CompletedOn   *time.Time         `json:"completed_on"`
}

// Changes 返回待写入的列集合，仅包含显式提供的字段.
func (r *PatchIngestProcessRequest) Changes() map[string]any {
	changes := make(map[string]any)

	if r.State != nil {
		changes["state"] = *r.State
	}

	if r.Comments != nil {
		changes["comments"] = *r.Comments
	}

	if r.SourceID != nil {
		changes["source_id"] = *r.SourceID
	}

	if r.AccessGroupID != nil {
		changes["access_group_id"] = *r.AccessGroupID
	}

	if r.CompletedOn != nil {
		changes["completed_on"] = *r.CompletedOn
	}

	return changes
}

// TagRequest 添加标签的请求体.
type TagRequest struct {
	Tag string `json:"tag" binding:"required,min=1,max=255"`
}

// SourceSummary 来源的精简视图，不携带几何大字段.
type SourceSummary struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// IngestProcessResponse 摄取流程的完整表示.
type IngestProcessResponse struct {
	ID            uint              `json:"id"`
	State         model.IngestState `json:"state"`
	Comments      *string           `json:"comments"`
	SourceID      *uint             `json:"source_id"`
	AccessGroupID *uint             `json:"access_group_id"`
	ObjectGroupID uint              `json:"object_group_id"`
	CreatedOn     time.Time         `json:"created_on"`
	CompletedOn   *time.Time        `json:"completed_on"`
	Tags          []string          `json:"tags"`
	Source        *SourceSummary    `json:"source,omitempty"`
}
