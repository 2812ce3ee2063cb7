// Package model 定义摄取领域的数据库实体.
package model

import (
	"time"
)

// IngestState 摄取流程状态，取值固定但对核心逻辑不透明.
type IngestState string

const (
	IngestStatePending   IngestState = "pending"
	IngestStateRunning   IngestState = "running"
	IngestStateComplete  IngestState = "complete"
	IngestStateFailed    IngestState = "failed"
	IngestStateAbandoned IngestState = "abandoned"
)

// IngestStateRule 供 rule/binding 校验使用的取值集合.
const IngestStateRule = "oneof=pending running complete failed abandoned"

// IngestProcess 摄取流程：从某个 Source 摄取数据并产出一组对象的工作单元.
// ObjectGroupID 在创建时分配一次，之后不可变.
type IngestProcess struct {
	ID            uint        `gorm:"primaryKey"          json:"id"`
	State         IngestState `gorm:"size:32;index"       json:"state"`
	Comments      *string     `gorm:"type:text"           json:"comments"`
	SourceID      *uint       `gorm:"index"               json:"source_id"`
	AccessGroupID *uint       `gorm:"index"               json:"access_group_id"`
	ObjectGroupID uint        `gorm:"not null;index"      json:"object_group_id"`
	CreatedOn     time.Time   `gorm:"autoCreateTime"      json:"created_on"`
	CompletedOn   *time.Time  `json:"completed_on"`

	// Tags 按插入顺序归属于本流程；删除流程时级联删除标签行.
	Tags []IngestProcessTag `gorm:"foreignKey:IngestProcessID;constraint:OnDelete:CASCADE" json:"tags"`
	// Source 仅在显式 Preload 时携带，默认投影排除几何大字段.
	Source *Source `gorm:"foreignKey:SourceID" json:"source,omitempty"`
}

// IngestProcessTag 摄取流程的自由文本标签.
// (ingest_process_id, tag) 的唯一性并未由约束强制，删除按值匹配所有重复行.
type IngestProcessTag struct {
	ID              uint   `gorm:"primaryKey"                json:"-"`
	IngestProcessID uint   `gorm:"not null;index"            json:"ingest_process_id"`
	Tag             string `gorm:"size:255;not null;index"   json:"tag"`
}

// ObjectGroup 关联一次摄取流程产出的全部存储对象.
type ObjectGroup struct {
	ID      uint     `gorm:"primaryKey" json:"id"`
	Objects []Object `gorm:"foreignKey:ObjectGroupID" json:"objects,omitempty"`
}

// Object 对象存储中的一个 blob，由 (host, bucket, key) 定位.
// PreSignedURL 是请求级派生字段，永不落库.
type Object struct {
	ID            uint   `gorm:"primaryKey"        json:"id"`
	ObjectGroupID uint   `gorm:"not null;index"    json:"object_group_id"`
	Host          string `gorm:"size:255;not null" json:"host"`
	Bucket        string `gorm:"size:255;not null" json:"bucket"`
	Key           string `gorm:"size:1024;not null" json:"key"`

	PreSignedURL string `gorm:"-" json:"pre_signed_url,omitempty"`
}

// All 返回全部需要迁移的实体，供 AutoMigrate 与 db 子命令使用.
func All() []any {
	return []any{
		&Source{},
		&ObjectGroup{},
		&IngestProcess{},
		&IngestProcessTag{},
		&Object{},
	}
}
