package model

// Source 摄取的上游来源，只读参照实体.
// RGeom/WebGeom 为几何大字段，加载成本高，默认投影必须排除（见 SourceSummaryColumns）.
type Source struct {
	ID          uint   `gorm:"primaryKey"  json:"id"`
	Name        string `gorm:"size:512"    json:"name"`
	Description string `gorm:"type:text"   json:"description"`
	RGeom       string `gorm:"type:text"   json:"-"`
	WebGeom     string `gorm:"type:text"   json:"-"`
}

// SourceSummaryColumns 默认投影列，排除几何大字段.
var SourceSummaryColumns = []string{"id", "name", "description"}
