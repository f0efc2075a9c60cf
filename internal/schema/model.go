package schema

import (
	"strings"
	"time"

	"github.com/BunnySweety/kollab-sub001/internal/property"
)

// 视图类型。以 "_" 开头的是内部元数据视图，不会出现在用户可见的视图列表中。
const (
	ViewTable   = "table"
	ViewGallery = "gallery"

	ViewColumnOrder   = "_columnOrder"
	ViewHiddenColumns = "_hiddenColumns"
	ViewColumnWidths  = "_columnWidths"

	reservedPrefix = "_"
)

// View 是 schema 的一个视图定义。
// 用户视图使用 Name / CoverProperty；元数据视图使用 Columns（顺序或隐藏集合）或 Widths。
type View struct {
	Type          string         `json:"type"`
	Name          string         `json:"name,omitempty"`
	CoverProperty string         `json:"coverProperty,omitempty"`
	Columns       []string       `json:"columns,omitempty"`
	Widths        map[string]int `json:"widths,omitempty"`
}

// IsReserved 判断视图是否为内部元数据视图
func (v View) IsReserved() bool {
	return strings.HasPrefix(v.Type, reservedPrefix)
}

func (v View) clone() View {
	if v.Columns != nil {
		v.Columns = append([]string(nil), v.Columns...)
	}
	if v.Widths != nil {
		widths := make(map[string]int, len(v.Widths))
		for k, w := range v.Widths {
			widths[k] = w
		}
		v.Widths = widths
	}
	return v
}

// Schema 定义了一张结构化数据表的列结构和视图。
// Properties 以 JSON 对象形式持久化，读回时键的顺序不保证与写入时一致，
// 因此列顺序只以 _columnOrder 视图为准。
type Schema struct {
	// ID 是 UUIDv7 字符串
	ID string `gorm:"primaryKey;type:varchar(36)" json:"id"`

	// WorkspaceID 是所属工作区，schema 列表按它查询
	WorkspaceID string `gorm:"index;not null;type:varchar(64)" json:"workspaceId"`

	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description,omitempty"`

	// Properties 以属性键为索引；键通常等于显示名，重命名规则见 Service.UpdateSchema
	Properties map[string]property.Definition `gorm:"serializer:json;type:text" json:"properties"`

	// Views 同时包含用户视图和元数据视图
	Views []View `gorm:"serializer:json;type:text" json:"views"`

	CreatedBy string    `gorm:"type:varchar(64)" json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName 避免与其他功能模块的表名冲突
func (Schema) TableName() string {
	return "table_schemas"
}

// Clone 返回一个不共享任何 map / slice 的深拷贝
func (s *Schema) Clone() *Schema {
	out := *s
	out.Properties = make(map[string]property.Definition, len(s.Properties))
	for k, def := range s.Properties {
		out.Properties[k] = def.Clone()
	}
	out.Views = make([]View, len(s.Views))
	for i, v := range s.Views {
		out.Views[i] = v.clone()
	}
	return &out
}

// Property 按键查找属性定义
func (s *Schema) Property(key string) (property.Definition, bool) {
	def, ok := s.Properties[key]
	return def, ok
}

// TitleKeys 返回所有 title 类型属性的键（按显示顺序）
func (s *Schema) TitleKeys() []string {
	var keys []string
	for _, key := range DeriveDisplayOrder(s) {
		if s.Properties[key].IsTitle() {
			keys = append(keys, key)
		}
	}
	return keys
}
