package entry

import "time"

// Entry 是表中的一行。Data 以属性键为索引，存储的是各类型值的 JSON 形式。
// Data 中可能存在当前 schema 已不包含的键（列被重命名或删除后遗留），
// 读取方忽略它们，写入方原样保留。
type Entry struct {
	ID       string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	SchemaID string         `gorm:"index;not null;type:varchar(36)" json:"schemaId"`
	Data     map[string]any `gorm:"serializer:json;type:text" json:"data"`

	// Order 是插入顺序，只作为并列时的次序依据；显示顺序由排序和筛选决定
	Order int64 `gorm:"column:sort_order;index" json:"order"`

	CreatedBy string    `gorm:"type:varchar(64)" json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName 避免与其他功能模块的表名冲突
func (Entry) TableName() string {
	return "table_entries"
}

// Value 返回某个属性键下存储的原始值
func (e *Entry) Value(key string) any {
	if e.Data == nil {
		return nil
	}
	return e.Data[key]
}

// Clone 复制一行；Data 做深拷贝，切片值也会被复制
func (e *Entry) Clone() *Entry {
	out := *e
	out.Data = copyData(e.Data)
	return &out
}

func copyData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		switch list := v.(type) {
		case []any:
			out[k] = append([]any(nil), list...)
		case []string:
			out[k] = append([]string(nil), list...)
		default:
			out[k] = v
		}
	}
	return out
}
