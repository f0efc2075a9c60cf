// Package property 定义了表格 schema 的列类型，以及每种类型接受的值。
package property

import "strings"

// Type 是列声明的类型
type Type string

const (
	TypeTitle       Type = "title"
	TypeText        Type = "text"
	TypeNumber      Type = "number"
	TypeEmail       Type = "email"
	TypeURL         Type = "url"
	TypeDate        Type = "date"
	TypeCheckbox    Type = "checkbox"
	TypeSelect      Type = "select"
	TypeMultiSelect Type = "multi-select"
)

// Types 按显示顺序列出所有支持的类型
var Types = []Type{
	TypeTitle, TypeText, TypeNumber, TypeEmail, TypeURL,
	TypeDate, TypeCheckbox, TypeSelect, TypeMultiSelect,
}

// Valid 报告 t 是否为支持的类型
func (t Type) Valid() bool {
	_, ok := validators[t]
	return ok
}

// NeedsOptions 报告该类型的列定义是否必须带选项
func (t Type) NeedsOptions() bool {
	return t == TypeSelect || t == TypeMultiSelect
}

// ParseType 规范化用户输入，例如 "Multi_Select" 或 "multiselect"
func ParseType(s string) (Type, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	switch norm {
	case "multi_select", "multiselect":
		norm = string(TypeMultiSelect)
	}
	t := Type(norm)
	return t, t.Valid()
}

// Definition 描述 schema 的一列。Format 只是显示提示（货币、百分比等），不做校验。
type Definition struct {
	Name    string   `json:"name"`
	Type    Type     `json:"type"`
	Options []string `json:"options,omitempty"`
	Format  string   `json:"format,omitempty"`
}

// IsTitle 报告该列是否为 title 列
func (d Definition) IsTitle() bool {
	return d.Type == TypeTitle
}

// Clone 返回一个不与 d 共享切片的副本
func (d Definition) Clone() Definition {
	if d.Options != nil {
		d.Options = append([]string(nil), d.Options...)
	}
	return d
}
