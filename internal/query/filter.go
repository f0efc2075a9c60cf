// Package query 在一个 schema 的条目上执行过滤和单列排序。
// 这里的函数都是纯函数：不修改输入，也没有 I/O，由调用方决定何时重新计算视图。
package query

import (
	"strings"
	"time"

	"github.com/BunnySweety/kollab-sub001/internal/entry"
	"github.com/BunnySweety/kollab-sub001/internal/platform/apperr"
	"github.com/BunnySweety/kollab-sub001/internal/property"
	"github.com/BunnySweety/kollab-sub001/internal/schema"
)

// Operator 是过滤条件的比较方式
type Operator string

const (
	Equals      Operator = "equals"
	NotEquals   Operator = "not_equals"
	Contains    Operator = "contains"
	NotContains Operator = "not_contains"
	GreaterThan Operator = "greater_than"
	LessThan    Operator = "less_than"
	IsEmpty     Operator = "is_empty"
	IsNotEmpty  Operator = "is_not_empty"
)

// Operators 列出所有支持的比较方式
var Operators = []Operator{Equals, NotEquals, Contains, NotContains, GreaterThan, LessThan, IsEmpty, IsNotEmpty}

// Valid 报告 op 是否为已知的比较方式
func (op Operator) Valid() bool {
	for _, known := range Operators {
		if op == known {
			return true
		}
	}
	return false
}

// needsValue 对判空类比较返回 false
func (op Operator) needsValue() bool {
	return op != IsEmpty && op != IsNotEmpty
}

// Filter 是一个谓词。多个过滤条件按 AND 组合。
type Filter struct {
	Property string   `json:"property"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value,omitempty"`
}

// Active 报告过滤条件是否生效。还没有填写值的比较不生效，匹配所有条目。
func (f Filter) Active() bool {
	if !f.Operator.needsValue() {
		return true
	}
	switch v := f.Value.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	}
	return true
}

// Validate 按 sc 检查过滤条件
func (f Filter) Validate(sc *schema.Schema) *apperr.FieldError {
	if !f.Operator.Valid() {
		return apperr.Field(f.Property, "unknown operator %q", f.Operator)
	}
	if _, ok := sc.Property(f.Property); !ok {
		return apperr.Field(f.Property, "unknown property")
	}
	return nil
}

// ApplyFilters 按输入顺序返回满足所有过滤条件的条目。
// 过滤值中不带时区的日期按本地时区解释。
func ApplyFilters(entries []entry.Entry, sc *schema.Schema, filters []Filter) []entry.Entry {
	return ApplyFiltersIn(time.Local, entries, sc, filters)
}

// ApplyFiltersIn 与 ApplyFilters 相同，但显式指定日期所用的时区
func ApplyFiltersIn(loc *time.Location, entries []entry.Entry, sc *schema.Schema, filters []Filter) []entry.Entry {
	preds := make([]predicate, 0, len(filters))
	for _, f := range filters {
		if f.Active() {
			preds = append(preds, compile(loc, sc, f))
		}
	}

	out := make([]entry.Entry, 0, len(entries))
	for _, e := range entries {
		if matchesAll(preds, &e) {
			out = append(out, e)
		}
	}
	return out
}

type predicate func(e *entry.Entry) bool

func matchesAll(preds []predicate, e *entry.Entry) bool {
	for _, p := range preds {
		if !p(e) {
			return false
		}
	}
	return true
}

func never(*entry.Entry) bool { return false }

// compile 只解析一次列定义和过滤值，逐条目求值时只需解码单元格
func compile(loc *time.Location, sc *schema.Schema, f Filter) predicate {
	def, ok := sc.Property(f.Property)
	if !ok {
		return never
	}
	cell := func(e *entry.Entry) property.Value {
		return property.Decode(def, e.Value(f.Property))
	}

	switch f.Operator {
	case IsEmpty:
		return func(e *entry.Entry) bool { return isEmpty(cell(e)) }
	case IsNotEmpty:
		return func(e *entry.Entry) bool { return !isEmpty(cell(e)) }
	case Contains, NotContains:
		needle := strings.ToLower(strings.TrimSpace(stringOf(f.Value)))
		want := f.Operator == Contains
		return func(e *entry.Entry) bool {
			v := cell(e)
			if v == nil {
				return !want
			}
			return strings.Contains(strings.ToLower(v.String()), needle) == want
		}
	case Equals, NotEquals:
		want := f.Operator == Equals
		target, ok := coerce(loc, def, f.Value)
		if !ok {
			// 列永远不可能存储的值不等于任何单元格
			return func(*entry.Entry) bool { return !want }
		}
		return func(e *entry.Entry) bool {
			return equal(cell(e), target) == want
		}
	case GreaterThan, LessThan:
		sign := 1
		if f.Operator == LessThan {
			sign = -1
		}
		target, ok := coerce(loc, def, f.Value)
		if !ok || !ordered(def.Type) {
			return never
		}
		return func(e *entry.Entry) bool {
			v := cell(e)
			if v == nil {
				return false
			}
			return compareValues(v, target)*sign > 0
		}
	}
	return never
}

// coerce 按列的存储方式读取过滤值
func coerce(loc *time.Location, def property.Definition, raw any) (property.Value, bool) {
	// 过滤值从不是必填的，即使针对 title 列
	lookup := def
	if lookup.Type == property.TypeTitle {
		lookup.Type = property.TypeText
	}
	v, err := property.ValidateIn(loc, lookup, raw)
	if err != nil || v == nil {
		return nil, false
	}
	return v, true
}

// equal 在转换后做字符串相等比较。多选列要求目标是已选选项之一。
func equal(v, target property.Value) bool {
	if v == nil {
		return false
	}
	if list, ok := v.(property.MultiSelectValue); ok {
		for _, item := range list {
			if item == target.String() {
				return true
			}
		}
		return false
	}
	return v.String() == target.String()
}

func ordered(t property.Type) bool {
	return t == property.TypeNumber || t == property.TypeDate
}

func isEmpty(v property.Value) bool {
	if v == nil {
		return true
	}
	if list, ok := v.(property.MultiSelectValue); ok {
		return len(list) == 0
	}
	return v.String() == ""
}

func stringOf(raw any) string {
	if v, ok := raw.(string); ok {
		return v
	}
	if raw == nil {
		return ""
	}
	if v, err := property.ValidateIn(time.UTC, property.Definition{Type: property.TypeText}, raw); err == nil && v != nil {
		return v.String()
	}
	return ""
}
