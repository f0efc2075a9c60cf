package property

import (
	"strconv"
	"strings"
	"time"
)

// Value 是一个单元格的类型化值。每种列类型恰好对应一个具体类型；
// Stored 返回持久化到条目 data 中的 JSON 形式。
type Value interface {
	Type() Type
	Stored() any
	String() string
}

type (
	TitleValue       string
	TextValue        string
	NumberValue      float64
	EmailValue       string
	URLValue         string
	DateValue        time.Time
	CheckboxValue    bool
	SelectValue      string
	MultiSelectValue []string
)

func (v TitleValue) Type() Type       { return TypeTitle }
func (v TextValue) Type() Type        { return TypeText }
func (v NumberValue) Type() Type      { return TypeNumber }
func (v EmailValue) Type() Type       { return TypeEmail }
func (v URLValue) Type() Type         { return TypeURL }
func (v DateValue) Type() Type        { return TypeDate }
func (v CheckboxValue) Type() Type    { return TypeCheckbox }
func (v SelectValue) Type() Type      { return TypeSelect }
func (v MultiSelectValue) Type() Type { return TypeMultiSelect }

func (v TitleValue) Stored() any    { return string(v) }
func (v TextValue) Stored() any     { return string(v) }
func (v NumberValue) Stored() any   { return float64(v) }
func (v EmailValue) Stored() any    { return string(v) }
func (v URLValue) Stored() any      { return string(v) }
func (v DateValue) Stored() any     { return v.String() }
func (v CheckboxValue) Stored() any { return bool(v) }
func (v SelectValue) Stored() any   { return string(v) }
func (v MultiSelectValue) Stored() any {
	return append([]string(nil), v...)
}

func (v TitleValue) String() string  { return string(v) }
func (v TextValue) String() string   { return string(v) }
func (v NumberValue) String() string { return strconv.FormatFloat(float64(v), 'f', -1, 64) }
func (v EmailValue) String() string  { return string(v) }
func (v URLValue) String() string    { return string(v) }
func (v DateValue) String() string   { return time.Time(v).UTC().Format(time.RFC3339) }
func (v CheckboxValue) String() string {
	return strconv.FormatBool(bool(v))
}
func (v SelectValue) String() string      { return string(v) }
func (v MultiSelectValue) String() string { return strings.Join(v, ", ") }

// Time 返回日期值表示的时刻
func (v DateValue) Time() time.Time { return time.Time(v) }

// Decode 把存储的 JSON 值读回类型化形式。它是宽松的：与列类型不再相符的值
// （列改类型之后，或由旧客户端写入）解码为 nil，而不是让读取失败。
func Decode(def Definition, stored any) Value {
	if stored == nil {
		return nil
	}
	fn, ok := validators[def.Type]
	if !ok {
		fn = validateText
	}
	v, ferr := fn(time.UTC, def, stored)
	if ferr != nil {
		return nil
	}
	return v
}
