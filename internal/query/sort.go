package query

import (
	"sort"
	"strings"

	"github.com/BunnySweety/kollab-sub001/internal/entry"
	"github.com/BunnySweety/kollab-sub001/internal/property"
	"github.com/BunnySweety/kollab-sub001/internal/schema"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction 是排序方向
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Valid 报告 d 是否为 asc 或 desc
func (d Direction) Valid() bool {
	return d == Asc || d == Desc
}

// Sort 是单列排序键
type Sort struct {
	Column    string    `json:"column"`
	Direction Direction `json:"direction"`
}

// ApplySort 返回排序后的副本。无论哪个方向，空单元格总是排在非空单元格之后；
// 方向只影响两个非空单元格的先后。排序是稳定的，相等的条目保持输入顺序。
// 未知的列不改变顺序。
func ApplySort(entries []entry.Entry, sc *schema.Schema, column string, direction Direction) []entry.Entry {
	out := append([]entry.Entry(nil), entries...)
	def, ok := sc.Property(column)
	if !ok {
		return out
	}

	cells := make([]property.Value, len(out))
	for i := range out {
		if v := property.Decode(def, out[i].Value(column)); !isEmpty(v) {
			cells[i] = v
		}
	}

	// collate.Collator 不能并发使用
	cmp := comparer{col: collate.New(language.Und, collate.IgnoreCase)}
	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		va, vb := cells[idx[a]], cells[idx[b]]
		switch {
		case va == nil && vb == nil:
			return false
		case va == nil:
			return false
		case vb == nil:
			return true
		}
		c := cmp.compare(va, vb)
		if direction == Desc {
			return c > 0
		}
		return c < 0
	})

	sorted := make([]entry.Entry, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return sorted
}

type comparer struct {
	col *collate.Collator
}

func (c comparer) compare(a, b property.Value) int {
	switch x := a.(type) {
	case property.NumberValue:
		if y, ok := b.(property.NumberValue); ok {
			return compareFloat(float64(x), float64(y))
		}
	case property.DateValue:
		if y, ok := b.(property.DateValue); ok {
			return x.Time().Compare(y.Time())
		}
	case property.CheckboxValue:
		if y, ok := b.(property.CheckboxValue); ok {
			return compareBool(bool(x), bool(y))
		}
	}
	if c.col == nil {
		return strings.Compare(a.String(), b.String())
	}
	return c.col.CompareString(a.String(), b.String())
}

// compareValues 比较 number 或 date 列的两个值
func compareValues(a, b property.Value) int {
	return comparer{}.compare(a, b)
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}
