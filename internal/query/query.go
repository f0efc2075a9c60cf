package query

import (
	"time"

	"github.com/BunnySweety/kollab-sub001/internal/entry"
	"github.com/BunnySweety/kollab-sub001/internal/platform/apperr"
	"github.com/BunnySweety/kollab-sub001/internal/schema"
)

// Query 是过滤条件列表加一个可选的排序键
type Query struct {
	Filters []Filter `json:"filters"`
	Sort    *Sort    `json:"sort,omitempty"`
}

// Validate 一次性报告所有未知的属性、比较方式或排序方向
func (q Query) Validate(sc *schema.Schema) error {
	verr := &apperr.ValidationError{}
	for _, f := range q.Filters {
		verr.Append(f.Validate(sc))
	}
	if q.Sort != nil {
		if _, ok := sc.Property(q.Sort.Column); !ok {
			verr.Add(q.Sort.Column, "unknown sort column")
		}
		if !q.Sort.Direction.Valid() {
			verr.Add("direction", "sort direction must be asc or desc")
		}
	}
	return verr.Err()
}

// Apply 先过滤再排序
func Apply(loc *time.Location, entries []entry.Entry, sc *schema.Schema, q Query) []entry.Entry {
	out := ApplyFiltersIn(loc, entries, sc, q.Filters)
	if q.Sort != nil && q.Sort.Column != "" {
		out = ApplySort(out, sc, q.Sort.Column, q.Sort.Direction)
	}
	return out
}
