// Package export 把已经过滤、排序并选好列的条目渲染为 CSV。它自己从不过滤或排序。
package export

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/BunnySweety/kollab-sub001/internal/entry"
	"github.com/BunnySweety/kollab-sub001/internal/property"
	"github.com/BunnySweety/kollab-sub001/internal/schema"
)

// DateLayout 是日期单元格使用的短日期格式
const DateLayout = "1/2/2006"

// CSV 返回只包含 keys 列（按该顺序）的 CSV 文本。不属于 sc 的键被跳过。
func CSV(entries []entry.Entry, sc *schema.Schema, keys []string, loc *time.Location) string {
	var b strings.Builder
	// strings.Builder 的写入不会失败
	_ = Write(&b, entries, sc, keys, loc)
	return b.String()
}

// Write 把同样的 CSV 输出写入 w。
//
// encoding/csv 只给需要的字段加引号；这里每个字段都加引号。
func Write(w io.Writer, entries []entry.Entry, sc *schema.Schema, keys []string, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	cols := make([]property.Definition, 0, len(keys))
	colKeys := make([]string, 0, len(keys))
	for _, key := range keys {
		if def, ok := sc.Property(key); ok {
			cols = append(cols, def)
			colKeys = append(colKeys, key)
		}
	}

	bw := bufio.NewWriter(w)
	header := make([]string, len(cols))
	for i, def := range cols {
		header[i] = def.Name
	}
	writeRow(bw, header)

	row := make([]string, len(cols))
	for i := range entries {
		for j, def := range cols {
			row[j] = Cell(def, entries[i].Value(colKeys[j]), loc)
		}
		writeRow(bw, row)
	}
	return bw.Flush()
}

// Cell 渲染一个存储值用于导出
func Cell(def property.Definition, stored any, loc *time.Location) string {
	v := property.Decode(def, stored)
	switch x := v.(type) {
	case nil:
		if def.Type == property.TypeCheckbox {
			return "No"
		}
		return ""
	case property.MultiSelectValue:
		return strings.Join(x, "; ")
	case property.DateValue:
		return x.Time().In(loc).Format(DateLayout)
	case property.CheckboxValue:
		if x {
			return "Yes"
		}
		return "No"
	}
	return v.String()
}

func writeRow(w *bufio.Writer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(f, `"`, `""`))
		w.WriteByte('"')
	}
	w.WriteByte('\n')
}

var unsafeFilename = strings.NewReplacer("/", "_", `\`, "_", ":", "_", "*", "_", "?", "_", `"`, "_", "<", "_", ">", "_", "|", "_")

// Filename 返回 "<name>_<YYYY-MM-DD>.csv"
func Filename(name string, now time.Time) string {
	name = strings.TrimSpace(unsafeFilename.Replace(name))
	if name == "" {
		name = "export"
	}
	return name + "_" + now.Format(time.DateOnly) + ".csv"
}
