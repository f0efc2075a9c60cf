package schema

import "sort"

// 存储层把 Properties 当作无序 map 解码，所以列顺序、隐藏列和列宽都保存在元数据视图中。
// 这里的每个函数都整体替换一个元数据视图，从不原地修改，也从不改动用户视图。

// Layout 是从元数据视图派生出的展示信息
type Layout struct {
	Order   []string       `json:"order"`
	Visible []string       `json:"visible"`
	Hidden  []string       `json:"hidden"`
	Widths  map[string]int `json:"widths"`
}

// LayoutOf 派生 s 的完整展示信息
func LayoutOf(s *Schema) Layout {
	order := DeriveDisplayOrder(s)
	hidden := HiddenColumns(s)
	layout := Layout{
		Order:   order,
		Visible: make([]string, 0, len(order)),
		Hidden:  make([]string, 0, len(hidden)),
		Widths:  ColumnWidths(s),
	}
	for _, key := range order {
		if hidden[key] {
			layout.Hidden = append(layout.Hidden, key)
		} else {
			layout.Visible = append(layout.Visible, key)
		}
	}
	return layout
}

// DeriveDisplayOrder 返回每个属性键恰好一次：_columnOrder 中列出的键按其顺序排在前面，
// 未列出的键按键名排序追加在后面，列出但已不存在的键被丢弃。
func DeriveDisplayOrder(s *Schema) []string {
	order := make([]string, 0, len(s.Properties))
	seen := make(map[string]bool, len(s.Properties))

	if v, ok := reservedView(s, ViewColumnOrder); ok {
		for _, key := range v.Columns {
			if _, exists := s.Properties[key]; exists && !seen[key] {
				seen[key] = true
				order = append(order, key)
			}
		}
	}

	var rest []string
	for key := range s.Properties {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

// PersistOrder 用恰好包含 keys 的新视图替换 _columnOrder
func PersistOrder(s *Schema, keys []string) {
	replaceReserved(s, View{Type: ViewColumnOrder, Columns: append([]string{}, keys...)})
}

// HiddenColumns 返回隐藏列的键集合
func HiddenColumns(s *Schema) map[string]bool {
	hidden := make(map[string]bool)
	if v, ok := reservedView(s, ViewHiddenColumns); ok {
		for _, key := range v.Columns {
			hidden[key] = true
		}
	}
	return hidden
}

// DeriveVisibleColumns 是显示顺序去掉隐藏列
func DeriveVisibleColumns(s *Schema) []string {
	hidden := HiddenColumns(s)
	order := DeriveDisplayOrder(s)
	visible := make([]string, 0, len(order))
	for _, key := range order {
		if !hidden[key] {
			visible = append(visible, key)
		}
	}
	return visible
}

// SetColumnHidden 重写 _hiddenColumns，加入或移除 key
func SetColumnHidden(s *Schema, key string, hidden bool) {
	var columns []string
	if v, ok := reservedView(s, ViewHiddenColumns); ok {
		for _, k := range v.Columns {
			if k != key {
				columns = append(columns, k)
			}
		}
	}
	if hidden {
		columns = append(columns, key)
	}
	if len(columns) == 0 {
		removeReserved(s, ViewHiddenColumns)
		return
	}
	replaceReserved(s, View{Type: ViewHiddenColumns, Columns: columns})
}

// ColumnWidths 返回列宽 map 的副本
func ColumnWidths(s *Schema) map[string]int {
	widths := make(map[string]int)
	if v, ok := reservedView(s, ViewColumnWidths); ok {
		for k, w := range v.Widths {
			widths[k] = w
		}
	}
	return widths
}

// SetColumnWidth 重写 _columnWidths，把 key 的列宽设为 width
func SetColumnWidth(s *Schema, key string, width int) {
	widths := ColumnWidths(s)
	widths[key] = width
	replaceReserved(s, View{Type: ViewColumnWidths, Widths: widths})
}

// UserViews 按存储顺序返回表格和画廊视图
func UserViews(s *Schema) []View {
	views := make([]View, 0, len(s.Views))
	for _, v := range s.Views {
		if !v.IsReserved() {
			views = append(views, v.clone())
		}
	}
	return views
}

// MoveColumn 把 key 移到 beforeKey 之前；beforeKey 为空时移到末尾。
// 任一键不在 order 中时返回 false。
func MoveColumn(order []string, key, beforeKey string) ([]string, bool) {
	if key == beforeKey {
		return order, indexOf(order, key) >= 0
	}
	from := indexOf(order, key)
	if from < 0 {
		return order, false
	}
	rest := make([]string, 0, len(order))
	rest = append(rest, order[:from]...)
	rest = append(rest, order[from+1:]...)
	if beforeKey == "" {
		return append(rest, key), true
	}
	to := indexOf(rest, beforeKey)
	if to < 0 {
		return order, false
	}
	out := make([]string, 0, len(order))
	out = append(out, rest[:to]...)
	out = append(out, key)
	return append(out, rest[to:]...), true
}

// InsertAfter 把 key 放在 afterKey 之后；afterKey 为空或不存在时放在末尾。
func InsertAfter(order []string, key, afterKey string) []string {
	at := indexOf(order, afterKey)
	if afterKey == "" || at < 0 {
		return append(append([]string{}, order...), key)
	}
	out := make([]string, 0, len(order)+1)
	out = append(out, order[:at+1]...)
	out = append(out, key)
	return append(out, order[at+1:]...)
}

func indexOf(list []string, key string) int {
	for i, k := range list {
		if k == key {
			return i
		}
	}
	return -1
}

// reservedView 返回给定类型的最后一个元数据视图
func reservedView(s *Schema, typ string) (View, bool) {
	for i := len(s.Views) - 1; i >= 0; i-- {
		if s.Views[i].Type == typ {
			return s.Views[i], true
		}
	}
	return View{}, false
}

func removeReserved(s *Schema, typ string) {
	views := make([]View, 0, len(s.Views))
	for _, v := range s.Views {
		if v.Type != typ {
			views = append(views, v)
		}
	}
	s.Views = views
}

func replaceReserved(s *Schema, v View) {
	removeReserved(s, v.Type)
	s.Views = append(s.Views, v)
}
