package schema

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BunnySweety/kollab-sub001/internal/platform/apperr"
	"github.com/BunnySweety/kollab-sub001/internal/property"
	"github.com/google/uuid"
)

const newColumnName = "New Column"

// Repository 是 schema 的持久化接口。Save 整体覆盖一行（最后写入者获胜）。
type Repository interface {
	Create(ctx context.Context, s *Schema) error
	Get(ctx context.Context, id string) (*Schema, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]Schema, error)
	Save(ctx context.Context, s *Schema) error
	Delete(ctx context.Context, id string) error
}

// Cache 是 schema 读取的旁路缓存。实现必须自行吞掉错误：缓存不可用时只影响性能。
type Cache interface {
	Get(ctx context.Context, id string) (*Schema, bool)
	Set(ctx context.Context, s *Schema)
	Invalidate(ctx context.Context, id string)
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (*Schema, bool) { return nil, false }
func (noopCache) Set(context.Context, *Schema)                {}
func (noopCache) Invalidate(context.Context, string)          {}

// Service 实现 schema 的全部读写操作。每个写操作的最后一步都会重写 _columnOrder。
type Service struct {
	repo  Repository
	cache Cache
	now   func() time.Time
}

// NewService 创建 schema 服务；cache 可以为 nil。
func NewService(repo Repository, cache Cache) *Service {
	if cache == nil {
		cache = noopCache{}
	}
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// GetSchema 优先从缓存读取
func (s *Service) GetSchema(ctx context.Context, id string) (*Schema, error) {
	if cached, ok := s.cache.Get(ctx, id); ok {
		return cached, nil
	}
	sc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, sc)
	return sc, nil
}

// ListSchemas 返回工作区下的所有 schema
func (s *Service) ListSchemas(ctx context.Context, workspaceID string) ([]Schema, error) {
	return s.repo.ListByWorkspace(ctx, workspaceID)
}

// CreateSchema 校验并创建一个新的 schema。
func (s *Service) CreateSchema(ctx context.Context, in CreateInput) (*Schema, error) {
	verr := &apperr.ValidationError{}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		verr.Add("name", "database name is required")
	}
	if strings.TrimSpace(in.WorkspaceID) == "" {
		verr.Add("workspaceId", "workspace is required")
	}

	props, order, renames := buildProperties(nil, in.Properties, verr)
	views := buildViews(in.Views, props, renames, verr)
	if err := verr.Err(); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate schema id: %w", err)
	}
	now := s.now()
	sc := &Schema{
		ID:          id.String(),
		WorkspaceID: in.WorkspaceID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Properties:  props,
		Views:       views,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	PersistOrder(sc, order)

	if err := s.repo.Create(ctx, sc); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return sc, nil
}

// UpdateSchema 整体替换属性和视图。
//
// 属性键迁移：提交的 Key 指向已有列时，若新名称与旧键只有大小写不同则保留旧键，
// 否则以新名称作为新键，旧键下的条目数据成为孤儿数据，不做迁移。
// 提交的 _columnOrder 视图会被丢弃，顺序总是由 Properties 的提交顺序重新计算。
func (s *Service) UpdateSchema(ctx context.Context, id string, in UpdateInput) (*Schema, error) {
	sc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	verr := &apperr.ValidationError{}
	if in.Name != nil {
		if name := strings.TrimSpace(*in.Name); name == "" {
			verr.Add("name", "database name is required")
		} else {
			sc.Name = name
		}
	}
	if in.Description != nil {
		sc.Description = strings.TrimSpace(*in.Description)
	}

	props, order, renames := buildProperties(sc, in.Properties, verr)
	views := buildViews(in.Views, props, renames, verr)
	if err := verr.Err(); err != nil {
		return nil, err
	}

	sc.Properties = props
	sc.Views = views
	PersistOrder(sc, order)
	return sc, s.save(ctx, sc)
}

// UpdateProperty 修改单个列（重命名、改类型、改选项），键迁移规则与 UpdateSchema 相同。
func (s *Service) UpdateProperty(ctx context.Context, schemaID, key string, in PropertyInput) (*Schema, error) {
	sc, err := s.repo.Get(ctx, schemaID)
	if err != nil {
		return nil, err
	}
	if _, ok := sc.Properties[key]; !ok {
		return nil, apperr.NotFound("property", key)
	}

	inputs := make(PropertyList, 0, len(sc.Properties))
	for _, k := range DeriveDisplayOrder(sc) {
		if k == key {
			in.Key = key
			inputs = append(inputs, in)
			continue
		}
		inputs = append(inputs, inputOf(k, sc.Properties[k]))
	}

	verr := &apperr.ValidationError{}
	props, order, renames := buildProperties(sc, inputs, verr)
	views := buildViews(sc.Views, props, renames, verr)
	if err := verr.Err(); err != nil {
		return nil, err
	}
	sc.Properties = props
	sc.Views = views
	PersistOrder(sc, order)
	return sc, s.save(ctx, sc)
}

// DeleteProperty 删除一列。不允许删除最后一列，也不允许删除最后一个 title 列。
func (s *Service) DeleteProperty(ctx context.Context, schemaID, key string) (*Schema, error) {
	sc, err := s.repo.Get(ctx, schemaID)
	if err != nil {
		return nil, err
	}
	def, ok := sc.Properties[key]
	if !ok {
		return nil, apperr.NotFound("property", key)
	}
	if len(sc.Properties) == 1 {
		return nil, apperr.Invalid("cannot delete the last property")
	}
	if def.IsTitle() && len(sc.TitleKeys()) == 1 {
		return nil, apperr.Invalid("database must have a Title column")
	}

	order := DeriveDisplayOrder(sc)
	delete(sc.Properties, key)
	SetColumnHidden(sc, key, false)
	if widths := ColumnWidths(sc); len(widths) > 0 {
		delete(widths, key)
		if len(widths) == 0 {
			removeReserved(sc, ViewColumnWidths)
		} else {
			replaceReserved(sc, View{Type: ViewColumnWidths, Widths: widths})
		}
	}
	for i := range sc.Views {
		if sc.Views[i].CoverProperty == key {
			sc.Views[i].CoverProperty = ""
		}
	}

	remaining := make([]string, 0, len(order))
	for _, k := range order {
		if k != key {
			remaining = append(remaining, k)
		}
	}
	PersistOrder(sc, remaining)
	return sc, s.save(ctx, sc)
}

// AddProperty 追加一个 text 类型的新列，名称自动生成（New Column、New Column 1 ...）。
// afterKey 非空且存在时插入在它之后，否则追加到末尾。返回新列的键。
func (s *Service) AddProperty(ctx context.Context, schemaID, afterKey string) (*Schema, string, error) {
	sc, err := s.repo.Get(ctx, schemaID)
	if err != nil {
		return nil, "", err
	}
	name := nextColumnName(sc.Properties)
	order := DeriveDisplayOrder(sc)
	sc.Properties[name] = property.Definition{Name: name, Type: property.TypeText}
	PersistOrder(sc, InsertAfter(order, name, afterKey))
	if err := s.save(ctx, sc); err != nil {
		return nil, "", err
	}
	return sc, name, nil
}

// MoveColumn 把 key 移动到 beforeKey 之前；beforeKey 为空时移到末尾。
func (s *Service) MoveColumn(ctx context.Context, schemaID, key, beforeKey string) (*Schema, error) {
	sc, err := s.repo.Get(ctx, schemaID)
	if err != nil {
		return nil, err
	}
	order, ok := MoveColumn(DeriveDisplayOrder(sc), key, beforeKey)
	if !ok {
		return nil, apperr.Invalid("unknown column %q or %q", key, beforeKey)
	}
	PersistOrder(sc, order)
	return sc, s.save(ctx, sc)
}

// ReorderColumns 以 keys 作为新的列顺序。未列出的列按原有的派生顺序追加在后面。
func (s *Service) ReorderColumns(ctx context.Context, schemaID string, keys []string) (*Schema, error) {
	sc, err := s.repo.Get(ctx, schemaID)
	if err != nil {
		return nil, err
	}
	verr := &apperr.ValidationError{}
	for _, k := range keys {
		if _, ok := sc.Properties[k]; !ok {
			verr.Add(k, "unknown column")
		}
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	order := make([]string, 0, len(sc.Properties))
	listed := make(map[string]bool, len(keys))
	for _, k := range keys {
		if !listed[k] {
			listed[k] = true
			order = append(order, k)
		}
	}
	// 未提及的列保持它们原来的相对顺序
	for _, k := range DeriveDisplayOrder(sc) {
		if !listed[k] {
			order = append(order, k)
		}
	}
	PersistOrder(sc, order)
	return sc, s.save(ctx, sc)
}

// SetColumnHidden 隐藏或显示一列
func (s *Service) SetColumnHidden(ctx context.Context, schemaID, key string, hidden bool) (*Schema, error) {
	sc, err := s.repo.Get(ctx, schemaID)
	if err != nil {
		return nil, err
	}
	if _, ok := sc.Properties[key]; !ok {
		return nil, apperr.NotFound("property", key)
	}
	SetColumnHidden(sc, key, hidden)
	return sc, s.save(ctx, sc)
}

// SetColumnWidth 设置列宽（像素）
func (s *Service) SetColumnWidth(ctx context.Context, schemaID, key string, width int) (*Schema, error) {
	if width <= 0 {
		return nil, apperr.Invalid("column width must be positive")
	}
	sc, err := s.repo.Get(ctx, schemaID)
	if err != nil {
		return nil, err
	}
	if _, ok := sc.Properties[key]; !ok {
		return nil, apperr.NotFound("property", key)
	}
	SetColumnWidth(sc, key, width)
	return sc, s.save(ctx, sc)
}

// DeleteSchema 删除 schema 本身；条目的清理由调用方负责。
func (s *Service) DeleteSchema(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, id)
	return nil
}

func (s *Service) save(ctx context.Context, sc *Schema) error {
	sc.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, sc); err != nil {
		return fmt.Errorf("save schema %s: %w", sc.ID, err)
	}
	s.cache.Invalidate(ctx, sc.ID)
	return nil
}

// buildProperties 把有序的输入列表转换为属性 map，同时返回列顺序和重命名映射（旧键 -> 新键）。
// 所有错误累积到 verr 中。
func buildProperties(existing *Schema, inputs PropertyList, verr *apperr.ValidationError) (map[string]property.Definition, []string, map[string]string) {
	props := make(map[string]property.Definition, len(inputs))
	order := make([]string, 0, len(inputs))
	renames := make(map[string]string)
	seen := make(map[string]bool, len(inputs))

	for i, in := range inputs {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			verr.Add(fmt.Sprintf("properties[%d].name", i), "property name is required")
			continue
		}
		folded := strings.ToLower(name)
		if seen[folded] {
			verr.Add(name, "duplicate property name %q", name)
			continue
		}
		seen[folded] = true

		typ, ok := property.ParseType(string(in.Type))
		if !ok {
			verr.Add(name, "unknown property type %q", in.Type)
			continue
		}
		options := cleanOptions(in.Options)
		if typ.NeedsOptions() && len(options) == 0 {
			verr.Add(name, "%s property needs at least one option", typ)
		}
		if !typ.NeedsOptions() {
			options = nil
		}

		key := name
		if existing != nil && in.Key != "" {
			if _, ok := existing.Properties[in.Key]; ok {
				if strings.EqualFold(in.Key, name) {
					key = in.Key
				} else {
					renames[in.Key] = name
				}
			}
		}
		if _, dup := props[key]; dup {
			verr.Add(name, "duplicate property key %q", key)
			continue
		}
		props[key] = property.Definition{
			Name:    name,
			Type:    typ,
			Options: options,
			Format:  strings.TrimSpace(in.Format),
		}
		order = append(order, key)
	}

	switch {
	case len(inputs) == 0:
		verr.Add("properties", "a database must have at least one property")
	case !declaresTitle(inputs):
		verr.Add("properties", "database must have a Title column")
	}
	return props, order, renames
}

// buildViews 清洗调用方提交的视图：丢弃 _columnOrder，元数据视图每种只保留最后一个，
// 并把重命名同步到隐藏列、列宽和画廊封面属性上。
func buildViews(views []View, props map[string]property.Definition, renames map[string]string, verr *apperr.ValidationError) []View {
	rename := func(key string) string {
		if to, ok := renames[key]; ok {
			return to
		}
		return key
	}

	var user []View
	var hidden, widths *View
	for i, v := range views {
		switch v.Type {
		case ViewColumnOrder:
			continue
		case ViewHiddenColumns:
			var cols []string
			for _, k := range v.Columns {
				if k = rename(k); hasKey(props, k) {
					cols = append(cols, k)
				}
			}
			hidden = &View{Type: ViewHiddenColumns, Columns: cols}
		case ViewColumnWidths:
			w := make(map[string]int, len(v.Widths))
			for k, px := range v.Widths {
				if px <= 0 {
					verr.Add(k, "column width must be positive")
					continue
				}
				if k = rename(k); hasKey(props, k) {
					w[k] = px
				}
			}
			widths = &View{Type: ViewColumnWidths, Widths: w}
		case ViewTable, ViewGallery:
			out := View{Type: v.Type, Name: strings.TrimSpace(v.Name)}
			if out.Name == "" {
				out.Name = defaultViewName(v.Type)
			}
			if v.Type == ViewGallery && v.CoverProperty != "" {
				cover := rename(v.CoverProperty)
				if !hasKey(props, cover) {
					verr.Add(fmt.Sprintf("views[%d].coverProperty", i), "unknown property %q", v.CoverProperty)
				}
				out.CoverProperty = cover
			}
			user = append(user, out)
		default:
			verr.Add(fmt.Sprintf("views[%d].type", i), "unknown view type %q", v.Type)
		}
	}

	if len(user) == 0 {
		user = append(user, View{Type: ViewTable, Name: defaultViewName(ViewTable)})
	}
	if hidden != nil && len(hidden.Columns) > 0 {
		user = append(user, *hidden)
	}
	if widths != nil && len(widths.Widths) > 0 {
		user = append(user, *widths)
	}
	return user
}

func defaultViewName(typ string) string {
	if typ == ViewGallery {
		return "Gallery"
	}
	return "Table"
}

func declaresTitle(inputs PropertyList) bool {
	for _, in := range inputs {
		if typ, ok := property.ParseType(string(in.Type)); ok && typ == property.TypeTitle {
			return true
		}
	}
	return false
}

func hasKey(props map[string]property.Definition, key string) bool {
	_, ok := props[key]
	return ok
}

func cleanOptions(options []string) []string {
	seen := make(map[string]bool, len(options))
	var out []string
	for _, opt := range options {
		opt = strings.TrimSpace(opt)
		if opt == "" || seen[opt] {
			continue
		}
		seen[opt] = true
		out = append(out, opt)
	}
	return out
}

func nextColumnName(props map[string]property.Definition) string {
	taken := make(map[string]bool, len(props))
	for key, def := range props {
		taken[strings.ToLower(key)] = true
		taken[strings.ToLower(def.Name)] = true
	}
	name := newColumnName
	for i := 1; taken[strings.ToLower(name)]; i++ {
		name = fmt.Sprintf("%s %d", newColumnName, i)
	}
	return name
}

func inputOf(key string, def property.Definition) PropertyInput {
	return PropertyInput{Key: key, Name: def.Name, Type: def.Type, Options: def.Options, Format: def.Format}
}
