// Package table 把 schema 和它的条目组合起来：整表加载、查询、导出，
// 以及连同条目一起删除 schema。
package table

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/BunnySweety/kollab-sub001/internal/entry"
	"github.com/BunnySweety/kollab-sub001/internal/export"
	"github.com/BunnySweety/kollab-sub001/internal/query"
	"github.com/BunnySweety/kollab-sub001/internal/schema"
)

// Loaded 是一次完整加载的结果：schema、拆分后的视图与布局，以及全部条目
type Loaded struct {
	schema.Response
	Entries []entry.Entry `json:"entries"`
}

// Service 组合 schema 服务和条目服务
type Service struct {
	schemas *schema.Service
	entries *entry.Service
	loc     *time.Location
	now     func() time.Time
}

// NewService 创建表格门面；loc 用于过滤中的日期和导出时的日期显示
func NewService(schemas *schema.Service, entries *entry.Service, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{schemas: schemas, entries: entries, loc: loc, now: time.Now}
}

// Load 读取 schema 及其全部条目（按插入顺序）
func (s *Service) Load(ctx context.Context, id string) (*Loaded, error) {
	sc, err := s.schemas.GetSchema(ctx, id)
	if err != nil {
		return nil, err
	}
	list, err := s.entries.ListEntries(ctx, id)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []entry.Entry{}
	}
	return &Loaded{Response: schema.NewResponse(sc), Entries: list}, nil
}

// Query 校验查询并返回过滤、排序后的条目
func (s *Service) Query(ctx context.Context, id string, q query.Query) ([]entry.Entry, error) {
	sc, list, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := q.Validate(sc); err != nil {
		return nil, err
	}
	return query.Apply(s.loc, list, sc, q), nil
}

// ExportOptions 控制导出哪些行和列
type ExportOptions struct {
	Query query.Query
	// AllColumns 为 true 时包含隐藏列
	AllColumns bool
}

// Export 把查询结果以 CSV 写入 w，返回建议的文件名。
// 列为当前可见列（或全部列），顺序与显示顺序一致。
func (s *Service) Export(ctx context.Context, id string, opts ExportOptions, w io.Writer) (string, error) {
	sc, list, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	if err := opts.Query.Validate(sc); err != nil {
		return "", err
	}
	rows := query.Apply(s.loc, list, sc, opts.Query)

	keys := schema.DeriveVisibleColumns(sc)
	if opts.AllColumns {
		keys = schema.DeriveDisplayOrder(sc)
	}
	if err := export.Write(w, rows, sc, keys, s.loc); err != nil {
		return "", fmt.Errorf("write csv: %w", err)
	}
	return export.Filename(sc.Name, s.now().In(s.loc)), nil
}

// Delete 删除 schema 及其全部条目。先删条目：中途失败时 schema 仍然存在，可以重试。
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.schemas.GetSchema(ctx, id); err != nil {
		return err
	}
	n, err := s.entries.DeleteBySchema(ctx, id)
	if err != nil {
		return err
	}
	if err := s.schemas.DeleteSchema(ctx, id); err != nil {
		return err
	}
	slog.Info("schema已删除", "schemaID", id, "entries", n)
	return nil
}

func (s *Service) load(ctx context.Context, id string) (*schema.Schema, []entry.Entry, error) {
	sc, err := s.schemas.GetSchema(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	list, err := s.entries.ListEntries(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return sc, list, nil
}
