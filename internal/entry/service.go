package entry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BunnySweety/kollab-sub001/internal/platform/apperr"
	"github.com/BunnySweety/kollab-sub001/internal/property"
	"github.com/BunnySweety/kollab-sub001/internal/schema"
	"github.com/google/uuid"
)

// CopyPrefix 是复制条目时加在 title 值前面的前缀
const CopyPrefix = "Copy of "

// SchemaSource 提供条目校验所需的 schema。*schema.Service 满足这个接口。
type SchemaSource interface {
	GetSchema(ctx context.Context, id string) (*schema.Schema, error)
}

// Options 是条目服务的可调参数
type Options struct {
	// Location 用于解释不带时区的日期输入
	Location *time.Location
	// BulkConcurrency 是批量操作的并发上限
	BulkConcurrency int
	// MaxBulkSize 是单次批量操作的条目数上限
	MaxBulkSize int
}

// Service 实现条目的增删改查、复制和批量操作。
// 所有写路径都经过 property.ValidateIn 校验，并一次性报告所有字段错误。
type Service struct {
	repo    Repository
	schemas SchemaSource
	opts    Options
	now     func() time.Time
}

// NewService 创建条目服务
func NewService(repo Repository, schemas SchemaSource, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.BulkConcurrency <= 0 {
		opts.BulkConcurrency = 1
	}
	if opts.MaxBulkSize <= 0 {
		opts.MaxBulkSize = 500
	}
	return &Service{repo: repo, schemas: schemas, opts: opts, now: time.Now}
}

// GetEntry 读取单个条目
func (s *Service) GetEntry(ctx context.Context, id string) (*Entry, error) {
	return s.repo.Get(ctx, id)
}

// ListEntries 按插入顺序返回 schema 的全部条目
func (s *Service) ListEntries(ctx context.Context, schemaID string) ([]Entry, error) {
	return s.repo.ListBySchema(ctx, schemaID)
}

// CreateEntry 校验并创建一个条目。title 列必填，checkbox 列缺省为 false。
func (s *Service) CreateEntry(ctx context.Context, schemaID string, data map[string]any, createdBy string) (*Entry, error) {
	sc, err := s.schemas.GetSchema(ctx, schemaID)
	if err != nil {
		return nil, err
	}
	order, err := s.repo.NextOrder(ctx, schemaID)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, sc, data, order, createdBy)
}

func (s *Service) create(ctx context.Context, sc *schema.Schema, data map[string]any, order int64, createdBy string) (*Entry, error) {
	clean, err := s.validateFull(sc, data)
	if err != nil {
		return nil, err
	}
	return s.insert(ctx, sc.ID, clean, order, createdBy)
}

// insert 写入一行已经是存储形式的数据，不再做校验
func (s *Service) insert(ctx context.Context, schemaID string, data map[string]any, order int64, createdBy string) (*Entry, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate entry id: %w", err)
	}
	now := s.now()
	e := &Entry{
		ID:        id.String(),
		SchemaID:  schemaID,
		Data:      data,
		Order:     order,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// UpdateEntry 按字段打补丁：补丁中没有的键保持不变，值为 null 或空字符串的键被清除。
// 不属于当前 schema 的遗留键原样保留。
func (s *Service) UpdateEntry(ctx context.Context, id string, patch map[string]any) (*Entry, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sc, err := s.schemas.GetSchema(ctx, e.SchemaID)
	if err != nil {
		return nil, err
	}

	data := copyData(e.Data)
	verr := &apperr.ValidationError{}
	for key, raw := range patch {
		def, ok := sc.Property(key)
		if !ok {
			verr.Add(key, "unknown property")
			continue
		}
		v, err := property.ValidateIn(s.opts.Location, def, raw)
		if err != nil {
			verr.Append(asFieldError(def, err))
			continue
		}
		if v == nil {
			delete(data, key)
		} else {
			data[key] = v.Stored()
		}
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	e.Data = data
	e.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteEntry 删除单个条目
func (s *Service) DeleteEntry(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// DeleteBySchema 删除 schema 的全部条目，返回删除的行数
func (s *Service) DeleteBySchema(ctx context.Context, schemaID string) (int64, error) {
	return s.repo.DeleteBySchema(ctx, schemaID)
}

// DuplicateEntry 复制一个条目的全部存储值；title 值加上 "Copy of " 前缀（已有前缀时不重复添加）。
// 源行中与当前 schema 不符的旧值不会阻止复制。
func (s *Service) DuplicateEntry(ctx context.Context, schemaID, entryID, createdBy string) (*Entry, error) {
	sc, err := s.schemas.GetSchema(ctx, schemaID)
	if err != nil {
		return nil, err
	}
	order, err := s.repo.NextOrder(ctx, schemaID)
	if err != nil {
		return nil, err
	}
	return s.duplicate(ctx, sc, entryID, order, createdBy)
}

func (s *Service) duplicate(ctx context.Context, sc *schema.Schema, entryID string, order int64, createdBy string) (*Entry, error) {
	src, err := s.repo.Get(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if src.SchemaID != sc.ID {
		return nil, apperr.NotFound("entry", entryID)
	}

	// 存储值原样复制（包括遗留键和列改类型前写入的旧值），只有加了前缀的 title 需要重新校验
	data := copyData(src.Data)
	for _, key := range sc.TitleKeys() {
		title, ok := data[key].(string)
		if !ok || title == "" || strings.HasPrefix(title, CopyPrefix) {
			continue
		}
		def := sc.Properties[key]
		v, err := property.ValidateIn(s.opts.Location, def, CopyPrefix+title)
		if err != nil {
			verr := &apperr.ValidationError{}
			verr.Append(asFieldError(def, err))
			return nil, verr
		}
		if v != nil {
			data[key] = v.Stored()
		}
	}
	return s.insert(ctx, sc.ID, data, order, createdBy)
}

// validateFull 校验一整行数据：schema 中的每一列都会被校验（缺失视为 null），
// 不属于 schema 的键被拒绝。返回只包含非空值的存储形式。
func (s *Service) validateFull(sc *schema.Schema, data map[string]any) (map[string]any, error) {
	verr := &apperr.ValidationError{}
	for key := range data {
		if _, ok := sc.Properties[key]; !ok {
			verr.Add(key, "unknown property")
		}
	}

	clean := make(map[string]any, len(sc.Properties))
	for _, key := range schema.DeriveDisplayOrder(sc) {
		def := sc.Properties[key]
		v, err := property.ValidateIn(s.opts.Location, def, data[key])
		if err != nil {
			verr.Append(asFieldError(def, err))
			continue
		}
		if v != nil {
			clean[key] = v.Stored()
		}
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	return clean, nil
}

func asFieldError(def property.Definition, err error) *apperr.FieldError {
	if fe, ok := err.(*apperr.FieldError); ok {
		return fe
	}
	return &apperr.FieldError{Field: def.Name, Message: err.Error()}
}
