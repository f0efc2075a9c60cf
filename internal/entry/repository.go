package entry

import (
	"context"
	"errors"
	"fmt"

	"github.com/BunnySweety/kollab-sub001/internal/platform/apperr"
	"gorm.io/gorm"
)

// Repository 是条目的持久化接口
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	Get(ctx context.Context, id string) (*Entry, error)
	ListBySchema(ctx context.Context, schemaID string) ([]Entry, error)
	Save(ctx context.Context, e *Entry) error
	Delete(ctx context.Context, id string) error
	DeleteBySchema(ctx context.Context, schemaID string) (int64, error)
	NextOrder(ctx context.Context, schemaID string) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository 返回基于 GORM 的 Repository 实现
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, e *Entry) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("无法写入条目 %s: %w", e.ID, err)
	}
	return nil
}

func (r *gormRepository) Get(ctx context.Context, id string) (*Entry, error) {
	var e Entry
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("entry", id)
		}
		return nil, fmt.Errorf("无法读取条目 %s: %w", id, err)
	}
	return &e, nil
}

func (r *gormRepository) ListBySchema(ctx context.Context, schemaID string) ([]Entry, error) {
	var list []Entry
	err := r.db.WithContext(ctx).
		Where("schema_id = ?", schemaID).
		Order("sort_order asc").
		Order("created_at asc").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("无法列出schema %s 的条目: %w", schemaID, err)
	}
	return list, nil
}

// Save 覆盖整行的 data（最后写入者获胜）
func (r *gormRepository) Save(ctx context.Context, e *Entry) error {
	res := r.db.WithContext(ctx).
		Model(&Entry{ID: e.ID}).
		Select("data", "updated_at").
		Updates(e)
	if res.Error != nil {
		return fmt.Errorf("无法更新条目 %s: %w", e.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("entry", e.ID)
	}
	return nil
}

func (r *gormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Entry{})
	if res.Error != nil {
		return fmt.Errorf("无法删除条目 %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("entry", id)
	}
	return nil
}

func (r *gormRepository) DeleteBySchema(ctx context.Context, schemaID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("schema_id = ?", schemaID).Delete(&Entry{})
	if res.Error != nil {
		return 0, fmt.Errorf("无法删除schema %s 的条目: %w", schemaID, res.Error)
	}
	return res.RowsAffected, nil
}

// NextOrder 返回 schema 内下一个可用的插入序号
func (r *gormRepository) NextOrder(ctx context.Context, schemaID string) (int64, error) {
	var max int64
	err := r.db.WithContext(ctx).
		Model(&Entry{}).
		Where("schema_id = ?", schemaID).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("无法读取schema %s 的最大序号: %w", schemaID, err)
	}
	return max + 1, nil
}
