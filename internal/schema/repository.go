package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/BunnySweety/kollab-sub001/internal/platform/apperr"
	"gorm.io/gorm"
)

// gormRepository 把 schema 存在一张表里，properties 与 views 作为 JSON 列整体读写。
type gormRepository struct {
	db *gorm.DB
}

// NewRepository 返回基于 GORM 的 Repository 实现
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, s *Schema) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return fmt.Errorf("无法写入schema %s: %w", s.ID, err)
	}
	return nil
}

func (r *gormRepository) Get(ctx context.Context, id string) (*Schema, error) {
	var s Schema
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("schema", id)
		}
		return nil, fmt.Errorf("无法读取schema %s: %w", id, err)
	}
	return &s, nil
}

func (r *gormRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]Schema, error) {
	var list []Schema
	err := r.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at asc").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("无法列出工作区 %s 的schema: %w", workspaceID, err)
	}
	return list, nil
}

// Save 覆盖整行（properties + views 一起写），不做版本检查。
// 行不存在（并发删除）时返回 ErrNotFound，而不是重新插入。
func (r *gormRepository) Save(ctx context.Context, s *Schema) error {
	res := r.db.WithContext(ctx).
		Model(&Schema{ID: s.ID}).
		Select("name", "description", "properties", "views", "updated_at").
		Updates(s)
	if res.Error != nil {
		return fmt.Errorf("无法更新schema %s: %w", s.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("schema", s.ID)
	}
	return nil
}

func (r *gormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Schema{})
	if res.Error != nil {
		return fmt.Errorf("无法删除schema %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("schema", id)
	}
	return nil
}
