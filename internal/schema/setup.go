package schema

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// Migrate 自动迁移 schema 表结构
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Schema{}); err != nil {
		return fmt.Errorf("无法迁移schema表: %w", err)
	}
	slog.Info("schema数据库表迁移成功")
	return nil
}
