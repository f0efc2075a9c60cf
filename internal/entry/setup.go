package entry

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// Migrate 自动迁移条目表结构
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return fmt.Errorf("无法迁移条目表: %w", err)
	}
	slog.Info("条目数据库表迁移成功")
	return nil
}
