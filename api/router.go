package api

import (
	"net/http"

	"github.com/BunnySweety/kollab-sub001/internal/entry"
	"github.com/BunnySweety/kollab-sub001/internal/platform/database"
	"github.com/BunnySweety/kollab-sub001/internal/schema"
	"github.com/BunnySweety/kollab-sub001/internal/table"
	"github.com/BunnySweety/kollab-sub001/internal/user"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handlers 汇总各功能模块的控制器
type Handlers struct {
	Schema *schema.Handler
	Entry  *entry.Handler
	Table  *table.Handler
}

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine, db *gorm.DB, h Handlers) {
	router.GET("/healthz", healthz(db))

	api := router.Group("/api", user.LoadUserMiddleware())
	{
		// 工作区下的 schema 列表
		workspaces := api.Group("/workspaces/:workspaceId")
		workspaces.GET("/schemas", h.Schema.List)
		workspaces.POST("/schemas", h.Schema.Create)

		schemas := api.Group("/schemas/:id")
		{
			schemas.GET("", h.Table.Get)
			schemas.PUT("", h.Schema.Update)
			schemas.DELETE("", h.Table.Delete)
			schemas.POST("/query", h.Table.Query)

			// 列定义
			schemas.POST("/properties", h.Schema.AddProperty)
			schemas.PUT("/properties/:key", h.Schema.UpdateProperty)
			schemas.DELETE("/properties/:key", h.Schema.DeleteProperty)

			// 列布局
			schemas.PUT("/column-order", h.Schema.ReorderColumns)
			schemas.PUT("/columns/:key/hidden", h.Schema.SetHidden)
			schemas.PUT("/columns/:key/width", h.Schema.SetWidth)

			// 条目
			schemas.POST("/entries", h.Entry.Create)
			schemas.POST("/entries/:entryId/duplicate", h.Entry.Duplicate)
			schemas.POST("/bulk-entries", h.Entry.BulkCreate)
			schemas.POST("/bulk-duplicate", h.Entry.BulkDuplicate)
		}

		entries := api.Group("/entries")
		{
			entries.GET("/:id", h.Entry.Get)
			entries.PUT("/:id", h.Entry.Update)
			entries.DELETE("/:id", h.Entry.Delete)
			entries.POST("/bulk-delete", h.Entry.BulkDelete)
			entries.POST("/bulk-update", h.Entry.BulkUpdate)
		}
	}
}

// healthz 报告数据库是否可用；Redis 只是缓存，不可用时仍返回 200
func healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		dbStatus := "ok"
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status = http.StatusServiceUnavailable
			dbStatus = "unavailable"
		}
		redisStatus := "unavailable"
		if database.IsRedisHealthy() {
			redisStatus = "ok"
		}
		c.JSON(status, gin.H{"database": dbStatus, "redis": redisStatus})
	}
}
