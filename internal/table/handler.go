package table

import (
	"net/http"

	"github.com/BunnySweety/kollab-sub001/internal/entry"
	"github.com/BunnySweety/kollab-sub001/internal/platform/apperr"
	"github.com/BunnySweety/kollab-sub001/internal/query"
	"github.com/gin-gonic/gin"
)

// Handler 提供整表读取、查询和删除接口
type Handler struct {
	svc *Service
}

// NewHandler 创建表格控制器
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Get 返回 schema、视图、布局和全部条目
func (h *Handler) Get(c *gin.Context) {
	loaded, err := h.svc.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, loaded)
}

// Query 按过滤条件和排序返回条目
func (h *Handler) Query(c *gin.Context) {
	var q query.Query
	if err := c.ShouldBindJSON(&q); err != nil {
		apperr.Respond(c, apperr.FromBinding(err))
		return
	}
	list, err := h.svc.Query(c.Request.Context(), c.Param("id"), q)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if list == nil {
		list = []entry.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": list, "count": len(list)})
}

// Delete 删除 schema 及其条目
func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
