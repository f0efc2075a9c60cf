package entry

import (
	"net/http"

	"github.com/BunnySweety/kollab-sub001/internal/platform/apperr"
	"github.com/BunnySweety/kollab-sub001/internal/user"
	"github.com/gin-gonic/gin"
)

// --- API 请求模型 ---

type dataRequest struct {
	Data map[string]any `json:"data" binding:"required"`
}

type bulkCreateRequest struct {
	Entries []dataRequest `json:"entries" binding:"required,min=1,dive"`
}

type idsRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

type bulkUpdateRequest struct {
	IDs  []string       `json:"ids" binding:"required,min=1"`
	Data map[string]any `json:"data" binding:"required"`
}

// Handler 提供条目相关的 HTTP 接口
type Handler struct {
	svc *Service
}

// NewHandler 创建条目控制器
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create 在 schema 下创建条目
func (h *Handler) Create(c *gin.Context) {
	var req dataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.FromBinding(err))
		return
	}
	e, err := h.svc.CreateEntry(c.Request.Context(), c.Param("id"), req.Data, user.FromContext(c))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// Get 读取单个条目
func (h *Handler) Get(c *gin.Context) {
	e, err := h.svc.GetEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// Update 按字段修改条目
func (h *Handler) Update(c *gin.Context) {
	var req dataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.FromBinding(err))
		return
	}
	e, err := h.svc.UpdateEntry(c.Request.Context(), c.Param("id"), req.Data)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// Delete 删除单个条目
func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.DeleteEntry(c.Request.Context(), c.Param("id")); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Duplicate 复制单个条目
func (h *Handler) Duplicate(c *gin.Context) {
	e, err := h.svc.DuplicateEntry(c.Request.Context(), c.Param("id"), c.Param("entryId"), user.FromContext(c))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// BulkCreate 批量创建
func (h *Handler) BulkCreate(c *gin.Context) {
	var req bulkCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.FromBinding(err))
		return
	}
	rows := make([]map[string]any, len(req.Entries))
	for i, r := range req.Entries {
		rows[i] = r.Data
	}
	result, err := h.svc.BulkCreate(c.Request.Context(), c.Param("id"), rows, user.FromContext(c))
	writeBulk(c, result, err)
}

// BulkDuplicate 批量复制
func (h *Handler) BulkDuplicate(c *gin.Context) {
	var req idsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.FromBinding(err))
		return
	}
	result, err := h.svc.BulkDuplicate(c.Request.Context(), c.Param("id"), req.IDs, user.FromContext(c))
	writeBulk(c, result, err)
}

// BulkDelete 批量删除
func (h *Handler) BulkDelete(c *gin.Context) {
	var req idsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.FromBinding(err))
		return
	}
	result, err := h.svc.BulkDelete(c.Request.Context(), req.IDs)
	writeBulk(c, result, err)
}

// BulkUpdate 批量修改
func (h *Handler) BulkUpdate(c *gin.Context) {
	var req bulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.FromBinding(err))
		return
	}
	result, err := h.svc.BulkUpdate(c.Request.Context(), req.IDs, req.Data)
	writeBulk(c, result, err)
}

// writeBulk 全部成功时返回 200，部分失败时返回 207 并附带摘要
func writeBulk(c *gin.Context, result BulkResult, err error) {
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	status := http.StatusOK
	if result.Partial() {
		status = http.StatusMultiStatus
	}
	c.JSON(status, gin.H{
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
		"summary":   result.Summary(),
	})
}
