package schema

import (
	"net/http"

	"github.com/BunnySweety/kollab-sub001/internal/platform/apperr"
	"github.com/BunnySweety/kollab-sub001/internal/user"
	"github.com/gin-gonic/gin"
)

// --- API 响应模型 ---

// Response 把 schema 与拆分好的用户视图、派生出的列布局一起返回，
// 调用方不需要自己解析内部元数据视图。
type Response struct {
	Schema *Schema `json:"schema"`
	Views  []View  `json:"views"`
	Layout Layout  `json:"layout"`
}

// NewResponse 构造 schema 的标准响应
func NewResponse(s *Schema) Response {
	return Response{Schema: s, Views: UserViews(s), Layout: LayoutOf(s)}
}

// --- API 请求模型 ---

type createRequest struct {
	Name        string       `json:"name" binding:"required"`
	Description string       `json:"description"`
	Properties  PropertyList `json:"properties" binding:"required"`
	Views       []View       `json:"views"`
}

type updateRequest struct {
	Name        *string      `json:"name"`
	Description *string      `json:"description"`
	Properties  PropertyList `json:"properties" binding:"required"`
	Views       []View       `json:"views"`
}

type addPropertyRequest struct {
	AfterKey string `json:"afterKey"`
}

type columnOrderRequest struct {
	Keys      []string `json:"keys"`
	Key       string   `json:"key"`
	BeforeKey string   `json:"beforeKey"`
}

type hiddenRequest struct {
	Hidden bool `json:"hidden"`
}

type widthRequest struct {
	Width int `json:"width" binding:"required,gt=0"`
}

// Handler 提供 schema 相关的 HTTP 接口
type Handler struct {
	svc *Service
}

// NewHandler 创建 schema 控制器
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List 列出工作区下的所有 schema
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.ListSchemas(c.Request.Context(), c.Param("workspaceId"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	responses := make([]Response, 0, len(list))
	for i := range list {
		responses = append(responses, NewResponse(&list[i]))
	}
	c.JSON(http.StatusOK, responses)
}

// Create 创建 schema
func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.FromBinding(err))
		return
	}
	sc, err := h.svc.CreateSchema(c.Request.Context(), CreateInput{
		WorkspaceID: c.Param("workspaceId"),
		Name:        req.Name,
		Description: req.Description,
		Properties:  req.Properties,
		Views:       req.Views,
		CreatedBy:   user.FromContext(c),
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewResponse(sc))
}

// Update 整体替换 schema 的属性和视图
func (h *Handler) Update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.FromBinding(err))
		return
	}
	sc, err := h.svc.UpdateSchema(c.Request.Context(), c.Param("id"), UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Properties:  req.Properties,
		Views:       req.Views,
	})
	h.reply(c, sc, err)
}

// AddProperty 新增一列
func (h *Handler) AddProperty(c *gin.Context) {
	var req addPropertyRequest
	// 请求体可以为空
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.FromBinding(err))
			return
		}
	}
	sc, key, err := h.svc.AddProperty(c.Request.Context(), c.Param("id"), req.AfterKey)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"key": key, "schema": NewResponse(sc)})
}

// UpdateProperty 修改单个列
func (h *Handler) UpdateProperty(c *gin.Context) {
	var req PropertyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.FromBinding(err))
		return
	}
	sc, err := h.svc.UpdateProperty(c.Request.Context(), c.Param("id"), c.Param("key"), req)
	h.reply(c, sc, err)
}

// DeleteProperty 删除单个列
func (h *Handler) DeleteProperty(c *gin.Context) {
	sc, err := h.svc.DeleteProperty(c.Request.Context(), c.Param("id"), c.Param("key"))
	h.reply(c, sc, err)
}

// ReorderColumns 接受完整顺序 {keys}，或单次移动 {key, beforeKey}
func (h *Handler) ReorderColumns(c *gin.Context) {
	var req columnOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.FromBinding(err))
		return
	}
	var (
		sc  *Schema
		err error
	)
	switch {
	case len(req.Keys) > 0:
		sc, err = h.svc.ReorderColumns(c.Request.Context(), c.Param("id"), req.Keys)
	case req.Key != "":
		sc, err = h.svc.MoveColumn(c.Request.Context(), c.Param("id"), req.Key, req.BeforeKey)
	default:
		err = apperr.Invalid("either keys or key is required")
	}
	h.reply(c, sc, err)
}

// SetHidden 隐藏/显示列
func (h *Handler) SetHidden(c *gin.Context) {
	var req hiddenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.FromBinding(err))
		return
	}
	sc, err := h.svc.SetColumnHidden(c.Request.Context(), c.Param("id"), c.Param("key"), req.Hidden)
	h.reply(c, sc, err)
}

// SetWidth 设置列宽
func (h *Handler) SetWidth(c *gin.Context) {
	var req widthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.FromBinding(err))
		return
	}
	sc, err := h.svc.SetColumnWidth(c.Request.Context(), c.Param("id"), c.Param("key"), req.Width)
	h.reply(c, sc, err)
}

func (h *Handler) reply(c *gin.Context, sc *Schema, err error) {
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResponse(sc))
}
