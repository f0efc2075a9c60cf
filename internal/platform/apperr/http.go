package apperr

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Status 把错误映射为 HTTP 状态码。
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Respond 按错误类型写出 JSON 响应。存储/网络错误只返回通用消息，原因写入日志。
func Respond(c *gin.Context, err error) {
	status := Status(err)
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(status, gin.H{"error": verr.Error(), "fields": verr.Fields})
	case status == http.StatusInternalServerError:
		slog.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "internal error"})
	default:
		c.JSON(status, gin.H{"error": err.Error()})
	}
}

// FromBinding 把 gin 绑定阶段的错误转换为本包的错误分类。
// validator 的结构体校验失败会变成逐字段的 ValidationError，其他（JSON 语法等）变成 ErrBadRequest。
func FromBinding(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := &ValidationError{}
		for _, fe := range verrs {
			out.Add(fe.Field(), "failed %q constraint", fe.Tag())
		}
		return out
	}
	return fmt.Errorf("%w: %v", ErrBadRequest, err)
}
