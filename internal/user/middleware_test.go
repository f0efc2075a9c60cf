package user_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BunnySweety/kollab-sub001/internal/user"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(user.LoadUserMiddleware())
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, user.FromContext(c))
	})
	return r
}

func TestLoadUserMiddleware(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(user.HeaderName, "u-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "u-1", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: user.CookieName, Value: "u-2"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "u-2", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "", w.Body.String())
}
