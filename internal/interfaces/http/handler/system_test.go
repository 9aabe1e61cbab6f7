package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newSystemRouter() *gin.Engine {
	h := NewSystemHandler(nil)
	router := gin.New()
	h.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func TestSystemHandler_Health(t *testing.T) {
	router := newSystemRouter()

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	router := newSystemRouter()

	req := httptest.NewRequest("GET", "/api/v1/system/info", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Suoops Invoice API")
	assert.Contains(t, w.Body.String(), "go_version")
}
