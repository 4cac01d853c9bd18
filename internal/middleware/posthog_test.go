package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SscSPs/caja_backoffice/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestPosthogMiddleware_UninitializedClientIsNoop(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(PosthogMiddleware(&utils.PosthogClientWrapper{}))
	r.POST("/api/v1/caja/pagos", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/caja/pagos", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRouteEvents_CoverMutations(t *testing.T) {
	for _, route := range []string{
		"POST /api/v1/caja/abrir",
		"POST /api/v1/caja/cerrar",
		"POST /api/v1/caja/pagos",
		"POST /api/v1/caja/egresos",
	} {
		assert.Contains(t, routeEvents, route)
	}
	assert.NotContains(t, routeEvents, "GET /api/v1/caja/actual")
}
