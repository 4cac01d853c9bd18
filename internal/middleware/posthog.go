package middleware

import (
	"net/http"
	"time"

	"github.com/SscSPs/caja_backoffice/internal/utils"
	"github.com/gin-gonic/gin"
)

// routeEvents names the analytics event sent for each tracked route.
// Reads polled by the register screen are left out.
var routeEvents = map[string]string{
	"POST /api/v1/caja/abrir":                      "api_register_open",
	"POST /api/v1/caja/arqueo/preview":             "api_reconciliation_preview",
	"POST /api/v1/caja/cerrar":                     "api_register_close",
	"GET /api/v1/caja/historial":                   "api_register_history",
	"POST /api/v1/caja/pagos":                      "api_payment_create",
	"GET /api/v1/caja/pagos/:id/recibo":            "api_receipt_download",
	"POST /api/v1/caja/egresos":                    "api_expense_create",
	"GET /api/v1/estudiantes/documento/:documento": "api_student_lookup",
}

// PosthogMiddleware creates a Gin middleware handler that reports calls to
// the register API to PostHog, including rejected ones so that validation
// and conflict rates are visible.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !posthogClient.IsInitialized() {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		event, tracked := routeEvents[c.Request.Method+" "+c.FullPath()]
		if !tracked || c.Writer.Status() == http.StatusUnauthorized {
			return
		}
		operatorID, ok := GetUserIDFromContext(c)
		if !ok {
			return
		}

		props := map[string]any{
			"status_code": c.Writer.Status(),
			"success":     c.Writer.Status() < http.StatusBadRequest,
			"latency_ms":  time.Since(start).Milliseconds(),
			"request_id":  c.Writer.Header().Get(RequestIDHeader),
		}
		posthogClient.Enqueue(operatorID, event, props)
	}
}
