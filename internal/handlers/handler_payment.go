package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/caja_backoffice/internal/core/ports/services"
	"github.com/SscSPs/caja_backoffice/internal/dto"
	"github.com/SscSPs/caja_backoffice/internal/middleware"
	"github.com/gin-gonic/gin"
)

// paymentHandler handles HTTP requests related to student payments.
type paymentHandler struct {
	paymentService portssvc.PaymentSvcFacade
}

// newPaymentHandler creates a new paymentHandler.
func newPaymentHandler(ps portssvc.PaymentSvcFacade) *paymentHandler {
	return &paymentHandler{
		paymentService: ps,
	}
}

// registerPaymentRoutes registers routes related to payments and student lookup.
func registerPaymentRoutes(rg *gin.RouterGroup, paymentService portssvc.PaymentSvcFacade) {
	h := newPaymentHandler(paymentService)

	payments := rg.Group("/caja/pagos")
	{
		payments.POST("", h.createPayment)
		payments.GET("/:id/recibo", h.getReceipt)
	}

	rg.GET("/estudiantes/documento/:documento", h.getStudentByDocument)
}

// createPayment godoc
// @Summary Record a student payment
// @Description Records a simple or mixed payment in the open register. Amounts are validated against the student's outstanding balance before anything is sent to the backend.
// @Tags pagos
// @Accept  json
// @Produce  json
// @Param   payment body dto.PaymentRequest true "Payment details"
// @Success 201 {object} dto.PaymentOutcomeResponse
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Student not found"
// @Failure 409 {object} map[string]string "No register is open or a payment is already in progress"
// @Failure 422 {object} map[string]string "Validation error"
// @Security BearerAuth
// @Router /caja/pagos [post]
func (h *paymentHandler) createPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}
	sess, ok := operatorSession(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("student_document", req.StudentDocument))
	logger.Info("Received request to record payment", slog.Bool("mixed", req.Mixed))

	outcome, err := h.paymentService.SubmitPayment(c.Request.Context(), sess, req.ToForm())
	if err != nil {
		respondError(c, logger, err, "record payment")
		return
	}

	logger.Info("Payment recorded successfully", slog.String("payment_id", outcome.Payment.PaymentID))
	c.JSON(http.StatusCreated, dto.ToPaymentOutcomeResponse(outcome))
}

// getReceipt godoc
// @Summary Download a payment receipt
// @Description Streams the receipt document of an accepted payment
// @Tags pagos
// @Produce  application/pdf
// @Param   id path string true "Payment ID"
// @Success 200 {file} file
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Receipt not found"
// @Security BearerAuth
// @Router /caja/pagos/{id}/recibo [get]
func (h *paymentHandler) getReceipt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sess, ok := operatorSession(c, logger)
	if !ok {
		return
	}
	paymentID := c.Param("id")
	logger = logger.With(slog.String("payment_id", paymentID))

	doc, err := h.paymentService.PaymentReceipt(c.Request.Context(), sess, paymentID)
	if err != nil {
		respondError(c, logger, err, "fetch receipt")
		return
	}
	defer doc.Body.Close()

	c.DataFromReader(http.StatusOK, -1, doc.ContentType, doc.Body, map[string]string{
		"Content-Disposition": `inline; filename="` + doc.Filename + `"`,
	})
}

// getStudentByDocument godoc
// @Summary Look up a student
// @Description Finds a student by identity document and returns the outstanding balance
// @Tags estudiantes
// @Produce  json
// @Param   documento path string true "Identity document number"
// @Success 200 {object} dto.StudentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Student not found"
// @Security BearerAuth
// @Router /estudiantes/documento/{documento} [get]
func (h *paymentHandler) getStudentByDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sess, ok := operatorSession(c, logger)
	if !ok {
		return
	}

	student, err := h.paymentService.LookupStudent(c.Request.Context(), sess, c.Param("documento"))
	if err != nil {
		respondError(c, logger, err, "look up student")
		return
	}

	c.JSON(http.StatusOK, dto.ToStudentResponse(student))
}
