package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/caja_backoffice/internal/core/ports/services"
	"github.com/SscSPs/caja_backoffice/internal/core/session"
	"github.com/SscSPs/caja_backoffice/internal/dto"
	"github.com/SscSPs/caja_backoffice/internal/middleware"
	"github.com/gin-gonic/gin"
)

// registerHandler handles HTTP requests related to the cash register (caja).
type registerHandler struct {
	registerService portssvc.RegisterSvcFacade
}

// newRegisterHandler creates a new registerHandler.
func newRegisterHandler(rs portssvc.RegisterSvcFacade) *registerHandler {
	return &registerHandler{
		registerService: rs,
	}
}

// registerCajaRoutes registers routes related to the register lifecycle.
func registerCajaRoutes(rg *gin.RouterGroup, registerService portssvc.RegisterSvcFacade) {
	h := newRegisterHandler(registerService)

	caja := rg.Group("/caja")
	{
		caja.GET("/actual", h.getCurrentRegister)
		caja.POST("/abrir", h.openRegister)
		caja.POST("/arqueo/preview", h.previewReconciliation)
		caja.POST("/cerrar", h.closeRegister)
		caja.GET("/historial", h.listHistory)
	}
}

// operatorSession returns the session built by AuthMiddleware or answers 401.
func operatorSession(c *gin.Context, logger *slog.Logger) (session.Context, bool) {
	sess, ok := middleware.GetSessionFromContext(c)
	if !ok {
		logger.Error("Operator session not found in context")
		c.JSON(http.StatusUnauthorized, errorBody{Error: "Unauthorized", Code: codeUnauthorized})
		return session.Context{}, false
	}
	return sess, true
}

// getCurrentRegister godoc
// @Summary Get the open register
// @Description Returns the operator's open register with its derived totals, or open=false when none is open
// @Tags caja
// @Produce  json
// @Success 200 {object} dto.CurrentRegisterResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Backend unavailable"
// @Security BearerAuth
// @Router /caja/actual [get]
func (h *registerHandler) getCurrentRegister(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sess, ok := operatorSession(c, logger)
	if !ok {
		return
	}

	reg, err := h.registerService.CurrentRegister(c.Request.Context(), sess)
	if err != nil {
		respondError(c, logger, err, "get current register")
		return
	}

	c.JSON(http.StatusOK, dto.ToCurrentRegisterResponse(reg))
}

// openRegister godoc
// @Summary Open the register
// @Description Opens the day's register with an opening float. Only one register can be open at a time.
// @Tags caja
// @Accept  json
// @Produce  json
// @Param   register body dto.OpenRegisterRequest true "Opening float"
// @Success 201 {object} dto.RegisterResponse
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "A register is already open"
// @Failure 422 {object} map[string]string "Invalid amount"
// @Security BearerAuth
// @Router /caja/abrir [post]
func (h *registerHandler) openRegister(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.OpenRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}
	sess, ok := operatorSession(c, logger)
	if !ok {
		return
	}

	openingFloat, err := req.OpeningFloat.Decimal()
	if err != nil {
		respondError(c, logger, err, "open register")
		return
	}

	logger.Info("Received request to open register", slog.String("opening_float", openingFloat.String()))

	reg, err := h.registerService.OpenRegister(c.Request.Context(), sess, openingFloat)
	if err != nil {
		respondError(c, logger, err, "open register")
		return
	}

	c.JSON(http.StatusCreated, dto.ToRegisterResponse(reg))
}

// previewReconciliation godoc
// @Summary Preview the arqueo
// @Description Computes the reconciliation for a physical cash count without closing the register
// @Tags caja
// @Accept  json
// @Produce  json
// @Param   arqueo body dto.PreviewReconciliationRequest true "Physical cash count"
// @Success 200 {object} dto.ReconciliationResponse
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "No register is open"
// @Failure 422 {object} map[string]string "Invalid amount"
// @Security BearerAuth
// @Router /caja/arqueo/preview [post]
func (h *registerHandler) previewReconciliation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.PreviewReconciliationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}
	sess, ok := operatorSession(c, logger)
	if !ok {
		return
	}

	physical, err := req.PhysicalCash.Decimal()
	if err != nil {
		respondError(c, logger, err, "preview reconciliation")
		return
	}

	result, err := h.registerService.PreviewReconciliation(c.Request.Context(), sess, physical, req.Notes)
	if err != nil {
		respondError(c, logger, err, "preview reconciliation")
		return
	}

	c.JSON(http.StatusOK, dto.ToReconciliationResponse(result))
}

// closeRegister godoc
// @Summary Close the register
// @Description Closes the open register with the physical cash count. Without confirm=true nothing is closed and the preview is returned with status 428.
// @Tags caja
// @Accept  json
// @Produce  json
// @Param   arqueo body dto.CloseRegisterRequest true "Physical cash count and confirmation"
// @Success 200 {object} dto.ReconciliationResponse
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "No register is open"
// @Failure 422 {object} map[string]string "Invalid amount or missing notes"
// @Failure 428 {object} dto.ConfirmationRequiredResponse "Confirmation required"
// @Security BearerAuth
// @Router /caja/cerrar [post]
func (h *registerHandler) closeRegister(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CloseRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}
	sess, ok := operatorSession(c, logger)
	if !ok {
		return
	}

	physical, err := req.PhysicalCash.Decimal()
	if err != nil {
		respondError(c, logger, err, "close register")
		return
	}

	logger.Info("Received request to close register",
		slog.String("physical_cash", physical.String()),
		slog.Bool("confirmed", req.Confirm),
	)

	result, err := h.registerService.CloseRegister(c.Request.Context(), sess, portssvc.CloseRegisterCommand{
		PhysicalCash: physical,
		Notes:        req.Notes,
		Confirmed:    req.Confirm,
	})
	if err != nil {
		respondError(c, logger, err, "close register")
		return
	}

	c.JSON(http.StatusOK, dto.ToReconciliationResponse(result))
}

// listHistory godoc
// @Summary List past registers
// @Description Retrieves closed registers with their reconciliation, newest first
// @Tags caja
// @Produce  json
// @Param   from query string false "From date (YYYY-MM-DD)"
// @Param   to query string false "To date (YYYY-MM-DD)"
// @Param   page query int false "Page number" default(1)
// @Param   limit query int false "Page size" default(20)
// @Param   pageToken query string false "Token for the next page"
// @Success 200 {object} dto.ListHistoryResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 422 {object} map[string]string "Invalid date range"
// @Security BearerAuth
// @Router /caja/historial [get]
func (h *registerHandler) listHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListHistoryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, logger, err)
		return
	}
	sess, ok := operatorSession(c, logger)
	if !ok {
		return
	}

	q, err := params.ToQuery()
	if err != nil {
		respondError(c, logger, err, "list register history")
		return
	}

	page, err := h.registerService.RegisterHistory(c.Request.Context(), sess, q)
	if err != nil {
		respondError(c, logger, err, "list register history")
		return
	}

	logger.Info("Register history listed", slog.Int("count", len(page.Items)), slog.Int("total", page.Total))
	c.JSON(http.StatusOK, dto.ToListHistoryResponse(page, q))
}
