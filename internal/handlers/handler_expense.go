package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/caja_backoffice/internal/core/ports/services"
	"github.com/SscSPs/caja_backoffice/internal/dto"
	"github.com/SscSPs/caja_backoffice/internal/middleware"
	"github.com/gin-gonic/gin"
)

// expenseHandler handles HTTP requests related to register expenses.
type expenseHandler struct {
	expenseService portssvc.ExpenseSvcFacade
}

func newExpenseHandler(es portssvc.ExpenseSvcFacade) *expenseHandler {
	return &expenseHandler{
		expenseService: es,
	}
}

func registerExpenseRoutes(rg *gin.RouterGroup, expenseService portssvc.ExpenseSvcFacade) {
	h := newExpenseHandler(expenseService)
	rg.POST("/caja/egresos", h.createExpense)
}

// createExpense godoc
// @Summary Record an expense
// @Description Records an outgoing expense in the open register. Cash expenses reduce the cash in the drawer.
// @Tags egresos
// @Accept  json
// @Produce  json
// @Param   expense body dto.ExpenseRequest true "Expense details"
// @Success 201 {object} dto.ExpenseOutcomeResponse
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "No register is open"
// @Failure 422 {object} map[string]string "Validation error"
// @Security BearerAuth
// @Router /caja/egresos [post]
func (h *expenseHandler) createExpense(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, logger, err)
		return
	}
	sess, ok := operatorSession(c, logger)
	if !ok {
		return
	}

	logger.Info("Received request to record expense",
		slog.String("category", string(req.Category)),
		slog.String("method", string(req.Method)),
	)

	outcome, err := h.expenseService.SubmitExpense(c.Request.Context(), sess, req.ToForm())
	if err != nil {
		respondError(c, logger, err, "record expense")
		return
	}

	logger.Info("Expense recorded successfully", slog.String("expense_id", outcome.Expense.ExpenseID))
	c.JSON(http.StatusCreated, dto.ToExpenseOutcomeResponse(outcome))
}
