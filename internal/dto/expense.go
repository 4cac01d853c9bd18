package dto

import (
	"time"

	"github.com/SscSPs/caja_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/caja_backoffice/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// ExpenseRequest defines the data needed to record an expense.
type ExpenseRequest struct {
	Concept    string                 `json:"concept"`
	Category   domain.ExpenseCategory `json:"category"`
	Amount     AmountInput            `json:"amount"`
	Method     domain.PaymentMethod   `json:"method"`
	InvoiceRef string                 `json:"invoiceRef"` // Optional
	Notes      string                 `json:"notes"`      // Optional
}

// ToForm converts the request to the operator's expense form.
func (r ExpenseRequest) ToForm() domain.ExpenseForm {
	return domain.ExpenseForm{
		Concept:    r.Concept,
		Category:   r.Category,
		Amount:     string(r.Amount),
		Method:     r.Method,
		InvoiceRef: r.InvoiceRef,
		Notes:      r.Notes,
	}
}

// ExpenseResponse defines the data returned for an accepted expense.
type ExpenseResponse struct {
	ExpenseID  string                 `json:"expenseID"`
	Concept    string                 `json:"concept"`
	Category   domain.ExpenseCategory `json:"category"`
	Amount     decimal.Decimal        `json:"amount"`
	Method     domain.PaymentMethod   `json:"method"`
	InvoiceRef string                 `json:"invoiceRef,omitempty"`
	Notes      string                 `json:"notes,omitempty"`
	CreatedAt  time.Time              `json:"createdAt"`
	CreatedBy  string                 `json:"createdBy"`
}

// ExpenseOutcomeResponse is an accepted expense with the register re-read afterwards.
type ExpenseOutcomeResponse struct {
	Expense  ExpenseResponse   `json:"expense"`
	Register *RegisterResponse `json:"register,omitempty"`
}

// ToExpenseResponse converts a domain.ExpenseRecord to ExpenseResponse DTO
func ToExpenseResponse(e *domain.ExpenseRecord) ExpenseResponse {
	return ExpenseResponse{
		ExpenseID:  e.ExpenseID,
		Concept:    e.Concept,
		Category:   e.Category,
		Amount:     e.Amount,
		Method:     e.Method,
		InvoiceRef: e.InvoiceRef,
		Notes:      e.Notes,
		CreatedAt:  e.CreatedAt,
		CreatedBy:  e.CreatedBy,
	}
}

// ToExpenseOutcomeResponse converts a services.ExpenseOutcome to its DTO
func ToExpenseOutcomeResponse(o *portssvc.ExpenseOutcome) ExpenseOutcomeResponse {
	resp := ExpenseOutcomeResponse{Expense: ToExpenseResponse(o.Expense)}
	if o.Register != nil {
		reg := ToRegisterResponse(o.Register)
		resp.Register = &reg
	}
	return resp
}
