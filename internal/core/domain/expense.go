package domain

import (
	"fmt"
	"strings"

	"github.com/SscSPs/caja_backoffice/internal/apperrors"
	"github.com/shopspring/decimal"
)

// ExpenseCategory classifies an outgoing register expense.
type ExpenseCategory string

const (
	ExpenseFuel        ExpenseCategory = "combustible"
	ExpenseMaintenance ExpenseCategory = "mantenimiento_vehiculos"
	ExpensePayroll     ExpenseCategory = "nomina"
	ExpenseUtilities   ExpenseCategory = "servicios_publicos"
	ExpenseRent        ExpenseCategory = "arriendo"
	ExpenseStationery  ExpenseCategory = "papeleria"
	ExpenseTaxes       ExpenseCategory = "impuestos"
	ExpenseAdvertising ExpenseCategory = "publicidad"
	ExpenseOther       ExpenseCategory = "otros"
)

var expenseCategories = map[ExpenseCategory]struct{}{
	ExpenseFuel:        {},
	ExpenseMaintenance: {},
	ExpensePayroll:     {},
	ExpenseUtilities:   {},
	ExpenseRent:        {},
	ExpenseStationery:  {},
	ExpenseTaxes:       {},
	ExpenseAdvertising: {},
	ExpenseOther:       {},
}

// IsValid reports whether c is a known category.
func (c ExpenseCategory) IsValid() bool {
	_, ok := expenseCategories[c]
	return ok
}

// ExpenseEntry is a validated outgoing expense.
type ExpenseEntry struct {
	Concept    string          `json:"concept"`
	Category   ExpenseCategory `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Method     PaymentMethod   `json:"method"`
	InvoiceRef string          `json:"invoiceRef,omitempty"`
	Notes      string          `json:"notes,omitempty"`
}

// Validate rejects entries with missing fields or a non-positive amount.
// There is deliberately no upper bound.
func (e ExpenseEntry) Validate() error {
	if strings.TrimSpace(e.Concept) == "" {
		return fmt.Errorf("%w: concept", apperrors.ErrMissingField)
	}
	if e.Category == "" {
		return fmt.Errorf("%w: category", apperrors.ErrMissingField)
	}
	if !e.Category.IsValid() {
		return fmt.Errorf("%w: unknown expense category %q", apperrors.ErrValidation, e.Category)
	}
	if e.Method == "" {
		return fmt.Errorf("%w: payment method", apperrors.ErrMissingField)
	}
	if !e.Method.IsValid() {
		return fmt.Errorf("%w: unknown payment method %q", apperrors.ErrValidation, e.Method)
	}
	if !e.Amount.IsPositive() {
		return fmt.Errorf("%w: expense amount must be positive, got %s", apperrors.ErrInvalidAmount, e.Amount)
	}
	return nil
}

// ExpenseRecord is an expense accepted by the backend.
type ExpenseRecord struct {
	ExpenseID string `json:"expenseID"`
	ExpenseEntry
	AuditFields
}
