package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/SscSPs/caja_backoffice/internal/apperrors"
	"github.com/shopspring/decimal"
)

// FormRow is one (method, raw amount) row typed by the operator.
type FormRow struct {
	Method PaymentMethod
	Amount string
}

// PaymentForm is the operator's payment input as a single immutable value.
// Every With* transition returns a new form; the receiver is never modified.
type PaymentForm struct {
	StudentDocument string
	Concept         string
	Mixed           bool
	Method          PaymentMethod // simple mode
	Amount          string        // simple mode
	Rows            []FormRow     // mixed mode
}

// WithStudent selects the student by document number.
func (f PaymentForm) WithStudent(document string) PaymentForm {
	f.StudentDocument = strings.TrimSpace(document)
	f.Rows = f.copyRows()
	return f
}

// WithConcept sets the payment concept.
func (f PaymentForm) WithConcept(concept string) PaymentForm {
	f.Concept = concept
	f.Rows = f.copyRows()
	return f
}

// WithSimple switches to simple mode with one method and amount.
func (f PaymentForm) WithSimple(method PaymentMethod, amount string) PaymentForm {
	f.Mixed = false
	f.Method = method
	f.Amount = amount
	f.Rows = f.copyRows()
	return f
}

// WithMixedRow switches to mixed mode and sets the amount for method,
// replacing any previous row for the same method.
func (f PaymentForm) WithMixedRow(method PaymentMethod, amount string) PaymentForm {
	rows := f.copyRows()
	replaced := false
	for i := range rows {
		if rows[i].Method == method {
			rows[i].Amount = amount
			replaced = true
		}
	}
	if !replaced {
		rows = append(rows, FormRow{Method: method, Amount: amount})
	}
	f.Mixed = true
	f.Rows = rows
	return f
}

// Cleared returns the empty form shown after a successful submission.
func (f PaymentForm) Cleared() PaymentForm {
	return PaymentForm{}
}

func (f PaymentForm) copyRows() []FormRow {
	if f.Rows == nil {
		return nil
	}
	rows := make([]FormRow, len(f.Rows))
	copy(rows, f.Rows)
	return rows
}

// ExpenseForm is the operator's expense input as a single immutable value.
type ExpenseForm struct {
	Concept    string
	Category   ExpenseCategory
	Amount     string
	Method     PaymentMethod
	InvoiceRef string
	Notes      string
}

// Cleared returns the empty form shown after a successful submission.
func (f ExpenseForm) Cleared() ExpenseForm {
	return ExpenseForm{}
}

// Entry parses and validates the form into an ExpenseEntry.
func (f ExpenseForm) Entry() (ExpenseEntry, error) {
	if strings.TrimSpace(f.Concept) == "" {
		return ExpenseEntry{}, fmt.Errorf("%w: concept", apperrors.ErrMissingField)
	}
	amount, err := ParseAmount(f.Amount)
	if err != nil {
		return ExpenseEntry{}, err
	}
	entry := ExpenseEntry{
		Concept:    strings.TrimSpace(f.Concept),
		Category:   f.Category,
		Amount:     amount,
		Method:     f.Method,
		InvoiceRef: strings.TrimSpace(f.InvoiceRef),
		Notes:      strings.TrimSpace(f.Notes),
	}
	if err := entry.Validate(); err != nil {
		return ExpenseEntry{}, err
	}
	return entry, nil
}

// amountPattern matches whole currency units, either plain ("50000") or with
// dot thousands separators as displayed ("50.000", "1.234.567").
var amountPattern = regexp.MustCompile(`^-?(\d+|\d{1,3}(\.\d{3})+)$`)

// ParseAmount parses an operator-typed amount in whole currency units.
// A "$" sign, surrounding spaces and dot thousands separators are accepted.
// Fractions, exponents and anything non-numeric fail with ErrInvalidAmount;
// sign is not checked here.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimSpace(strings.TrimPrefix(s, "-"))
	s = strings.TrimSpace(strings.TrimPrefix(s, "$"))
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is required", apperrors.ErrInvalidAmount)
	}
	if negative {
		s = "-" + s
	}
	if !amountPattern.MatchString(s) {
		return decimal.Zero, fmt.Errorf("%w: %q is not a whole amount", apperrors.ErrInvalidAmount, raw)
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ".", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", apperrors.ErrInvalidAmount, raw)
	}
	return d, nil
}
