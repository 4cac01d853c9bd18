package services

import (
	"fmt"
	"strings"

	"github.com/SscSPs/caja_backoffice/internal/apperrors"
	"github.com/SscSPs/caja_backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PaymentEntryBuilder turns a PaymentForm into a valid PaymentEntry or rejects
// it with an actionable error before anything is sent to the backend.
type PaymentEntryBuilder struct {
	minMixed int
}

// NewPaymentEntryBuilder creates a builder using the policy's mixed-payment rule.
func NewPaymentEntryBuilder(policy Policy) *PaymentEntryBuilder {
	return &PaymentEntryBuilder{minMixed: policy.normalized().MinMixedMethods}
}

// Precheck validates everything that does not depend on the student's balance
// and returns the total that would be charged.
func (b *PaymentEntryBuilder) Precheck(form domain.PaymentForm) (decimal.Decimal, []domain.PaymentDetail, error) {
	if form.Mixed {
		return b.mixedDetails(form)
	}
	return b.simpleDetails(form)
}

// Build validates form against the student's current outstanding balance.
func (b *PaymentEntryBuilder) Build(form domain.PaymentForm, student domain.Student) (domain.PaymentEntry, error) {
	total, details, err := b.Precheck(form)
	if err != nil {
		return domain.PaymentEntry{}, err
	}
	if total.GreaterThan(student.OutstandingBalance) {
		return domain.PaymentEntry{}, fmt.Errorf("%w: requested %s, outstanding %s",
			apperrors.ErrExceedsBalance, total, student.OutstandingBalance)
	}
	concept := strings.TrimSpace(form.Concept)
	if concept == "" {
		return domain.PaymentEntry{}, fmt.Errorf("%w: concept", apperrors.ErrMissingField)
	}
	if student.StudentID == "" {
		return domain.PaymentEntry{}, fmt.Errorf("%w: student", apperrors.ErrMissingField)
	}

	entry := domain.PaymentEntry{
		StudentID: student.StudentID,
		Concept:   concept,
		Total:     total,
		IsMixed:   form.Mixed,
		Details:   details,
	}
	if err := entry.Validate(b.minMixed); err != nil {
		return domain.PaymentEntry{}, err
	}
	return entry, nil
}

func (b *PaymentEntryBuilder) simpleDetails(form domain.PaymentForm) (decimal.Decimal, []domain.PaymentDetail, error) {
	amount, err := domain.ParseAmount(form.Amount)
	if err != nil {
		return decimal.Zero, nil, err
	}
	if !amount.IsPositive() {
		return decimal.Zero, nil, fmt.Errorf("%w: amount must be positive, got %s", apperrors.ErrInvalidAmount, amount)
	}
	if form.Method == "" {
		return decimal.Zero, nil, fmt.Errorf("%w: payment method", apperrors.ErrMissingField)
	}
	if !form.Method.IsValid() {
		return decimal.Zero, nil, fmt.Errorf("%w: unknown payment method %q", apperrors.ErrValidation, form.Method)
	}
	return amount, []domain.PaymentDetail{{Method: form.Method, Amount: amount}}, nil
}

// mixedDetails keeps only rows funded with a positive amount. Blank rows are
// skipped; rows that are not numbers are rejected.
func (b *PaymentEntryBuilder) mixedDetails(form domain.PaymentForm) (decimal.Decimal, []domain.PaymentDetail, error) {
	total := decimal.Zero
	details := make([]domain.PaymentDetail, 0, len(form.Rows))
	seen := make(map[domain.PaymentMethod]bool, len(form.Rows))

	for _, row := range form.Rows {
		if strings.TrimSpace(row.Amount) == "" {
			continue
		}
		amount, err := domain.ParseAmount(row.Amount)
		if err != nil {
			return decimal.Zero, nil, err
		}
		if !amount.IsPositive() {
			continue
		}
		if !row.Method.IsValid() {
			return decimal.Zero, nil, fmt.Errorf("%w: unknown payment method %q", apperrors.ErrValidation, row.Method)
		}
		if seen[row.Method] {
			return decimal.Zero, nil, fmt.Errorf("%w: method %s appears more than once", apperrors.ErrValidation, row.Method)
		}
		seen[row.Method] = true
		details = append(details, domain.PaymentDetail{Method: row.Method, Amount: amount})
		total = total.Add(amount)
	}

	if len(details) < b.minMixed {
		return decimal.Zero, nil, fmt.Errorf("%w: %d funded, %d required",
			apperrors.ErrInsufficientMixComponents, len(details), b.minMixed)
	}
	return total, details, nil
}
