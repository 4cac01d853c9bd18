package domain

import (
	"fmt"

	"github.com/SscSPs/caja_backoffice/internal/apperrors"
	"github.com/shopspring/decimal"
)

// DefaultMinMixedMethods is the number of funded methods a mixed payment needs
// unless the deployment configures another value.
const DefaultMinMixedMethods = 2

// PaymentDetail is one (method, amount) leg of a payment.
type PaymentDetail struct {
	Method PaymentMethod   `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

// PaymentEntry is a validated student payment ready to be submitted.
type PaymentEntry struct {
	StudentID string          `json:"studentID"`
	Concept   string          `json:"concept"`
	Total     decimal.Decimal `json:"total"`
	IsMixed   bool            `json:"isMixed"`
	Details   []PaymentDetail `json:"details"` // exactly one when !IsMixed
}

// Method returns the single method of a simple payment, or "" for mixed payments.
func (p PaymentEntry) Method() PaymentMethod {
	if p.IsMixed || len(p.Details) != 1 {
		return ""
	}
	return p.Details[0].Method
}

// ValidateAmounts checks that every leg is positive with a known method and
// that the total equals the sum of the legs.
func (p PaymentEntry) ValidateAmounts() error {
	if len(p.Details) == 0 {
		return fmt.Errorf("%w: payment has no method", apperrors.ErrMissingField)
	}
	sum := decimal.Zero
	for _, d := range p.Details {
		if !d.Method.IsValid() {
			return fmt.Errorf("%w: unknown payment method %q", apperrors.ErrMissingField, d.Method)
		}
		if !d.Amount.IsPositive() {
			return fmt.Errorf("%w: %s amount must be positive, got %s", apperrors.ErrInvalidAmount, d.Method, d.Amount)
		}
		sum = sum.Add(d.Amount)
	}
	if !p.Total.IsPositive() {
		return fmt.Errorf("%w: total must be positive", apperrors.ErrInvalidAmount)
	}
	if !sum.Equal(p.Total) {
		return fmt.Errorf("%w: total %s does not match sum of details %s", apperrors.ErrInvalidAmount, p.Total, sum)
	}
	return nil
}

// Validate checks the full shape of the entry. minMixed is the number of
// funded methods a mixed payment needs; values below 1 select the default.
func (p PaymentEntry) Validate(minMixed int) error {
	if minMixed < 1 {
		minMixed = DefaultMinMixedMethods
	}
	if p.StudentID == "" {
		return fmt.Errorf("%w: student", apperrors.ErrMissingField)
	}
	if p.Concept == "" {
		return fmt.Errorf("%w: concept", apperrors.ErrMissingField)
	}
	if p.IsMixed && len(p.Details) < minMixed {
		return fmt.Errorf("%w: got %d, need %d", apperrors.ErrInsufficientMixComponents, len(p.Details), minMixed)
	}
	if !p.IsMixed && len(p.Details) > 1 {
		return fmt.Errorf("%w: simple payment must have exactly one method", apperrors.ErrValidation)
	}
	return p.ValidateAmounts()
}

// PaymentRecord is a payment accepted by the backend.
type PaymentRecord struct {
	PaymentID string `json:"paymentID"`
	PaymentEntry
	ReceiptNumber string `json:"receiptNumber,omitempty"`
	AuditFields
}
