package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/caja_backoffice/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Classification is the sign of a reconciliation difference.
type Classification string

const (
	Exact    Classification = "EXACT"
	Surplus  Classification = "SURPLUS"  // sobrante
	Shortage Classification = "SHORTAGE" // faltante
)

// Classify maps a signed difference (physical - theoretical) to its classification.
// It is total: every decimal value has exactly one classification.
func Classify(difference decimal.Decimal) Classification {
	switch difference.Sign() {
	case 0:
		return Exact
	case 1:
		return Surplus
	default:
		return Shortage
	}
}

// VarianceSeverity bands the size of a difference relative to theoretical cash.
type VarianceSeverity string

const (
	SeverityNormal   VarianceSeverity = "normal"
	SeverityWarning  VarianceSeverity = "advertencia"
	SeverityCritical VarianceSeverity = "critico"
)

// ReconciliationResult is the end-of-day arqueo of one register.
type ReconciliationResult struct {
	Theoretical     decimal.Decimal  `json:"theoretical"`
	Physical        decimal.Decimal  `json:"physical"`
	Difference      decimal.Decimal  `json:"difference"` // physical - theoretical, signed
	Classification  Classification   `json:"classification"`
	VariancePercent decimal.Decimal  `json:"variancePercent"`
	Severity        VarianceSeverity `json:"severity"`
	Notes           string           `json:"notes,omitempty"`
	ComputedAt      time.Time        `json:"computedAt"`
}

// ConfirmationRequiredError is returned when a close was requested without
// explicit confirmation. Preview holds the figures the operator must confirm.
type ConfirmationRequiredError struct {
	Preview ReconciliationResult
}

func (e *ConfirmationRequiredError) Error() string {
	return fmt.Sprintf("%s: closing with difference %s (%s)",
		apperrors.ErrConfirmationRequired, e.Preview.Difference, e.Preview.Classification)
}

func (e *ConfirmationRequiredError) Unwrap() error {
	return apperrors.ErrConfirmationRequired
}
