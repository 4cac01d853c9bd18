package services

import (
	"fmt"
	"time"

	"github.com/SscSPs/caja_backoffice/internal/apperrors"
	"github.com/SscSPs/caja_backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ReconciliationCalculator computes the arqueo of a register. It holds no
// state besides its thresholds and never mutates the sessions it reads, so it
// can be called on every keystroke of the physical count.
type ReconciliationCalculator struct {
	warningPct  decimal.Decimal
	criticalPct decimal.Decimal
	now         func() time.Time
}

// NewReconciliationCalculator creates a calculator using the policy's severity bands.
func NewReconciliationCalculator(policy Policy) *ReconciliationCalculator {
	p := policy.normalized()
	return &ReconciliationCalculator{
		warningPct:  p.VarianceWarningPct,
		criticalPct: p.VarianceCriticalPct,
		now:         time.Now,
	}
}

// Theoretical is the cash that should be in the drawer.
func (c *ReconciliationCalculator) Theoretical(s domain.RegisterSession) decimal.Decimal {
	return s.CashInDrawer()
}

// Difference is physical minus theoretical.
func (c *ReconciliationCalculator) Difference(physical, theoretical decimal.Decimal) decimal.Decimal {
	return physical.Sub(theoretical)
}

// Classify maps a difference to EXACT, SURPLUS or SHORTAGE.
func (c *ReconciliationCalculator) Classify(difference decimal.Decimal) domain.Classification {
	return domain.Classify(difference)
}

// Compute runs the arqueo for session against a physical count.
func (c *ReconciliationCalculator) Compute(s domain.RegisterSession, physical decimal.Decimal, notes string) (domain.ReconciliationResult, error) {
	if physical.IsNegative() {
		return domain.ReconciliationResult{}, fmt.Errorf("%w: physical cash must not be negative, got %s", apperrors.ErrInvalidAmount, physical)
	}
	return c.FromFigures(c.Theoretical(s), physical, notes), nil
}

// FromFigures builds a result from already-known theoretical and physical cash,
// e.g. the figures the backend stored when it closed a register.
func (c *ReconciliationCalculator) FromFigures(theoretical, physical decimal.Decimal, notes string) domain.ReconciliationResult {
	diff := c.Difference(physical, theoretical)
	pct := c.variancePercent(diff, theoretical)
	return domain.ReconciliationResult{
		Theoretical:     theoretical,
		Physical:        physical,
		Difference:      diff,
		Classification:  c.Classify(diff),
		VariancePercent: pct,
		Severity:        c.severity(diff, theoretical, pct),
		Notes:           notes,
		ComputedAt:      c.now().UTC(),
	}
}

// variancePercent is diff relative to theoretical, rounded to two places.
// It is zero when theoretical is zero.
func (c *ReconciliationCalculator) variancePercent(diff, theoretical decimal.Decimal) decimal.Decimal {
	if theoretical.IsZero() {
		return decimal.Zero
	}
	return diff.Div(theoretical.Abs()).Mul(hundred).Round(2)
}

func (c *ReconciliationCalculator) severity(diff, theoretical, pct decimal.Decimal) domain.VarianceSeverity {
	if diff.IsZero() {
		return domain.SeverityNormal
	}
	// any difference against an empty drawer has no meaningful percentage
	if theoretical.IsZero() {
		return domain.SeverityCritical
	}
	abs := pct.Abs()
	switch {
	case abs.LessThanOrEqual(c.warningPct):
		return domain.SeverityNormal
	case abs.LessThanOrEqual(c.criticalPct):
		return domain.SeverityWarning
	default:
		return domain.SeverityCritical
	}
}
