package services

import (
	"github.com/SscSPs/caja_backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Policy holds the business rules that vary per deployment rather than being
// mechanical invariants.
type Policy struct {
	// MinMixedMethods is how many funded methods a mixed payment needs.
	MinMixedMethods int
	// VarianceWarningPct and VarianceCriticalPct bound the severity bands of a
	// reconciliation difference, as a percentage of theoretical cash.
	VarianceWarningPct  decimal.Decimal
	VarianceCriticalPct decimal.Decimal
	// RequireNotesOnCritical rejects closing a register with a critical
	// variance unless closing notes are given.
	RequireNotesOnCritical bool
}

// DefaultPolicy returns the rules used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{
		MinMixedMethods:     domain.DefaultMinMixedMethods,
		VarianceWarningPct:  decimal.NewFromInt(1),
		VarianceCriticalPct: decimal.NewFromInt(5),
	}
}

func (p Policy) normalized() Policy {
	def := DefaultPolicy()
	if p.MinMixedMethods < 1 {
		p.MinMixedMethods = def.MinMixedMethods
	}
	if !p.VarianceWarningPct.IsPositive() {
		p.VarianceWarningPct = def.VarianceWarningPct
	}
	if !p.VarianceCriticalPct.IsPositive() || p.VarianceCriticalPct.LessThan(p.VarianceWarningPct) {
		p.VarianceCriticalPct = decimal.Max(def.VarianceCriticalPct, p.VarianceWarningPct)
	}
	return p
}
