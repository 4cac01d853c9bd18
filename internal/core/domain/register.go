package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/caja_backoffice/internal/apperrors"
	"github.com/shopspring/decimal"
)

// RegisterStatus indicates the lifecycle state of a register session.
type RegisterStatus string

const (
	RegisterOpen   RegisterStatus = "OPEN"
	RegisterClosed RegisterStatus = "CLOSED"
)

// MethodTotals holds one income sub-total per payment method.
type MethodTotals struct {
	Cash         decimal.Decimal `json:"efectivo"`
	Nequi        decimal.Decimal `json:"nequi"`
	Daviplata    decimal.Decimal `json:"daviplata"`
	Transfer     decimal.Decimal `json:"transferencia"`
	DebitCard    decimal.Decimal `json:"tarjetaDebito"`
	CreditCard   decimal.Decimal `json:"tarjetaCredito"`
	Sistecredito decimal.Decimal `json:"sistecredito"`
	Addi         decimal.Decimal `json:"addi"`
}

// Get returns the sub-total for a method. Unknown methods yield zero.
func (t MethodTotals) Get(m PaymentMethod) decimal.Decimal {
	if p := t.slot(m); p != nil {
		return *p
	}
	return decimal.Zero
}

// Add returns a copy of t with amount added to the method's sub-total.
func (t MethodTotals) Add(m PaymentMethod, amount decimal.Decimal) MethodTotals {
	if p := t.slot(m); p != nil {
		*p = p.Add(amount)
	}
	return t
}

// Sum adds every sub-total.
func (t MethodTotals) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, m := range PaymentMethods {
		sum = sum.Add(t.Get(m))
	}
	return sum
}

// SumGroup adds the sub-totals of every method in group g.
func (t MethodTotals) SumGroup(g MethodGroup) decimal.Decimal {
	sum := decimal.Zero
	for _, m := range PaymentMethods {
		if m.Group() == g {
			sum = sum.Add(t.Get(m))
		}
	}
	return sum
}

func (t *MethodTotals) slot(m PaymentMethod) *decimal.Decimal {
	switch m {
	case MethodCash:
		return &t.Cash
	case MethodNequi:
		return &t.Nequi
	case MethodDaviplata:
		return &t.Daviplata
	case MethodTransfer:
		return &t.Transfer
	case MethodDebitCard:
		return &t.DebitCard
	case MethodCreditCard:
		return &t.CreditCard
	case MethodSistecredito:
		return &t.Sistecredito
	case MethodAddi:
		return &t.Addi
	}
	return nil
}

// RegisterSession is one physical cash drawer for one day, as reported by the backend.
type RegisterSession struct {
	RegisterID     string                `json:"registerID"`
	Status         RegisterStatus        `json:"status"`
	OpenedAt       time.Time             `json:"openedAt"`
	OpenedBy       string                `json:"openedBy"`
	OpeningFloat   decimal.Decimal       `json:"openingFloat"` // saldo_inicial
	IncomeTotal    decimal.Decimal       `json:"incomeTotal"`
	ExpenseTotal   decimal.Decimal       `json:"expenseTotal"`
	CashExpense    decimal.Decimal       `json:"cashExpense"`
	IncomeByMethod MethodTotals          `json:"incomeByMethod"`
	PaymentCount   int                   `json:"paymentCount"`
	ExpenseCount   int                   `json:"expenseCount"`
	ClosedAt       *time.Time            `json:"closedAt,omitempty"`
	Reconciliation *ReconciliationResult `json:"reconciliation,omitempty"`
}

// RegisterDerived groups the values computed from a session's raw totals.
type RegisterDerived struct {
	CashInDrawer   decimal.Decimal `json:"cashInDrawer"`
	DigitalTotal   decimal.Decimal `json:"digitalTotal"`
	FinancierTotal decimal.Decimal `json:"financierTotal"`
	GrandTotal     decimal.Decimal `json:"grandTotal"` // total recaudado
}

// NewRegisterSession returns a freshly opened session with zeroed totals.
func NewRegisterSession(registerID, openedBy string, openingFloat decimal.Decimal, openedAt time.Time) (*RegisterSession, error) {
	if openingFloat.IsNegative() {
		return nil, fmt.Errorf("%w: opening float must not be negative, got %s", apperrors.ErrInvalidAmount, openingFloat)
	}
	return &RegisterSession{
		RegisterID:   registerID,
		Status:       RegisterOpen,
		OpenedAt:     openedAt,
		OpenedBy:     openedBy,
		OpeningFloat: openingFloat,
	}, nil
}

// IsOpen reports whether the session still accepts movements.
func (s *RegisterSession) IsOpen() bool {
	return s != nil && s.Status == RegisterOpen
}

// CashInDrawer is opening float plus cash income minus cash expenses.
// Digital and financier methods never touch the drawer.
func (s *RegisterSession) CashInDrawer() decimal.Decimal {
	return s.OpeningFloat.Add(s.IncomeByMethod.Cash).Sub(s.CashExpense)
}

// Recompute derives the grouped sums from the raw totals.
func (s *RegisterSession) Recompute() RegisterDerived {
	cash := s.IncomeByMethod.SumGroup(GroupCash)
	digital := s.IncomeByMethod.SumGroup(GroupDigital)
	financier := s.IncomeByMethod.SumGroup(GroupFinancier)
	return RegisterDerived{
		CashInDrawer:   s.CashInDrawer(),
		DigitalTotal:   digital,
		FinancierTotal: financier,
		GrandTotal:     cash.Add(digital).Add(financier),
	}
}

// Validate checks the aggregate invariants of a session received from the backend.
func (s *RegisterSession) Validate() error {
	if s.RegisterID == "" {
		return fmt.Errorf("%w: register id", apperrors.ErrMissingField)
	}
	if s.Status != RegisterOpen && s.Status != RegisterClosed {
		return fmt.Errorf("%w: unknown register status %q", apperrors.ErrInconsistentTotals, s.Status)
	}
	for name, v := range map[string]decimal.Decimal{
		"opening float": s.OpeningFloat,
		"income total":  s.IncomeTotal,
		"expense total": s.ExpenseTotal,
		"cash expense":  s.CashExpense,
	} {
		if v.IsNegative() {
			return fmt.Errorf("%w: %s is negative (%s)", apperrors.ErrInconsistentTotals, name, v)
		}
	}
	for _, m := range PaymentMethods {
		if s.IncomeByMethod.Get(m).IsNegative() {
			return fmt.Errorf("%w: %s sub-total is negative", apperrors.ErrInconsistentTotals, m)
		}
	}
	if sum := s.IncomeByMethod.Sum(); !sum.Equal(s.IncomeTotal) {
		return fmt.Errorf("%w: income total %s does not match method sub-totals %s",
			apperrors.ErrInconsistentTotals, s.IncomeTotal, sum)
	}
	if s.CashExpense.GreaterThan(s.ExpenseTotal) {
		return fmt.Errorf("%w: cash expense %s exceeds expense total %s",
			apperrors.ErrInconsistentTotals, s.CashExpense, s.ExpenseTotal)
	}
	return nil
}

// ApplyPayment returns the session the backend is expected to report after
// accepting entry. The receiver is not modified.
func (s RegisterSession) ApplyPayment(entry PaymentEntry) (RegisterSession, error) {
	if s.Status != RegisterOpen {
		return s, apperrors.ErrNotOpen
	}
	if err := entry.ValidateAmounts(); err != nil {
		return s, err
	}
	for _, d := range entry.Details {
		s.IncomeByMethod = s.IncomeByMethod.Add(d.Method, d.Amount)
	}
	s.IncomeTotal = s.IncomeTotal.Add(entry.Total)
	s.PaymentCount++
	return s, nil
}

// ApplyExpense returns the session the backend is expected to report after
// accepting entry. No floor is applied to the drawer.
func (s RegisterSession) ApplyExpense(entry ExpenseEntry) (RegisterSession, error) {
	if s.Status != RegisterOpen {
		return s, apperrors.ErrNotOpen
	}
	if err := entry.Validate(); err != nil {
		return s, err
	}
	s.ExpenseTotal = s.ExpenseTotal.Add(entry.Amount)
	if entry.Method.IsCash() {
		s.CashExpense = s.CashExpense.Add(entry.Amount)
	}
	s.ExpenseCount++
	return s, nil
}

// Close returns the terminal session carrying result. A closed session cannot be closed again.
func (s RegisterSession) Close(result ReconciliationResult, closedAt time.Time) (RegisterSession, error) {
	if s.Status != RegisterOpen {
		return s, apperrors.ErrClosed
	}
	s.Status = RegisterClosed
	s.ClosedAt = &closedAt
	s.Reconciliation = &result
	return s, nil
}
