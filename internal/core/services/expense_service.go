package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/caja_backoffice/internal/apperrors"
	"github.com/SscSPs/caja_backoffice/internal/core/domain"
	"github.com/SscSPs/caja_backoffice/internal/core/ports/backend"
	portssvc "github.com/SscSPs/caja_backoffice/internal/core/ports/services"
	"github.com/SscSPs/caja_backoffice/internal/core/session"
)

// expenseService records outgoing expenses in the open register.
type expenseService struct {
	BaseService
	registers backend.RegisterGateway
	expenses  backend.ExpenseGateway
}

// ExpenseServiceOption is a functional option for configuring the expense service
type ExpenseServiceOption func(*expenseService)

// WithExpenseBase sets the shared in-flight guard and event tracker.
func WithExpenseBase(base BaseService) ExpenseServiceOption {
	return func(s *expenseService) {
		s.BaseService = base
	}
}

// NewExpenseService creates a new expense service.
func NewExpenseService(registers backend.RegisterGateway, expenses backend.ExpenseGateway, options ...ExpenseServiceOption) portssvc.ExpenseSvcFacade {
	svc := &expenseService{registers: registers, expenses: expenses}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

// SubmitExpense validates and submits an expense, then re-reads the register.
func (s *expenseService) SubmitExpense(ctx context.Context, sess session.Context, form domain.ExpenseForm) (*portssvc.ExpenseOutcome, error) {
	entry, err := form.Entry()
	if err != nil {
		return nil, err
	}

	var outcome portssvc.ExpenseOutcome
	err = s.exclusive(sess, "expense.submit", func() error {
		register, err := s.registers.CurrentRegister(ctx, sess)
		if err != nil {
			return err
		}
		if !register.IsOpen() {
			return apperrors.ErrNotOpen
		}
		// No floor is enforced on the drawer; a later physical count surfaces any shortage.
		if entry.Method.IsCash() && entry.Amount.GreaterThan(register.CashInDrawer()) {
			s.LogWarn(ctx, "Cash expense exceeds cash in drawer",
				slog.String("register_id", register.RegisterID),
				slog.String("amount", entry.Amount.String()),
				slog.String("cash_in_drawer", register.CashInDrawer().String()))
		}

		record, err := s.expenses.SubmitExpense(ctx, sess, entry)
		if err != nil {
			s.LogError(ctx, err, "Failed to submit expense", slog.String("category", string(entry.Category)))
			return err
		}
		outcome.Expense = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Expense recorded",
		slog.String("expense_id", outcome.Expense.ExpenseID),
		slog.String("category", string(outcome.Expense.Category)),
		slog.String("amount", outcome.Expense.Amount.String()))
	s.Track(sess, "expense_recorded", map[string]any{
		"category": string(outcome.Expense.Category),
		"method":   string(outcome.Expense.Method),
	})

	if register, err := s.registers.CurrentRegister(ctx, sess); err != nil {
		s.LogWarn(ctx, "Failed to refresh register after expense", slog.String("error", err.Error()))
	} else {
		outcome.Register = register
	}
	return &outcome, nil
}
