package services

import (
	"context"

	"github.com/SscSPs/caja_backoffice/internal/core/domain"
	"github.com/SscSPs/caja_backoffice/internal/core/session"
)

// ExpenseOutcome is an accepted expense with the register re-read after it.
type ExpenseOutcome struct {
	Expense  *domain.ExpenseRecord
	Register *domain.RegisterSession
}

// ExpenseSvcFacade defines register expense operations.
type ExpenseSvcFacade interface {
	// SubmitExpense validates form and records the expense in the open register.
	SubmitExpense(ctx context.Context, sess session.Context, form domain.ExpenseForm) (*ExpenseOutcome, error)
}
