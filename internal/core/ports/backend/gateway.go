// Package backend declares the port through which the register core reaches
// the external REST backend, the system of record for every register figure.
package backend

import (
	"context"
	"io"
	"time"

	"github.com/SscSPs/caja_backoffice/internal/core/domain"
	"github.com/SscSPs/caja_backoffice/internal/core/session"
	"github.com/shopspring/decimal"
)

// HistoryQuery filters past register sessions.
type HistoryQuery struct {
	From  *time.Time
	To    *time.Time
	Page  int // 1-based
	Limit int
}

// HistoryPage is one page of closed register sessions.
type HistoryPage struct {
	Items []domain.RegisterSession
	Total int
	Page  int
	Limit int
}

// HasMore reports whether another page follows this one.
func (p HistoryPage) HasMore() bool {
	return p.Page*p.Limit < p.Total
}

// Document is a binary artifact served by the backend, e.g. a PDF receipt.
// The caller must close Body.
type Document struct {
	ContentType string
	Filename    string
	Body        io.ReadCloser
}

// RegisterGateway covers the register lifecycle.
type RegisterGateway interface {
	// OpenRegister opens a register with the given opening float.
	OpenRegister(ctx context.Context, sess session.Context, openingFloat decimal.Decimal) (*domain.RegisterSession, error)
	// CurrentRegister returns the operator's open register, or nil when none is open.
	CurrentRegister(ctx context.Context, sess session.Context) (*domain.RegisterSession, error)
	// CloseRegister closes the open register and returns it with the backend's closing figures.
	CloseRegister(ctx context.Context, sess session.Context, physicalCash decimal.Decimal, notes string) (*domain.RegisterSession, error)
	// RegisterHistory lists past sessions.
	RegisterHistory(ctx context.Context, sess session.Context, q HistoryQuery) (*HistoryPage, error)
}

// PaymentGateway submits student payments.
type PaymentGateway interface {
	SubmitPayment(ctx context.Context, sess session.Context, entry domain.PaymentEntry) (*domain.PaymentRecord, error)
	PaymentReceipt(ctx context.Context, sess session.Context, paymentID string) (*Document, error)
}

// ExpenseGateway submits register expenses.
type ExpenseGateway interface {
	SubmitExpense(ctx context.Context, sess session.Context, entry domain.ExpenseEntry) (*domain.ExpenseRecord, error)
}

// StudentGateway looks up students for payment validation.
type StudentGateway interface {
	// FindStudentByDocument returns apperrors.ErrNotFound when no student has that document.
	FindStudentByDocument(ctx context.Context, sess session.Context, documentNumber string) (*domain.Student, error)
}

// Gateway is the full backend surface used by the register core.
type Gateway interface {
	RegisterGateway
	PaymentGateway
	ExpenseGateway
	StudentGateway
}
