package services

import (
	"context"

	"github.com/SscSPs/caja_backoffice/internal/core/domain"
	"github.com/SscSPs/caja_backoffice/internal/core/ports/backend"
	"github.com/SscSPs/caja_backoffice/internal/core/session"
)

// PaymentOutcome is an accepted payment together with the state re-read from
// the backend after it. Student or Register is nil if the re-read failed.
type PaymentOutcome struct {
	Payment  *domain.PaymentRecord
	Student  *domain.Student
	Register *domain.RegisterSession
}

// PaymentSvcFacade defines student lookup and payment operations.
type PaymentSvcFacade interface {
	// LookupStudent finds a student by document number.
	LookupStudent(ctx context.Context, sess session.Context, documentNumber string) (*domain.Student, error)

	// SubmitPayment validates form and records the payment in the open register.
	SubmitPayment(ctx context.Context, sess session.Context, form domain.PaymentForm) (*PaymentOutcome, error)

	// PaymentReceipt fetches the receipt document of an accepted payment.
	PaymentReceipt(ctx context.Context, sess session.Context, paymentID string) (*backend.Document, error)
}
