package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/caja_backoffice/internal/apperrors"
	"github.com/SscSPs/caja_backoffice/internal/core/domain"
	"github.com/SscSPs/caja_backoffice/internal/core/ports/backend"
	portssvc "github.com/SscSPs/caja_backoffice/internal/core/ports/services"
	"github.com/SscSPs/caja_backoffice/internal/core/session"
)

// paymentService records student payments in the open register.
type paymentService struct {
	BaseService
	registers backend.RegisterGateway
	payments  backend.PaymentGateway
	students  backend.StudentGateway
	builder   *PaymentEntryBuilder
}

// PaymentServiceOption is a functional option for configuring the payment service
type PaymentServiceOption func(*paymentService)

// WithPaymentPolicy overrides the default business rules.
func WithPaymentPolicy(policy Policy) PaymentServiceOption {
	return func(s *paymentService) {
		s.builder = NewPaymentEntryBuilder(policy)
	}
}

// WithPaymentBase sets the shared in-flight guard and event tracker.
func WithPaymentBase(base BaseService) PaymentServiceOption {
	return func(s *paymentService) {
		s.BaseService = base
	}
}

// NewPaymentService creates a new payment service.
func NewPaymentService(gateway backend.Gateway, options ...PaymentServiceOption) portssvc.PaymentSvcFacade {
	svc := &paymentService{
		registers: gateway,
		payments:  gateway,
		students:  gateway,
		builder:   NewPaymentEntryBuilder(DefaultPolicy()),
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

// LookupStudent finds a student by document number.
func (s *paymentService) LookupStudent(ctx context.Context, sess session.Context, documentNumber string) (*domain.Student, error) {
	doc := strings.TrimSpace(documentNumber)
	if doc == "" {
		return nil, fmt.Errorf("%w: document number", apperrors.ErrMissingField)
	}
	student, err := s.students.FindStudentByDocument(ctx, sess, doc)
	if err != nil {
		s.LogDebug(ctx, "Student lookup failed", slog.String("document", doc), slog.String("error", err.Error()))
		return nil, err
	}
	return student, nil
}

// SubmitPayment validates the form locally, checks it against the student's
// fresh balance, submits it and re-reads student and register.
func (s *paymentService) SubmitPayment(ctx context.Context, sess session.Context, form domain.PaymentForm) (*portssvc.PaymentOutcome, error) {
	// Everything that does not need the balance is rejected before any network call.
	if _, _, err := s.builder.Precheck(form); err != nil {
		return nil, err
	}
	if form.StudentDocument == "" {
		return nil, fmt.Errorf("%w: student document", apperrors.ErrMissingField)
	}
	if strings.TrimSpace(form.Concept) == "" {
		return nil, fmt.Errorf("%w: concept", apperrors.ErrMissingField)
	}

	var outcome portssvc.PaymentOutcome
	err := s.exclusive(sess, "payment.submit", func() error {
		register, err := s.registers.CurrentRegister(ctx, sess)
		if err != nil {
			return err
		}
		if !register.IsOpen() {
			return apperrors.ErrNotOpen
		}

		student, err := s.LookupStudent(ctx, sess, form.StudentDocument)
		if err != nil {
			return err
		}
		entry, err := s.builder.Build(form, *student)
		if err != nil {
			s.LogInfo(ctx, "Payment rejected by local validation",
				slog.String("student_id", student.StudentID),
				slog.String("reason", err.Error()))
			return err
		}

		record, err := s.payments.SubmitPayment(ctx, sess, entry)
		if err != nil {
			s.LogError(ctx, err, "Failed to submit payment", slog.String("student_id", entry.StudentID))
			return err
		}
		outcome.Payment = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Payment recorded",
		slog.String("payment_id", outcome.Payment.PaymentID),
		slog.String("student_id", outcome.Payment.StudentID),
		slog.String("total", outcome.Payment.Total.String()),
		slog.Bool("mixed", outcome.Payment.IsMixed))
	s.Track(sess, "payment_recorded", map[string]any{
		"mixed":   outcome.Payment.IsMixed,
		"methods": len(outcome.Payment.Details),
	})

	// The payment is already accepted; a failed re-read only leaves the view stale.
	if student, err := s.students.FindStudentByDocument(ctx, sess, form.StudentDocument); err != nil {
		s.LogWarn(ctx, "Failed to refresh student after payment", slog.String("error", err.Error()))
	} else {
		outcome.Student = student
	}
	if register, err := s.registers.CurrentRegister(ctx, sess); err != nil {
		s.LogWarn(ctx, "Failed to refresh register after payment", slog.String("error", err.Error()))
	} else {
		outcome.Register = register
	}
	return &outcome, nil
}

// PaymentReceipt fetches the receipt document of an accepted payment.
func (s *paymentService) PaymentReceipt(ctx context.Context, sess session.Context, paymentID string) (*backend.Document, error) {
	if strings.TrimSpace(paymentID) == "" {
		return nil, fmt.Errorf("%w: payment id", apperrors.ErrMissingField)
	}
	return s.payments.PaymentReceipt(ctx, sess, paymentID)
}
