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
	"github.com/shopspring/decimal"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// registerService drives the register state machine NONE -> OPEN -> CLOSED.
// The backend owns the state; this service checks the current state before
// every transition and never mutates totals locally.
type registerService struct {
	BaseService
	gateway    backend.RegisterGateway
	calculator *ReconciliationCalculator
	policy     Policy
}

// RegisterServiceOption is a functional option for configuring the register service
type RegisterServiceOption func(*registerService)

// WithRegisterPolicy overrides the default business rules.
func WithRegisterPolicy(policy Policy) RegisterServiceOption {
	return func(s *registerService) {
		s.policy = policy.normalized()
		s.calculator = NewReconciliationCalculator(s.policy)
	}
}

// WithRegisterBase sets the shared in-flight guard and event tracker.
func WithRegisterBase(base BaseService) RegisterServiceOption {
	return func(s *registerService) {
		s.BaseService = base
	}
}

// NewRegisterService creates a new register service with the provided options
func NewRegisterService(gateway backend.RegisterGateway, options ...RegisterServiceOption) portssvc.RegisterSvcFacade {
	policy := DefaultPolicy()
	svc := &registerService{
		gateway:    gateway,
		policy:     policy,
		calculator: NewReconciliationCalculator(policy),
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure registerService implements the RegisterSvcFacade interface
var _ portssvc.RegisterSvcFacade = (*registerService)(nil)

// CurrentRegister returns the open register or nil.
func (s *registerService) CurrentRegister(ctx context.Context, sess session.Context) (*domain.RegisterSession, error) {
	current, err := s.gateway.CurrentRegister(ctx, sess)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch current register")
		return nil, err
	}
	if current != nil && !current.IsOpen() {
		// A closed session is never "today's" register.
		return nil, nil
	}
	return current, nil
}

// OpenRegister opens a register after checking none is open already.
func (s *registerService) OpenRegister(ctx context.Context, sess session.Context, openingFloat decimal.Decimal) (*domain.RegisterSession, error) {
	if openingFloat.IsNegative() {
		return nil, fmt.Errorf("%w: opening float must not be negative, got %s", apperrors.ErrInvalidAmount, openingFloat)
	}

	var opened *domain.RegisterSession
	err := s.exclusive(sess, "register.open", func() error {
		current, err := s.CurrentRegister(ctx, sess)
		if err != nil {
			return err
		}
		if current != nil {
			s.LogWarn(ctx, "Refusing to open a second register", slog.String("register_id", current.RegisterID))
			return fmt.Errorf("%w: register %s opened at %s", apperrors.ErrAlreadyOpen, current.RegisterID, current.OpenedAt.Format("2006-01-02 15:04"))
		}

		opened, err = s.gateway.OpenRegister(ctx, sess, openingFloat)
		if err != nil {
			s.LogError(ctx, err, "Failed to open register", slog.String("opening_float", openingFloat.String()))
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Register opened",
		slog.String("register_id", opened.RegisterID),
		slog.String("opening_float", opened.OpeningFloat.String()))
	s.Track(sess, "register_opened", map[string]any{
		"register_id":   opened.RegisterID,
		"opening_float": opened.OpeningFloat.IntPart(),
	})
	return opened, nil
}

// PreviewReconciliation computes the arqueo against the current register without closing it.
func (s *registerService) PreviewReconciliation(ctx context.Context, sess session.Context, physicalCash decimal.Decimal, notes string) (*domain.ReconciliationResult, error) {
	if physicalCash.IsNegative() {
		return nil, fmt.Errorf("%w: physical cash must not be negative, got %s", apperrors.ErrInvalidAmount, physicalCash)
	}
	current, err := s.CurrentRegister(ctx, sess)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperrors.ErrNotOpen
	}
	result, err := s.calculator.Compute(*current, physicalCash, strings.TrimSpace(notes))
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CloseRegister closes the open register. Without cmd.Confirmed it returns a
// *domain.ConfirmationRequiredError carrying the preview and closes nothing.
func (s *registerService) CloseRegister(ctx context.Context, sess session.Context, cmd portssvc.CloseRegisterCommand) (*domain.ReconciliationResult, error) {
	if cmd.PhysicalCash.IsNegative() {
		return nil, fmt.Errorf("%w: physical cash must not be negative, got %s", apperrors.ErrInvalidAmount, cmd.PhysicalCash)
	}
	notes := strings.TrimSpace(cmd.Notes)

	var final domain.ReconciliationResult
	err := s.exclusive(sess, "register.close", func() error {
		preview, err := s.PreviewReconciliation(ctx, sess, cmd.PhysicalCash, notes)
		if err != nil {
			return err
		}
		if s.policy.RequireNotesOnCritical && preview.Severity == domain.SeverityCritical && notes == "" {
			return fmt.Errorf("%w: closing notes are required for a %s difference of %s",
				apperrors.ErrMissingField, preview.Severity, preview.Difference)
		}
		if !cmd.Confirmed {
			return &domain.ConfirmationRequiredError{Preview: *preview}
		}

		closed, err := s.gateway.CloseRegister(ctx, sess, cmd.PhysicalCash, notes)
		if err != nil {
			s.LogError(ctx, err, "Failed to close register")
			return err
		}
		final = s.resultFromBackend(ctx, closed, *preview)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Register closed",
		slog.String("theoretical", final.Theoretical.String()),
		slog.String("physical", final.Physical.String()),
		slog.String("difference", final.Difference.String()),
		slog.String("classification", string(final.Classification)))
	s.Track(sess, "register_closed", map[string]any{
		"classification": string(final.Classification),
		"severity":       string(final.Severity),
		"difference":     final.Difference.IntPart(),
	})
	return &final, nil
}

// resultFromBackend recomputes the classification from the figures the
// backend stored. If the backend returned no figures the preview stands.
func (s *registerService) resultFromBackend(ctx context.Context, closed *domain.RegisterSession, preview domain.ReconciliationResult) domain.ReconciliationResult {
	if closed == nil || closed.Reconciliation == nil {
		return preview
	}
	rec := closed.Reconciliation
	if !rec.Theoretical.Equal(preview.Theoretical) {
		s.LogWarn(ctx, "Backend theoretical cash differs from local preview",
			slog.String("register_id", closed.RegisterID),
			slog.String("backend", rec.Theoretical.String()),
			slog.String("local", preview.Theoretical.String()))
	}
	notes := rec.Notes
	if notes == "" {
		notes = preview.Notes
	}
	return s.calculator.FromFigures(rec.Theoretical, rec.Physical, notes)
}

// RegisterHistory lists past sessions, filling in each reconciliation's classification.
func (s *registerService) RegisterHistory(ctx context.Context, sess session.Context, q backend.HistoryQuery) (*backend.HistoryPage, error) {
	if q.From != nil && q.To != nil && q.From.After(*q.To) {
		return nil, fmt.Errorf("%w: start date is after end date", apperrors.ErrValidation)
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultHistoryLimit
	}
	if q.Limit > maxHistoryLimit {
		q.Limit = maxHistoryLimit
	}

	page, err := s.gateway.RegisterHistory(ctx, sess, q)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch register history")
		return nil, err
	}
	for i := range page.Items {
		if rec := page.Items[i].Reconciliation; rec != nil {
			full := s.calculator.FromFigures(rec.Theoretical, rec.Physical, rec.Notes)
			full.ComputedAt = rec.ComputedAt
			page.Items[i].Reconciliation = &full
		}
	}
	s.LogDebug(ctx, "Register history fetched", slog.Int("count", len(page.Items)), slog.Int("total", page.Total))
	return page, nil
}
