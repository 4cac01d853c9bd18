package services

import (
	"context"

	"github.com/SscSPs/caja_backoffice/internal/core/domain"
	"github.com/SscSPs/caja_backoffice/internal/core/ports/backend"
	"github.com/SscSPs/caja_backoffice/internal/core/session"
	"github.com/shopspring/decimal"
)

// CloseRegisterCommand is the operator's request to close the open register.
type CloseRegisterCommand struct {
	PhysicalCash decimal.Decimal
	Notes        string
	// Confirmed must be true; closing is irrevocable.
	Confirmed bool
}

// RegisterReaderSvc defines read operations for register sessions.
type RegisterReaderSvc interface {
	// CurrentRegister returns the operator's open register, or nil when none is open.
	CurrentRegister(ctx context.Context, sess session.Context) (*domain.RegisterSession, error)

	// RegisterHistory lists past register sessions.
	RegisterHistory(ctx context.Context, sess session.Context, q backend.HistoryQuery) (*backend.HistoryPage, error)

	// PreviewReconciliation computes the arqueo for a physical count without closing anything.
	PreviewReconciliation(ctx context.Context, sess session.Context, physicalCash decimal.Decimal, notes string) (*domain.ReconciliationResult, error)
}

// RegisterWriterSvc defines register lifecycle transitions.
type RegisterWriterSvc interface {
	// OpenRegister opens a register with the given opening float.
	OpenRegister(ctx context.Context, sess session.Context, openingFloat decimal.Decimal) (*domain.RegisterSession, error)

	// CloseRegister closes the open register and returns its reconciliation.
	CloseRegister(ctx context.Context, sess session.Context, cmd CloseRegisterCommand) (*domain.ReconciliationResult, error)
}

// RegisterSvcFacade combines all register-related service interfaces
type RegisterSvcFacade interface {
	RegisterReaderSvc
	RegisterWriterSvc
}
