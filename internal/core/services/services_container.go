package services

import (
	"github.com/SscSPs/caja_backoffice/internal/core/ports/backend"
	portssvc "github.com/SscSPs/caja_backoffice/internal/core/ports/services"
	"github.com/SscSPs/caja_backoffice/internal/platform/config"
	"github.com/SscSPs/caja_backoffice/internal/utils/inflight"
)

// PolicyFromConfig maps configured business rules onto a Policy.
func PolicyFromConfig(cfg *config.Config) Policy {
	return Policy{
		MinMixedMethods:        cfg.MixedPaymentMinMethods,
		VarianceWarningPct:     cfg.VarianceWarningPct,
		VarianceCriticalPct:    cfg.VarianceCriticalPct,
		RequireNotesOnCritical: cfg.RequireNotesOnCriticalVariance,
	}.normalized()
}

// NewServiceContainer creates a new service container with properly initialized dependencies.
// All services share one in-flight guard so an operator cannot run the same
// mutating action twice concurrently.
func NewServiceContainer(cfg *config.Config, gateway backend.Gateway, events portssvc.EventTracker) *portssvc.ServiceContainer {
	policy := PolicyFromConfig(cfg)
	base := BaseService{Events: events, Guard: inflight.New()}

	container := &portssvc.ServiceContainer{}
	container.Register = NewRegisterService(gateway,
		WithRegisterPolicy(policy),
		WithRegisterBase(base),
	)
	container.Payment = NewPaymentService(gateway,
		WithPaymentPolicy(policy),
		WithPaymentBase(base),
	)
	container.Expense = NewExpenseService(gateway, gateway,
		WithExpenseBase(base),
	)
	return container
}
