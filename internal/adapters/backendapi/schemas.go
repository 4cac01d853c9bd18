package backendapi

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/SscSPs/caja_backoffice/internal/apperrors"
	"github.com/SscSPs/caja_backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Wire schemas of the backend REST API. Amounts are whole pesos sent as JSON
// numbers; decimal.Decimal also accepts them quoted on the way in.

type errorSchema struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
	Error   string `json:"error"`
	Mensaje string `json:"mensaje"`
}

type methodTotalsSchema struct {
	Efectivo       decimal.Decimal `json:"efectivo"        validate:"min=0"`
	Nequi          decimal.Decimal `json:"nequi"           validate:"min=0"`
	Daviplata      decimal.Decimal `json:"daviplata"       validate:"min=0"`
	Transferencia  decimal.Decimal `json:"transferencia"   validate:"min=0"`
	TarjetaDebito  decimal.Decimal `json:"tarjeta_debito"  validate:"min=0"`
	TarjetaCredito decimal.Decimal `json:"tarjeta_credito" validate:"min=0"`
	Sistecredito   decimal.Decimal `json:"sistecredito"    validate:"min=0"`
	Addi           decimal.Decimal `json:"addi"            validate:"min=0"`
}

type arqueoSchema struct {
	EfectivoTeorico decimal.Decimal `json:"efectivo_teorico"`
	EfectivoFisico  decimal.Decimal `json:"efectivo_fisico" validate:"min=0"`
	Diferencia      decimal.Decimal `json:"diferencia"`
	Observaciones   string          `json:"observaciones"`
	Fecha           *time.Time      `json:"fecha"`
}

type cajaSchema struct {
	ID                string             `json:"id"                 validate:"required"`
	Estado            string             `json:"estado"             validate:"required,oneof=abierta cerrada"`
	FechaApertura     time.Time          `json:"fecha_apertura"     validate:"required"`
	UsuarioApertura   string             `json:"usuario_apertura"`
	SaldoInicial      decimal.Decimal    `json:"saldo_inicial"      validate:"min=0"`
	TotalIngresos     decimal.Decimal    `json:"total_ingresos"     validate:"min=0"`
	TotalEgresos      decimal.Decimal    `json:"total_egresos"      validate:"min=0"`
	EgresosEfectivo   decimal.Decimal    `json:"egresos_efectivo"   validate:"min=0"`
	IngresosPorMetodo methodTotalsSchema `json:"ingresos_por_metodo"`
	CantidadPagos     int                `json:"cantidad_pagos"     validate:"min=0"`
	CantidadEgresos   int                `json:"cantidad_egresos"   validate:"min=0"`
	FechaCierre       *time.Time         `json:"fecha_cierre"`
	Arqueo            *arqueoSchema      `json:"arqueo"`
}

type cajaActualSchema struct {
	Abierta bool        `json:"abierta"`
	Caja    *cajaSchema `json:"caja" validate:"required_if=Abierta true"`
}

type historialSchema struct {
	Items []cajaSchema `json:"items" validate:"dive"`
	Total int          `json:"total" validate:"min=0"`
	Page  int          `json:"page"  validate:"min=0"`
	Limit int          `json:"limit" validate:"min=0"`
}

type abrirCajaRequest struct {
	SaldoInicial json.Number `json:"saldo_inicial"`
}

type cerrarCajaRequest struct {
	EfectivoFisico json.Number `json:"efectivo_fisico"`
	Observaciones  string      `json:"observaciones,omitempty"`
}

type detallePagoSchema struct {
	MetodoPago string          `json:"metodo_pago" validate:"required"`
	Monto      decimal.Decimal `json:"monto"       validate:"gt=0"`
}

type detallePagoRequest struct {
	MetodoPago string      `json:"metodo_pago"`
	Monto      json.Number `json:"monto"`
}

type pagoRequest struct {
	EstudianteID string               `json:"estudiante_id"`
	Concepto     string               `json:"concepto"`
	MontoTotal   json.Number          `json:"monto_total"`
	EsMixto      bool                 `json:"es_mixto"`
	MetodoPago   string               `json:"metodo_pago,omitempty"`
	Detalles     []detallePagoRequest `json:"detalles"`
}

type pagoSchema struct {
	ID           string              `json:"id"            validate:"required"`
	EstudianteID string              `json:"estudiante_id" validate:"required"`
	Concepto     string              `json:"concepto"`
	MontoTotal   decimal.Decimal     `json:"monto_total"   validate:"gt=0"`
	EsMixto      bool                `json:"es_mixto"`
	MetodoPago   string              `json:"metodo_pago"`
	Detalles     []detallePagoSchema `json:"detalles"      validate:"dive"`
	NumeroRecibo string              `json:"numero_recibo"`
	FechaPago    time.Time           `json:"fecha_pago"`
	Usuario      string              `json:"usuario"`
}

type egresoRequest struct {
	Concepto      string      `json:"concepto"`
	Categoria     string      `json:"categoria"`
	Monto         json.Number `json:"monto"`
	MetodoPago    string      `json:"metodo_pago"`
	NumeroFactura string      `json:"numero_factura,omitempty"`
	Observaciones string      `json:"observaciones,omitempty"`
}

type egresoSchema struct {
	ID            string          `json:"id"          validate:"required"`
	Concepto      string          `json:"concepto"`
	Categoria     string          `json:"categoria"   validate:"required"`
	Monto         decimal.Decimal `json:"monto"       validate:"gt=0"`
	MetodoPago    string          `json:"metodo_pago" validate:"required"`
	NumeroFactura string          `json:"numero_factura"`
	Observaciones string          `json:"observaciones"`
	Fecha         time.Time       `json:"fecha"`
	Usuario       string          `json:"usuario"`
}

type estudianteSchema struct {
	ID              string          `json:"id"               validate:"required"`
	NumeroDocumento string          `json:"numero_documento" validate:"required"`
	NombreCompleto  string          `json:"nombre_completo"`
	ServicioNombre  string          `json:"servicio_nombre"`
	ServicioTipo    string          `json:"servicio_tipo"`
	PrecioServicio  decimal.Decimal `json:"precio_servicio"  validate:"min=0"`
	TotalPagado     decimal.Decimal `json:"total_pagado"     validate:"min=0"`
	SaldoPendiente  decimal.Decimal `json:"saldo_pendiente"  validate:"min=0"`
}

// --- mapping ---

func (m methodTotalsSchema) toDomain() domain.MethodTotals {
	return domain.MethodTotals{
		Cash:         m.Efectivo,
		Nequi:        m.Nequi,
		Daviplata:    m.Daviplata,
		Transfer:     m.Transferencia,
		DebitCard:    m.TarjetaDebito,
		CreditCard:   m.TarjetaCredito,
		Sistecredito: m.Sistecredito,
		Addi:         m.Addi,
	}
}

// toDomain maps the wire register and checks its totals add up.
func (c cajaSchema) toDomain() (*domain.RegisterSession, error) {
	status := domain.RegisterOpen
	if c.Estado == "cerrada" {
		status = domain.RegisterClosed
	}
	s := &domain.RegisterSession{
		RegisterID:     c.ID,
		Status:         status,
		OpenedAt:       c.FechaApertura,
		OpenedBy:       c.UsuarioApertura,
		OpeningFloat:   c.SaldoInicial,
		IncomeTotal:    c.TotalIngresos,
		ExpenseTotal:   c.TotalEgresos,
		CashExpense:    c.EgresosEfectivo,
		IncomeByMethod: c.IngresosPorMetodo.toDomain(),
		PaymentCount:   c.CantidadPagos,
		ExpenseCount:   c.CantidadEgresos,
		ClosedAt:       c.FechaCierre,
	}
	if c.Arqueo != nil {
		rec := domain.ReconciliationResult{
			Theoretical:    c.Arqueo.EfectivoTeorico,
			Physical:       c.Arqueo.EfectivoFisico,
			Difference:     c.Arqueo.Diferencia,
			Classification: domain.Classify(c.Arqueo.Diferencia),
			Notes:          c.Arqueo.Observaciones,
		}
		if c.Arqueo.Fecha != nil {
			rec.ComputedAt = *c.Arqueo.Fecha
		}
		s.Reconciliation = &rec
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: register %s: %v", apperrors.ErrBadUpstreamResponse, c.ID, err)
	}
	return s, nil
}

func pagoRequestFromEntry(e domain.PaymentEntry) pagoRequest {
	req := pagoRequest{
		EstudianteID: e.StudentID,
		Concepto:     e.Concept,
		MontoTotal:   amount(e.Total),
		EsMixto:      e.IsMixed,
		MetodoPago:   string(e.Method()),
		Detalles:     make([]detallePagoRequest, 0, len(e.Details)),
	}
	for _, d := range e.Details {
		req.Detalles = append(req.Detalles, detallePagoRequest{MetodoPago: string(d.Method), Monto: amount(d.Amount)})
	}
	return req
}

func (p pagoSchema) toDomain() *domain.PaymentRecord {
	details := make([]domain.PaymentDetail, 0, len(p.Detalles))
	for _, d := range p.Detalles {
		details = append(details, domain.PaymentDetail{Method: domain.PaymentMethod(d.MetodoPago), Amount: d.Monto})
	}
	// Simple payments may come back without an explicit detail line.
	if len(details) == 0 && p.MetodoPago != "" {
		details = append(details, domain.PaymentDetail{Method: domain.PaymentMethod(p.MetodoPago), Amount: p.MontoTotal})
	}
	return &domain.PaymentRecord{
		PaymentID: p.ID,
		PaymentEntry: domain.PaymentEntry{
			StudentID: p.EstudianteID,
			Concept:   p.Concepto,
			Total:     p.MontoTotal,
			IsMixed:   p.EsMixto,
			Details:   details,
		},
		ReceiptNumber: p.NumeroRecibo,
		AuditFields:   domain.AuditFields{CreatedAt: p.FechaPago, CreatedBy: p.Usuario},
	}
}

func egresoRequestFromEntry(e domain.ExpenseEntry) egresoRequest {
	return egresoRequest{
		Concepto:      e.Concept,
		Categoria:     string(e.Category),
		Monto:         amount(e.Amount),
		MetodoPago:    string(e.Method),
		NumeroFactura: e.InvoiceRef,
		Observaciones: e.Notes,
	}
}

func (e egresoSchema) toDomain() *domain.ExpenseRecord {
	return &domain.ExpenseRecord{
		ExpenseID: e.ID,
		ExpenseEntry: domain.ExpenseEntry{
			Concept:    e.Concepto,
			Category:   domain.ExpenseCategory(e.Categoria),
			Amount:     e.Monto,
			Method:     domain.PaymentMethod(e.MetodoPago),
			InvoiceRef: e.NumeroFactura,
			Notes:      e.Observaciones,
		},
		AuditFields: domain.AuditFields{CreatedAt: e.Fecha, CreatedBy: e.Usuario},
	}
}

func (e estudianteSchema) toDomain() *domain.Student {
	return &domain.Student{
		StudentID:          e.ID,
		DocumentNumber:     e.NumeroDocumento,
		FullName:           e.NombreCompleto,
		ServiceName:        e.ServicioNombre,
		ServiceType:        e.ServicioTipo,
		ServicePrice:       e.PrecioServicio,
		TotalPaid:          e.TotalPagado,
		OutstandingBalance: e.SaldoPendiente,
	}
}
