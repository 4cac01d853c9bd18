package backendapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/caja_backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

// fakeBackend is an in-memory stand-in for the backend REST API. It applies
// movements with the domain rules so client round trips can be checked
// against the register arithmetic.
type fakeBackend struct {
	t *testing.T

	mu       sync.Mutex
	register *domain.RegisterSession
	closed   []domain.RegisterSession
	students map[string]estudianteSchema
	payments int
	expenses int

	// last request seen, for header assertions
	lastAuth        string
	lastIdempotency string
	lastBody        []byte
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	f := &fakeBackend{
		t: t,
		students: map[string]estudianteSchema{
			"1020304050": {
				ID:              "stu_1",
				NumeroDocumento: "1020304050",
				NombreCompleto:  "Carlos Pérez",
				ServicioNombre:  "Licencia B1",
				PrecioServicio:  decimal.NewFromInt(1200000),
				TotalPagado:     decimal.NewFromInt(700000),
				SaldoPendiente:  decimal.NewFromInt(500000),
			},
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /caja/abrir", f.open)
	mux.HandleFunc("GET /caja/actual", f.current)
	mux.HandleFunc("POST /caja/pagos", f.pay)
	mux.HandleFunc("POST /caja/egresos", f.expense)
	mux.HandleFunc("POST /caja/cerrar", f.close)
	mux.HandleFunc("GET /caja/historial", f.history)
	mux.HandleFunc("GET /estudiantes/documento/{doc}", f.student)
	mux.HandleFunc("GET /caja/pagos/{id}/recibo", f.receipt)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.lastAuth = r.Header.Get("Authorization")
		f.lastIdempotency = r.Header.Get(IdempotencyKeyHeader)
		f.mu.Unlock()
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, errorSchema{Detail: "Token inválido"})
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeBackend) decode(r *http.Request, v any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return false
	}
	f.lastBody = raw
	return json.Unmarshal(raw, v) == nil
}

func (f *fakeBackend) open(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SaldoInicial decimal.Decimal `json:"saldo_inicial"`
	}
	if !f.decode(r, &req) {
		writeJSON(w, http.StatusBadRequest, errorSchema{Detail: "JSON inválido"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.register != nil {
		writeJSON(w, http.StatusBadRequest, errorSchema{Detail: "Ya existe una caja abierta"})
		return
	}
	s, err := domain.NewRegisterSession("reg_1", "op_1", req.SaldoInicial, time.Date(2026, 10, 16, 7, 0, 0, 0, time.UTC))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorSchema{Detail: err.Error()})
		return
	}
	f.register = s
	writeJSON(w, http.StatusCreated, cajaFromDomain(*s))
}

func (f *fakeBackend) current(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.register == nil {
		writeJSON(w, http.StatusNotFound, errorSchema{Detail: "No hay caja abierta"})
		return
	}
	c := cajaFromDomain(*f.register)
	writeJSON(w, http.StatusOK, cajaActualSchema{Abierta: true, Caja: &c})
}

func (f *fakeBackend) pay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EstudianteID string          `json:"estudiante_id"`
		Concepto     string          `json:"concepto"`
		MontoTotal   decimal.Decimal `json:"monto_total"`
		EsMixto      bool            `json:"es_mixto"`
		Detalles     []detallePagoSchema
	}
	if !f.decode(r, &req) {
		writeJSON(w, http.StatusBadRequest, errorSchema{Detail: "JSON inválido"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.register == nil {
		writeJSON(w, http.StatusBadRequest, errorSchema{Detail: "No hay caja abierta"})
		return
	}
	entry := domain.PaymentEntry{StudentID: req.EstudianteID, Concept: req.Concepto, Total: req.MontoTotal, IsMixed: req.EsMixto}
	for _, d := range req.Detalles {
		entry.Details = append(entry.Details, domain.PaymentDetail{Method: domain.PaymentMethod(d.MetodoPago), Amount: d.Monto})
	}
	next, err := f.register.ApplyPayment(entry)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorSchema{Message: err.Error()})
		return
	}
	f.register = &next
	for doc, st := range f.students {
		if st.ID == req.EstudianteID {
			st.TotalPagado = st.TotalPagado.Add(req.MontoTotal)
			st.SaldoPendiente = st.SaldoPendiente.Sub(req.MontoTotal)
			f.students[doc] = st
		}
	}
	f.payments++
	writeJSON(w, http.StatusCreated, pagoSchema{
		ID:           "pay_1",
		EstudianteID: req.EstudianteID,
		Concepto:     req.Concepto,
		MontoTotal:   req.MontoTotal,
		EsMixto:      req.EsMixto,
		Detalles:     req.Detalles,
		NumeroRecibo: "RC-0001",
		FechaPago:    time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC),
		Usuario:      "op_1",
	})
}

func (f *fakeBackend) expense(w http.ResponseWriter, r *http.Request) {
	var req egresoSchema
	if !f.decode(r, &req) {
		writeJSON(w, http.StatusBadRequest, errorSchema{Detail: "JSON inválido"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.register == nil {
		writeJSON(w, http.StatusBadRequest, errorSchema{Detail: "No hay caja abierta"})
		return
	}
	next, err := f.register.ApplyExpense(req.toDomain().ExpenseEntry)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorSchema{Message: err.Error()})
		return
	}
	f.register = &next
	f.expenses++
	req.ID = "exp_1"
	req.Fecha = time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)
	writeJSON(w, http.StatusCreated, req)
}

func (f *fakeBackend) close(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EfectivoFisico decimal.Decimal `json:"efectivo_fisico"`
		Observaciones  string          `json:"observaciones"`
	}
	if !f.decode(r, &req) {
		writeJSON(w, http.StatusBadRequest, errorSchema{Detail: "JSON inválido"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.register == nil {
		writeJSON(w, http.StatusBadRequest, errorSchema{Detail: "No hay caja abierta"})
		return
	}
	theoretical := f.register.CashInDrawer()
	diff := req.EfectivoFisico.Sub(theoretical)
	closed, err := f.register.Close(domain.ReconciliationResult{
		Theoretical:    theoretical,
		Physical:       req.EfectivoFisico,
		Difference:     diff,
		Classification: domain.Classify(diff),
		Notes:          req.Observaciones,
		ComputedAt:     time.Date(2026, 10, 16, 18, 0, 0, 0, time.UTC),
	}, time.Date(2026, 10, 16, 18, 0, 0, 0, time.UTC))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorSchema{Detail: err.Error()})
		return
	}
	f.closed = append(f.closed, closed)
	f.register = nil
	writeJSON(w, http.StatusOK, cajaFromDomain(closed))
}

func (f *fakeBackend) history(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := historialSchema{Total: len(f.closed), Page: 1, Limit: 20}
	for _, s := range f.closed {
		out.Items = append(out.Items, cajaFromDomain(s))
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *fakeBackend) student(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.students[r.PathValue("doc")]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorSchema{Detail: "Estudiante no encontrado"})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (f *fakeBackend) receipt(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("id") != "pay_1" {
		writeJSON(w, http.StatusNotFound, errorSchema{Detail: "Pago no encontrado"})
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="recibo_RC-0001.pdf"`)
	_, _ = w.Write([]byte("%PDF-1.4 fake"))
}

func methodTotalsFromDomain(t domain.MethodTotals) methodTotalsSchema {
	return methodTotalsSchema{
		Efectivo:       t.Cash,
		Nequi:          t.Nequi,
		Daviplata:      t.Daviplata,
		Transferencia:  t.Transfer,
		TarjetaDebito:  t.DebitCard,
		TarjetaCredito: t.CreditCard,
		Sistecredito:   t.Sistecredito,
		Addi:           t.Addi,
	}
}

func cajaFromDomain(s domain.RegisterSession) cajaSchema {
	estado := "abierta"
	if s.Status == domain.RegisterClosed {
		estado = "cerrada"
	}
	c := cajaSchema{
		ID:                s.RegisterID,
		Estado:            estado,
		FechaApertura:     s.OpenedAt,
		UsuarioApertura:   s.OpenedBy,
		SaldoInicial:      s.OpeningFloat,
		TotalIngresos:     s.IncomeTotal,
		TotalEgresos:      s.ExpenseTotal,
		EgresosEfectivo:   s.CashExpense,
		IngresosPorMetodo: methodTotalsFromDomain(s.IncomeByMethod),
		CantidadPagos:     s.PaymentCount,
		CantidadEgresos:   s.ExpenseCount,
		FechaCierre:       s.ClosedAt,
	}
	if r := s.Reconciliation; r != nil {
		at := r.ComputedAt
		c.Arqueo = &arqueoSchema{
			EfectivoTeorico: r.Theoretical,
			EfectivoFisico:  r.Physical,
			Diferencia:      r.Difference,
			Observaciones:   r.Notes,
			Fecha:           &at,
		}
	}
	return c
}

