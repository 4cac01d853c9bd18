package backendapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/caja_backoffice/internal/apperrors"
	"github.com/SscSPs/caja_backoffice/internal/core/domain"
	"github.com/SscSPs/caja_backoffice/internal/core/ports/backend"
	"github.com/SscSPs/caja_backoffice/internal/core/session"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func testSess() session.Context {
	return session.Context{OperatorID: "op_1", Token: "token-abc"}
}

func newTestClient(t *testing.T) (*fakeBackend, *Client) {
	t.Helper()
	f, srv := newFakeBackend(t)
	keys := 0
	c := NewClient(srv.URL+"/", WithTimeout(2*time.Second), WithIdempotencyKeys(func() string {
		keys++
		return "key-" + string(rune('0'+keys))
	}))
	return f, c
}

func TestClient_FullDay(t *testing.T) {
	f, c := newTestClient(t)
	ctx := context.Background()
	sess := testSess()

	cur, err := c.CurrentRegister(ctx, sess)
	require.NoError(t, err)
	assert.Nil(t, cur, "404 on current register means none is open")

	// Scenario A
	opened, err := c.OpenRegister(ctx, sess, dec(100000))
	require.NoError(t, err)
	assert.True(t, opened.CashInDrawer().Equal(dec(100000)))
	assert.Equal(t, "Bearer token-abc", f.lastAuth)
	assert.Equal(t, "key-1", f.lastIdempotency)
	assert.JSONEq(t, `{"saldo_inicial":100000}`, string(f.lastBody))

	_, err = c.SubmitPayment(ctx, sess, domain.PaymentEntry{
		StudentID: "stu_1", Concept: "Abono", Total: dec(50000),
		Details: []domain.PaymentDetail{{Method: domain.MethodCash, Amount: dec(50000)}},
	})
	require.NoError(t, err)

	// Scenario E on top
	rec, err := c.SubmitPayment(ctx, sess, domain.PaymentEntry{
		StudentID: "stu_1", Concept: "Abono", Total: dec(50000), IsMixed: true,
		Details: []domain.PaymentDetail{
			{Method: domain.MethodCash, Amount: dec(30000)},
			{Method: domain.MethodNequi, Amount: dec(20000)},
		},
	})
	require.NoError(t, err)
	assert.True(t, rec.IsMixed)
	assert.Len(t, rec.Details, 2)
	assert.Equal(t, "RC-0001", rec.ReceiptNumber)

	// Scenario B
	exp, err := c.SubmitExpense(ctx, sess, domain.ExpenseEntry{
		Concept: "Gasolina", Category: domain.ExpenseFuel, Amount: dec(20000), Method: domain.MethodCash,
	})
	require.NoError(t, err)
	assert.Equal(t, "exp_1", exp.ExpenseID)

	cur, err = c.CurrentRegister(ctx, sess)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.True(t, cur.CashInDrawer().Equal(dec(160000)))
	assert.True(t, cur.IncomeByMethod.Nequi.Equal(dec(20000)))
	assert.Empty(t, f.lastIdempotency, "reads carry no idempotency key")

	// Scenario D
	closed, err := c.CloseRegister(ctx, sess, dec(155000), "faltante")
	require.NoError(t, err)
	require.NotNil(t, closed.Reconciliation)
	assert.Equal(t, domain.RegisterClosed, closed.Status)
	assert.True(t, closed.Reconciliation.Difference.Equal(dec(-5000)))
	assert.Equal(t, domain.Shortage, closed.Reconciliation.Classification)

	page, err := c.RegisterHistory(ctx, sess, backend.HistoryQuery{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "faltante", page.Items[0].Reconciliation.Notes)
}

func TestClient_PaymentBodyUsesPlainNumbers(t *testing.T) {
	f, c := newTestClient(t)
	ctx := context.Background()
	_, err := c.OpenRegister(ctx, testSess(), dec(0))
	require.NoError(t, err)

	_, err = c.SubmitPayment(ctx, testSess(), domain.PaymentEntry{
		StudentID: "stu_1", Concept: "Clase práctica", Total: dec(45000),
		Details: []domain.PaymentDetail{{Method: domain.MethodDaviplata, Amount: dec(45000)}},
	})
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(f.lastBody, &body))
	assert.Equal(t, float64(45000), body["monto_total"])
	assert.Equal(t, "daviplata", body["metodo_pago"])
	assert.Equal(t, false, body["es_mixto"])
}

func TestClient_UpstreamMessageVerbatim(t *testing.T) {
	_, c := newTestClient(t)
	ctx := context.Background()
	_, err := c.OpenRegister(ctx, testSess(), dec(1000))
	require.NoError(t, err)

	_, err = c.OpenRegister(ctx, testSess(), dec(1000))

	var upstream *apperrors.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusBadRequest, upstream.StatusCode)
	assert.Equal(t, "Ya existe una caja abierta", upstream.Message)
	assert.True(t, upstream.IsClientError())
}

func TestClient_StudentLookup(t *testing.T) {
	_, c := newTestClient(t)
	ctx := context.Background()

	st, err := c.FindStudentByDocument(ctx, testSess(), "1020304050")
	require.NoError(t, err)
	assert.Equal(t, "stu_1", st.StudentID)
	assert.True(t, st.OutstandingBalance.Equal(dec(500000)))

	_, err = c.FindStudentByDocument(ctx, testSess(), "999")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestClient_Receipt(t *testing.T) {
	_, c := newTestClient(t)

	doc, err := c.PaymentReceipt(context.Background(), testSess(), "pay_1")
	require.NoError(t, err)
	defer doc.Body.Close()
	body, err := io.ReadAll(doc.Body)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.ContentType)
	assert.Equal(t, "recibo_RC-0001.pdf", doc.Filename)
	assert.Contains(t, string(body), "%PDF")

	_, err = c.PaymentReceipt(context.Background(), testSess(), "nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestClient_NoTokenNeverCallsBackend(t *testing.T) {
	f, c := newTestClient(t)

	_, err := c.CurrentRegister(context.Background(), session.Context{OperatorID: "op_1"})
	assert.ErrorIs(t, err, session.ErrNoSession)
	assert.Empty(t, f.lastAuth)
}

func TestClient_RejectsInconsistentRegister(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"abierta": true,
			"caja": map[string]any{
				"id":                  "reg_9",
				"estado":              "abierta",
				"fecha_apertura":      "2026-10-16T07:00:00Z",
				"saldo_inicial":       100000,
				"total_ingresos":      90000,
				"ingresos_por_metodo": map[string]any{"efectivo": 50000},
			},
		})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).CurrentRegister(context.Background(), testSess())
	assert.ErrorIs(t, err, apperrors.ErrBadUpstreamResponse)
}

func TestClient_RejectsSchemaViolation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": "stu_1", "saldo_pendiente": -10})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FindStudentByDocument(context.Background(), testSess(), "1")
	assert.ErrorIs(t, err, apperrors.ErrBadUpstreamResponse)
}

func TestClient_ServerErrorIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).CurrentRegister(context.Background(), testSess())

	var upstream *apperrors.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusBadGateway, upstream.StatusCode)
	assert.Equal(t, "Bad Gateway", upstream.Message)
	assert.False(t, upstream.IsClientError())
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail", `{"detail":"Saldo insuficiente"}`, "Saldo insuficiente"},
		{"message", `{"message":"Caja cerrada"}`, "Caja cerrada"},
		{"error", `{"error":"forbidden"}`, "forbidden"},
		{"plain text", "algo salió mal", "algo salió mal"},
		{"empty", "", "Conflict"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, errorMessage([]byte(tc.body), http.StatusConflict))
		})
	}
}
