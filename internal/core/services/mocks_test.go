package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/caja_backoffice/internal/core/domain"
	"github.com/SscSPs/caja_backoffice/internal/core/ports/backend"
	"github.com/SscSPs/caja_backoffice/internal/core/session"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockGateway is a mock type for the backend.Gateway interface
type MockGateway struct {
	mock.Mock
}

var _ backend.Gateway = (*MockGateway)(nil)

func (m *MockGateway) OpenRegister(ctx context.Context, sess session.Context, openingFloat decimal.Decimal) (*domain.RegisterSession, error) {
	args := m.Called(ctx, sess, openingFloat)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RegisterSession), args.Error(1)
}

func (m *MockGateway) CurrentRegister(ctx context.Context, sess session.Context) (*domain.RegisterSession, error) {
	args := m.Called(ctx, sess)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RegisterSession), args.Error(1)
}

func (m *MockGateway) CloseRegister(ctx context.Context, sess session.Context, physicalCash decimal.Decimal, notes string) (*domain.RegisterSession, error) {
	args := m.Called(ctx, sess, physicalCash, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RegisterSession), args.Error(1)
}

func (m *MockGateway) RegisterHistory(ctx context.Context, sess session.Context, q backend.HistoryQuery) (*backend.HistoryPage, error) {
	args := m.Called(ctx, sess, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.HistoryPage), args.Error(1)
}

func (m *MockGateway) SubmitPayment(ctx context.Context, sess session.Context, entry domain.PaymentEntry) (*domain.PaymentRecord, error) {
	args := m.Called(ctx, sess, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentRecord), args.Error(1)
}

func (m *MockGateway) PaymentReceipt(ctx context.Context, sess session.Context, paymentID string) (*backend.Document, error) {
	args := m.Called(ctx, sess, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.Document), args.Error(1)
}

func (m *MockGateway) SubmitExpense(ctx context.Context, sess session.Context, entry domain.ExpenseEntry) (*domain.ExpenseRecord, error) {
	args := m.Called(ctx, sess, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExpenseRecord), args.Error(1)
}

func (m *MockGateway) FindStudentByDocument(ctx context.Context, sess session.Context, documentNumber string) (*domain.Student, error) {
	args := m.Called(ctx, sess, documentNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}

// MockTracker records analytics events.
type MockTracker struct {
	mock.Mock
}

func (m *MockTracker) Enqueue(distinctID string, event string, properties map[string]any) {
	m.Called(distinctID, event, properties)
}

// --- shared fixtures ---

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func testSession() session.Context {
	sess, err := session.New("op_1", "Laura Cajera", "cajero", "token-abc", time.Now().Add(time.Hour))
	if err != nil {
		panic(err)
	}
	return sess
}

// openRegister builds an open session with the given float, cash income and
// cash expense already applied.
func openRegister(float, cashIncome, cashExpense int64) *domain.RegisterSession {
	s, err := domain.NewRegisterSession("reg_1", "op_1", dec(float), time.Date(2026, 10, 16, 7, 0, 0, 0, time.UTC))
	if err != nil {
		panic(err)
	}
	out := *s
	if cashIncome > 0 {
		out, err = out.ApplyPayment(domain.PaymentEntry{
			StudentID: "stu_1",
			Concept:   "Abono",
			Total:     dec(cashIncome),
			Details:   []domain.PaymentDetail{{Method: domain.MethodCash, Amount: dec(cashIncome)}},
		})
		if err != nil {
			panic(err)
		}
	}
	if cashExpense > 0 {
		out, err = out.ApplyExpense(domain.ExpenseEntry{
			Concept:  "Gasolina",
			Category: domain.ExpenseFuel,
			Amount:   dec(cashExpense),
			Method:   domain.MethodCash,
		})
		if err != nil {
			panic(err)
		}
	}
	return &out
}

func testStudent(balance int64) *domain.Student {
	return &domain.Student{
		StudentID:          "stu_1",
		DocumentNumber:     "1020304050",
		FullName:           "Carlos Pérez",
		ServiceName:        "Licencia B1",
		ServicePrice:       dec(1200000),
		TotalPaid:          dec(1200000 - balance),
		OutstandingBalance: dec(balance),
	}
}
