package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/SscSPs/caja_backoffice/internal/core/domain"
	"github.com/SscSPs/caja_backoffice/internal/core/ports/backend"
	portssvc "github.com/SscSPs/caja_backoffice/internal/core/ports/services"
	"github.com/SscSPs/caja_backoffice/internal/core/session"
	"github.com/SscSPs/caja_backoffice/internal/handlers"
	"github.com/SscSPs/caja_backoffice/internal/middleware"
	"github.com/SscSPs/caja_backoffice/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock RegisterService ---
type MockRegisterService struct {
	mock.Mock
}

func (m *MockRegisterService) CurrentRegister(ctx context.Context, sess session.Context) (*domain.RegisterSession, error) {
	args := m.Called(ctx, sess)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RegisterSession), args.Error(1)
}
func (m *MockRegisterService) RegisterHistory(ctx context.Context, sess session.Context, q backend.HistoryQuery) (*backend.HistoryPage, error) {
	args := m.Called(ctx, sess, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.HistoryPage), args.Error(1)
}
func (m *MockRegisterService) PreviewReconciliation(ctx context.Context, sess session.Context, physicalCash decimal.Decimal, notes string) (*domain.ReconciliationResult, error) {
	args := m.Called(ctx, sess, physicalCash, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconciliationResult), args.Error(1)
}
func (m *MockRegisterService) OpenRegister(ctx context.Context, sess session.Context, openingFloat decimal.Decimal) (*domain.RegisterSession, error) {
	args := m.Called(ctx, sess, openingFloat)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RegisterSession), args.Error(1)
}
func (m *MockRegisterService) CloseRegister(ctx context.Context, sess session.Context, cmd portssvc.CloseRegisterCommand) (*domain.ReconciliationResult, error) {
	args := m.Called(ctx, sess, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconciliationResult), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.RegisterSvcFacade = (*MockRegisterService)(nil)

// --- Mock PaymentService ---
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) LookupStudent(ctx context.Context, sess session.Context, documentNumber string) (*domain.Student, error) {
	args := m.Called(ctx, sess, documentNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Student), args.Error(1)
}
func (m *MockPaymentService) SubmitPayment(ctx context.Context, sess session.Context, form domain.PaymentForm) (*portssvc.PaymentOutcome, error) {
	args := m.Called(ctx, sess, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portssvc.PaymentOutcome), args.Error(1)
}
func (m *MockPaymentService) PaymentReceipt(ctx context.Context, sess session.Context, paymentID string) (*backend.Document, error) {
	args := m.Called(ctx, sess, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.Document), args.Error(1)
}

var _ portssvc.PaymentSvcFacade = (*MockPaymentService)(nil)

// --- Mock ExpenseService ---
type MockExpenseService struct {
	mock.Mock
}

func (m *MockExpenseService) SubmitExpense(ctx context.Context, sess session.Context, form domain.ExpenseForm) (*portssvc.ExpenseOutcome, error) {
	args := m.Called(ctx, sess, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portssvc.ExpenseOutcome), args.Error(1)
}

var _ portssvc.ExpenseSvcFacade = (*MockExpenseService)(nil)

// --- Shared suite setup ---

const testOperatorID = "op_1"

// handlerSuite wires the real routes and auth middleware to mocked services.
type handlerSuite struct {
	suite.Suite
	router              *gin.Engine
	mockRegisterService *MockRegisterService
	mockPaymentService  *MockPaymentService
	mockExpenseService  *MockExpenseService
	jwtSecret           string
}

func (suite *handlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.mockRegisterService = new(MockRegisterService)
	suite.mockPaymentService = new(MockPaymentService)
	suite.mockExpenseService = new(MockExpenseService)

	cfg := &config.Config{JWTSecret: suite.jwtSecret, IsProduction: true}
	handlers.RegisterRoutes(suite.router, cfg, &portssvc.ServiceContainer{
		Register: suite.mockRegisterService,
		Payment:  suite.mockPaymentService,
		Expense:  suite.mockExpenseService,
	}, nil)
}

// generateTestToken creates a signed operator JWT for testing.
func (suite *handlerSuite) generateTestToken(operatorID string) string {
	claims := middleware.OperatorClaims{
		Name: "Laura Cajera",
		Role: "cajero",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "caja-test",
			Subject:   operatorID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

// do sends an authenticated request through the router.
func (suite *handlerSuite) do(method, url, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, url, nil)
	} else {
		req, _ = http.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(testOperatorID))
	req.Header.Set("Accept", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// operator matches the session built from the test token.
func operator() any {
	return mock.MatchedBy(func(s session.Context) bool {
		return s.OperatorID == testOperatorID && s.OperatorName == "Laura Cajera" && s.Token != ""
	})
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func decEq(v int64) any {
	return mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.NewFromInt(v))
	})
}

func openRegister() *domain.RegisterSession {
	return &domain.RegisterSession{
		RegisterID:   "reg_1",
		Status:       domain.RegisterOpen,
		OpenedAt:     time.Date(2026, 10, 16, 7, 0, 0, 0, time.UTC),
		OpenedBy:     testOperatorID,
		OpeningFloat: dec(100000),
		IncomeTotal:  dec(80000),
		ExpenseTotal: dec(20000),
		CashExpense:  dec(20000),
		IncomeByMethod: domain.MethodTotals{
			Cash: dec(80000),
		},
		PaymentCount: 2,
		ExpenseCount: 1,
	}
}
