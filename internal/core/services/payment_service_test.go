package services_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/SscSPs/caja_backoffice/internal/apperrors"
	"github.com/SscSPs/caja_backoffice/internal/core/domain"
	"github.com/SscSPs/caja_backoffice/internal/core/ports/backend"
	portssvc "github.com/SscSPs/caja_backoffice/internal/core/ports/services"
	"github.com/SscSPs/caja_backoffice/internal/core/services"
	"github.com/SscSPs/caja_backoffice/internal/core/session"
	"github.com/SscSPs/caja_backoffice/internal/utils/inflight"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type PaymentServiceTestSuite struct {
	suite.Suite
	gateway *MockGateway
	guard   *inflight.Guard
	service portssvc.PaymentSvcFacade
	ctx     context.Context
	sess    session.Context
}

func (suite *PaymentServiceTestSuite) SetupTest() {
	suite.gateway = new(MockGateway)
	suite.guard = inflight.New()
	suite.service = services.NewPaymentService(suite.gateway,
		services.WithPaymentBase(services.BaseService{Guard: suite.guard}),
	)
	suite.ctx = context.Background()
	suite.sess = testSession()
}

func (suite *PaymentServiceTestSuite) TearDownTest() {
	suite.gateway.AssertExpectations(suite.T())
}

func TestPaymentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}

func (suite *PaymentServiceTestSuite) assertNothingSubmitted() {
	suite.gateway.AssertNotCalled(suite.T(), "SubmitPayment", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestSubmitPayment_ScenarioA() {
	before := openRegister(100000, 0, 0)
	after := openRegister(100000, 50000, 0)
	form := baseForm().WithSimple(domain.MethodCash, "50000")

	suite.gateway.On("CurrentRegister", suite.ctx, suite.sess).Return(before, nil).Once()
	suite.gateway.On("FindStudentByDocument", suite.ctx, suite.sess, "1020304050").Return(testStudent(500000), nil).Once()
	suite.gateway.On("SubmitPayment", suite.ctx, suite.sess, mock.MatchedBy(func(e domain.PaymentEntry) bool {
		return e.StudentID == "stu_1" && e.Total.Equal(dec(50000)) && e.Method() == domain.MethodCash
	})).Return(&domain.PaymentRecord{PaymentID: "pay_1", PaymentEntry: domain.PaymentEntry{
		StudentID: "stu_1", Total: dec(50000),
		Details: []domain.PaymentDetail{{Method: domain.MethodCash, Amount: dec(50000)}},
	}}, nil).Once()
	suite.gateway.On("FindStudentByDocument", suite.ctx, suite.sess, "1020304050").Return(testStudent(450000), nil).Once()
	suite.gateway.On("CurrentRegister", suite.ctx, suite.sess).Return(after, nil).Once()

	out, err := suite.service.SubmitPayment(suite.ctx, suite.sess, form)

	suite.Require().NoError(err)
	suite.Equal("pay_1", out.Payment.PaymentID)
	suite.True(out.Student.OutstandingBalance.Equal(dec(450000)))
	suite.True(out.Register.CashInDrawer().Equal(dec(150000)))
}

func (suite *PaymentServiceTestSuite) TestSubmitPayment_ScenarioE_Mixed() {
	form := baseForm().
		WithMixedRow(domain.MethodCash, "30000").
		WithMixedRow(domain.MethodNequi, "20000")

	suite.gateway.On("CurrentRegister", suite.ctx, suite.sess).Return(openRegister(100000, 0, 0), nil)
	suite.gateway.On("FindStudentByDocument", suite.ctx, suite.sess, "1020304050").Return(testStudent(500000), nil)
	suite.gateway.On("SubmitPayment", suite.ctx, suite.sess, mock.MatchedBy(func(e domain.PaymentEntry) bool {
		return e.IsMixed && e.Total.Equal(dec(50000)) && len(e.Details) == 2
	})).Return(&domain.PaymentRecord{PaymentID: "pay_2"}, nil).Once()

	out, err := suite.service.SubmitPayment(suite.ctx, suite.sess, form)
	suite.Require().NoError(err)
	suite.Equal("pay_2", out.Payment.PaymentID)
}

func (suite *PaymentServiceTestSuite) TestSubmitPayment_ScenarioF_NoNetworkCall() {
	form := baseForm().WithMixedRow(domain.MethodCash, "50000")

	_, err := suite.service.SubmitPayment(suite.ctx, suite.sess, form)

	suite.ErrorIs(err, apperrors.ErrInsufficientMixComponents)
	suite.gateway.AssertNotCalled(suite.T(), "CurrentRegister", mock.Anything, mock.Anything)
	suite.gateway.AssertNotCalled(suite.T(), "FindStudentByDocument", mock.Anything, mock.Anything, mock.Anything)
	suite.assertNothingSubmitted()
}

func (suite *PaymentServiceTestSuite) TestSubmitPayment_InvalidAmountNoNetworkCall() {
	_, err := suite.service.SubmitPayment(suite.ctx, suite.sess, baseForm().WithSimple(domain.MethodCash, "-1"))

	suite.ErrorIs(err, apperrors.ErrInvalidAmount)
	suite.gateway.AssertNotCalled(suite.T(), "CurrentRegister", mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestSubmitPayment_MissingStudent() {
	form := domain.PaymentForm{}.WithConcept("Abono").WithSimple(domain.MethodCash, "1000")

	_, err := suite.service.SubmitPayment(suite.ctx, suite.sess, form)
	suite.ErrorIs(err, apperrors.ErrMissingField)
}

func (suite *PaymentServiceTestSuite) TestSubmitPayment_ExceedsBalance() {
	suite.gateway.On("CurrentRegister", suite.ctx, suite.sess).Return(openRegister(100000, 0, 0), nil).Once()
	suite.gateway.On("FindStudentByDocument", suite.ctx, suite.sess, "1020304050").Return(testStudent(40000), nil).Once()

	_, err := suite.service.SubmitPayment(suite.ctx, suite.sess, baseForm().WithSimple(domain.MethodCash, "50000"))

	suite.ErrorIs(err, apperrors.ErrExceedsBalance)
	suite.assertNothingSubmitted()
}

func (suite *PaymentServiceTestSuite) TestSubmitPayment_NotOpen() {
	suite.gateway.On("CurrentRegister", suite.ctx, suite.sess).Return(nil, nil).Once()

	_, err := suite.service.SubmitPayment(suite.ctx, suite.sess, baseForm().WithSimple(domain.MethodCash, "50000"))

	suite.ErrorIs(err, apperrors.ErrNotOpen)
	suite.assertNothingSubmitted()
}

func (suite *PaymentServiceTestSuite) TestSubmitPayment_UpstreamRejection() {
	upstream := &apperrors.UpstreamError{StatusCode: 400, Message: "El estudiante no tiene saldo pendiente", Op: "submit payment"}
	suite.gateway.On("CurrentRegister", suite.ctx, suite.sess).Return(openRegister(100000, 0, 0), nil).Once()
	suite.gateway.On("FindStudentByDocument", suite.ctx, suite.sess, "1020304050").Return(testStudent(500000), nil).Once()
	suite.gateway.On("SubmitPayment", suite.ctx, suite.sess, mock.Anything).Return(nil, upstream).Once()

	_, err := suite.service.SubmitPayment(suite.ctx, suite.sess, baseForm().WithSimple(domain.MethodCash, "50000"))

	var got *apperrors.UpstreamError
	suite.Require().True(errors.As(err, &got))
	suite.Equal("El estudiante no tiene saldo pendiente", got.Message)
}

func (suite *PaymentServiceTestSuite) TestSubmitPayment_RefreshFailureKeepsPayment() {
	suite.gateway.On("CurrentRegister", suite.ctx, suite.sess).Return(openRegister(100000, 0, 0), nil).Once()
	suite.gateway.On("FindStudentByDocument", suite.ctx, suite.sess, "1020304050").Return(testStudent(500000), nil).Once()
	suite.gateway.On("SubmitPayment", suite.ctx, suite.sess, mock.Anything).Return(&domain.PaymentRecord{PaymentID: "pay_3"}, nil).Once()
	suite.gateway.On("FindStudentByDocument", suite.ctx, suite.sess, "1020304050").Return(nil, errors.New("timeout")).Once()
	suite.gateway.On("CurrentRegister", suite.ctx, suite.sess).Return(nil, errors.New("timeout")).Once()

	out, err := suite.service.SubmitPayment(suite.ctx, suite.sess, baseForm().WithSimple(domain.MethodCash, "50000"))

	suite.Require().NoError(err)
	suite.Equal("pay_3", out.Payment.PaymentID)
	suite.Nil(out.Student)
	suite.Nil(out.Register)
}

func (suite *PaymentServiceTestSuite) TestSubmitPayment_InFlight() {
	release, ok := suite.guard.TryAcquire(inflight.Key("op_1", "payment.submit"))
	suite.Require().True(ok)
	defer release()

	_, err := suite.service.SubmitPayment(suite.ctx, suite.sess, baseForm().WithSimple(domain.MethodCash, "50000"))

	suite.ErrorIs(err, apperrors.ErrRequestInFlight)
	suite.assertNothingSubmitted()
}

func (suite *PaymentServiceTestSuite) TestLookupStudent_NotFound() {
	suite.gateway.On("FindStudentByDocument", suite.ctx, suite.sess, "999").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.LookupStudent(suite.ctx, suite.sess, " 999 ")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *PaymentServiceTestSuite) TestLookupStudent_Blank() {
	_, err := suite.service.LookupStudent(suite.ctx, suite.sess, "   ")
	suite.ErrorIs(err, apperrors.ErrMissingField)
}

func (suite *PaymentServiceTestSuite) TestPaymentReceipt() {
	doc := &backend.Document{ContentType: "application/pdf", Filename: "recibo.pdf", Body: io.NopCloser(strings.NewReader("%PDF"))}
	suite.gateway.On("PaymentReceipt", suite.ctx, suite.sess, "pay_1").Return(doc, nil).Once()

	got, err := suite.service.PaymentReceipt(suite.ctx, suite.sess, "pay_1")
	suite.Require().NoError(err)
	suite.Equal("recibo.pdf", got.Filename)
}
