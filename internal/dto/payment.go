package dto

import (
	"time"

	"github.com/SscSPs/caja_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/caja_backoffice/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// PaymentDetailRequest is one (method, amount) row of a mixed payment.
type PaymentDetailRequest struct {
	Method domain.PaymentMethod `json:"method"`
	Amount AmountInput          `json:"amount"`
}

// PaymentRequest defines the data needed to record a student payment.
// Method and Amount are used for simple payments, Details for mixed ones.
type PaymentRequest struct {
	StudentDocument string                 `json:"studentDocument"`
	Concept         string                 `json:"concept"`
	Mixed           bool                   `json:"mixed"`
	Method          domain.PaymentMethod   `json:"method"`
	Amount          AmountInput            `json:"amount"`
	Details         []PaymentDetailRequest `json:"details"`
}

// ToForm converts the request to the operator's payment form.
func (r PaymentRequest) ToForm() domain.PaymentForm {
	form := domain.PaymentForm{}.
		WithStudent(r.StudentDocument).
		WithConcept(r.Concept)
	if !r.Mixed {
		return form.WithSimple(r.Method, string(r.Amount))
	}
	// Rows are kept as sent so a repeated method is rejected by the builder
	// rather than merged.
	form.Mixed = true
	for _, d := range r.Details {
		form.Rows = append(form.Rows, domain.FormRow{Method: d.Method, Amount: string(d.Amount)})
	}
	return form
}

// PaymentDetailResponse is one leg of an accepted payment.
type PaymentDetailResponse struct {
	Method domain.PaymentMethod `json:"method"`
	Amount decimal.Decimal      `json:"amount"`
}

// PaymentResponse defines the data returned for an accepted payment.
type PaymentResponse struct {
	PaymentID     string                  `json:"paymentID"`
	ReceiptNumber string                  `json:"receiptNumber,omitempty"`
	StudentID     string                  `json:"studentID"`
	Concept       string                  `json:"concept"`
	Total         decimal.Decimal         `json:"total"`
	IsMixed       bool                    `json:"isMixed"`
	Method        domain.PaymentMethod    `json:"method,omitempty"`
	Details       []PaymentDetailResponse `json:"details"`
	CreatedAt     time.Time               `json:"createdAt"`
	CreatedBy     string                  `json:"createdBy"`
}

// PaymentOutcomeResponse is an accepted payment with the student and register
// as re-read afterwards. Either may be absent if the re-read failed.
type PaymentOutcomeResponse struct {
	Payment  PaymentResponse   `json:"payment"`
	Student  *StudentResponse  `json:"student,omitempty"`
	Register *RegisterResponse `json:"register,omitempty"`
}

// ToPaymentResponse converts a domain.PaymentRecord to PaymentResponse DTO
func ToPaymentResponse(p *domain.PaymentRecord) PaymentResponse {
	details := make([]PaymentDetailResponse, len(p.Details))
	for i, d := range p.Details {
		details[i] = PaymentDetailResponse{Method: d.Method, Amount: d.Amount}
	}
	return PaymentResponse{
		PaymentID:     p.PaymentID,
		ReceiptNumber: p.ReceiptNumber,
		StudentID:     p.StudentID,
		Concept:       p.Concept,
		Total:         p.Total,
		IsMixed:       p.IsMixed,
		Method:        p.Method(),
		Details:       details,
		CreatedAt:     p.CreatedAt,
		CreatedBy:     p.CreatedBy,
	}
}

// ToPaymentOutcomeResponse converts a services.PaymentOutcome to its DTO
func ToPaymentOutcomeResponse(o *portssvc.PaymentOutcome) PaymentOutcomeResponse {
	resp := PaymentOutcomeResponse{Payment: ToPaymentResponse(o.Payment)}
	if o.Student != nil {
		st := ToStudentResponse(o.Student)
		resp.Student = &st
	}
	if o.Register != nil {
		reg := ToRegisterResponse(o.Register)
		resp.Register = &reg
	}
	return resp
}
