package dto

import (
	"github.com/SscSPs/caja_backoffice/internal/core/domain"
	"github.com/SscSPs/caja_backoffice/internal/utils"
	"github.com/shopspring/decimal"
)

// StudentResponse defines the student data shown on the payment screen.
type StudentResponse struct {
	StudentID          string          `json:"studentID"`
	DocumentNumber     string          `json:"documentNumber"`
	FullName           string          `json:"fullName"`
	ServiceName        string          `json:"serviceName,omitempty"`
	ServiceType        string          `json:"serviceType,omitempty"`
	ServicePrice       decimal.Decimal `json:"servicePrice"`
	TotalPaid          decimal.Decimal `json:"totalPaid"`
	OutstandingBalance decimal.Decimal `json:"outstandingBalance"`
	BalanceDisplay     string          `json:"balanceDisplay"`
	HasDebt            bool            `json:"hasDebt"`
}

// ToStudentResponse converts a domain.Student to StudentResponse DTO
func ToStudentResponse(s *domain.Student) StudentResponse {
	return StudentResponse{
		StudentID:          s.StudentID,
		DocumentNumber:     s.DocumentNumber,
		FullName:           s.FullName,
		ServiceName:        s.ServiceName,
		ServiceType:        s.ServiceType,
		ServicePrice:       s.ServicePrice,
		TotalPaid:          s.TotalPaid,
		OutstandingBalance: s.OutstandingBalance,
		BalanceDisplay:     utils.FormatPesos(s.OutstandingBalance),
		HasDebt:            s.HasDebt(),
	}
}
