package domain

import "github.com/shopspring/decimal"

// Student is the subset of a student record needed to take a payment.
type Student struct {
	StudentID          string          `json:"studentID"`
	DocumentNumber     string          `json:"documentNumber"`
	FullName           string          `json:"fullName"`
	ServiceName        string          `json:"serviceName,omitempty"` // licence category / course
	ServiceType        string          `json:"serviceType,omitempty"`
	ServicePrice       decimal.Decimal `json:"servicePrice"`
	TotalPaid          decimal.Decimal `json:"totalPaid"`
	OutstandingBalance decimal.Decimal `json:"outstandingBalance"`
}

// HasDebt reports whether the student still owes money.
func (s Student) HasDebt() bool {
	return s.OutstandingBalance.IsPositive()
}
