package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/caja_backoffice/internal/apperrors"
	"github.com/SscSPs/caja_backoffice/internal/core/domain"
	"github.com/SscSPs/caja_backoffice/internal/core/ports/backend"
	"github.com/SscSPs/caja_backoffice/internal/utils"
	"github.com/SscSPs/caja_backoffice/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

const historyDateFormat = "2006-01-02"

// OpenRegisterRequest defines the data needed to open the day's register.
type OpenRegisterRequest struct {
	OpeningFloat AmountInput `json:"openingFloat"` // saldo inicial, zero allowed
}

// PreviewReconciliationRequest carries a physical count to preview the arqueo.
type PreviewReconciliationRequest struct {
	PhysicalCash AmountInput `json:"physicalCash"`
	Notes        string      `json:"notes"`
}

// CloseRegisterRequest defines the data needed to close the open register.
// Confirm must be true; without it the gateway answers with a preview only.
type CloseRegisterRequest struct {
	PhysicalCash AmountInput `json:"physicalCash"`
	Notes        string      `json:"notes"`
	Confirm      bool        `json:"confirm"`
}

// RegisterResponse defines the data returned for a register session,
// including the figures derived from its totals.
type RegisterResponse struct {
	RegisterID          string                  `json:"registerID"`
	Status              domain.RegisterStatus   `json:"status"`
	OpenedAt            time.Time               `json:"openedAt"`
	OpenedBy            string                  `json:"openedBy"`
	OpeningFloat        decimal.Decimal         `json:"openingFloat"`
	IncomeTotal         decimal.Decimal         `json:"incomeTotal"`
	ExpenseTotal        decimal.Decimal         `json:"expenseTotal"`
	CashExpense         decimal.Decimal         `json:"cashExpense"`
	IncomeByMethod      domain.MethodTotals     `json:"incomeByMethod"`
	PaymentCount        int                     `json:"paymentCount"`
	ExpenseCount        int                     `json:"expenseCount"`
	CashInDrawer        decimal.Decimal         `json:"cashInDrawer"`
	CashInDrawerDisplay string                  `json:"cashInDrawerDisplay"`
	DigitalTotal        decimal.Decimal         `json:"digitalTotal"`
	FinancierTotal      decimal.Decimal         `json:"financierTotal"`
	GrandTotal          decimal.Decimal         `json:"grandTotal"`
	ClosedAt            *time.Time              `json:"closedAt,omitempty"`
	Reconciliation      *ReconciliationResponse `json:"reconciliation,omitempty"`
}

// CurrentRegisterResponse tells the register screen whether a register is open.
type CurrentRegisterResponse struct {
	Open     bool              `json:"open"`
	Register *RegisterResponse `json:"register,omitempty"`
}

// ReconciliationResponse defines the data returned for an arqueo.
type ReconciliationResponse struct {
	Theoretical       decimal.Decimal         `json:"theoretical"`
	Physical          decimal.Decimal         `json:"physical"`
	Difference        decimal.Decimal         `json:"difference"`
	DifferenceDisplay string                  `json:"differenceDisplay"`
	Classification    domain.Classification   `json:"classification"`
	VariancePercent   string                  `json:"variancePercent"`
	Severity          domain.VarianceSeverity `json:"severity"`
	Notes             string                  `json:"notes,omitempty"`
	ComputedAt        time.Time               `json:"computedAt"`
}

// ConfirmationRequiredResponse is returned when a close is attempted without confirmation.
type ConfirmationRequiredResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Preview ReconciliationResponse `json:"preview"`
}

// ListHistoryParams defines query parameters for listing past registers.
// A PageToken, when present, replaces every other parameter.
type ListHistoryParams struct {
	From      string `form:"from"` // YYYY-MM-DD
	To        string `form:"to"`   // YYYY-MM-DD
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=20"`
	PageToken string `form:"pageToken"`
}

// ListHistoryResponse defines one page of past registers.
type ListHistoryResponse struct {
	Items         []RegisterResponse `json:"items"`
	Total         int                `json:"total"`
	Page          int                `json:"page"`
	Limit         int                `json:"limit"`
	NextPageToken *string            `json:"nextPageToken,omitempty"`
}

// ToQuery converts the parameters to a backend.HistoryQuery.
func (p ListHistoryParams) ToQuery() (backend.HistoryQuery, error) {
	if p.PageToken != "" {
		cur, err := pagination.DecodeHistoryToken(p.PageToken)
		if err != nil {
			return backend.HistoryQuery{}, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		return backend.HistoryQuery{From: cur.From, To: cur.To, Page: cur.Page, Limit: cur.Limit}, nil
	}

	q := backend.HistoryQuery{Page: p.Page, Limit: p.Limit}
	var err error
	if q.From, err = parseHistoryDate("from", p.From); err != nil {
		return backend.HistoryQuery{}, err
	}
	if q.To, err = parseHistoryDate("to", p.To); err != nil {
		return backend.HistoryQuery{}, err
	}
	return q, nil
}

func parseHistoryDate(name, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(historyDateFormat, value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD, got %q", apperrors.ErrValidation, name, value)
	}
	return &t, nil
}

// ToRegisterResponse converts a domain.RegisterSession to RegisterResponse DTO
func ToRegisterResponse(s *domain.RegisterSession) RegisterResponse {
	derived := s.Recompute()
	resp := RegisterResponse{
		RegisterID:          s.RegisterID,
		Status:              s.Status,
		OpenedAt:            s.OpenedAt,
		OpenedBy:            s.OpenedBy,
		OpeningFloat:        s.OpeningFloat,
		IncomeTotal:         s.IncomeTotal,
		ExpenseTotal:        s.ExpenseTotal,
		CashExpense:         s.CashExpense,
		IncomeByMethod:      s.IncomeByMethod,
		PaymentCount:        s.PaymentCount,
		ExpenseCount:        s.ExpenseCount,
		CashInDrawer:        derived.CashInDrawer,
		CashInDrawerDisplay: utils.FormatPesos(derived.CashInDrawer),
		DigitalTotal:        derived.DigitalTotal,
		FinancierTotal:      derived.FinancierTotal,
		GrandTotal:          derived.GrandTotal,
		ClosedAt:            s.ClosedAt,
	}
	if s.Reconciliation != nil {
		rec := ToReconciliationResponse(s.Reconciliation)
		resp.Reconciliation = &rec
	}
	return resp
}

// ToCurrentRegisterResponse converts the current register, possibly nil.
func ToCurrentRegisterResponse(s *domain.RegisterSession) CurrentRegisterResponse {
	if s == nil {
		return CurrentRegisterResponse{Open: false}
	}
	resp := ToRegisterResponse(s)
	return CurrentRegisterResponse{Open: s.IsOpen(), Register: &resp}
}

// ToReconciliationResponse converts a domain.ReconciliationResult to its DTO
func ToReconciliationResponse(r *domain.ReconciliationResult) ReconciliationResponse {
	return ReconciliationResponse{
		Theoretical:       r.Theoretical,
		Physical:          r.Physical,
		Difference:        r.Difference,
		DifferenceDisplay: utils.FormatPesos(r.Difference),
		Classification:    r.Classification,
		VariancePercent:   utils.FormatWithPrecision(r.VariancePercent, 2),
		Severity:          r.Severity,
		Notes:             r.Notes,
		ComputedAt:        r.ComputedAt,
	}
}

// ToListHistoryResponse converts a backend.HistoryPage, issuing a token for the next page if any.
func ToListHistoryResponse(page *backend.HistoryPage, q backend.HistoryQuery) ListHistoryResponse {
	items := make([]RegisterResponse, len(page.Items))
	for i := range page.Items {
		items[i] = ToRegisterResponse(&page.Items[i])
	}
	resp := ListHistoryResponse{
		Items: items,
		Total: page.Total,
		Page:  page.Page,
		Limit: page.Limit,
	}
	if page.HasMore() {
		token := pagination.EncodeHistoryToken(pagination.HistoryCursor{
			From:  q.From,
			To:    q.To,
			Page:  page.Page + 1,
			Limit: page.Limit,
		})
		resp.NextPageToken = &token
	}
	return resp
}
