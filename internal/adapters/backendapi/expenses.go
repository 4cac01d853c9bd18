package backendapi

import (
	"context"
	"net/http"

	"github.com/SscSPs/caja_backoffice/internal/core/domain"
	"github.com/SscSPs/caja_backoffice/internal/core/session"
)

// SubmitExpense records an expense in the open register.
func (c *Client) SubmitExpense(ctx context.Context, sess session.Context, entry domain.ExpenseEntry) (*domain.ExpenseRecord, error) {
	var out egresoSchema
	err := c.do(ctx, sess, request{
		op:     "submit expense",
		method: http.MethodPost,
		path:   "/caja/egresos",
		body:   egresoRequestFromEntry(entry),
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}
