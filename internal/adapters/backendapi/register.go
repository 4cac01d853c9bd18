package backendapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/SscSPs/caja_backoffice/internal/core/domain"
	"github.com/SscSPs/caja_backoffice/internal/core/ports/backend"
	"github.com/SscSPs/caja_backoffice/internal/core/session"
	"github.com/shopspring/decimal"
)

const historyDateLayout = "2006-01-02"

// OpenRegister opens a register with the given opening float.
func (c *Client) OpenRegister(ctx context.Context, sess session.Context, openingFloat decimal.Decimal) (*domain.RegisterSession, error) {
	var out cajaSchema
	err := c.do(ctx, sess, request{
		op:     "open register",
		method: http.MethodPost,
		path:   "/caja/abrir",
		body:   abrirCajaRequest{SaldoInicial: amount(openingFloat)},
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.toDomain()
}

// CurrentRegister returns the operator's open register. A 404 or an explicit
// "abierta": false both mean no register is open.
func (c *Client) CurrentRegister(ctx context.Context, sess session.Context) (*domain.RegisterSession, error) {
	var out cajaActualSchema
	err := c.do(ctx, sess, request{
		op:     "current register",
		method: http.MethodGet,
		path:   "/caja/actual",
	}, &out)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !out.Abierta || out.Caja == nil {
		return nil, nil
	}
	return out.Caja.toDomain()
}

// CloseRegister closes the open register with the physical cash count.
func (c *Client) CloseRegister(ctx context.Context, sess session.Context, physicalCash decimal.Decimal, notes string) (*domain.RegisterSession, error) {
	var out cajaSchema
	err := c.do(ctx, sess, request{
		op:     "close register",
		method: http.MethodPost,
		path:   "/caja/cerrar",
		body:   cerrarCajaRequest{EfectivoFisico: amount(physicalCash), Observaciones: notes},
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.toDomain()
}

// RegisterHistory lists past register sessions.
func (c *Client) RegisterHistory(ctx context.Context, sess session.Context, q backend.HistoryQuery) (*backend.HistoryPage, error) {
	query := url.Values{}
	if q.From != nil {
		query.Set("fecha_inicio", q.From.Format(historyDateLayout))
	}
	if q.To != nil {
		query.Set("fecha_fin", q.To.Format(historyDateLayout))
	}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}

	var out historialSchema
	err := c.do(ctx, sess, request{
		op:     "register history",
		method: http.MethodGet,
		path:   "/caja/historial",
		query:  query,
	}, &out)
	if err != nil {
		return nil, err
	}

	page := &backend.HistoryPage{
		Items: make([]domain.RegisterSession, 0, len(out.Items)),
		Total: out.Total,
		Page:  out.Page,
		Limit: out.Limit,
	}
	if page.Page == 0 {
		page.Page = q.Page
	}
	if page.Limit == 0 {
		page.Limit = q.Limit
	}
	for _, item := range out.Items {
		s, err := item.toDomain()
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, *s)
	}
	return page, nil
}
