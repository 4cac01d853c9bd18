package backendapi

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"

	"github.com/SscSPs/caja_backoffice/internal/apperrors"
	"github.com/SscSPs/caja_backoffice/internal/core/domain"
	"github.com/SscSPs/caja_backoffice/internal/core/ports/backend"
	"github.com/SscSPs/caja_backoffice/internal/core/session"
)

// SubmitPayment records a student payment in the open register.
func (c *Client) SubmitPayment(ctx context.Context, sess session.Context, entry domain.PaymentEntry) (*domain.PaymentRecord, error) {
	var out pagoSchema
	err := c.do(ctx, sess, request{
		op:     "submit payment",
		method: http.MethodPost,
		path:   "/caja/pagos",
		body:   pagoRequestFromEntry(entry),
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

// PaymentReceipt streams the receipt document of a payment. The caller closes Body.
func (c *Client) PaymentReceipt(ctx context.Context, sess session.Context, paymentID string) (*backend.Document, error) {
	resp, err := c.send(ctx, sess, request{
		op:     "payment receipt",
		method: http.MethodGet,
		path:   "/caja/pagos/" + url.PathEscape(paymentID) + "/recibo",
	})
	if errors.Is(err, errNotFound) {
		return nil, fmt.Errorf("%w: receipt for payment %s", apperrors.ErrNotFound, paymentID)
	}
	if err != nil {
		return nil, err
	}

	doc := &backend.Document{
		ContentType: resp.Header.Get("Content-Type"),
		Filename:    "recibo-" + paymentID + ".pdf",
		Body:        resp.Body,
	}
	if doc.ContentType == "" {
		doc.ContentType = "application/pdf"
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		doc.Filename = params["filename"]
	}
	return doc, nil
}
