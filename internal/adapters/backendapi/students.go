package backendapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/SscSPs/caja_backoffice/internal/apperrors"
	"github.com/SscSPs/caja_backoffice/internal/core/domain"
	"github.com/SscSPs/caja_backoffice/internal/core/session"
)

// FindStudentByDocument looks a student up by identity document.
func (c *Client) FindStudentByDocument(ctx context.Context, sess session.Context, documentNumber string) (*domain.Student, error) {
	var out estudianteSchema
	err := c.do(ctx, sess, request{
		op:     "find student",
		method: http.MethodGet,
		path:   "/estudiantes/documento/" + url.PathEscape(documentNumber),
	}, &out)
	if errors.Is(err, errNotFound) {
		return nil, fmt.Errorf("%w: no student with document %s", apperrors.ErrNotFound, documentNumber)
	}
	if err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}
