package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"

	"github.com/SscSPs/caja_backoffice/internal/apperrors"
	"github.com/SscSPs/caja_backoffice/internal/core/domain"
	"github.com/SscSPs/caja_backoffice/internal/core/session"
	"github.com/SscSPs/caja_backoffice/internal/dto"
	"github.com/gin-gonic/gin"
)

// Error codes let the front-end pick a message without parsing text.
const (
	codeValidation           = "VALIDATION"
	codeInvalidAmount        = "INVALID_AMOUNT"
	codeMissingField         = "MISSING_FIELD"
	codeExceedsBalance       = "EXCEEDS_BALANCE"
	codeInsufficientMix      = "INSUFFICIENT_MIX_COMPONENTS"
	codeNotOpen              = "REGISTER_NOT_OPEN"
	codeAlreadyOpen          = "REGISTER_ALREADY_OPEN"
	codeClosed               = "REGISTER_CLOSED"
	codeConflict             = "CONFLICT"
	codeInFlight             = "REQUEST_IN_FLIGHT"
	codeConfirmationRequired = "CONFIRMATION_REQUIRED"
	codeNotFound             = "NOT_FOUND"
	codeUpstream             = "UPSTREAM"
	codeUpstreamUnavailable  = "UPSTREAM_UNAVAILABLE"
	codeTimeout              = "TIMEOUT"
	codeUnauthorized         = "UNAUTHORIZED"
	codeBadRequest           = "BAD_REQUEST"
	codeInternal             = "INTERNAL"
)

// errorBody is the JSON body of every error response.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// validationCodes is checked in order; the specific causes come before ErrValidation.
var validationCodes = []struct {
	err  error
	code string
}{
	{apperrors.ErrInvalidAmount, codeInvalidAmount},
	{apperrors.ErrMissingField, codeMissingField},
	{apperrors.ErrExceedsBalance, codeExceedsBalance},
	{apperrors.ErrInsufficientMixComponents, codeInsufficientMix},
	{apperrors.ErrValidation, codeValidation},
}

var conflictCodes = []struct {
	err  error
	code string
}{
	{apperrors.ErrNotOpen, codeNotOpen},
	{apperrors.ErrAlreadyOpen, codeAlreadyOpen},
	{apperrors.ErrClosed, codeClosed},
	{apperrors.ErrRequestInFlight, codeInFlight},
}

// respondBindError answers a request whose body or query could not be decoded.
func respondBindError(c *gin.Context, logger *slog.Logger, err error) {
	logger.Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, errorBody{Error: "Invalid request format: " + err.Error(), Code: codeBadRequest})
}

// respondError maps a service error onto an HTTP status and logs it at the
// matching level. Messages from the backend are passed through verbatim.
func respondError(c *gin.Context, logger *slog.Logger, err error, action string) {
	var confirm *domain.ConfirmationRequiredError
	if errors.As(err, &confirm) {
		logger.Info("Close requires confirmation", slog.String("difference", confirm.Preview.Difference.String()))
		c.JSON(http.StatusPreconditionRequired, dto.ConfirmationRequiredResponse{
			Error:   "Confirm the closing figures to close the register",
			Code:    codeConfirmationRequired,
			Preview: dto.ToReconciliationResponse(&confirm.Preview),
		})
		return
	}

	var upstream *apperrors.UpstreamError
	switch {
	case errors.Is(err, apperrors.ErrBadUpstreamResponse):
		logger.Error("Backend sent an invalid response", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, errorBody{Error: "The backend sent an invalid response", Code: codeUpstreamUnavailable})

	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, errorBody{Error: err.Error(), Code: codeFor(err, validationCodes, codeValidation)})

	case errors.Is(err, apperrors.ErrConflict):
		logger.Warn("State conflict", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, errorBody{Error: err.Error(), Code: codeFor(err, conflictCodes, codeConflict)})

	case errors.Is(err, session.ErrNoSession):
		logger.Warn("No operator session", slog.String("action", action))
		c.JSON(http.StatusUnauthorized, errorBody{Error: "Unauthorized", Code: codeUnauthorized})

	case errors.As(err, &upstream) && upstream.IsClientError():
		logger.Warn("Backend rejected request", slog.String("action", action), slog.Int("upstream_status", upstream.StatusCode), slog.String("error", upstream.Message))
		c.JSON(upstream.StatusCode, errorBody{Error: upstream.Message, Code: codeUpstream})

	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, errorBody{Error: err.Error(), Code: codeNotFound})

	case isTimeout(err):
		logger.Error("Backend timed out", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusGatewayTimeout, errorBody{Error: "The backend did not answer in time", Code: codeTimeout})

	case upstream != nil, isUnreachable(err):
		logger.Error("Backend failure", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, errorBody{Error: "The backend is unavailable, try again", Code: codeUpstreamUnavailable})

	default:
		logger.Error("Unexpected error", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, errorBody{Error: "Failed to " + action, Code: codeInternal})
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout())
}

func isUnreachable(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func codeFor(err error, table []struct {
	err  error
	code string
}, fallback string) string {
	for _, entry := range table {
		if errors.Is(err, entry.err) {
			return entry.code
		}
	}
	return fallback
}
