package services

import (
	"context"
	"log/slog"

	portssvc "github.com/SscSPs/caja_backoffice/internal/core/ports/services"
	"github.com/SscSPs/caja_backoffice/internal/core/session"
	"github.com/SscSPs/caja_backoffice/internal/middleware"
	"github.com/SscSPs/caja_backoffice/internal/utils/inflight"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Events portssvc.EventTracker
	Guard  *inflight.Guard
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogWarn logs a warning with consistent formatting
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Warn(msg, keyvals...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// Track sends an analytics event attributed to the operator, if tracking is configured.
func (s *BaseService) Track(sess session.Context, event string, props map[string]any) {
	if s.Events == nil {
		return
	}
	s.Events.Enqueue(sess.OperatorID, event, props)
}

// exclusive runs fn under the operator's in-flight guard for action.
func (s *BaseService) exclusive(sess session.Context, action string, fn func() error) error {
	if s.Guard == nil {
		return fn()
	}
	return s.Guard.Do(inflight.Key(sess.OperatorID, action), fn)
}
