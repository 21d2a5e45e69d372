package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/costshare_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/costshare_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/costshare_ledger/internal/middleware"
	"github.com/SscSPs/costshare_ledger/internal/platform/metrics"
	"github.com/jackc/pgx/v5"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Metrics *metrics.Metrics
	Clock   func() time.Time
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

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// Now returns the service clock in UTC.
func (s *BaseService) Now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}

// withTx runs fn inside a transaction and commits when fn succeeds.
// Any error, including a panic unwinding through fn, rolls the transaction back.
func (s *BaseService) withTx(ctx context.Context, tm portsrepo.TransactionManager, fn func(tx pgx.Tx) error) error {
	tx, err := tm.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if rbErr := tm.Rollback(ctx, tx); rbErr != nil {
			s.LogError(ctx, rbErr, "Failed to roll back transaction")
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tm.Commit(ctx, tx)
}

// requireOrganizer fails with ErrForbidden unless userID organizes the activity.
func requireOrganizer(organizerID, userID string) error {
	if organizerID != userID {
		return fmt.Errorf("%w: only the organizer may perform this action", apperrors.ErrForbidden)
	}
	return nil
}
