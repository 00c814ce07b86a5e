package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"medcms/apperrors"
)

// Transactor runs fn as one atomic unit of work. database.TxManager
// implements it.
type Transactor interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// logFailure logs expected domain failures quietly and everything else at Error.
func logFailure(logger *zap.Logger, msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrInvalidInput):
		logger.Info(msg, fields...)
	default:
		logger.Error(msg, fields...)
	}
}

func reasonOr(reason *string, fallback string) *string {
	if reason != nil && *reason != "" {
		return reason
	}
	return &fallback
}

func strPtr(s string) *string {
	return &s
}
