package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/water-supply/internal/logging"
	"github.com/example/water-supply/internal/recurrence"
	"github.com/example/water-supply/internal/supply"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	return logging.OrDefault(logger)
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	return logging.Component(ctx, base, "service", serviceName, operation, attrs...)
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, supply.ErrMalformedDocument):
		return "malformed_document"
	case errors.Is(err, supply.ErrInvalidValidityWindow):
		return "invalid_validity_window"
	case errors.Is(err, recurrence.ErrInvalidStartTime):
		return "invalid_start_time"
	case errors.Is(err, recurrence.ErrInvalidWindow):
		return "invalid_range"
	case errors.Is(err, recurrence.ErrRangeTooLarge):
		return "range_too_large"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}
