package http

import (
	"context"
	"log/slog"

	"github.com/example/water-supply/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	return logging.OrDefault(logger)
}

// handlerLogger tags the request logger with the handler and operation, plus
// the house id when the route resolved one.
func handlerLogger(ctx context.Context, fallback *slog.Logger, handlerName, operation string, attrs ...any) *slog.Logger {
	if houseID, ok := HouseIDFromContext(ctx); ok && houseID != "" {
		attrs = append([]any{"house_id", houseID}, attrs...)
	}
	return logging.Component(ctx, fallback, "handler", handlerName, operation, attrs...)
}
