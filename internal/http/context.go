package http

import (
	"context"
	"log/slog"

	"github.com/example/water-supply/internal/logging"
)

type contextKey string

const houseIDContextKey contextKey = "house_id"

// ContextWithLogger attaches a request scoped logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext returns the request scoped logger, if any.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}

// ContextWithHouseID injects the house identifier resolved from the request path.
func ContextWithHouseID(ctx context.Context, houseID string) context.Context {
	return context.WithValue(ctx, houseIDContextKey, houseID)
}

// HouseIDFromContext extracts a house identifier previously associated with the context.
func HouseIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(houseIDContextKey).(string)
	return id, ok
}
