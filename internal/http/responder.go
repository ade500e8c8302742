package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/water-supply/internal/application"
	"github.com/example/water-supply/internal/recurrence"
	"github.com/example/water-supply/internal/supply"
)

var (
	errBadRequestBody  = errors.New("request body could not be read")
	errInvalidHouseID  = errors.New("house id is required")
	errInvalidDate     = errors.New("dates must be YYYY-MM-DD or RFC 3339")
	errBodyTooLarge    = errors.New("request body is too large")
	errStorageDegraded = errors.New("storage is unavailable")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := statusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	var malformed *supply.MalformedDocumentError
	var vErr *application.ValidationError

	switch {
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{
			ErrorCode: "NOT_FOUND",
			Message:   "no supply profile is stored for this house",
		})
	case errors.As(err, &malformed):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "MALFORMED_DOCUMENT",
			Message:   malformed.Error(),
			Field:     malformed.Field,
		})
	case errors.Is(err, supply.ErrInvalidValidityWindow):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "INVALID_VALIDITY_WINDOW",
			Message:   err.Error(),
			Field:     supply.KeyValidityDateTime,
		})
	case errors.Is(err, recurrence.ErrInvalidStartTime):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "INVALID_START_TIME",
			Message:   err.Error(),
			Field:     supply.KeyScheduleStartTime,
		})
	case errors.Is(err, recurrence.ErrRangeTooLarge):
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{
			ErrorCode: "RANGE_TOO_LARGE",
			Message:   "narrow the listing with from and to",
		})
	case errors.Is(err, recurrence.ErrInvalidWindow):
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{
			ErrorCode: "INVALID_RANGE",
			Message:   "to must not precede from",
		})
	case errors.As(err, &vErr):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "VALIDATION_FAILED",
			Message:   statusMessage(http.StatusUnprocessableEntity),
			Errors:    vErr.FieldErrors,
		})
	default:
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: statusMessage(http.StatusInternalServerError)})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "the request is invalid"
	case http.StatusNotFound:
		return "the requested resource was not found"
	case http.StatusUnprocessableEntity:
		return "the request content is invalid"
	case http.StatusServiceUnavailable:
		return "the service is unavailable"
	default:
		return "an internal server error occurred"
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Field     string            `json:"field,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
}
