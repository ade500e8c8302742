package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/water-supply/internal/application"
	"github.com/example/water-supply/internal/recurrence"
	"github.com/example/water-supply/internal/status"
	"github.com/example/water-supply/internal/supply"
)

type statusService interface {
	EvaluateDocument(ctx context.Context, raw []byte, at *time.Time) (application.Evaluation, error)
	StatusForHouse(ctx context.Context, houseID string, at *time.Time) (status.Status, error)
	SuppliesForHouse(ctx context.Context, houseID string, from, to *time.Time) (application.SupplyListing, error)
}

type StatusHandler struct {
	service   statusService
	location  *time.Location
	responder responder
	logger    *slog.Logger
}

// NewStatusHandler constructs a handler that reads query dates in loc.
func NewStatusHandler(service statusService, loc *time.Location, logger *slog.Logger) *StatusHandler {
	base := defaultLogger(logger)
	if loc == nil {
		loc = time.UTC
	}
	return &StatusHandler{service: service, location: loc, responder: newResponder(base), logger: base}
}

func (h *StatusHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "StatusHandler", operation, attrs...)
}

func (h *StatusHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	at, err := parseDateParam(r, "at", h.location)
	if err != nil {
		h.log(r.Context(), "Evaluate", "error_kind", "bad_request").ErrorContext(r.Context(), "invalid reference date", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	body, err := readDocument(w, r)
	if err != nil {
		h.log(r.Context(), "Evaluate", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to read profile document", "error", err)
		h.responder.writeError(r.Context(), w, bodyErrorStatus(err), err)
		return
	}

	logger := h.log(r.Context(), "Evaluate")

	result, err := h.service.EvaluateDocument(r.Context(), body, at)
	if err != nil {
		logger.ErrorContext(r.Context(), "evaluation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("house_id", result.Status.HouseID).InfoContext(r.Context(), "document evaluated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, evaluationResponse{Status: result.Status, Report: result.Report})
}

func (h *StatusHandler) ForHouse(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	houseID, ok := HouseIDFromContext(r.Context())
	if !ok || strings.TrimSpace(houseID) == "" {
		h.log(r.Context(), "ForHouse", "error_kind", "bad_request").ErrorContext(r.Context(), "missing house id for status")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidHouseID)
		return
	}

	at, err := parseDateParam(r, "at", h.location)
	if err != nil {
		h.log(r.Context(), "ForHouse", "error_kind", "bad_request").ErrorContext(r.Context(), "invalid reference date", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "ForHouse")

	result, err := h.service.StatusForHouse(r.Context(), houseID, at)
	if err != nil {
		logger.ErrorContext(r.Context(), "status resolution failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "status resolved")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, statusResponse{Status: result})
}

func (h *StatusHandler) Supplies(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	houseID, ok := HouseIDFromContext(r.Context())
	if !ok || strings.TrimSpace(houseID) == "" {
		h.log(r.Context(), "Supplies", "error_kind", "bad_request").ErrorContext(r.Context(), "missing house id for supplies")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidHouseID)
		return
	}

	from, err := parseDateParam(r, "from", h.location)
	if err == nil {
		var to *time.Time
		to, err = parseDateParam(r, "to", h.location)
		if err == nil {
			h.listSupplies(w, r, houseID, from, to)
			return
		}
	}

	h.log(r.Context(), "Supplies", "error_kind", "bad_request").ErrorContext(r.Context(), "invalid supply range", "error", err)
	h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
}

func (h *StatusHandler) listSupplies(w http.ResponseWriter, r *http.Request, houseID string, from, to *time.Time) {
	logger := h.log(r.Context(), "Supplies")

	listing, err := h.service.SuppliesForHouse(r.Context(), houseID, from, to)
	if err != nil {
		logger.ErrorContext(r.Context(), "supply listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "supplies listed", "count", len(listing.Occurrences))
	h.responder.writeJSON(r.Context(), w, http.StatusOK, suppliesResponse{
		Supplies: listing.Occurrences,
		Overlaps: listing.Overlaps,
	})
}

func bodyErrorStatus(err error) int {
	if errors.Is(err, errBodyTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

type evaluationResponse struct {
	Status status.Status      `json:"status"`
	Report supply.ParseReport `json:"report"`
}

type statusResponse struct {
	Status status.Status `json:"status"`
}

type suppliesResponse struct {
	Supplies []recurrence.Occurrence `json:"supplies"`
	Overlaps []recurrence.Overlap    `json:"overlaps,omitempty"`
}
