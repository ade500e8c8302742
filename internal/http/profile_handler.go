package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/water-supply/internal/application"
	"github.com/example/water-supply/internal/persistence"
	"github.com/example/water-supply/internal/supply"
)

type profileService interface {
	RegisterProfile(ctx context.Context, houseID string, raw []byte) (application.Registration, error)
	ProfileForHouse(ctx context.Context, houseID string) (persistence.ProfileRecord, error)
	ListProfiles(ctx context.Context) ([]persistence.ProfileRecord, error)
	RemoveProfile(ctx context.Context, houseID string) error
}

type ProfileHandler struct {
	service   profileService
	responder responder
	logger    *slog.Logger
}

func NewProfileHandler(service profileService, logger *slog.Logger) *ProfileHandler {
	base := defaultLogger(logger)
	return &ProfileHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ProfileHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ProfileHandler", operation, attrs...)
}

func (h *ProfileHandler) Put(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	houseID, ok := HouseIDFromContext(r.Context())
	if !ok || strings.TrimSpace(houseID) == "" {
		h.log(r.Context(), "Put", "error_kind", "bad_request").ErrorContext(r.Context(), "missing house id for profile upload")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidHouseID)
		return
	}

	body, err := readDocument(w, r)
	if err != nil {
		h.log(r.Context(), "Put", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to read profile document", "error", err)
		h.responder.writeError(r.Context(), w, bodyErrorStatus(err), err)
		return
	}

	logger := h.log(r.Context(), "Put")

	result, err := h.service.RegisterProfile(r.Context(), houseID, body)
	if err != nil {
		logger.ErrorContext(r.Context(), "profile registration failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("profile_id", result.Record.ID).InfoContext(r.Context(), "profile registered")
	w.Header().Set("ETag", etag(result.Record.Digest))
	h.responder.writeJSON(r.Context(), w, http.StatusOK, profileResponse{
		Profile: toProfileDTO(result.Record),
		Report:  result.Report,
	})
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	houseID, ok := HouseIDFromContext(r.Context())
	if !ok || strings.TrimSpace(houseID) == "" {
		h.log(r.Context(), "Get", "error_kind", "bad_request").ErrorContext(r.Context(), "missing house id for profile fetch")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidHouseID)
		return
	}

	logger := h.log(r.Context(), "Get")

	record, err := h.service.ProfileForHouse(r.Context(), houseID)
	if err != nil {
		logger.ErrorContext(r.Context(), "profile fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	tag := etag(record.Digest)
	if match := r.Header.Get("If-None-Match"); match != "" && match == tag {
		w.Header().Set("ETag", tag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("ETag", tag)
	w.Header().Set("Last-Modified", record.UpdatedAt.UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(record.Document); err != nil {
		logger.ErrorContext(r.Context(), "failed to write profile document", "error", err)
	}
}

func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	houseID, ok := HouseIDFromContext(r.Context())
	if !ok || strings.TrimSpace(houseID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing house id for profile delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidHouseID)
		return
	}

	logger := h.log(r.Context(), "Delete")
	if err := h.service.RemoveProfile(r.Context(), houseID); err != nil {
		logger.ErrorContext(r.Context(), "profile delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "profile deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")

	records, err := h.service.ListProfiles(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "profile listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	profiles := make([]profileDTO, 0, len(records))
	for _, record := range records {
		profiles = append(profiles, toProfileDTO(record))
	}
	logger.InfoContext(r.Context(), "profiles listed", "count", len(profiles))
	h.responder.writeJSON(r.Context(), w, http.StatusOK, profileListResponse{Profiles: profiles})
}

func etag(digest string) string {
	if digest == "" {
		return ""
	}
	return `"` + digest + `"`
}

type profileDTO struct {
	ID        string `json:"id"`
	HouseID   string `json:"houseID"`
	Digest    string `json:"digest"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type profileResponse struct {
	Profile profileDTO         `json:"profile"`
	Report  supply.ParseReport `json:"report"`
}

type profileListResponse struct {
	Profiles []profileDTO `json:"profiles"`
}

func toProfileDTO(record persistence.ProfileRecord) profileDTO {
	return profileDTO{
		ID:        record.ID,
		HouseID:   record.HouseID,
		Digest:    record.Digest,
		CreatedAt: record.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: record.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}
