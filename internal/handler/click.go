package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/penshort/linkstats/internal/auth"
	"github.com/penshort/linkstats/internal/handler/dto"
	"github.com/penshort/linkstats/internal/model"
	"github.com/penshort/linkstats/internal/service"
)

// ClickRecorder queues a click for ingestion.
type ClickRecorder interface {
	Record(ctx context.Context, in service.ClickInput, caller *model.AuthContext) (string, error)
}

// ClickHandler accepts clicks from the redirect edge.
type ClickHandler struct {
	svc    ClickRecorder
	logger *slog.Logger
}

// NewClickHandler creates a new ClickHandler.
func NewClickHandler(svc ClickRecorder, logger *slog.Logger) *ClickHandler {
	return &ClickHandler{
		svc:    svc,
		logger: logger.With("component", "handler.click"),
	}
}

// Record handles POST /api/v1/clicks. The click is stored asynchronously,
// so a 202 means queued, not yet visible in reports.
func (h *ClickHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	eventID, err := h.svc.Record(r.Context(), req.ToInput(), auth.AuthFromContext(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidClick):
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		case errors.Is(err, service.ErrLinkNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "link not found")
		case errors.Is(err, service.ErrClickPublisher):
			h.logger.Error("click publish failed", "link_id", req.LinkID, "error", err)
			writeError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Click stream unavailable")
		default:
			h.logger.Error("click record failed", "link_id", req.LinkID, "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to record click")
		}
		return
	}

	writeJSON(w, http.StatusAccepted, dto.RecordClickResponse{EventID: eventID, Status: "accepted"})
}
