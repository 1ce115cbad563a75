package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/penshort/linkstats/internal/auth"
	"github.com/penshort/linkstats/internal/handler/dto"
	"github.com/penshort/linkstats/internal/model"
	"github.com/penshort/linkstats/internal/service"
)

// ReportGetter produces dashboard reports.
type ReportGetter interface {
	GetReport(ctx context.Context, scope model.ReportScope, days int) (*model.Report, error)
}

// ReportHandler serves the report endpoints.
type ReportHandler struct {
	svc    ReportGetter
	logger *slog.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(svc ReportGetter, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		svc:    svc,
		logger: logger.With("component", "handler.report"),
	}
}

// GetLinkReport handles GET /api/v1/links/{id}/report.
func (h *ReportHandler) GetLinkReport(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, model.ScopeKindLink, chi.URLParam(r, "id"))
}

// GetCampaignReport handles GET /api/v1/campaigns/{id}/report.
func (h *ReportHandler) GetCampaignReport(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, model.ScopeKindCampaign, chi.URLParam(r, "id"))
}

// GetAccountReport handles GET /api/v1/report, covering every active link
// of the caller.
func (h *ReportHandler) GetAccountReport(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, model.ScopeKindAccount, "")
}

func (h *ReportHandler) serve(w http.ResponseWriter, r *http.Request, kind model.ScopeKind, id string) {
	caller := auth.AuthFromContext(r.Context())
	if caller == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	query, err := dto.ParseReportQuery(r.URL.Query().Get)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_DAYS", "days must be an integer")
		return
	}

	scope := model.ReportScope{Kind: kind, ID: id}
	switch {
	case !caller.IsAdmin():
		scope.OwnerID = caller.UserID
		if kind == model.ScopeKindAccount {
			scope.ID = caller.UserID
		}
	case kind == model.ScopeKindAccount:
		scope.ID = caller.UserID
		if query.OwnerID != "" {
			scope.ID = query.OwnerID
		}
	}
	if scope.ID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Scope ID is required")
		return
	}

	report, err := h.svc.GetReport(r.Context(), scope, query.Days)
	if err != nil {
		h.handleServiceError(w, r, scope, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (h *ReportHandler) handleServiceError(w http.ResponseWriter, r *http.Request, scope model.ReportScope, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidWindow):
		writeError(w, http.StatusBadRequest, "INVALID_DAYS", err.Error())
	case errors.Is(err, service.ErrScopeNotFound):
		// Foreign scopes are indistinguishable from missing ones.
		writeError(w, http.StatusNotFound, "NOT_FOUND", string(scope.Kind)+" not found")
	default:
		h.logger.Error("report generation failed",
			"scope", scope.Kind,
			"scope_id", scope.ID,
			"key_id", auth.KeyIDFromContext(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate report")
	}
}
