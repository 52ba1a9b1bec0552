// Package reviewhandler is the manager/admin console: the submissions
// queue, manager-field edits, finalization, the printable report and the
// advisory AI summary.
package reviewhandler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"appraisal/internal/domain/assessment"
	"appraisal/internal/domain/auth"
	"appraisal/internal/domain/registry"
	"appraisal/internal/domain/report"
	"appraisal/internal/platform/ai"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
	"appraisal/internal/transport/http/shared"
)

type Handler struct {
	Registry   *registry.Registry
	Summarizer ai.Summarizer
}

func NewHandler(reg *registry.Registry, summarizer ai.Summarizer) *Handler {
	return &Handler{Registry: reg, Summarizer: summarizer}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/review", func(r chi.Router) {
		r.Get("/queue", h.handleQueue)
		r.Get("/{assessmentID}", h.handleGet)
		r.Put("/{assessmentID}", h.handleUpdate)
		r.Post("/{assessmentID}/finalize", h.handleFinalize)
		r.Get("/{assessmentID}/report.pdf", h.handleReport)
		r.Post("/{assessmentID}/summary", h.handleSummary)
	})
}

// handleQueue lists submitted and reviewed records within the caller's
// scope. Drafts stay private to their employees.
func (h *Handler) handleQueue(w http.ResponseWriter, r *http.Request) {
	identity, ok := assessorIdentity(w, r)
	if !ok {
		return
	}

	var queue []assessment.Assessment
	for _, rec := range auth.Scope(identity, h.Registry.All()) {
		if rec.Status == assessment.StatusDraft {
			continue
		}
		queue = append(queue, sanitize(rec))
	}
	api.Success(w, queue, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	_, rec, ok := h.scopedRecord(w, r)
	if !ok {
		return
	}
	api.Success(w, sanitize(rec), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	_, rec, ok := h.scopedRecord(w, r)
	if !ok {
		return
	}

	var working assessment.Assessment
	if err := json.NewDecoder(r.Body).Decode(&working); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	if err := assessment.ApplyManagerEdits(&rec, working, time.Now()); err != nil {
		if !shared.RespondDomainError(w, err, middleware.GetRequestID(r.Context())) {
			api.Fail(w, http.StatusInternalServerError, "update_failed", "failed to update review", middleware.GetRequestID(r.Context()))
		}
		return
	}

	if err := h.Registry.Replace(r.Context(), rec); err != nil {
		shared.RespondSyncError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, sanitize(rec), middleware.GetRequestID(r.Context()))
}

// handleFinalize applies an optional final working copy of the manager
// fields, then runs the submitted-to-reviewed transition.
func (h *Handler) handleFinalize(w http.ResponseWriter, r *http.Request) {
	_, rec, ok := h.scopedRecord(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		var working assessment.Assessment
		if err := json.Unmarshal(body, &working); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
			return
		}
		if err := assessment.ApplyManagerEdits(&rec, working, time.Now()); err != nil {
			if !shared.RespondDomainError(w, err, middleware.GetRequestID(r.Context())) {
				api.Fail(w, http.StatusInternalServerError, "finalize_failed", "failed to finalize review", middleware.GetRequestID(r.Context()))
			}
			return
		}
	}

	if err := assessment.Finalize(&rec, time.Now()); err != nil {
		if !shared.RespondDomainError(w, err, middleware.GetRequestID(r.Context())) {
			api.Fail(w, http.StatusInternalServerError, "finalize_failed", "failed to finalize review", middleware.GetRequestID(r.Context()))
		}
		return
	}

	if err := h.Registry.Replace(r.Context(), rec); err != nil {
		shared.RespondSyncError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, sanitize(rec), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	_, rec, ok := h.scopedRecord(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WritePDF(&buf, rec); err != nil {
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to render report", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="appraisal-`+rec.ID+`.pdf"`)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	_, rec, ok := h.scopedRecord(w, r)
	if !ok {
		return
	}

	if h.Summarizer == nil {
		api.Fail(w, http.StatusServiceUnavailable, "ai_unavailable", "ai summary is not configured", middleware.GetRequestID(r.Context()))
		return
	}

	text, err := h.Summarizer.Summarize(r.Context(), rec)
	if err != nil {
		if errors.Is(err, ai.ErrNotConfigured) {
			api.Fail(w, http.StatusServiceUnavailable, "ai_unavailable", "ai summary is not configured", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusBadGateway, "ai_failed", "summary generation failed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"summary": text}, middleware.GetRequestID(r.Context()))
}

func assessorIdentity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok || (!identity.IsManager() && !identity.IsAdmin()) {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "manager or admin login required", middleware.GetRequestID(r.Context()))
		return auth.Identity{}, false
	}
	return identity, true
}

func (h *Handler) scopedRecord(w http.ResponseWriter, r *http.Request) (auth.Identity, assessment.Assessment, bool) {
	identity, ok := assessorIdentity(w, r)
	if !ok {
		return auth.Identity{}, assessment.Assessment{}, false
	}

	rec, err := h.Registry.Get(chi.URLParam(r, "assessmentID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "assessment not found", middleware.GetRequestID(r.Context()))
		return auth.Identity{}, assessment.Assessment{}, false
	}
	if !identity.CanReview(rec) {
		api.Fail(w, http.StatusForbidden, "forbidden", "this assessment is assigned to another manager", middleware.GetRequestID(r.Context()))
		return auth.Identity{}, assessment.Assessment{}, false
	}
	return identity, rec, true
}

func sanitize(rec assessment.Assessment) assessment.Assessment {
	rec.ManagerPassword = ""
	return rec
}
