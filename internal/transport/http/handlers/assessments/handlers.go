// Package assessmentshandler is the employee-facing wizard surface: fetch
// the own record, save drafts, and submit. The wizard's stages are a client
// concern; the server persists whole working copies.
package assessmentshandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"appraisal/internal/domain/assessment"
	"appraisal/internal/domain/registry"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
	"appraisal/internal/transport/http/shared"
)

type Handler struct {
	Registry *registry.Registry
}

func NewHandler(reg *registry.Registry) *Handler {
	return &Handler{Registry: reg}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/assessments", func(r chi.Router) {
		r.Get("/me", h.handleGetOwn)
		r.Put("/{assessmentID}/draft", h.handleSaveDraft)
		r.Post("/{assessmentID}/submit", h.handleSubmit)
	})
}

func (h *Handler) handleGetOwn(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok || !identity.IsStaff() {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "staff login required", middleware.GetRequestID(r.Context()))
		return
	}

	rec, err := h.Registry.GetByEmployeeEmail(identity.Email)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "no assessment is assigned to this email", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, sanitize(rec), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.ownRecord(w, r)
	if !ok {
		return
	}

	var working assessment.Assessment
	if err := json.NewDecoder(r.Body).Decode(&working); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	if err := assessment.ApplySelfEdits(&rec, working, time.Now()); err != nil {
		if !shared.RespondDomainError(w, err, middleware.GetRequestID(r.Context())) {
			api.Fail(w, http.StatusInternalServerError, "save_failed", "failed to save draft", middleware.GetRequestID(r.Context()))
		}
		return
	}

	if err := h.Registry.Replace(r.Context(), rec); err != nil {
		shared.RespondSyncError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, sanitize(rec), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.ownRecord(w, r)
	if !ok {
		return
	}

	if err := assessment.Submit(&rec, time.Now()); err != nil {
		if !shared.RespondDomainError(w, err, middleware.GetRequestID(r.Context())) {
			api.Fail(w, http.StatusInternalServerError, "submit_failed", "failed to submit assessment", middleware.GetRequestID(r.Context()))
		}
		return
	}

	if err := h.Registry.Replace(r.Context(), rec); err != nil {
		shared.RespondSyncError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, sanitize(rec), middleware.GetRequestID(r.Context()))
}

// ownRecord loads the addressed record and verifies the caller is the
// owning employee.
func (h *Handler) ownRecord(w http.ResponseWriter, r *http.Request) (assessment.Assessment, bool) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok || !identity.IsStaff() {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "staff login required", middleware.GetRequestID(r.Context()))
		return assessment.Assessment{}, false
	}

	id := chi.URLParam(r, "assessmentID")
	rec, err := h.Registry.Get(id)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "assessment not found", middleware.GetRequestID(r.Context()))
		return assessment.Assessment{}, false
	}
	if !assessment.SameEmail(rec.EmployeeDetails.Email, identity.Email) {
		api.Fail(w, http.StatusForbidden, "forbidden", "this assessment belongs to another employee", middleware.GetRequestID(r.Context()))
		return assessment.Assessment{}, false
	}
	return rec, true
}

// sanitize strips the manager password before a record leaves the API.
func sanitize(rec assessment.Assessment) assessment.Assessment {
	rec.ManagerPassword = ""
	return rec
}
