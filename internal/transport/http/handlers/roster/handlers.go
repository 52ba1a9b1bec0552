// Package rosterhandler is the admin-only staff registry surface: the full
// roster, CSV bulk import and export, JSON backup and restore, force sync
// and record deletion.
package rosterhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"appraisal/internal/domain/assessment"
	"appraisal/internal/domain/registry"
	"appraisal/internal/domain/roster"
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
	r.Route("/roster", func(r chi.Router) {
		r.Use(requireAdmin)
		r.Get("/", h.handleList)
		r.Post("/import", h.handleImport)
		r.Get("/export.csv", h.handleExport)
		r.Get("/backup", h.handleBackup)
		r.Post("/restore", h.handleRestore)
		r.Post("/sync", h.handleForceSync)
		r.Delete("/{assessmentID}", h.handleDelete)
	})
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := middleware.GetIdentity(r.Context())
		if !ok || !identity.IsAdmin() {
			api.Fail(w, http.StatusForbidden, "forbidden", "admin login required", middleware.GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	records := h.Registry.All()
	out := make([]assessment.Assessment, 0, len(records))
	for _, rec := range records {
		rec.ManagerPassword = ""
		out = append(out, rec)
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

type importResult struct {
	Imported int                 `json:"imported"`
	Created  int                 `json:"created"`
	Updated  int                 `json:"updated"`
	Skipped  []roster.SkippedRow `json:"skipped"`
}

// handleImport takes the raw CSV as the request body. Malformed rows are
// skipped and reported per line next to the aggregate count; they never
// abort the batch.
func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	rows, skipped, err := roster.ParseRoster(r.Body)
	if err != nil {
		// Skip reasons gathered before the failure still help the admin fix
		// the file, so they ride along as error details.
		api.FailWithDetails(w, http.StatusBadRequest, "invalid_roster", err.Error(), skipped, middleware.GetRequestID(r.Context()))
		return
	}

	created, updated, err := h.Registry.ImportRoster(r.Context(), rows)
	if err != nil {
		shared.RespondSyncError(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if skipped == nil {
		skipped = []roster.SkippedRow{}
	}
	api.Success(w, importResult{
		Imported: created + updated,
		Created:  created,
		Updated:  updated,
		Skipped:  skipped,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="appraisals.csv"`)
	if err := roster.ExportCSV(w, h.Registry.All()); err != nil {
		// Headers are out; nothing sensible left to send.
		return
	}
}

func (h *Handler) handleBackup(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="appraisal-backup.json"`)
	_ = roster.WriteBackup(w, h.Registry.All())
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	records, err := roster.ReadBackup(r.Body)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_backup", err.Error(), middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Registry.RestoreBackup(r.Context(), records); err != nil {
		shared.RespondSyncError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]int{"restored": len(records)}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleForceSync(w http.ResponseWriter, r *http.Request) {
	if err := h.Registry.ForceSync(r.Context()); err != nil {
		shared.RespondSyncError(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{"status": "synced"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "assessmentID")
	if err := h.Registry.Remove(r.Context(), id); err != nil {
		if !shared.RespondDomainError(w, err, middleware.GetRequestID(r.Context())) {
			shared.RespondSyncError(w, err, middleware.GetRequestID(r.Context()))
		}
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}
