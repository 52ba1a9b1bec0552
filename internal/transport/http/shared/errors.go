package shared

import (
	"errors"
	"net/http"

	"appraisal/internal/domain/assessment"
	"appraisal/internal/domain/registry"
	"appraisal/internal/transport/http/api"
)

// RespondDomainError translates domain sentinels into envelope codes. It
// reports whether the error was handled; unknown errors fall through so the
// caller can pick its own code.
func RespondDomainError(w http.ResponseWriter, err error, requestID string) bool {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "assessment not found", requestID)
	case errors.Is(err, assessment.ErrMissingName):
		api.Fail(w, http.StatusBadRequest, "missing_name", err.Error(), requestID)
	case errors.Is(err, assessment.ErrMissingFinalGrade):
		api.Fail(w, http.StatusBadRequest, "missing_final_grade", err.Error(), requestID)
	case errors.Is(err, assessment.ErrInvalidRating):
		api.Fail(w, http.StatusBadRequest, "invalid_rating", err.Error(), requestID)
	case errors.Is(err, assessment.ErrNotDraft),
		errors.Is(err, assessment.ErrNotSubmitted),
		errors.Is(err, assessment.ErrReviewed):
		api.Fail(w, http.StatusConflict, "invalid_state", err.Error(), requestID)
	case errors.Is(err, registry.ErrStaleRecord):
		api.Fail(w, http.StatusConflict, "sync_conflict", "the record was changed elsewhere; the registry has been reloaded", requestID)
	default:
		return false
	}
	return true
}

// RespondSyncError covers remote store failures after a mutation: the edit
// is already saved in memory and the local cache, only the cloud push
// failed. Resync happens via the explicit force-sync action.
func RespondSyncError(w http.ResponseWriter, err error, requestID string) {
	if RespondDomainError(w, err, requestID) {
		return
	}
	api.Fail(w, http.StatusBadGateway, "sync_failed",
		"database sync failed: "+err.Error()+" (changes are saved locally but not in the cloud)", requestID)
}
