package authhandler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"appraisal/internal/domain/auth"
	"appraisal/internal/platform/requestctx"
	"appraisal/internal/transport/http/api"
)

type Handler struct {
	Gate       auth.Authenticator
	Secret     string
	SessionTTL time.Duration
}

func NewHandler(gate auth.Authenticator, secret string, sessionTTL time.Duration) *Handler {
	return &Handler{Gate: gate, Secret: secret, SessionTTL: sessionTTL}
}

type staffLoginRequest struct {
	Email string `json:"email"`
}

type assessorLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string    `json:"token"`
	Role  auth.Role `json:"role"`
	Email string    `json:"email"`
}

// HandleStaffLogin is the email-only employee path. Its failure message
// names the missing email; the assessor path never does.
func (h *Handler) HandleStaffLogin(w http.ResponseWriter, r *http.Request) {
	var payload staffLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	identity, err := h.Gate.AuthenticateStaff(r.Context(), payload.Email)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "email_not_found",
			fmt.Sprintf("email %q not found in registry", payload.Email), requestctx.GetRequestID(r.Context()))
		return
	}

	h.issue(w, r, identity)
}

func (h *Handler) HandleAssessorLogin(w http.ResponseWriter, r *http.Request) {
	var payload assessorLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestctx.GetRequestID(r.Context()))
		return
	}

	identity, err := h.Gate.AuthenticateAssessor(r.Context(), payload.Email, payload.Password)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestctx.GetRequestID(r.Context()))
		return
	}

	h.issue(w, r, identity)
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request, identity auth.Identity) {
	token, err := auth.GenerateToken(h.Secret, identity, h.SessionTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestctx.GetRequestID(r.Context()))
		return
	}
	api.Success(w, loginResponse{Token: token, Role: identity.Role, Email: identity.Email}, requestctx.GetRequestID(r.Context()))
}
