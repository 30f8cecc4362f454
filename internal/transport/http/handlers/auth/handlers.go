package authhandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cleanops/internal/domain/audit"
	"cleanops/internal/domain/auth"
	"cleanops/internal/transport/http/api"
	"cleanops/internal/transport/http/middleware"
	"cleanops/internal/transport/http/shared"
)

type Service interface {
	Signup(ctx context.Context, input auth.SignupInput) (auth.Administrator, error)
	Login(ctx context.Context, email, password string) (string, auth.Administrator, error)
	CheckCredentials(ctx context.Context, email, password string) (bool, error)
	ResetPassword(ctx context.Context, email, currentPassword, newPassword string) (auth.Administrator, error)
}

type Handler struct {
	Service     Service
	Audit       audit.Recorder
	AllowSignup bool
}

func NewHandler(service Service, recorder audit.Recorder, allowSignup bool) *Handler {
	return &Handler{Service: service, Audit: recorder, AllowSignup: allowSignup}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.HandleSignup)
		r.Post("/login", h.HandleLogin)
		r.Post("/check-credentials", h.HandleCheckCredentials)
		r.Post("/reset-password", h.HandleResetPassword)
	})
}

type signupRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	CompanyName    string `json:"companyName"`
	CompanyAddress string `json:"companyAddress"`
	CompanyPhone   string `json:"companyPhone"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetPasswordRequest struct {
	Email           string `json:"email"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if !h.AllowSignup {
		api.Fail(w, http.StatusForbidden, "signup_disabled", "self signup is disabled", requestID)
		return
	}

	var payload signupRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("username", payload.Username, "is required")
	v.Email("email", payload.Email)
	v.Password("password", payload.Password)
	v.Required("companyName", payload.CompanyName, "is required")
	if v.Reject(w, requestID) {
		return
	}

	admin, err := h.Service.Signup(r.Context(), auth.SignupInput{
		Name:           payload.Username,
		Email:          payload.Email,
		Password:       payload.Password,
		CompanyName:    payload.CompanyName,
		CompanyAddress: payload.CompanyAddress,
		CompanyPhone:   payload.CompanyPhone,
	})
	switch {
	case errors.Is(err, auth.ErrEmailExists):
		api.Fail(w, http.StatusBadRequest, "email_exists", "an administrator with this email already exists", requestID)
		return
	case errors.Is(err, auth.ErrCompanyExists):
		api.Fail(w, http.StatusBadRequest, "company_exists", "a company with this name already exists", requestID)
		return
	case err != nil:
		slog.Error("signup failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "signup_failed", "failed to create administrator", requestID)
		return
	}

	h.record(r, audit.Entry{
		CompanyID:  admin.CompanyID,
		ActorID:    admin.ID,
		Action:     audit.ActionSignup,
		EntityType: "administrator",
		EntityID:   admin.ID,
		After:      admin,
	})
	api.Created(w, admin, requestID)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	token, admin, err := h.Service.Login(r.Context(), payload.Email, payload.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		return
	}
	if err != nil {
		slog.Error("login failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", requestID)
		return
	}

	api.Success(w, map[string]any{
		"token": token,
		"admin": admin,
	}, requestID)
}

func (h *Handler) HandleCheckCredentials(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	valid, err := h.Service.CheckCredentials(r.Context(), payload.Email, payload.Password)
	if errors.Is(err, auth.ErrAdminNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "administrator not found", requestID)
		return
	}
	if err != nil {
		slog.Error("credential check failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "check_failed", "failed to check credentials", requestID)
		return
	}
	api.Success(w, map[string]bool{"valid": valid}, requestID)
}

func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Email("email", payload.Email)
	v.Required("currentPassword", payload.CurrentPassword, "is required")
	v.Password("newPassword", payload.NewPassword)
	if v.Reject(w, requestID) {
		return
	}

	admin, err := h.Service.ResetPassword(r.Context(), payload.Email, payload.CurrentPassword, payload.NewPassword)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		return
	}
	if err != nil {
		slog.Error("password reset failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "reset_failed", "failed to reset password", requestID)
		return
	}

	h.record(r, audit.Entry{
		CompanyID:  admin.CompanyID,
		ActorID:    admin.ID,
		Action:     audit.ActionPasswordReset,
		EntityType: "administrator",
		EntityID:   admin.ID,
	})
	api.Success(w, map[string]string{"status": "password_updated"}, requestID)
}

func (h *Handler) record(r *http.Request, entry audit.Entry) {
	if h.Audit == nil {
		return
	}
	entry.RequestID = middleware.GetRequestID(r.Context())
	entry.IP = shared.ClientIP(r)
	if err := h.Audit.Record(r.Context(), entry); err != nil {
		slog.Warn("audit failed", "action", entry.Action, "err", err)
	}
}
