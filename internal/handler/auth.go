package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/apex/internal/auth"
)

type AuthHandler struct {
	auth   *auth.Service
	logger *slog.Logger
}

func NewAuthHandler(authSvc *auth.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: authSvc, logger: logger}
}

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.auth.Signup(req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("user signed up", "email", user.Email)
	writeJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout()
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me returns the session user, or 401 once the session has lapsed.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := h.auth.CurrentUser()
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "no active session"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}
