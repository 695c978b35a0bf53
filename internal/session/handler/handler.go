// Package handler exposes the session endpoints over HTTP. Login is open;
// logout authenticates itself by validating the token it revokes, so both
// routes mount outside the auth middleware.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"innkeeper/internal/platform/middleware"
	"innkeeper/internal/session"
	"innkeeper/internal/transport/http/shared"
	dErrors "innkeeper/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// Service is the slice of the session service this handler consumes.
type Service interface {
	Login(ctx context.Context, email, secret string) (session.Session, error)
	Logout(ctx context.Context, tokenString string) error
}

// Handler handles the /sessions endpoints.
type Handler struct {
	logger   *slog.Logger
	sessions Service
}

func New(sessions Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, sessions: sessions}
}

// Register mounts the session routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/sessions", h.handleLogin)
	r.Delete("/sessions", h.handleLogout)
}

type loginRequest struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	sess, err := h.sessions.Login(ctx, req.Email, req.Secret)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed",
			"request_id", middleware.GetRequestID(ctx),
			"code", dErrors.CodeOf(err))
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, sess)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tokenString, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || tokenString == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeNotAuthenticated, "missing bearer token"))
		return
	}

	if err := h.sessions.Logout(ctx, tokenString); err != nil {
		h.logger.WarnContext(ctx, "logout failed",
			"request_id", middleware.GetRequestID(ctx),
			"code", dErrors.CodeOf(err))
		shared.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
