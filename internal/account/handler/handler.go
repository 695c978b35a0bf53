// Package handler exposes the account lifecycle over HTTP. It is a thin
// pass-through: decode, delegate, translate the error code.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"innkeeper/internal/account/models"
	"innkeeper/internal/account/service"
	"innkeeper/internal/platform/middleware"
	"innkeeper/internal/transport/http/shared"
	"innkeeper/pkg/domain"
	dErrors "innkeeper/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// Service is the slice of the lifecycle manager this handler consumes.
type Service interface {
	CreateAccount(ctx context.Context, actorID domain.AccountID, params service.CreateAccountParams) (models.Account, error)
	DeleteAccount(ctx context.Context, actorID, targetID domain.AccountID) error
}

// Handler handles the /accounts endpoints.
type Handler struct {
	logger   *slog.Logger
	accounts Service
}

// New creates an account Handler.
func New(accounts Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, accounts: accounts}
}

// Register mounts the account routes. The caller applies the shared
// middleware chain, auth included.
func (h *Handler) Register(r chi.Router) {
	r.Post("/accounts", h.handleCreate)
	r.Delete("/accounts/{accountID}", h.handleDelete)
}

type createRequest struct {
	Email       string `json:"email"`
	Secret      string `json:"secret"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone,omitempty"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetActorID(ctx)

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid role"))
		return
	}

	account, err := h.accounts.CreateAccount(ctx, actorID, service.CreateAccountParams{
		Email:       req.Email,
		Secret:      req.Secret,
		Role:        role,
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "account creation failed",
			"request_id", middleware.GetRequestID(ctx),
			"code", dErrors.CodeOf(err),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, account)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetActorID(ctx)

	targetID, err := domain.ParseAccountID(chi.URLParam(r, "accountID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid account id"))
		return
	}

	if err := h.accounts.DeleteAccount(ctx, actorID, targetID); err != nil {
		h.logger.WarnContext(ctx, "account deletion failed",
			"request_id", middleware.GetRequestID(ctx),
			"target_id", targetID,
			"code", dErrors.CodeOf(err),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
