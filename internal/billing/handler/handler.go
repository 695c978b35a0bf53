// Package handler exposes invoice provisioning and payment settings over
// HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"innkeeper/internal/billing/models"
	"innkeeper/internal/billing/service"
	"innkeeper/internal/platform/middleware"
	"innkeeper/internal/transport/http/shared"
	"innkeeper/pkg/domain"
	dErrors "innkeeper/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// Service is the slice of the billing service this handler consumes.
type Service interface {
	CreateInvoice(ctx context.Context, params service.CreateInvoiceParams) (models.InvoiceWithItems, error)
	SetDefaultPaymentMethod(ctx context.Context, ownerID domain.AccountID, methodID domain.PaymentMethodID) error
	GetOrCreateSettings(ctx context.Context, ownerID domain.AccountID) (models.BillingSettings, error)
	LoadPaymentForm(ctx context.Context, ownerID domain.AccountID) (service.PaymentForm, error)
}

// Handler handles the /billing endpoints.
type Handler struct {
	logger  *slog.Logger
	billing Service
}

// New creates a billing Handler.
func New(billing Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, billing: billing}
}

// Register mounts the billing routes. The caller applies the shared
// middleware chain, auth included.
func (h *Handler) Register(r chi.Router) {
	r.Post("/invoices", h.handleCreateInvoice)
	r.Put("/payment-methods/{methodID}/default", h.handleSetDefault)
	r.Get("/billing/settings", h.handleSettings)
	r.Get("/billing/payment-form", h.handlePaymentForm)
}

type invoiceItemRequest struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
}

type createInvoiceRequest struct {
	OwnerID string               `json:"owner_id"`
	Amount  int64                `json:"amount"`
	DueDate time.Time            `json:"due_date"`
	Items   []invoiceItemRequest `json:"items"`
}

func (h *Handler) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	ownerID, err := domain.ParseAccountID(req.OwnerID)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid owner id"))
		return
	}

	params := service.CreateInvoiceParams{
		OwnerID: ownerID,
		Amount:  domain.Money(req.Amount),
		DueDate: req.DueDate,
	}
	for _, item := range req.Items {
		params.Items = append(params.Items, service.ItemParams{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   domain.Money(item.UnitPrice),
		})
	}

	invoice, err := h.billing.CreateInvoice(ctx, params)
	if err != nil {
		h.logger.WarnContext(ctx, "invoice provisioning failed",
			"request_id", middleware.GetRequestID(ctx),
			"owner_id", ownerID,
			"code", dErrors.CodeOf(err),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, invoice)
}

func (h *Handler) handleSetDefault(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetActorID(ctx)

	methodID, err := domain.ParsePaymentMethodID(chi.URLParam(r, "methodID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid payment method id"))
		return
	}

	if err := h.billing.SetDefaultPaymentMethod(ctx, actorID, methodID); err != nil {
		h.logger.WarnContext(ctx, "default payment method change failed",
			"request_id", middleware.GetRequestID(ctx),
			"method_id", methodID,
			"code", dErrors.CodeOf(err),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetActorID(ctx)

	settings, err := h.billing.GetOrCreateSettings(ctx, actorID)
	if err != nil {
		h.logger.WarnContext(ctx, "settings lookup failed",
			"request_id", middleware.GetRequestID(ctx),
			"code", dErrors.CodeOf(err),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, settings)
}

func (h *Handler) handlePaymentForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := middleware.GetActorID(ctx)

	form, err := h.billing.LoadPaymentForm(ctx, actorID)
	if err != nil {
		h.logger.WarnContext(ctx, "payment form prefetch failed",
			"request_id", middleware.GetRequestID(ctx),
			"code", dErrors.CodeOf(err),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, form)
}
