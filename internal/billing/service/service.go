// Package service implements compound billing writes: invoice provisioning
// with rollback, default payment-method selection, and idempotent settings
// bootstrapping. Header and items live in separate tables with no shared
// transaction exposed here, so invoice creation runs as a compensated saga.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	accountmodels "innkeeper/internal/account/models"
	accountstore "innkeeper/internal/account/store"
	"innkeeper/internal/audit"
	"innkeeper/internal/billing/models"
	"innkeeper/internal/billing/store"
	"innkeeper/internal/platform/metrics"
	"innkeeper/internal/saga"
	"innkeeper/pkg/domain"
	dErrors "innkeeper/pkg/domain-errors"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// InvoiceStore is the slice of the relational store invoice provisioning
// consumes.
type InvoiceStore interface {
	InsertInvoice(ctx context.Context, invoice models.Invoice) error
	DeleteInvoice(ctx context.Context, id domain.InvoiceID) error
	FindInvoice(ctx context.Context, id domain.InvoiceID) (models.Invoice, error)
	InsertItems(ctx context.Context, items []models.InvoiceItem) error
	ListItems(ctx context.Context, invoiceID domain.InvoiceID) ([]models.InvoiceItem, error)
}

// PaymentMethodStore backs the default-method selector.
type PaymentMethodStore interface {
	FindByID(ctx context.Context, id domain.PaymentMethodID) (models.PaymentMethod, error)
	ListByOwner(ctx context.Context, ownerID domain.AccountID) ([]models.PaymentMethod, error)
	ClearDefaults(ctx context.Context, ownerID domain.AccountID) error
	SetDefault(ctx context.Context, id domain.PaymentMethodID) error
}

// SettingsStore backs the get-or-create settings resolver.
type SettingsStore interface {
	FindByOwner(ctx context.Context, ownerID domain.AccountID) (models.BillingSettings, error)
	Insert(ctx context.Context, settings models.BillingSettings) error
}

// ProfileReader resolves owners; billing never mutates profiles.
type ProfileReader interface {
	FindByID(ctx context.Context, id domain.AccountID) (accountmodels.Profile, error)
}

// AuditPublisher records billing events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates billing writes.
type Service struct {
	invoices  InvoiceStore
	methods   PaymentMethodStore
	settings  SettingsStore
	profiles  ProfileReader
	exec      *saga.Executor
	logger    *slog.Logger
	publisher AuditPublisher
	metrics   *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service.
func New(invoices InvoiceStore, methods PaymentMethodStore, settings SettingsStore, profiles ProfileReader, opts ...Option) *Service {
	s := &Service{
		invoices: invoices,
		methods:  methods,
		settings: settings,
		profiles: profiles,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	sagaOpts := []saga.Option{saga.WithLogger(s.logger)}
	if s.metrics != nil {
		sagaOpts = append(sagaOpts, saga.WithObserver(s.metrics.ObserveSaga))
	}
	s.exec = saga.New(sagaOpts...)
	return s
}

// CreateInvoiceParams carries the header fields plus the line items.
type CreateInvoiceParams struct {
	OwnerID domain.AccountID
	Amount  domain.Money
	DueDate time.Time
	Items   []ItemParams
}

// ItemParams is one requested line item.
type ItemParams struct {
	Description string
	Quantity    int
	UnitPrice   domain.Money
}

func (p CreateInvoiceParams) validate() error {
	if p.OwnerID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "owner id is required")
	}
	if p.Amount < 0 {
		return dErrors.New(dErrors.CodeValidation, "amount must not be negative")
	}
	if p.DueDate.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "due date is required")
	}
	for _, item := range p.Items {
		if strings.TrimSpace(item.Description) == "" {
			return dErrors.New(dErrors.CodeValidation, "item description is required")
		}
		if item.Quantity <= 0 {
			return dErrors.New(dErrors.CodeValidation, "item quantity must be positive")
		}
		if item.UnitPrice < 0 {
			return dErrors.New(dErrors.CodeValidation, "item unit price must not be negative")
		}
	}
	return nil
}

// CreateInvoice inserts the header, then the line items in one batch. If
// the item insert fails, the header is deleted again so no invoice survives
// with partial items. On success the composite is re-read from the store
// rather than assembled from request data.
//
// The header amount is persisted verbatim; it is not derived from the
// items, and the two can disagree.
func (s *Service) CreateInvoice(ctx context.Context, params CreateInvoiceParams) (models.InvoiceWithItems, error) {
	if err := params.validate(); err != nil {
		return models.InvoiceWithItems{}, err
	}

	if _, err := s.profiles.FindByID(ctx, params.OwnerID); err != nil {
		if errors.Is(err, accountstore.ErrNotFound) {
			return models.InvoiceWithItems{}, dErrors.New(dErrors.CodeNotFound, "owner not found")
		}
		return models.InvoiceWithItems{}, dErrors.Wrap(err, dErrors.CodeFetchFailed, "failed to load owner")
	}

	invoiceID := domain.NewInvoiceID()

	steps := []saga.Step{
		{
			Name: "insert-header",
			Forward: func(ctx context.Context) error {
				invoice := models.Invoice{
					ID:        invoiceID,
					OwnerID:   params.OwnerID,
					Status:    models.InvoiceUnpaid,
					Amount:    params.Amount,
					DueDate:   params.DueDate,
					CreatedAt: time.Now(),
				}
				if err := s.invoices.InsertInvoice(ctx, invoice); err != nil {
					if dErrors.HasCode(err, dErrors.CodeInsertFailed) {
						return err
					}
					return dErrors.Wrap(err, dErrors.CodeInsertFailed, "failed to insert invoice")
				}
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return s.invoices.DeleteInvoice(ctx, invoiceID)
			},
		},
		{
			Name: "insert-items",
			Forward: func(ctx context.Context) error {
				if len(params.Items) == 0 {
					return nil
				}
				items := make([]models.InvoiceItem, 0, len(params.Items))
				for _, item := range params.Items {
					items = append(items, models.InvoiceItem{
						ID:          uuid.New(),
						InvoiceID:   invoiceID,
						Description: strings.TrimSpace(item.Description),
						Quantity:    item.Quantity,
						UnitPrice:   item.UnitPrice,
					})
				}
				if err := s.invoices.InsertItems(ctx, items); err != nil {
					if dErrors.HasCode(err, dErrors.CodeInsertFailed) {
						return err
					}
					return dErrors.Wrap(err, dErrors.CodeInsertFailed, "failed to insert invoice items")
				}
				return nil
			},
			// Header compensation already removes the items' home.
		},
	}

	if err := s.exec.Run(ctx, "invoice.create", steps); err != nil {
		return models.InvoiceWithItems{}, err
	}

	composite, err := s.readInvoice(ctx, invoiceID)
	if err != nil {
		return models.InvoiceWithItems{}, err
	}

	s.logAudit(ctx, audit.Event{
		Kind:      audit.EventInvoiceCreated,
		ActorID:   params.OwnerID.String(),
		SubjectID: invoiceID.String(),
		Attrs: map[string]any{
			"amount_cents": params.Amount.Cents(),
			"items":        len(params.Items),
		},
	})
	if s.metrics != nil {
		s.metrics.InvoicesProvisioned.Inc()
	}
	return composite, nil
}

func (s *Service) readInvoice(ctx context.Context, id domain.InvoiceID) (models.InvoiceWithItems, error) {
	invoice, err := s.invoices.FindInvoice(ctx, id)
	if err != nil {
		return models.InvoiceWithItems{}, dErrors.Wrap(err, dErrors.CodeFetchFailed, "failed to re-read invoice")
	}
	items, err := s.invoices.ListItems(ctx, id)
	if err != nil {
		return models.InvoiceWithItems{}, dErrors.Wrap(err, dErrors.CodeFetchFailed, "failed to re-read invoice items")
	}
	return models.InvoiceWithItems{Invoice: invoice, Items: items}, nil
}

// SetDefaultPaymentMethod makes one method the owner's default by clearing
// every default flag and then setting one. The two writes are separate
// round trips with no transaction or version token: concurrent calls for
// the same owner can leave zero or two defaults. Sequential calls always
// end with exactly one.
func (s *Service) SetDefaultPaymentMethod(ctx context.Context, ownerID domain.AccountID, methodID domain.PaymentMethodID) error {
	method, err := s.methods.FindByID(ctx, methodID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "payment method not found")
		}
		return dErrors.Wrap(err, dErrors.CodeFetchFailed, "failed to load payment method")
	}
	if method.OwnerID != ownerID {
		return dErrors.New(dErrors.CodePermissionDenied, "payment method belongs to a different owner")
	}

	if err := s.methods.ClearDefaults(ctx, ownerID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnexpected, "failed to clear default payment methods")
	}
	if err := s.methods.SetDefault(ctx, methodID); err != nil {
		// The owner may transiently have zero defaults here; surfaced, not
		// repaired.
		return dErrors.Wrap(err, dErrors.CodeUnexpected, "failed to set default payment method")
	}

	s.logAudit(ctx, audit.Event{
		Kind:      audit.EventDefaultMethodChanged,
		ActorID:   ownerID.String(),
		SubjectID: methodID.String(),
	})
	return nil
}

// GetOrCreateSettings returns the owner's billing settings, inserting the
// default row on first call. Read-then-insert with no uniqueness backing:
// concurrent first calls can both insert. Sequential calls return the same
// row every time.
func (s *Service) GetOrCreateSettings(ctx context.Context, ownerID domain.AccountID) (models.BillingSettings, error) {
	existing, err := s.settings.FindByOwner(ctx, ownerID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return models.BillingSettings{}, dErrors.Wrap(err, dErrors.CodeFetchFailed, "failed to load billing settings")
	}

	created := models.DefaultSettings(ownerID)
	if err := s.settings.Insert(ctx, created); err != nil {
		return models.BillingSettings{}, dErrors.Wrap(err, dErrors.CodeInsertFailed, "failed to create billing settings")
	}

	s.logAudit(ctx, audit.Event{
		Kind:      audit.EventSettingsBootstrapped,
		ActorID:   ownerID.String(),
		SubjectID: created.ID.String(),
	})
	return created, nil
}

// PaymentForm is the read-only prefetch backing the payment settings page.
type PaymentForm struct {
	Owner    accountmodels.Profile  `json:"owner"`
	Methods  []models.PaymentMethod `json:"methods"`
	Settings models.BillingSettings `json:"settings"`
}

// LoadPaymentForm assembles the owner profile, payment methods, and
// billing settings. The settings bootstrap can insert a row, so it runs
// sequentially up front; the remaining fetches are pure reads and run
// concurrently with an all-or-nothing join, where the first error cancels
// the rest and nothing partial is returned.
func (s *Service) LoadPaymentForm(ctx context.Context, ownerID domain.AccountID) (PaymentForm, error) {
	var form PaymentForm

	settings, err := s.GetOrCreateSettings(ctx, ownerID)
	if err != nil {
		return PaymentForm{}, err
	}
	form.Settings = settings

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		owner, err := s.profiles.FindByID(ctx, ownerID)
		if err != nil {
			if errors.Is(err, accountstore.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "owner not found")
			}
			return dErrors.Wrap(err, dErrors.CodeFetchFailed, "failed to load owner")
		}
		form.Owner = owner
		return nil
	})

	g.Go(func() error {
		methods, err := s.methods.ListByOwner(ctx, ownerID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeFetchFailed, "failed to list payment methods")
		}
		form.Methods = methods
		return nil
	})

	if err := g.Wait(); err != nil {
		return PaymentForm{}, err
	}
	return form, nil
}

func (s *Service) logAudit(ctx context.Context, event audit.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Emit(ctx, event); err != nil {
		s.logger.Warn("failed to emit audit event", "kind", event.Kind, "error", err)
	}
}
