package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"innkeeper/internal/billing/models"
	"innkeeper/pkg/domain"
	dErrors "innkeeper/pkg/domain-errors"
)

// InMemoryInvoiceStore keeps invoice headers and items in maps for tests
// and local runs.
type InMemoryInvoiceStore struct {
	mu       sync.RWMutex
	invoices map[domain.InvoiceID]models.Invoice
	items    map[uuid.UUID]models.InvoiceItem
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		invoices: make(map[domain.InvoiceID]models.Invoice),
		items:    make(map[uuid.UUID]models.InvoiceItem),
	}
}

func (s *InMemoryInvoiceStore) InsertInvoice(_ context.Context, invoice models.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[invoice.ID]; ok {
		return dErrors.New(dErrors.CodeInsertFailed, "invoice already exists")
	}
	s.invoices[invoice.ID] = invoice
	return nil
}

func (s *InMemoryInvoiceStore) DeleteInvoice(_ context.Context, id domain.InvoiceID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[id]; !ok {
		return ErrNotFound
	}
	delete(s.invoices, id)
	// The header is the line items' home; removing it removes them.
	for itemID, item := range s.items {
		if item.InvoiceID == id {
			delete(s.items, itemID)
		}
	}
	return nil
}

func (s *InMemoryInvoiceStore) FindInvoice(_ context.Context, id domain.InvoiceID) (models.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if invoice, ok := s.invoices[id]; ok {
		return invoice, nil
	}
	return models.Invoice{}, ErrNotFound
}

func (s *InMemoryInvoiceStore) InsertItems(_ context.Context, items []models.InvoiceItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		if _, ok := s.items[item.ID]; ok {
			return dErrors.New(dErrors.CodeInsertFailed, "invoice item already exists")
		}
	}
	for _, item := range items {
		s.items[item.ID] = item
	}
	return nil
}

func (s *InMemoryInvoiceStore) ListItems(_ context.Context, invoiceID domain.InvoiceID) ([]models.InvoiceItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []models.InvoiceItem
	for _, item := range s.items {
		if item.InvoiceID == invoiceID {
			matched = append(matched, item)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Description < matched[j].Description
	})
	return matched, nil
}

// CountItems returns the number of items referencing an invoice. Test helper.
func (s *InMemoryInvoiceStore) CountItems(invoiceID domain.InvoiceID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, item := range s.items {
		if item.InvoiceID == invoiceID {
			n++
		}
	}
	return n
}

// InvoiceExists reports whether a header is present. Test helper.
func (s *InMemoryInvoiceStore) InvoiceExists(id domain.InvoiceID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.invoices[id]
	return ok
}

// All returns every stored header. Test helper.
func (s *InMemoryInvoiceStore) All() []models.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Invoice, 0, len(s.invoices))
	for _, invoice := range s.invoices {
		out = append(out, invoice)
	}
	return out
}

// InMemoryPaymentMethodStore keeps payment methods in a map.
type InMemoryPaymentMethodStore struct {
	mu      sync.RWMutex
	methods map[domain.PaymentMethodID]models.PaymentMethod
}

func NewInMemoryPaymentMethodStore() *InMemoryPaymentMethodStore {
	return &InMemoryPaymentMethodStore{methods: make(map[domain.PaymentMethodID]models.PaymentMethod)}
}

func (s *InMemoryPaymentMethodStore) Insert(_ context.Context, method models.PaymentMethod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.methods[method.ID]; ok {
		return dErrors.New(dErrors.CodeInsertFailed, "payment method already exists")
	}
	s.methods[method.ID] = method
	return nil
}

func (s *InMemoryPaymentMethodStore) FindByID(_ context.Context, id domain.PaymentMethodID) (models.PaymentMethod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if method, ok := s.methods[id]; ok {
		return method, nil
	}
	return models.PaymentMethod{}, ErrNotFound
}

func (s *InMemoryPaymentMethodStore) ListByOwner(_ context.Context, ownerID domain.AccountID) ([]models.PaymentMethod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var owned []models.PaymentMethod
	for _, m := range s.methods {
		if m.OwnerID == ownerID {
			owned = append(owned, m)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.Before(owned[j].CreatedAt)
	})
	return owned, nil
}

// ClearDefaults flips IsDefault off for every method the owner has.
func (s *InMemoryPaymentMethodStore) ClearDefaults(_ context.Context, ownerID domain.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, m := range s.methods {
		if m.OwnerID == ownerID && m.IsDefault {
			m.IsDefault = false
			s.methods[id] = m
		}
	}
	return nil
}

// SetDefault flips IsDefault on for one method.
func (s *InMemoryPaymentMethodStore) SetDefault(_ context.Context, id domain.PaymentMethodID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.methods[id]
	if !ok {
		return ErrNotFound
	}
	m.IsDefault = true
	s.methods[id] = m
	return nil
}

// InMemorySettingsStore keeps billing settings keyed by owner.
type InMemorySettingsStore struct {
	mu       sync.RWMutex
	settings []models.BillingSettings
}

func NewInMemorySettingsStore() *InMemorySettingsStore {
	return &InMemorySettingsStore{}
}

// FindByOwner returns the owner's oldest settings row, mirroring the
// "first row wins" behavior of the SQL implementation.
func (s *InMemorySettingsStore) FindByOwner(_ context.Context, ownerID domain.AccountID) (models.BillingSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, row := range s.settings {
		if row.OwnerID == ownerID {
			return row, nil
		}
	}
	return models.BillingSettings{}, ErrNotFound
}

// Insert appends a settings row. No uniqueness check on owner: the
// get-or-create race observable in production is reproducible here too.
func (s *InMemorySettingsStore) Insert(_ context.Context, settings models.BillingSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = append(s.settings, settings)
	return nil
}

// CountByOwner returns how many settings rows an owner has. Test helper.
func (s *InMemorySettingsStore) CountByOwner(ownerID domain.AccountID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, row := range s.settings {
		if row.OwnerID == ownerID {
			n++
		}
	}
	return n
}
