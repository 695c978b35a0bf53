// Package models defines the billing rows: invoices with line items,
// stored payment methods, and per-owner billing settings.
package models

import (
	"time"

	"github.com/google/uuid"

	"innkeeper/pkg/domain"
)

// InvoiceStatus is stored as text; only these values are written.
type InvoiceStatus string

const (
	InvoiceUnpaid    InvoiceStatus = "unpaid"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// Invoice is a billing header. Amount is what the caller submitted; it is
// deliberately not recomputed from the line items, so the two can disagree.
type Invoice struct {
	ID        domain.InvoiceID `json:"id"`
	OwnerID   domain.AccountID `json:"owner_id"`
	Status    InvoiceStatus    `json:"status"`
	Amount    domain.Money     `json:"amount"`
	DueDate   time.Time        `json:"due_date"`
	CreatedAt time.Time        `json:"created_at"`
}

// InvoiceItem is one line on an invoice.
type InvoiceItem struct {
	ID          uuid.UUID        `json:"id"`
	InvoiceID   domain.InvoiceID `json:"invoice_id"`
	Description string           `json:"description"`
	Quantity    int              `json:"quantity"`
	UnitPrice   domain.Money     `json:"unit_price"`
}

// InvoiceWithItems is the composite view returned after provisioning; it is
// re-read from the store so server-side defaults are reflected.
type InvoiceWithItems struct {
	Invoice Invoice       `json:"invoice"`
	Items   []InvoiceItem `json:"items"`
}

// PaymentMethod is a stored card. At most one method per owner should have
// IsDefault set; that invariant is maintained procedurally, not by the
// store.
type PaymentMethod struct {
	ID        domain.PaymentMethodID `json:"id"`
	OwnerID   domain.AccountID       `json:"owner_id"`
	Brand     string                 `json:"brand"`
	Last4     string                 `json:"last4"`
	ExpMonth  int                    `json:"exp_month"`
	ExpYear   int                    `json:"exp_year"`
	IsDefault bool                   `json:"is_default"`
	CreatedAt time.Time              `json:"created_at"`
}

// BillingCycle is stored as text; only these values are written.
type BillingCycle string

const (
	CycleMonthly   BillingCycle = "monthly"
	CycleQuarterly BillingCycle = "quarterly"
	CycleAnnual    BillingCycle = "annual"
)

// BillingSettings is the singleton-per-owner settings row, bootstrapped on
// first read.
type BillingSettings struct {
	ID             uuid.UUID        `json:"id"`
	OwnerID        domain.AccountID `json:"owner_id"`
	AutoPay        bool             `json:"auto_pay"`
	Cycle          BillingCycle     `json:"cycle"`
	BillingAddress string           `json:"billing_address,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// DefaultSettings returns the row inserted when an owner has none yet.
func DefaultSettings(ownerID domain.AccountID) BillingSettings {
	now := time.Now()
	return BillingSettings{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		AutoPay:   false,
		Cycle:     CycleMonthly,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
