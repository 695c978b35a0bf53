// Package audit captures structured, append-only operational events. The
// lifecycle services emit one event per completed mutation and one per
// inconsistent terminal state so operators can reconstruct what happened
// when a saga went sideways.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Kind enumerates the events this core emits.
type Kind string

const (
	EventAccountCreated       Kind = "account.created"
	EventAccountDeleted       Kind = "account.deleted"
	EventAccountInconsistent  Kind = "account.inconsistent"
	EventInvoiceCreated       Kind = "invoice.created"
	EventDefaultMethodChanged Kind = "payment_method.default_changed"
	EventSettingsBootstrapped Kind = "billing_settings.created"
)

// Event is one audit record. Attrs is a flat key-value bag; values must be
// JSON-serializable.
type Event struct {
	ID        uuid.UUID      `json:"id"`
	Kind      Kind           `json:"kind"`
	ActorID   string         `json:"actor_id,omitempty"`
	SubjectID string         `json:"subject_id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Attrs     map[string]any `json:"attrs,omitempty"`
}
