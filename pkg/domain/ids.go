// Package domain holds identifier primitives and closed enums shared across
// services. Typed ids prevent accidentally passing an invoice id where an
// account id is expected; the compiler catches the swap.
package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// AccountID keys both the identity-store principal and the relational
// profile row. The two stores share this value as a join key; nothing
// enforces the pairing atomically.
type AccountID uuid.UUID

func NewAccountID() AccountID { return AccountID(uuid.New()) }

func ParseAccountID(s string) (AccountID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return AccountID{}, fmt.Errorf("invalid account id %q: %w", s, err)
	}
	return AccountID(u), nil
}

func (id AccountID) String() string { return uuid.UUID(id).String() }
func (id AccountID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// MarshalText renders the id as its canonical string so JSON payloads
// carry uuids, not byte arrays.
func (id AccountID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *AccountID) UnmarshalText(b []byte) error {
	parsed, err := ParseAccountID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// BookingID identifies a dependent booking record.
type BookingID uuid.UUID

func NewBookingID() BookingID { return BookingID(uuid.New()) }

func ParseBookingID(s string) (BookingID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return BookingID{}, fmt.Errorf("invalid booking id %q: %w", s, err)
	}
	return BookingID(u), nil
}

func (id BookingID) String() string { return uuid.UUID(id).String() }
func (id BookingID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id BookingID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *BookingID) UnmarshalText(b []byte) error {
	parsed, err := ParseBookingID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// InvoiceID identifies an invoice header. Line items reference it.
type InvoiceID uuid.UUID

func NewInvoiceID() InvoiceID { return InvoiceID(uuid.New()) }

func ParseInvoiceID(s string) (InvoiceID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return InvoiceID{}, fmt.Errorf("invalid invoice id %q: %w", s, err)
	}
	return InvoiceID(u), nil
}

func (id InvoiceID) String() string { return uuid.UUID(id).String() }
func (id InvoiceID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id InvoiceID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *InvoiceID) UnmarshalText(b []byte) error {
	parsed, err := ParseInvoiceID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// PaymentMethodID identifies a stored payment method.
type PaymentMethodID uuid.UUID

func NewPaymentMethodID() PaymentMethodID { return PaymentMethodID(uuid.New()) }

func ParsePaymentMethodID(s string) (PaymentMethodID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return PaymentMethodID{}, fmt.Errorf("invalid payment method id %q: %w", s, err)
	}
	return PaymentMethodID(u), nil
}

func (id PaymentMethodID) String() string { return uuid.UUID(id).String() }
func (id PaymentMethodID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id PaymentMethodID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *PaymentMethodID) UnmarshalText(b []byte) error {
	parsed, err := ParsePaymentMethodID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
