// Package models defines the relational-store rows the account lifecycle
// operates on.
package models

import (
	"time"

	"innkeeper/pkg/domain"
)

// Profile is the business-facing half of a staff account. Its ID equals the
// identity-store principal's id; the pairing is a cross-store join key that
// no database enforces.
type Profile struct {
	ID          domain.AccountID `json:"id"`
	Role        domain.Role      `json:"role"`
	DisplayName string           `json:"display_name"`
	Phone       string           `json:"phone,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// BookingStatus is stored as text; only these values are written.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCheckedIn BookingStatus = "checked_in"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is a dependent record: it references a profile and must be gone
// before the profile can be removed.
type Booking struct {
	ID        domain.BookingID `json:"id"`
	OwnerID   domain.AccountID `json:"owner_id"`
	RoomCode  string           `json:"room_code"`
	GuestName string           `json:"guest_name"`
	CheckIn   time.Time        `json:"check_in"`
	CheckOut  time.Time        `json:"check_out"`
	Status    BookingStatus    `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

// Account pairs the identity-store id with the freshly inserted profile; it
// is what a successful provisioning run returns.
type Account struct {
	ID      domain.AccountID `json:"id"`
	Email   string           `json:"email"`
	Profile Profile          `json:"profile"`
}
