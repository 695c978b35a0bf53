package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"innkeeper/internal/account/models"
	"innkeeper/pkg/domain"
	dErrors "innkeeper/pkg/domain-errors"
)

// uniqueViolation is the Postgres SQLSTATE for duplicate keys.
const uniqueViolation = "23505"

// PostgresProfileStore persists profiles in PostgreSQL. Pure I/O; role and
// lifecycle rules live in the service layer.
type PostgresProfileStore struct {
	db *sql.DB
}

func NewPostgresProfileStore(db *sql.DB) *PostgresProfileStore {
	return &PostgresProfileStore{db: db}
}

func (s *PostgresProfileStore) Insert(ctx context.Context, profile models.Profile) error {
	query := `
		INSERT INTO profiles (id, role, display_name, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		profile.ID.String(),
		profile.Role.String(),
		profile.DisplayName,
		profile.Phone,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return dErrors.New(dErrors.CodeInsertFailed, "profile already exists")
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (s *PostgresProfileStore) FindByID(ctx context.Context, id domain.AccountID) (models.Profile, error) {
	query := `
		SELECT id, role, display_name, phone, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`
	return scanProfile(s.db.QueryRowContext(ctx, query, id.String()))
}

func (s *PostgresProfileStore) Delete(ctx context.Context, id domain.AccountID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProfile(row *sql.Row) (models.Profile, error) {
	var (
		p       models.Profile
		rawID   string
		rawRole string
	)
	err := row.Scan(&rawID, &rawRole, &p.DisplayName, &p.Phone, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Profile{}, ErrNotFound
		}
		return models.Profile{}, fmt.Errorf("scan profile: %w", err)
	}
	if p.ID, err = domain.ParseAccountID(rawID); err != nil {
		return models.Profile{}, fmt.Errorf("scan profile: %w", err)
	}
	if p.Role, err = domain.ParseRole(rawRole); err != nil {
		return models.Profile{}, fmt.Errorf("scan profile: %w", err)
	}
	return p, nil
}

// PostgresBookingStore persists dependent bookings in PostgreSQL.
type PostgresBookingStore struct {
	db *sql.DB
}

func NewPostgresBookingStore(db *sql.DB) *PostgresBookingStore {
	return &PostgresBookingStore{db: db}
}

func (s *PostgresBookingStore) Insert(ctx context.Context, booking models.Booking) error {
	query := `
		INSERT INTO bookings (id, owner_id, room_code, guest_name, check_in, check_out, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		booking.ID.String(),
		booking.OwnerID.String(),
		booking.RoomCode,
		booking.GuestName,
		booking.CheckIn,
		booking.CheckOut,
		string(booking.Status),
		booking.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return dErrors.New(dErrors.CodeInsertFailed, "booking already exists")
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (s *PostgresBookingStore) ListByOwner(ctx context.Context, ownerID domain.AccountID) ([]models.Booking, error) {
	query := `
		SELECT id, owner_id, room_code, guest_name, check_in, check_out, status, created_at
		FROM bookings
		WHERE owner_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, ownerID.String())
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var (
			b         models.Booking
			rawID     string
			rawOwner  string
			rawStatus string
		)
		if err := rows.Scan(&rawID, &rawOwner, &b.RoomCode, &b.GuestName, &b.CheckIn, &b.CheckOut, &rawStatus, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		if b.ID, err = domain.ParseBookingID(rawID); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		if b.OwnerID, err = domain.ParseAccountID(rawOwner); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		b.Status = models.BookingStatus(rawStatus)
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

func (s *PostgresBookingStore) Delete(ctx context.Context, id domain.BookingID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
