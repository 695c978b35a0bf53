package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"innkeeper/internal/billing/models"
	"innkeeper/pkg/domain"
	dErrors "innkeeper/pkg/domain-errors"
)

const uniqueViolation = "23505"

// PostgresInvoiceStore persists invoice headers and items in PostgreSQL.
type PostgresInvoiceStore struct {
	db *sql.DB
}

func NewPostgresInvoiceStore(db *sql.DB) *PostgresInvoiceStore {
	return &PostgresInvoiceStore{db: db}
}

func (s *PostgresInvoiceStore) InsertInvoice(ctx context.Context, invoice models.Invoice) error {
	query := `
		INSERT INTO invoices (id, owner_id, status, amount_cents, due_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		invoice.ID.String(),
		invoice.OwnerID.String(),
		string(invoice.Status),
		invoice.Amount.Cents(),
		invoice.DueDate,
		invoice.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return dErrors.New(dErrors.CodeInsertFailed, "invoice already exists")
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (s *PostgresInvoiceStore) DeleteInvoice(ctx context.Context, id domain.InvoiceID) error {
	// Items reference the header with ON DELETE CASCADE, so removing the
	// header removes its items.
	res, err := s.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresInvoiceStore) FindInvoice(ctx context.Context, id domain.InvoiceID) (models.Invoice, error) {
	query := `
		SELECT id, owner_id, status, amount_cents, due_date, created_at
		FROM invoices
		WHERE id = $1
	`
	var (
		inv       models.Invoice
		rawID     string
		rawOwner  string
		rawStatus string
		cents     int64
	)
	err := s.db.QueryRowContext(ctx, query, id.String()).
		Scan(&rawID, &rawOwner, &rawStatus, &cents, &inv.DueDate, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Invoice{}, ErrNotFound
		}
		return models.Invoice{}, fmt.Errorf("find invoice: %w", err)
	}
	if inv.ID, err = domain.ParseInvoiceID(rawID); err != nil {
		return models.Invoice{}, fmt.Errorf("find invoice: %w", err)
	}
	if inv.OwnerID, err = domain.ParseAccountID(rawOwner); err != nil {
		return models.Invoice{}, fmt.Errorf("find invoice: %w", err)
	}
	inv.Status = models.InvoiceStatus(rawStatus)
	inv.Amount = domain.Money(cents)
	return inv, nil
}

func (s *PostgresInvoiceStore) InsertItems(ctx context.Context, items []models.InvoiceItem) error {
	if len(items) == 0 {
		return nil
	}
	// One multi-row insert so either every item lands or none do.
	query := `
		INSERT INTO invoice_items (id, invoice_id, description, quantity, unit_price_cents)
		VALUES
	`
	args := make([]any, 0, len(items)*5)
	for i, item := range items {
		if i > 0 {
			query += ","
		}
		base := i * 5
		query += fmt.Sprintf(" ($%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5)
		args = append(args,
			item.ID.String(),
			item.InvoiceID.String(),
			item.Description,
			item.Quantity,
			item.UnitPrice.Cents(),
		)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return dErrors.New(dErrors.CodeInsertFailed, "invoice item already exists")
		}
		return fmt.Errorf("insert invoice items: %w", err)
	}
	return nil
}

func (s *PostgresInvoiceStore) ListItems(ctx context.Context, invoiceID domain.InvoiceID) ([]models.InvoiceItem, error) {
	query := `
		SELECT id, invoice_id, description, quantity, unit_price_cents
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY description ASC
	`
	rows, err := s.db.QueryContext(ctx, query, invoiceID.String())
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()

	var items []models.InvoiceItem
	for rows.Next() {
		var (
			item       models.InvoiceItem
			rawID      string
			rawInvoice string
			cents      int64
		)
		if err := rows.Scan(&rawID, &rawInvoice, &item.Description, &item.Quantity, &cents); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		if item.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		if item.InvoiceID, err = domain.ParseInvoiceID(rawInvoice); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		item.UnitPrice = domain.Money(cents)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	return items, nil
}

// PostgresPaymentMethodStore persists payment methods in PostgreSQL.
type PostgresPaymentMethodStore struct {
	db *sql.DB
}

func NewPostgresPaymentMethodStore(db *sql.DB) *PostgresPaymentMethodStore {
	return &PostgresPaymentMethodStore{db: db}
}

func (s *PostgresPaymentMethodStore) Insert(ctx context.Context, method models.PaymentMethod) error {
	query := `
		INSERT INTO payment_methods (id, owner_id, brand, last4, exp_month, exp_year, is_default, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		method.ID.String(),
		method.OwnerID.String(),
		method.Brand,
		method.Last4,
		method.ExpMonth,
		method.ExpYear,
		method.IsDefault,
		method.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return dErrors.New(dErrors.CodeInsertFailed, "payment method already exists")
		}
		return fmt.Errorf("insert payment method: %w", err)
	}
	return nil
}

func (s *PostgresPaymentMethodStore) FindByID(ctx context.Context, id domain.PaymentMethodID) (models.PaymentMethod, error) {
	query := `
		SELECT id, owner_id, brand, last4, exp_month, exp_year, is_default, created_at
		FROM payment_methods
		WHERE id = $1
	`
	return scanPaymentMethod(s.db.QueryRowContext(ctx, query, id.String()))
}

func (s *PostgresPaymentMethodStore) ListByOwner(ctx context.Context, ownerID domain.AccountID) ([]models.PaymentMethod, error) {
	query := `
		SELECT id, owner_id, brand, last4, exp_month, exp_year, is_default, created_at
		FROM payment_methods
		WHERE owner_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, ownerID.String())
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	defer rows.Close()

	var methods []models.PaymentMethod
	for rows.Next() {
		var (
			m        models.PaymentMethod
			rawID    string
			rawOwner string
		)
		if err := rows.Scan(&rawID, &rawOwner, &m.Brand, &m.Last4, &m.ExpMonth, &m.ExpYear, &m.IsDefault, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}
		if m.ID, err = domain.ParsePaymentMethodID(rawID); err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}
		if m.OwnerID, err = domain.ParseAccountID(rawOwner); err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}
		methods = append(methods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	return methods, nil
}

func (s *PostgresPaymentMethodStore) ClearDefaults(ctx context.Context, ownerID domain.AccountID) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE payment_methods SET is_default = FALSE WHERE owner_id = $1 AND is_default`,
		ownerID.String())
	if err != nil {
		return fmt.Errorf("clear default payment methods: %w", err)
	}
	return nil
}

func (s *PostgresPaymentMethodStore) SetDefault(ctx context.Context, id domain.PaymentMethodID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE payment_methods SET is_default = TRUE WHERE id = $1`,
		id.String())
	if err != nil {
		return fmt.Errorf("set default payment method: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set default payment method: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPaymentMethod(row *sql.Row) (models.PaymentMethod, error) {
	var (
		m        models.PaymentMethod
		rawID    string
		rawOwner string
	)
	err := row.Scan(&rawID, &rawOwner, &m.Brand, &m.Last4, &m.ExpMonth, &m.ExpYear, &m.IsDefault, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PaymentMethod{}, ErrNotFound
		}
		return models.PaymentMethod{}, fmt.Errorf("scan payment method: %w", err)
	}
	if m.ID, err = domain.ParsePaymentMethodID(rawID); err != nil {
		return models.PaymentMethod{}, fmt.Errorf("scan payment method: %w", err)
	}
	if m.OwnerID, err = domain.ParseAccountID(rawOwner); err != nil {
		return models.PaymentMethod{}, fmt.Errorf("scan payment method: %w", err)
	}
	return m, nil
}

// PostgresSettingsStore persists billing settings in PostgreSQL. There is
// deliberately no unique constraint on owner_id: the read-then-insert
// get-or-create mirrors the upstream behavior, duplicate-row race included.
type PostgresSettingsStore struct {
	db *sql.DB
}

func NewPostgresSettingsStore(db *sql.DB) *PostgresSettingsStore {
	return &PostgresSettingsStore{db: db}
}

func (s *PostgresSettingsStore) FindByOwner(ctx context.Context, ownerID domain.AccountID) (models.BillingSettings, error) {
	query := `
		SELECT id, owner_id, auto_pay, cycle, billing_address, created_at, updated_at
		FROM billing_settings
		WHERE owner_id = $1
		ORDER BY created_at ASC
		LIMIT 1
	`
	var (
		bs       models.BillingSettings
		rawID    string
		rawOwner string
		rawCycle string
	)
	err := s.db.QueryRowContext(ctx, query, ownerID.String()).
		Scan(&rawID, &rawOwner, &bs.AutoPay, &rawCycle, &bs.BillingAddress, &bs.CreatedAt, &bs.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.BillingSettings{}, ErrNotFound
		}
		return models.BillingSettings{}, fmt.Errorf("find billing settings: %w", err)
	}
	if bs.ID, err = uuid.Parse(rawID); err != nil {
		return models.BillingSettings{}, fmt.Errorf("find billing settings: %w", err)
	}
	if bs.OwnerID, err = domain.ParseAccountID(rawOwner); err != nil {
		return models.BillingSettings{}, fmt.Errorf("find billing settings: %w", err)
	}
	bs.Cycle = models.BillingCycle(rawCycle)
	return bs, nil
}

func (s *PostgresSettingsStore) Insert(ctx context.Context, settings models.BillingSettings) error {
	query := `
		INSERT INTO billing_settings (id, owner_id, auto_pay, cycle, billing_address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		settings.ID.String(),
		settings.OwnerID.String(),
		settings.AutoPay,
		string(settings.Cycle),
		settings.BillingAddress,
		settings.CreatedAt,
		settings.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert billing settings: %w", err)
	}
	return nil
}
