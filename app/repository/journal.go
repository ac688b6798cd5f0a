package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vibast-solutions/go-donation-client/app/entity"
)

var (
	ErrJournalEntryNotFound      = errors.New("journal entry not found")
	ErrJournalEntryAlreadyExists = errors.New("journal entry already exists")
)

// JournalRepository persists donation orders between order creation and the
// final outcome, in the donation_orders table.
type JournalRepository struct {
	db DBTX
}

func NewJournalRepository(db DBTX) *JournalRepository {
	return &JournalRepository{db: db}
}

func (r *JournalRepository) Record(ctx context.Context, entry *entity.JournalEntry) error {
	query := `
		INSERT INTO donation_orders (
			order_id, provider_order_id, entry_point, amount_minor, currency,
			outcome, provider_state, receipt_url, resolved_at,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		entry.OrderID,
		entry.ProviderOrderID,
		string(entry.EntryPoint),
		entry.AmountMinor,
		entry.Currency,
		entry.Outcome,
		nullableStringValue(entry.ProviderState),
		nullableStringValue(entry.ReceiptURL),
		nullableTimeValue(entry.ResolvedAt),
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrJournalEntryAlreadyExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	entry.ID = uint64(id)
	return nil
}

func (r *JournalRepository) MarkResolved(ctx context.Context, entry *entity.JournalEntry) error {
	query := `
		UPDATE donation_orders SET
			outcome = ?,
			provider_state = ?,
			receipt_url = ?,
			resolved_at = ?,
			updated_at = ?
		WHERE order_id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		entry.Outcome,
		nullableStringValue(entry.ProviderState),
		nullableStringValue(entry.ReceiptURL),
		nullableTimeValue(entry.ResolvedAt),
		entry.UpdatedAt,
		entry.OrderID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrJournalEntryNotFound
	}
	return nil
}

// FindByProviderOrderID returns the latest entry for a provider order, or nil
// when the order was never journaled here.
func (r *JournalRepository) FindByProviderOrderID(ctx context.Context, providerOrderID string) (*entity.JournalEntry, error) {
	query := `
		SELECT id, order_id, provider_order_id, entry_point, amount_minor, currency,
			outcome, provider_state, receipt_url, resolved_at,
			created_at, updated_at
		FROM donation_orders
		WHERE provider_order_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`

	entry := &entity.JournalEntry{}
	if err := scanJournalEntry(r.db.QueryRowContext(ctx, query, providerOrderID), entry); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return entry, nil
}

// ListUnresolved returns orders without a final outcome that were created
// before the cutoff, oldest first. Ambiguous orders are included.
func (r *JournalRepository) ListUnresolved(ctx context.Context, before time.Time, limit int32) ([]*entity.JournalEntry, error) {
	query := `
		SELECT id, order_id, provider_order_id, entry_point, amount_minor, currency,
			outcome, provider_state, receipt_url, resolved_at,
			created_at, updated_at
		FROM donation_orders
		WHERE resolved_at IS NULL
		  AND created_at <= ?
		ORDER BY created_at ASC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*entity.JournalEntry, 0)
	for rows.Next() {
		item := &entity.JournalEntry{}
		if err := scanJournalEntry(rows, item); err != nil {
			return nil, err
		}
		entries = append(entries, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func scanJournalEntry(scan rowScanner, entry *entity.JournalEntry) error {
	var entryPoint string
	var providerState sql.NullString
	var receiptURL sql.NullString
	var resolvedAt sql.NullTime

	err := scan.Scan(
		&entry.ID,
		&entry.OrderID,
		&entry.ProviderOrderID,
		&entryPoint,
		&entry.AmountMinor,
		&entry.Currency,
		&entry.Outcome,
		&providerState,
		&receiptURL,
		&resolvedAt,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return err
	}

	entry.EntryPoint = entity.EntryPoint(entryPoint)
	entry.ProviderState = stringPtrFromNull(providerState)
	entry.ReceiptURL = stringPtrFromNull(receiptURL)
	entry.ResolvedAt = timePtrFromNull(resolvedAt)
	return nil
}
