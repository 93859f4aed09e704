package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/weiloon/settlebook/internal/domain"
)

const ledgerColumns = `id, chat_id, user_id, sequence, kind, name, raw_amount,
	rate, fee_rate, commission_rate, currency, created_at, message_id, removed`

type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// LockAccount takes a per-account advisory lock scoped to the transaction.
// All ledger mutations for one account serialize on it, so sequence
// assignment and entry insertion behave as a single atomic unit.
func (r *LedgerRepository) LockAccount(ctx context.Context, tx *sql.Tx, key domain.AccountKey) error {
	_, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1::text || ':' || $2::text, 0))`,
		key.ChatID, key.UserID,
	)
	if err != nil {
		return fmt.Errorf("LockAccount: %w", err)
	}
	return nil
}

// Insert assigns the next sequence and persists the entry. The sequence is
// count of all entries for the account, removed ones included, plus one;
// removed sequences are never reused. Callers must hold the account lock.
func (r *LedgerRepository) Insert(ctx context.Context, tx *sql.Tx, e *domain.LedgerEntry) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO ledger_entries (
			chat_id, user_id, sequence, kind, name, raw_amount,
			rate, fee_rate, commission_rate, currency, created_at, message_id, removed
		) VALUES (
			$1, $2,
			(SELECT COUNT(*) + 1 FROM ledger_entries WHERE chat_id = $1 AND user_id = $2),
			$3, $4, $5, $6, $7, $8, $9, $10, $11, FALSE
		) RETURNING id, sequence`,
		e.ChatID, e.UserID, e.Kind, e.Name, e.RawAmount,
		e.Rate, e.FeeRate, e.CommissionRate, e.Currency, e.CreatedAt, e.MessageID,
	).Scan(&e.ID, &e.Sequence)
	if err != nil {
		return fmt.Errorf("Insert: %w", err)
	}
	return nil
}

// ListActive returns the account's live entries in stable chronological order.
func (r *LedgerRepository) ListActive(ctx context.Context, key domain.AccountKey) ([]domain.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ledgerColumns+` FROM ledger_entries
		WHERE chat_id = $1 AND user_id = $2 AND NOT removed
		ORDER BY created_at, id`,
		key.ChatID, key.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListActive: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("ListActive: scan: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListActive: rows: %w", err)
	}
	return entries, nil
}

// LatestActive resolves the most recent live entry for "undo last".
func (r *LedgerRepository) LatestActive(ctx context.Context, tx *sql.Tx, key domain.AccountKey) (*domain.LedgerEntry, error) {
	e, err := scanLedgerEntry(tx.QueryRowContext(ctx,
		`SELECT `+ledgerColumns+` FROM ledger_entries
		WHERE chat_id = $1 AND user_id = $2 AND NOT removed
		ORDER BY created_at DESC, id DESC LIMIT 1
		FOR UPDATE`,
		key.ChatID, key.UserID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("LatestActive: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("LatestActive: %w", err)
	}
	return e, nil
}

// GetBySequence resolves a live entry by its stable reference number.
func (r *LedgerRepository) GetBySequence(ctx context.Context, tx *sql.Tx, key domain.AccountKey, sequence int) (*domain.LedgerEntry, error) {
	e, err := scanLedgerEntry(tx.QueryRowContext(ctx,
		`SELECT `+ledgerColumns+` FROM ledger_entries
		WHERE chat_id = $1 AND user_id = $2 AND sequence = $3 AND NOT removed
		FOR UPDATE`,
		key.ChatID, key.UserID, sequence,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("GetBySequence: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetBySequence: %w", err)
	}
	return e, nil
}

// MarkRemoved soft-deletes an entry. The row stays behind so sequences are
// never reused and removed entries remain auditable.
func (r *LedgerRepository) MarkRemoved(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE ledger_entries SET removed = TRUE WHERE id = $1 AND NOT removed`, id,
	)
	if err != nil {
		return fmt.Errorf("MarkRemoved: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("MarkRemoved: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("MarkRemoved: %w", domain.ErrNotFound)
	}
	return nil
}

// DeleteAll wipes the account's ledger. Settings are untouched and a fresh
// sequence counter starts from 1. Callers must hold the account lock so the
// wipe cannot interleave with an in-flight sequence assignment.
func (r *LedgerRepository) DeleteAll(ctx context.Context, tx *sql.Tx, key domain.AccountKey) error {
	_, err := tx.ExecContext(ctx,
		`DELETE FROM ledger_entries WHERE chat_id = $1 AND user_id = $2`,
		key.ChatID, key.UserID,
	)
	if err != nil {
		return fmt.Errorf("DeleteAll: %w", err)
	}
	return nil
}

func scanLedgerEntry(s scanner) (*domain.LedgerEntry, error) {
	var e domain.LedgerEntry
	err := s.Scan(
		&e.ID, &e.ChatID, &e.UserID, &e.Sequence, &e.Kind, &e.Name, &e.RawAmount,
		&e.Rate, &e.FeeRate, &e.CommissionRate, &e.Currency, &e.CreatedAt,
		&e.MessageID, &e.Removed,
	)
	if err != nil {
		return nil, err
	}
	if !e.Kind.IsValid() {
		return nil, fmt.Errorf("scanLedgerEntry: kind %q: %w", e.Kind, domain.ErrInvalidKind)
	}
	return &e, nil
}
