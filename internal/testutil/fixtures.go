package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/weiloon/settlebook/internal/domain"
)

// TestAccount is a fixed account key reused across integration tests.
var TestAccount = domain.AccountKey{ChatID: -100555, UserID: 9001}

// SeedSettings writes a configured settings row directly, bypassing the
// service layer.
func SeedSettings(t *testing.T, db *sql.DB, key domain.AccountKey, currency string, rate, fee, commission decimal.Decimal) {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO settings (chat_id, user_id, currency, rate, fee_rate, commission_rate, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (chat_id, user_id) DO UPDATE SET
			currency = EXCLUDED.currency,
			rate = EXCLUDED.rate,
			fee_rate = EXCLUDED.fee_rate,
			commission_rate = EXCLUDED.commission_rate`,
		key.ChatID, key.UserID, currency, rate, fee, commission, time.Now().UTC(),
	)
	if err != nil {
		t.Fatalf("seed settings: %v", err)
	}
}

// CountEntries returns how many ledger rows exist for the account,
// optionally including removed ones.
func CountEntries(t *testing.T, db *sql.DB, key domain.AccountKey, includeRemoved bool) int {
	t.Helper()
	query := `SELECT COUNT(*) FROM ledger_entries WHERE chat_id = $1 AND user_id = $2`
	if !includeRemoved {
		query += ` AND NOT removed`
	}
	var n int
	if err := db.QueryRowContext(context.Background(), query, key.ChatID, key.UserID).Scan(&n); err != nil {
		t.Fatalf("count entries: %v", err)
	}
	return n
}
