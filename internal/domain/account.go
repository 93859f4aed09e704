package domain

import (
	"github.com/shopspring/decimal"
)

const DefaultCurrency = "RMB"

// AccountKey identifies one ledger partition. There is no account table;
// settings rows and ledger entries are keyed by this pair directly.
type AccountKey struct {
	ChatID int64
	UserID int64
}

// Settings is the single live configuration record for an account.
// Upserts replace the whole record; no history is kept.
type Settings struct {
	ChatID         int64
	UserID         int64
	Currency       string
	Rate           decimal.Decimal
	FeeRate        decimal.Decimal
	CommissionRate decimal.Decimal
}

func (s *Settings) Key() AccountKey {
	return AccountKey{ChatID: s.ChatID, UserID: s.UserID}
}

// Configured reports whether ledger mutations are allowed on this account.
// An account counts as configured once a positive exchange rate is set.
func (s *Settings) Configured() bool {
	return s.Rate.IsPositive()
}
