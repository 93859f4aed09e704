package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type EntryKind string

const (
	EntryKindDeposit          EntryKind = "deposit"
	EntryKindReversal         EntryKind = "reversal"
	EntryKindIssuance         EntryKind = "issuance"
	EntryKindIssuanceReversal EntryKind = "issuance_reversal"
)

func (k EntryKind) IsValid() bool {
	switch k {
	case EntryKindDeposit, EntryKindReversal, EntryKindIssuance, EntryKindIssuanceReversal:
		return true
	}
	return false
}

// LedgerEntry is immutable once written. Corrections remove a whole entry
// (soft delete via Removed); amounts are never edited in place.
//
// Rate, FeeRate, CommissionRate and Currency are the settings snapshot taken
// at creation time, so later reconfiguration never rewrites history.
type LedgerEntry struct {
	ID             int64
	ChatID         int64
	UserID         int64
	Sequence       int
	Kind           EntryKind
	Name           string
	RawAmount      decimal.Decimal
	Rate           decimal.Decimal
	FeeRate        decimal.Decimal
	CommissionRate decimal.Decimal
	Currency       string
	CreatedAt      time.Time
	MessageID      int64
	Removed        bool
}

func (e *LedgerEntry) Key() AccountKey {
	return AccountKey{ChatID: e.ChatID, UserID: e.UserID}
}

// DisplaySequence is the stable reference number shown to operators,
// zero-padded to three digits.
func (e *LedgerEntry) DisplaySequence() string {
	return fmt.Sprintf("%03d", e.Sequence)
}
