package repository

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiloon/settlebook/internal/domain"
)

type stubEntryRow struct {
	kind string
}

func (s stubEntryRow) Scan(dest ...any) error {
	*dest[0].(*int64) = 7
	*dest[1].(*int64) = -100555
	*dest[2].(*int64) = 9001
	*dest[3].(*int) = 1
	*dest[4].(*domain.EntryKind) = domain.EntryKind(s.kind)
	*dest[5].(*string) = "alice"
	*dest[6].(*decimal.Decimal) = decimal.NewFromInt(1000)
	*dest[7].(*decimal.Decimal) = decimal.NewFromInt(9)
	*dest[8].(*decimal.Decimal) = decimal.NewFromInt(2)
	*dest[9].(*decimal.Decimal) = decimal.RequireFromString("0.5")
	*dest[10].(*string) = "RMB"
	*dest[11].(*time.Time) = time.Now().UTC()
	*dest[12].(*int64) = 0
	*dest[13].(*bool) = false
	return nil
}

func TestScanLedgerEntry(t *testing.T) {
	e, err := scanLedgerEntry(stubEntryRow{kind: "deposit"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), e.ID)
	assert.Equal(t, domain.EntryKindDeposit, e.Kind)
	assert.Equal(t, "001", e.DisplaySequence())
}

func TestScanLedgerEntryRejectsUnknownKind(t *testing.T) {
	_, err := scanLedgerEntry(stubEntryRow{kind: "withdrawal"})
	assert.ErrorIs(t, err, domain.ErrInvalidKind)
}
