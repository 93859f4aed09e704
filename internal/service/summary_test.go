package service

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/weiloon/settlebook/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testSettings() *domain.Settings {
	return &domain.Settings{
		ChatID:         -100200300,
		UserID:         42,
		Currency:       "RMB",
		Rate:           dec("9"),
		FeeRate:        dec("2"),
		CommissionRate: dec("0.5"),
	}
}

func entry(seq int, kind domain.EntryKind, amount string, s *domain.Settings, at time.Time) domain.LedgerEntry {
	return domain.LedgerEntry{
		ID:             int64(seq),
		ChatID:         s.ChatID,
		UserID:         s.UserID,
		Sequence:       seq,
		Kind:           kind,
		Name:           "alice",
		RawAmount:      dec(amount),
		Rate:           s.Rate,
		FeeRate:        s.FeeRate,
		CommissionRate: s.CommissionRate,
		Currency:       s.Currency,
		CreatedAt:      at,
	}
}

func TestBuildSummarySingleDeposit(t *testing.T) {
	s := testSettings()
	now := time.Date(2025, 3, 14, 7, 4, 5, 0, time.UTC)

	sum := BuildSummary(s, []domain.LedgerEntry{
		entry(1, domain.EntryKindDeposit, "1000", s, now),
	}, time.UTC)

	require.Equal(t, 1, sum.DepositCount)
	require.True(t, sum.GrossTotal.Equal(dec("1000")))
	require.True(t, sum.PayableTotal.Equal(dec("980")))
	require.True(t, sum.PayableConverted.Equal(dec("108.89")))
	require.True(t, sum.CommissionDue.Equal(dec("5")))
	require.True(t, sum.CommissionDueConv.Equal(dec("0.56")))
	require.True(t, sum.IssuedTotal.IsZero())
	require.True(t, sum.OutstandingPayable.Equal(dec("980")))
	require.True(t, sum.HasCommission)
}

func TestBuildSummaryIssuanceReducesOutstanding(t *testing.T) {
	s := testSettings()
	base := time.Date(2025, 3, 14, 7, 0, 0, 0, time.UTC)

	sum := BuildSummary(s, []domain.LedgerEntry{
		entry(1, domain.EntryKindDeposit, "1000", s, base),
		entry(2, domain.EntryKindIssuance, "500", s, base.Add(time.Minute)),
	}, time.UTC)

	require.True(t, sum.IssuedTotal.Equal(dec("500")))
	require.True(t, sum.OutstandingPayable.Equal(dec("480")))
	require.True(t, sum.PayableTotal.Equal(dec("980")), "issuance must not change payable")
	require.True(t, sum.GrossTotal.Equal(dec("1000")), "issuance must not change gross")
}

func TestBuildSummaryReversalKindsSubtract(t *testing.T) {
	s := testSettings()
	base := time.Date(2025, 3, 14, 7, 0, 0, 0, time.UTC)

	sum := BuildSummary(s, []domain.LedgerEntry{
		entry(1, domain.EntryKindDeposit, "1000", s, base),
		entry(2, domain.EntryKindReversal, "1000", s, base.Add(time.Minute)),
		entry(3, domain.EntryKindIssuance, "200", s, base.Add(2*time.Minute)),
		entry(4, domain.EntryKindIssuanceReversal, "200", s, base.Add(3*time.Minute)),
	}, time.UTC)

	require.True(t, sum.GrossTotal.IsZero())
	require.True(t, sum.PayableTotal.IsZero())
	require.True(t, sum.CommissionDue.IsZero())
	require.True(t, sum.IssuedTotal.IsZero())
	require.True(t, sum.OutstandingPayable.IsZero())
}

// Entries keep the snapshot they were written under; only the top-line
// conversions follow current settings.
func TestBuildSummaryUsesEntrySnapshots(t *testing.T) {
	old := testSettings()
	base := time.Date(2025, 3, 14, 7, 0, 0, 0, time.UTC)
	e := entry(1, domain.EntryKindDeposit, "1000", old, base)

	current := testSettings()
	current.Rate = dec("10")
	current.FeeRate = dec("0")

	sum := BuildSummary(current, []domain.LedgerEntry{e}, time.UTC)

	// per-entry afterFee still uses the 2% snapshot fee
	require.True(t, sum.PayableTotal.Equal(dec("980")))
	// per-entry converted line still divides by the snapshot rate 9
	require.True(t, sum.Lines[0].Derived.ConvertedAfterFee.Equal(dec("108.89")))
	// top-line conversion uses the current rate 10
	require.True(t, sum.PayableConverted.Equal(dec("98")))
}

func TestBuildSummaryZeroRateEntryIsSafe(t *testing.T) {
	s := testSettings()
	base := time.Date(2025, 3, 14, 7, 0, 0, 0, time.UTC)

	e := entry(1, domain.EntryKindDeposit, "1000", s, base)
	e.Rate = decimal.Zero

	sum := BuildSummary(s, []domain.LedgerEntry{e}, time.UTC)

	require.True(t, sum.Lines[0].Derived.ConvertedAfterFee.IsZero())
	require.True(t, sum.Lines[0].Derived.CommissionConverted.IsZero())
}

func TestBuildSummaryZeroRateSettingsIsSafe(t *testing.T) {
	s := testSettings()
	s.Rate = decimal.Zero
	base := time.Date(2025, 3, 14, 7, 0, 0, 0, time.UTC)

	sum := BuildSummary(s, []domain.LedgerEntry{
		entry(1, domain.EntryKindDeposit, "1000", s, base),
	}, time.UTC)

	require.True(t, sum.PayableConverted.IsZero())
	require.True(t, sum.OutstandingConverted.IsZero())

	// rendering must not blow up either
	out := sum.Render()
	require.Contains(t, out, "Payable: 980.00 (RMB) | 0.00 (USDT)")
}

func TestRenderReport(t *testing.T) {
	s := testSettings()
	loc := time.FixedZone("MYT", 8*60*60)
	at := time.Date(2025, 3, 14, 7, 4, 5, 0, time.UTC) // 15:04:05 MYT

	sum := BuildSummary(s, []domain.LedgerEntry{
		entry(1, domain.EntryKindDeposit, "1000", s, at),
	}, loc)

	out := sum.Render()

	require.Contains(t, out, "001. 15:04:05 1000.0*0.98/9 = 108.89  alice")
	require.Contains(t, out, "001. 15:04:05 1000.0*0.005 = 5.00 [commission]")
	require.Contains(t, out, "Deposited (1): 1000.0 (RMB)")
	require.Contains(t, out, "Rate: 9")
	require.Contains(t, out, "Fee: 2%")
	require.Contains(t, out, "Payable: 980.00 (RMB) | 108.89 (USDT)")
	require.Contains(t, out, "Issued: 0.00 (RMB) | 0.00 (USDT)")
	require.Contains(t, out, "Outstanding: 980.00 (RMB) | 108.89 (USDT)")
	require.Contains(t, out, "Commission due: 5.00 (RMB) | 0.56 (USDT)")
}

func TestRenderWithoutCommissionOmitsCommissionBlock(t *testing.T) {
	s := testSettings()
	s.CommissionRate = decimal.Zero
	at := time.Date(2025, 3, 14, 7, 4, 5, 0, time.UTC)

	e := entry(1, domain.EntryKindDeposit, "500", s, at)
	e.CommissionRate = decimal.Zero

	out := BuildSummary(s, []domain.LedgerEntry{e}, time.UTC).Render()

	require.NotContains(t, out, "[commission]")
	require.NotContains(t, out, "Commission due")
	require.Equal(t, 1, strings.Count(out, "001."))
}

func TestNormalizeCurrency(t *testing.T) {
	require.Equal(t, "RMB", NormalizeCurrency(""))
	require.Equal(t, "RMB", NormalizeCurrency("rmb"))
	require.Equal(t, "USDT", NormalizeCurrency(" usdt! "))
	require.Equal(t, "RMB", NormalizeCurrency("123"))
}
