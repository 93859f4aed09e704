// Package derive computes the money fields attached to a ledger entry at
// creation time: the fee-adjusted amount, its converted value, and the
// commission amounts. All arithmetic is done on decimals at full precision;
// rounding happens once, as the final step of each derived value.
package derive

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CeilTo2 rounds up at the hundredths place: ceil(x*100)/100. The ledger
// keeper must never be short-credited, so this is used instead of
// half-up rounding for every derived value.
func CeilTo2(d decimal.Decimal) decimal.Decimal {
	return d.Mul(hundred).Ceil().Div(hundred)
}

// Snapshot is the slice of settings an entry captures at creation time.
type Snapshot struct {
	Rate           decimal.Decimal
	FeeRate        decimal.Decimal
	CommissionRate decimal.Decimal
}

// Breakdown holds the four derived values for one raw amount.
type Breakdown struct {
	AfterFee            decimal.Decimal
	ConvertedAfterFee   decimal.Decimal
	CommissionLocal     decimal.Decimal
	CommissionConverted decimal.Decimal
}

// FeeMultiplier returns 1 - feeRate/100, the factor applied to a raw amount.
func FeeMultiplier(feeRate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(1).Sub(feeRate.Div(hundred))
}

// Compute derives all entry-level money fields from a raw amount and a
// settings snapshot. A zero rate never divides; converted values are zero.
func Compute(raw decimal.Decimal, snap Snapshot) Breakdown {
	afterFee := raw.Mul(FeeMultiplier(snap.FeeRate))
	commission := raw.Abs().Mul(snap.CommissionRate).Div(hundred)

	var converted, commissionConverted decimal.Decimal
	if snap.Rate.IsPositive() {
		converted = CeilTo2(afterFee.Div(snap.Rate))
		commissionConverted = CeilTo2(CeilTo2(commission).Div(snap.Rate))
	}

	return Breakdown{
		AfterFee:            CeilTo2(afterFee),
		ConvertedAfterFee:   converted,
		CommissionLocal:     CeilTo2(commission),
		CommissionConverted: commissionConverted,
	}
}

// Convert divides a local amount by rate and rounds up, returning zero when
// the rate is not positive.
func Convert(local, rate decimal.Decimal) decimal.Decimal {
	if !rate.IsPositive() {
		return decimal.Zero
	}
	return CeilTo2(local.Div(rate))
}
