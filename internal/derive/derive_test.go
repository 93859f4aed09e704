package derive

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCeilTo2(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12.341", "12.35"},
		{"12.34", "12.34"},
		{"12.3400001", "12.35"},
		{"0", "0"},
		{"108.8888888888", "108.89"},
		{"0.001", "0.01"},
		{"5", "5"},
		{"-1.005", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := CeilTo2(dec(tt.in))
			require.True(t, got.Equal(dec(tt.want)), "CeilTo2(%s) = %s, want %s", tt.in, got, tt.want)
		})
	}
}

// CeilTo2 never rounds below the input and never overshoots by a full cent.
func TestCeilTo2Bounds(t *testing.T) {
	inputs := []string{"0.001", "1.111", "99.999", "12.341", "7", "1234.5601", "0.009999"}
	cent := dec("0.01")
	for _, in := range inputs {
		x := dec(in)
		r := CeilTo2(x)
		require.True(t, r.GreaterThanOrEqual(x), "CeilTo2(%s) < input", in)
		require.True(t, r.Sub(x).LessThan(cent), "CeilTo2(%s) overshoots by >= 0.01", in)
	}
}

func TestComputeScenario(t *testing.T) {
	// configure (rate=9, fee=2, commission=0.5); deposit 1000
	snap := Snapshot{
		Rate:           dec("9"),
		FeeRate:        dec("2"),
		CommissionRate: dec("0.5"),
	}

	b := Compute(dec("1000"), snap)

	require.True(t, b.AfterFee.Equal(dec("980")), "AfterFee = %s", b.AfterFee)
	require.True(t, b.ConvertedAfterFee.Equal(dec("108.89")), "ConvertedAfterFee = %s", b.ConvertedAfterFee)
	require.True(t, b.CommissionLocal.Equal(dec("5")), "CommissionLocal = %s", b.CommissionLocal)
	require.True(t, b.CommissionConverted.Equal(dec("0.56")), "CommissionConverted = %s", b.CommissionConverted)
}

func TestComputeZeroRate(t *testing.T) {
	snap := Snapshot{
		Rate:           decimal.Zero,
		FeeRate:        dec("2"),
		CommissionRate: dec("1"),
	}

	b := Compute(dec("500"), snap)

	require.True(t, b.AfterFee.Equal(dec("490")))
	require.True(t, b.ConvertedAfterFee.IsZero(), "converted must be zero when rate is zero")
	require.True(t, b.CommissionLocal.Equal(dec("5")))
	require.True(t, b.CommissionConverted.IsZero())
}

func TestComputeNoFeeNoCommission(t *testing.T) {
	snap := Snapshot{Rate: dec("7.2")}

	b := Compute(dec("1000"), snap)

	require.True(t, b.AfterFee.Equal(dec("1000")))
	// 1000/7.2 = 138.888... rounds up
	require.True(t, b.ConvertedAfterFee.Equal(dec("138.89")))
	require.True(t, b.CommissionLocal.IsZero())
	require.True(t, b.CommissionConverted.IsZero())
}

func TestCommissionUsesAbsoluteAmount(t *testing.T) {
	snap := Snapshot{Rate: dec("9"), CommissionRate: dec("0.5")}

	b := Compute(dec("-1000"), snap)

	require.True(t, b.CommissionLocal.Equal(dec("5")), "commission must be computed on |amount|")
}

func TestConvert(t *testing.T) {
	require.True(t, Convert(dec("980"), dec("9")).Equal(dec("108.89")))
	require.True(t, Convert(dec("980"), decimal.Zero).IsZero())
	require.True(t, Convert(dec("980"), dec("-1")).IsZero())
}
