package command

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParseDeposits(t *testing.T) {
	tests := []struct {
		text   string
		amount string
	}{
		{"+1000", "1000"},
		{"+ 1000", "1000"},
		{"+1000.50", "1000.5"},
		{"入1000", "1000"},
		{"入笔 250.5", "250.5"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			cmd, err := Parse(tt.text)
			require.NoError(t, err)
			require.Equal(t, KindDeposit, cmd.Kind)
			require.True(t, cmd.Amount.Equal(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestParseIssuance(t *testing.T) {
	cmd, err := Parse("下发500")
	require.NoError(t, err)
	require.Equal(t, KindIssue, cmd.Kind)
	require.True(t, cmd.Amount.Equal(decimal.NewFromInt(500)))
}

func TestParseReversals(t *testing.T) {
	cmd, err := Parse("-")
	require.NoError(t, err)
	require.Equal(t, KindReverseLatest, cmd.Kind)

	cmd, err = Parse("- 300")
	require.NoError(t, err)
	require.Equal(t, KindReverseLatest, cmd.Kind)

	cmd, err = Parse("删除订单 007")
	require.NoError(t, err)
	require.Equal(t, KindReverseBySequence, cmd.Kind)
	require.Equal(t, 7, cmd.Sequence)

	cmd, err = Parse("删除订单12")
	require.NoError(t, err)
	require.Equal(t, 12, cmd.Sequence)
}

func TestParseKeywords(t *testing.T) {
	tests := []struct {
		text string
		kind Kind
	}{
		{"/start", KindMenu},
		{"记账", KindMenu},
		{"/trade", KindConfigureTemplate},
		{"💱 设置交易", KindConfigureTemplate},
		{"/summary", KindSummary},
		{"📊 汇总", KindSummary},
		{"汇总", KindSummary},
		{"/reset", KindReset},
		{"🔁 清空记录", KindReset},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			cmd, err := Parse(tt.text)
			require.NoError(t, err)
			require.Equal(t, tt.kind, cmd.Kind)
		})
	}
}

func TestParseConfigureBlock(t *testing.T) {
	cmd, err := Parse("设置交易指令\n设置货币：rmb\n设置汇率：9\n设置费率：2\n中介佣金：0.5")
	require.NoError(t, err)
	require.Equal(t, KindConfigure, cmd.Kind)

	p := cmd.Configure
	require.Empty(t, p.FieldErrors)
	require.Equal(t, "rmb", p.Currency)
	require.True(t, p.HasRate)
	require.True(t, p.Rate.Equal(decimal.NewFromInt(9)))
	require.True(t, p.FeeRate.Equal(decimal.NewFromInt(2)))
	require.True(t, p.CommissionRate.Equal(decimal.RequireFromString("0.5")))
}

func TestParseConfigureASCIIColons(t *testing.T) {
	cmd, err := Parse("设置交易指令\n设置汇率: 7.2")
	require.NoError(t, err)
	require.True(t, cmd.Configure.HasRate)
	require.True(t, cmd.Configure.Rate.Equal(decimal.RequireFromString("7.2")))
}

func TestParseConfigureMissingRate(t *testing.T) {
	cmd, err := Parse("设置交易指令\n设置货币：RMB\n设置费率：2")
	require.NoError(t, err)
	require.False(t, cmd.Configure.HasRate)
	require.NotEmpty(t, cmd.Configure.FieldErrors)
}

func TestParseConfigureBadNumber(t *testing.T) {
	cmd, err := Parse("设置交易指令\n设置汇率：abc")
	require.NoError(t, err)
	require.False(t, cmd.Configure.HasRate)
	require.NotEmpty(t, cmd.Configure.FieldErrors)
}

func TestParseUnrecognized(t *testing.T) {
	for _, text := range []string{"", "hello", "+-100", "下发", "删除订单", "plus 100"} {
		_, err := Parse(text)
		require.ErrorIs(t, err, ErrUnrecognized, "text %q", text)
	}
}
