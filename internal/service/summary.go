package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/weiloon/settlebook/internal/derive"
	"github.com/weiloon/settlebook/internal/domain"
)

// ConvertedUnit labels the converted side of the report. Settlement in this
// workflow is quoted against USDT regardless of the local currency.
const ConvertedUnit = "USDT"

// SummaryLine is one rendered ledger entry. Derived values come from the
// entry's own settings snapshot, never from current settings.
type SummaryLine struct {
	Sequence       string
	Kind           domain.EntryKind
	Time           string
	Name           string
	RawAmount      decimal.Decimal
	FeeMultiplier  decimal.Decimal
	Rate           decimal.Decimal
	CommissionRate decimal.Decimal
	Derived        derive.Breakdown
}

// Summary is the settlement report for one account.
type Summary struct {
	Currency       string
	Rate           decimal.Decimal
	FeeRate        decimal.Decimal
	CommissionRate decimal.Decimal

	DepositCount int
	Lines        []SummaryLine

	GrossTotal           decimal.Decimal
	PayableTotal         decimal.Decimal
	PayableConverted     decimal.Decimal
	IssuedTotal          decimal.Decimal
	IssuedConverted      decimal.Decimal
	OutstandingPayable   decimal.Decimal
	OutstandingConverted decimal.Decimal

	HasCommission         bool
	CommissionDue         decimal.Decimal
	CommissionDueConv     decimal.Decimal
	CommissionIssued      decimal.Decimal
	CommissionIssuedConv  decimal.Decimal
	CommissionOutstanding decimal.Decimal
	CommissionOutConv     decimal.Decimal
}

// BuildSummary aggregates an account's live entries. Per-entry math uses
// each entry's snapshot; only the top-line conversions use the current rate.
func BuildSummary(settings *domain.Settings, entries []domain.LedgerEntry, location *time.Location) *Summary {
	if location == nil {
		location = time.UTC
	}

	s := &Summary{
		Currency:       settings.Currency,
		Rate:           settings.Rate,
		FeeRate:        settings.FeeRate,
		CommissionRate: settings.CommissionRate,
	}

	for _, e := range entries {
		b := derive.Compute(e.RawAmount, derive.Snapshot{
			Rate:           e.Rate,
			FeeRate:        e.FeeRate,
			CommissionRate: e.CommissionRate,
		})

		switch e.Kind {
		case domain.EntryKindDeposit:
			s.DepositCount++
			s.GrossTotal = s.GrossTotal.Add(e.RawAmount)
			s.PayableTotal = s.PayableTotal.Add(b.AfterFee)
			s.CommissionDue = s.CommissionDue.Add(b.CommissionLocal)
		case domain.EntryKindReversal:
			s.GrossTotal = s.GrossTotal.Sub(e.RawAmount)
			s.PayableTotal = s.PayableTotal.Sub(b.AfterFee)
			s.CommissionDue = s.CommissionDue.Sub(b.CommissionLocal)
		case domain.EntryKindIssuance:
			s.IssuedTotal = s.IssuedTotal.Add(e.RawAmount)
		case domain.EntryKindIssuanceReversal:
			s.IssuedTotal = s.IssuedTotal.Sub(e.RawAmount)
		}

		if e.CommissionRate.IsPositive() {
			s.HasCommission = true
		}

		s.Lines = append(s.Lines, SummaryLine{
			Sequence:       e.DisplaySequence(),
			Kind:           e.Kind,
			Time:           e.CreatedAt.In(location).Format("15:04:05"),
			Name:           e.Name,
			RawAmount:      e.RawAmount,
			FeeMultiplier:  derive.FeeMultiplier(e.FeeRate),
			Rate:           e.Rate,
			CommissionRate: e.CommissionRate,
			Derived:        b,
		})
	}

	s.OutstandingPayable = s.PayableTotal.Sub(s.IssuedTotal)
	s.CommissionOutstanding = s.CommissionDue.Sub(s.CommissionIssued)

	s.PayableConverted = derive.Convert(s.PayableTotal, settings.Rate)
	s.IssuedConverted = derive.Convert(s.IssuedTotal, settings.Rate)
	s.OutstandingConverted = derive.Convert(s.OutstandingPayable, settings.Rate)
	s.CommissionDueConv = derive.Convert(s.CommissionDue, settings.Rate)
	s.CommissionIssuedConv = derive.Convert(s.CommissionIssued, settings.Rate)
	s.CommissionOutConv = derive.Convert(s.CommissionOutstanding, settings.Rate)

	return s
}

// Render produces the report text sent back to the chat.
func (s *Summary) Render() string {
	var b strings.Builder

	for _, line := range s.Lines {
		switch line.Kind {
		case domain.EntryKindIssuance:
			fmt.Fprintf(&b, "%s. %s issued %s | %s (%s)  %s\n",
				line.Sequence, line.Time,
				line.RawAmount.StringFixed(1),
				derive.Convert(line.RawAmount, line.Rate).StringFixed(2), ConvertedUnit,
				line.Name,
			)
		case domain.EntryKindIssuanceReversal:
			fmt.Fprintf(&b, "%s. %s issuance reversed %s  %s\n",
				line.Sequence, line.Time, line.RawAmount.StringFixed(1), line.Name,
			)
		default:
			fmt.Fprintf(&b, "%s. %s %s*%s/%s = %s  %s\n",
				line.Sequence, line.Time,
				line.RawAmount.StringFixed(1),
				line.FeeMultiplier.StringFixed(2),
				line.Rate.String(),
				line.Derived.ConvertedAfterFee.StringFixed(2),
				line.Name,
			)
			if line.CommissionRate.IsPositive() {
				fmt.Fprintf(&b, "%s. %s %s*%s = %s [commission]\n",
					line.Sequence, line.Time,
					line.RawAmount.StringFixed(1),
					line.CommissionRate.Div(decimal.NewFromInt(100)).StringFixed(3),
					line.Derived.CommissionLocal.StringFixed(2),
				)
			}
		}
	}

	fmt.Fprintf(&b, "\nDeposited (%d): %s (%s)\n", s.DepositCount, s.GrossTotal.StringFixed(1), s.Currency)
	fmt.Fprintf(&b, "Rate: %s\n", s.Rate.String())
	fmt.Fprintf(&b, "Fee: %s%%\n", s.FeeRate.String())
	fmt.Fprintf(&b, "Commission: %s%%\n\n", s.CommissionRate.String())

	fmt.Fprintf(&b, "Payable: %s (%s) | %s (%s)\n",
		s.PayableTotal.StringFixed(2), s.Currency, s.PayableConverted.StringFixed(2), ConvertedUnit)
	fmt.Fprintf(&b, "Issued: %s (%s) | %s (%s)\n",
		s.IssuedTotal.StringFixed(2), s.Currency, s.IssuedConverted.StringFixed(2), ConvertedUnit)
	fmt.Fprintf(&b, "Outstanding: %s (%s) | %s (%s)\n",
		s.OutstandingPayable.StringFixed(2), s.Currency, s.OutstandingConverted.StringFixed(2), ConvertedUnit)

	if s.HasCommission {
		fmt.Fprintf(&b, "\nCommission due: %s (%s) | %s (%s)\n",
			s.CommissionDue.StringFixed(2), s.Currency, s.CommissionDueConv.StringFixed(2), ConvertedUnit)
		fmt.Fprintf(&b, "Commission issued: %s (%s) | %s (%s)\n",
			s.CommissionIssued.StringFixed(2), s.Currency, s.CommissionIssuedConv.StringFixed(2), ConvertedUnit)
		fmt.Fprintf(&b, "Commission outstanding: %s (%s) | %s (%s)\n",
			s.CommissionOutstanding.StringFixed(2), s.Currency, s.CommissionOutConv.StringFixed(2), ConvertedUnit)
	}

	return b.String()
}
