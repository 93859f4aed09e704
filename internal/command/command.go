// Package command turns free-form chat text into typed commands. The ledger
// core never sees raw message text; this package is the only place the chat
// grammar lives.
package command

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrUnrecognized = errors.New("unrecognized command")

type Kind string

const (
	KindMenu              Kind = "menu"
	KindConfigureTemplate Kind = "configure_template"
	KindConfigure         Kind = "configure"
	KindDeposit           Kind = "deposit"
	KindIssue             Kind = "issue"
	KindReverseLatest     Kind = "reverse_latest"
	KindReverseBySequence Kind = "reverse_by_sequence"
	KindSummary           Kind = "summary"
	KindReset             Kind = "reset"
)

// ConfigurePayload carries the parsed settings block. Rate is the only
// required field; the others fall back to defaults when absent.
type ConfigurePayload struct {
	Currency       string
	Rate           decimal.Decimal
	HasRate        bool
	FeeRate        decimal.Decimal
	CommissionRate decimal.Decimal
	FieldErrors    []string
}

type Command struct {
	Kind      Kind
	Amount    decimal.Decimal
	Sequence  int
	Configure ConfigurePayload
}
