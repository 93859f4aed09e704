package command

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// The chat grammar is fixed by years of operator habit: "+1000" or "入1000"
// books a deposit, "下发500" an issuance, "-" undoes the latest entry,
// "删除订单007" removes an entry by reference number, and the multi-line
// "设置交易指令" block reconfigures the account.
var (
	depositPattern = regexp.MustCompile(`^(?:\+|入笔|入)\s*(\d+(?:\.\d+)?)$`)
	issuePattern   = regexp.MustCompile(`^下发\s*(\d+(?:\.\d+)?)$`)
	undoPattern    = regexp.MustCompile(`^-\s*(?:\d+(?:\.\d+)?)?$`)
	removePattern  = regexp.MustCompile(`^删除订单\s*(\d+)$`)
	numberPattern  = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

const configurePrefix = "设置交易指令"

// Parse classifies one chat message. ErrUnrecognized means the message is
// ordinary chatter and should be ignored, not answered with an error.
func Parse(text string) (*Command, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrUnrecognized
	}

	switch text {
	case "/start", "记账":
		return &Command{Kind: KindMenu}, nil
	case "/trade", "设置交易", "💱 设置交易":
		return &Command{Kind: KindConfigureTemplate}, nil
	case "/summary", "汇总", "📊 汇总":
		return &Command{Kind: KindSummary}, nil
	case "/reset", "🔁 清空记录":
		return &Command{Kind: KindReset}, nil
	}

	if strings.HasPrefix(text, configurePrefix) {
		return &Command{Kind: KindConfigure, Configure: parseConfigure(text)}, nil
	}

	if m := depositPattern.FindStringSubmatch(text); m != nil {
		amount, err := decimal.NewFromString(m[1])
		if err != nil {
			return nil, ErrUnrecognized
		}
		return &Command{Kind: KindDeposit, Amount: amount}, nil
	}

	if m := issuePattern.FindStringSubmatch(text); m != nil {
		amount, err := decimal.NewFromString(m[1])
		if err != nil {
			return nil, ErrUnrecognized
		}
		return &Command{Kind: KindIssue, Amount: amount}, nil
	}

	if m := removePattern.FindStringSubmatch(text); m != nil {
		seq, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, ErrUnrecognized
		}
		return &Command{Kind: KindReverseBySequence, Sequence: seq}, nil
	}

	if undoPattern.MatchString(text) {
		return &Command{Kind: KindReverseLatest}, nil
	}

	return nil, ErrUnrecognized
}

// parseConfigure reads the line-oriented settings block. Operators type
// full-width colons as often as ASCII ones, so both are accepted.
func parseConfigure(text string) ConfigurePayload {
	var p ConfigurePayload
	text = strings.ReplaceAll(text, "：", ":")

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "设置货币"):
			if _, v, ok := strings.Cut(line, ":"); ok {
				p.Currency = strings.TrimSpace(v)
			}
		case strings.HasPrefix(line, "设置汇率"):
			if d, ok := parseLineNumber(line); ok {
				p.Rate = d
				p.HasRate = true
			} else {
				p.FieldErrors = append(p.FieldErrors, "rate: expected a number after 设置汇率")
			}
		case strings.HasPrefix(line, "设置费率"):
			if d, ok := parseLineNumber(line); ok {
				p.FeeRate = d
			} else {
				p.FieldErrors = append(p.FieldErrors, "fee: expected a number after 设置费率")
			}
		case strings.HasPrefix(line, "中介佣金"):
			if d, ok := parseLineNumber(line); ok {
				p.CommissionRate = d
			} else {
				p.FieldErrors = append(p.FieldErrors, "commission: expected a number after 中介佣金")
			}
		}
	}

	if !p.HasRate && len(p.FieldErrors) == 0 {
		p.FieldErrors = append(p.FieldErrors, "rate: 设置汇率 is required")
	}

	return p
}

func parseLineNumber(line string) (decimal.Decimal, bool) {
	m := numberPattern.FindString(line)
	if m == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ConfigureTemplate is the fill-in block sent back when an operator asks how
// to configure the account.
func ConfigureTemplate(currency string) string {
	return fmt.Sprintf("设置交易指令\n设置货币：%s\n设置汇率：0\n设置费率：0\n中介佣金：0", currency)
}
