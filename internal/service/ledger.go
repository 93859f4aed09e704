package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/weiloon/settlebook/internal/domain"
	"github.com/weiloon/settlebook/internal/logging"
)

// LedgerService implements the settlement bookkeeping operations: account
// configuration, deposits, issuances, reversals, reset and the summary.
type LedgerService struct {
	db       txBeginner
	settings settingsRepository
	ledger   ledgerRepository
	messages messageRepository
	location *time.Location
}

func NewLedgerService(db txBeginner, settings settingsRepository, ledger ledgerRepository, messages messageRepository, location *time.Location) *LedgerService {
	if location == nil {
		location = time.UTC
	}
	return &LedgerService{
		db:       db,
		settings: settings,
		ledger:   ledger,
		messages: messages,
		location: location,
	}
}

type ConfigureRequest struct {
	Account        domain.AccountKey
	Currency       string
	Rate           decimal.Decimal
	FeeRate        decimal.Decimal
	CommissionRate decimal.Decimal
}

var currencyPattern = regexp.MustCompile(`[^A-Z]`)

// NormalizeCurrency uppercases the code and strips everything but letters,
// falling back to the default when nothing is left.
func NormalizeCurrency(code string) string {
	code = currencyPattern.ReplaceAllString(strings.ToUpper(strings.TrimSpace(code)), "")
	if code == "" {
		return domain.DefaultCurrency
	}
	return code
}

// ConfigureAccount replaces the account's settings record. The rate is
// required and must be positive; fee and commission default to zero and must
// not be negative. Reconfiguring never touches existing ledger entries:
// their snapshots keep the rates in force when they were written.
func (s *LedgerService) ConfigureAccount(ctx context.Context, req ConfigureRequest) (*domain.Settings, error) {
	log := logging.FromContext(ctx)

	if !req.Rate.IsPositive() {
		return nil, fmt.Errorf("ConfigureAccount: %w", domain.ErrInvalidRate)
	}
	if req.FeeRate.IsNegative() || req.CommissionRate.IsNegative() {
		return nil, fmt.Errorf("ConfigureAccount: %w", domain.ErrInvalidPercent)
	}

	settings := &domain.Settings{
		ChatID:         req.Account.ChatID,
		UserID:         req.Account.UserID,
		Currency:       NormalizeCurrency(req.Currency),
		Rate:           req.Rate,
		FeeRate:        req.FeeRate,
		CommissionRate: req.CommissionRate,
	}

	if err := s.settings.Upsert(ctx, settings); err != nil {
		return nil, fmt.Errorf("ConfigureAccount: %w", err)
	}

	log.Info("account configured",
		logging.Account(settings.Key()),
		"currency", settings.Currency,
		"rate", settings.Rate,
		"fee_rate", settings.FeeRate,
		"commission_rate", settings.CommissionRate,
	)

	return settings, nil
}

type EntryRequest struct {
	Account   domain.AccountKey
	Amount    decimal.Decimal
	Name      string
	MessageID int64
}

// RecordDeposit books an incoming payment against the current settings
// snapshot and assigns the next sequence number.
func (s *LedgerService) RecordDeposit(ctx context.Context, req EntryRequest) (*domain.LedgerEntry, error) {
	e, err := s.recordEntry(ctx, req, domain.EntryKindDeposit)
	if err != nil {
		return nil, fmt.Errorf("RecordDeposit: %w", err)
	}
	return e, nil
}

// RecordIssuance books disbursed funds. Issuances reduce the outstanding
// payable but carry a snapshot like any other entry.
func (s *LedgerService) RecordIssuance(ctx context.Context, req EntryRequest) (*domain.LedgerEntry, error) {
	e, err := s.recordEntry(ctx, req, domain.EntryKindIssuance)
	if err != nil {
		return nil, fmt.Errorf("RecordIssuance: %w", err)
	}
	return e, nil
}

func (s *LedgerService) recordEntry(ctx context.Context, req EntryRequest, kind domain.EntryKind) (*domain.LedgerEntry, error) {
	log := logging.FromContext(ctx)

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("recordEntry: %w", domain.ErrInvalidAmount)
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("recordEntry: kind %q: %w", kind, domain.ErrInvalidKind)
	}

	settings, err := s.configuredSettings(ctx, req.Account)
	if err != nil {
		return nil, fmt.Errorf("recordEntry: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("recordEntry: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.ledger.LockAccount(ctx, tx, req.Account); err != nil {
		return nil, fmt.Errorf("recordEntry: %w", err)
	}

	if err := s.claimMessage(ctx, tx, req.Account.ChatID, req.MessageID); err != nil {
		return nil, fmt.Errorf("recordEntry: %w", err)
	}

	entry := &domain.LedgerEntry{
		ChatID:         req.Account.ChatID,
		UserID:         req.Account.UserID,
		Kind:           kind,
		Name:           req.Name,
		RawAmount:      req.Amount,
		Rate:           settings.Rate,
		FeeRate:        settings.FeeRate,
		CommissionRate: settings.CommissionRate,
		Currency:       settings.Currency,
		CreatedAt:      time.Now().UTC(),
		MessageID:      req.MessageID,
	}

	if err := s.ledger.Insert(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("recordEntry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("recordEntry: commit: %w", err)
	}

	log.Info("ledger entry recorded",
		logging.Account(entry.Key()),
		"kind", entry.Kind,
		"sequence", entry.Sequence,
		"amount", entry.RawAmount,
	)

	return entry, nil
}

// ReverseLatest removes the chronologically latest live entry. The row is
// kept with its sequence; later entries are never renumbered.
func (s *LedgerService) ReverseLatest(ctx context.Context, key domain.AccountKey, messageID int64) (*domain.LedgerEntry, error) {
	e, err := s.reverse(ctx, key, messageID, func(ctx context.Context, tx *sql.Tx) (*domain.LedgerEntry, error) {
		return s.ledger.LatestActive(ctx, tx, key)
	})
	if err != nil {
		return nil, fmt.Errorf("ReverseLatest: %w", err)
	}
	return e, nil
}

// ReverseBySequence removes the live entry carrying the given reference
// number.
func (s *LedgerService) ReverseBySequence(ctx context.Context, key domain.AccountKey, sequence int, messageID int64) (*domain.LedgerEntry, error) {
	e, err := s.reverse(ctx, key, messageID, func(ctx context.Context, tx *sql.Tx) (*domain.LedgerEntry, error) {
		return s.ledger.GetBySequence(ctx, tx, key, sequence)
	})
	if err != nil {
		return nil, fmt.Errorf("ReverseBySequence: %w", err)
	}
	return e, nil
}

func (s *LedgerService) reverse(ctx context.Context, key domain.AccountKey, messageID int64, resolve func(context.Context, *sql.Tx) (*domain.LedgerEntry, error)) (*domain.LedgerEntry, error) {
	log := logging.FromContext(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("reverse: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.ledger.LockAccount(ctx, tx, key); err != nil {
		return nil, fmt.Errorf("reverse: %w", err)
	}

	if err := s.claimMessage(ctx, tx, key.ChatID, messageID); err != nil {
		return nil, fmt.Errorf("reverse: %w", err)
	}

	entry, err := resolve(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("reverse: %w", err)
	}

	if err := s.ledger.MarkRemoved(ctx, tx, entry.ID); err != nil {
		return nil, fmt.Errorf("reverse: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("reverse: commit: %w", err)
	}

	entry.Removed = true

	log.Info("ledger entry reversed",
		logging.Account(entry.Key()),
		"sequence", entry.Sequence,
		"amount", entry.RawAmount,
	)

	return entry, nil
}

// ResetAccount clears the account's ledger. Settings survive, so the
// operator does not have to reconfigure rates after a reset. The wipe takes
// the account lock like every other mutation: a reset racing an in-flight
// insert would otherwise leave a committed high sequence behind, and the
// counter would collide with it on a later insert.
func (s *LedgerService) ResetAccount(ctx context.Context, key domain.AccountKey) error {
	log := logging.FromContext(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ResetAccount: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.ledger.LockAccount(ctx, tx, key); err != nil {
		return fmt.Errorf("ResetAccount: %w", err)
	}

	if err := s.ledger.DeleteAll(ctx, tx, key); err != nil {
		return fmt.Errorf("ResetAccount: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ResetAccount: commit: %w", err)
	}

	log.Info("account ledger reset", logging.Account(key))
	return nil
}

// GetSummary reconstructs the settlement report from the account's live
// entries and current settings.
func (s *LedgerService) GetSummary(ctx context.Context, key domain.AccountKey) (*Summary, error) {
	settings, err := s.settings.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("GetSummary: %w", domain.ErrNotConfigured)
		}
		return nil, fmt.Errorf("GetSummary: %w", err)
	}

	entries, err := s.ledger.ListActive(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("GetSummary: %w", err)
	}

	return BuildSummary(settings, entries, s.location), nil
}

// claimMessage records the chat message id inside the mutation's own
// transaction so a redelivered webhook cannot apply the mutation twice.
// A zero id means the mutation did not come from a chat message.
func (s *LedgerService) claimMessage(ctx context.Context, tx *sql.Tx, chatID, messageID int64) error {
	if messageID == 0 {
		return nil
	}
	fresh, err := s.messages.MarkProcessed(ctx, tx, chatID, messageID)
	if err != nil {
		return err
	}
	if !fresh {
		return domain.ErrDuplicateMessage
	}
	return nil
}

func (s *LedgerService) configuredSettings(ctx context.Context, key domain.AccountKey) (*domain.Settings, error) {
	settings, err := s.settings.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotConfigured
		}
		return nil, err
	}
	if !settings.Configured() {
		return nil, domain.ErrNotConfigured
	}
	return settings, nil
}
