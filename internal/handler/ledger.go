package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/weiloon/settlebook/internal/derive"
	"github.com/weiloon/settlebook/internal/domain"
	"github.com/weiloon/settlebook/internal/logging"
	"github.com/weiloon/settlebook/internal/service"
)

type ledgerService interface {
	RecordDeposit(ctx context.Context, req service.EntryRequest) (*domain.LedgerEntry, error)
	RecordIssuance(ctx context.Context, req service.EntryRequest) (*domain.LedgerEntry, error)
	ReverseLatest(ctx context.Context, key domain.AccountKey, messageID int64) (*domain.LedgerEntry, error)
	ReverseBySequence(ctx context.Context, key domain.AccountKey, sequence int, messageID int64) (*domain.LedgerEntry, error)
	GetSummary(ctx context.Context, key domain.AccountKey) (*service.Summary, error)
	ResetAccount(ctx context.Context, key domain.AccountKey) error
}

type LedgerHandler struct {
	ledger ledgerService
}

func NewLedgerHandler(ledger ledgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

type entryRequest struct {
	ChatID    int64           `json:"chat_id"`
	UserID    int64           `json:"user_id"`
	Amount    decimal.Decimal `json:"amount"`
	Name      string          `json:"name"`
	MessageID int64           `json:"message_id"`
}

func (r entryRequest) Validate() []FieldError {
	var errs []FieldError
	if r.ChatID == 0 {
		errs = append(errs, FieldError{Field: "chat_id", Message: "required"})
	}
	if r.UserID == 0 {
		errs = append(errs, FieldError{Field: "user_id", Message: "required"})
	}
	if !r.Amount.IsPositive() {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than zero"})
	}
	return errs
}

type entryDTO struct {
	ID                  int64     `json:"id"`
	Sequence            string    `json:"sequence"`
	Kind                string    `json:"kind"`
	Name                string    `json:"name"`
	Amount              string    `json:"amount"`
	Rate                string    `json:"rate"`
	FeeRate             string    `json:"fee_rate"`
	CommissionRate      string    `json:"commission_rate"`
	Currency            string    `json:"currency"`
	AfterFee            string    `json:"after_fee"`
	ConvertedAfterFee   string    `json:"converted_after_fee"`
	Commission          string    `json:"commission"`
	CommissionConverted string    `json:"commission_converted"`
	CreatedAt           time.Time `json:"created_at"`
	Removed             bool      `json:"removed"`
}

func toEntryDTO(e *domain.LedgerEntry) entryDTO {
	b := derive.Compute(e.RawAmount, derive.Snapshot{
		Rate:           e.Rate,
		FeeRate:        e.FeeRate,
		CommissionRate: e.CommissionRate,
	})
	return entryDTO{
		ID:                  e.ID,
		Sequence:            e.DisplaySequence(),
		Kind:                string(e.Kind),
		Name:                e.Name,
		Amount:              e.RawAmount.String(),
		Rate:                e.Rate.String(),
		FeeRate:             e.FeeRate.String(),
		CommissionRate:      e.CommissionRate.String(),
		Currency:            e.Currency,
		AfterFee:            b.AfterFee.StringFixed(2),
		ConvertedAfterFee:   b.ConvertedAfterFee.StringFixed(2),
		Commission:          b.CommissionLocal.StringFixed(2),
		CommissionConverted: b.CommissionConverted.StringFixed(2),
		CreatedAt:           e.CreatedAt,
		Removed:             e.Removed,
	}
}

func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.recordEntry(w, r, h.ledger.RecordDeposit)
}

func (h *LedgerHandler) Issue(w http.ResponseWriter, r *http.Request) {
	h.recordEntry(w, r, h.ledger.RecordIssuance)
}

func (h *LedgerHandler) recordEntry(w http.ResponseWriter, r *http.Request, record func(context.Context, service.EntryRequest) (*domain.LedgerEntry, error)) {
	log := logging.FromContext(r.Context())

	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		RespondValidationError(w, errs)
		return
	}

	key := domain.AccountKey{ChatID: req.ChatID, UserID: req.UserID}
	entry, err := record(r.Context(), service.EntryRequest{
		Account:   key,
		Amount:    req.Amount,
		Name:      req.Name,
		MessageID: req.MessageID,
	})
	if err != nil {
		log.Warn("record entry failed", "error", err, logging.Account(key))
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toEntryDTO(entry))
}

type reversalRequest struct {
	ChatID    int64 `json:"chat_id"`
	UserID    int64 `json:"user_id"`
	Sequence  int   `json:"sequence"` // 0 removes the latest entry
	MessageID int64 `json:"message_id"`
}

func (r reversalRequest) Validate() []FieldError {
	var errs []FieldError
	if r.ChatID == 0 {
		errs = append(errs, FieldError{Field: "chat_id", Message: "required"})
	}
	if r.UserID == 0 {
		errs = append(errs, FieldError{Field: "user_id", Message: "required"})
	}
	if r.Sequence < 0 {
		errs = append(errs, FieldError{Field: "sequence", Message: "must not be negative"})
	}
	return errs
}

func (h *LedgerHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req reversalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		RespondValidationError(w, errs)
		return
	}

	key := domain.AccountKey{ChatID: req.ChatID, UserID: req.UserID}

	var entry *domain.LedgerEntry
	var err error
	if req.Sequence == 0 {
		entry, err = h.ledger.ReverseLatest(r.Context(), key, req.MessageID)
	} else {
		entry, err = h.ledger.ReverseBySequence(r.Context(), key, req.Sequence, req.MessageID)
	}
	if err != nil {
		log.Warn("reversal failed", "error", err, logging.Account(key), "sequence", req.Sequence)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toEntryDTO(entry))
}

func (h *LedgerHandler) Summary(w http.ResponseWriter, r *http.Request) {
	key, ok := accountKeyFromQuery(w, r)
	if !ok {
		return
	}

	summary, err := h.ledger.GetSummary(r.Context(), key)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]any{
		"report": summary.Render(),
	})
}

type resetRequest struct {
	ChatID int64 `json:"chat_id"`
	UserID int64 `json:"user_id"`
}

func (h *LedgerHandler) Reset(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if req.ChatID == 0 || req.UserID == 0 {
		RespondValidationError(w, []FieldError{{Field: "chat_id/user_id", Message: "required"}})
		return
	}

	key := domain.AccountKey{ChatID: req.ChatID, UserID: req.UserID}
	if err := h.ledger.ResetAccount(r.Context(), key); err != nil {
		log.Warn("reset failed", "error", err, logging.Account(key))
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]string{"status": "reset"})
}

func accountKeyFromQuery(w http.ResponseWriter, r *http.Request) (domain.AccountKey, bool) {
	chatID, err1 := strconv.ParseInt(r.URL.Query().Get("chat_id"), 10, 64)
	userID, err2 := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err1 != nil || err2 != nil || chatID == 0 || userID == 0 {
		RespondValidationError(w, []FieldError{{Field: "chat_id/user_id", Message: "required query parameters"}})
		return domain.AccountKey{}, false
	}
	return domain.AccountKey{ChatID: chatID, UserID: userID}, true
}
