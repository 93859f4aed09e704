package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/weiloon/settlebook/internal/domain"
	"github.com/weiloon/settlebook/internal/logging"
	"github.com/weiloon/settlebook/internal/service"
)

type settingsService interface {
	ConfigureAccount(ctx context.Context, req service.ConfigureRequest) (*domain.Settings, error)
}

type SettingsHandler struct {
	settings settingsService
}

func NewSettingsHandler(settings settingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

type configureRequest struct {
	ChatID         int64           `json:"chat_id"`
	UserID         int64           `json:"user_id"`
	Currency       string          `json:"currency"`
	Rate           decimal.Decimal `json:"rate"`
	FeeRate        decimal.Decimal `json:"fee_rate"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
}

func (r configureRequest) Validate() []FieldError {
	var errs []FieldError
	if r.ChatID == 0 {
		errs = append(errs, FieldError{Field: "chat_id", Message: "required"})
	}
	if r.UserID == 0 {
		errs = append(errs, FieldError{Field: "user_id", Message: "required"})
	}
	if !r.Rate.IsPositive() {
		errs = append(errs, FieldError{Field: "rate", Message: "must be greater than zero"})
	}
	if r.FeeRate.IsNegative() {
		errs = append(errs, FieldError{Field: "fee_rate", Message: "must not be negative"})
	}
	if r.CommissionRate.IsNegative() {
		errs = append(errs, FieldError{Field: "commission_rate", Message: "must not be negative"})
	}
	return errs
}

type settingsDTO struct {
	ChatID         int64  `json:"chat_id"`
	UserID         int64  `json:"user_id"`
	Currency       string `json:"currency"`
	Rate           string `json:"rate"`
	FeeRate        string `json:"fee_rate"`
	CommissionRate string `json:"commission_rate"`
}

func toSettingsDTO(s *domain.Settings) settingsDTO {
	return settingsDTO{
		ChatID:         s.ChatID,
		UserID:         s.UserID,
		Currency:       s.Currency,
		Rate:           s.Rate.String(),
		FeeRate:        s.FeeRate.String(),
		CommissionRate: s.CommissionRate.String(),
	}
}

func (h *SettingsHandler) Configure(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req configureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		RespondValidationError(w, errs)
		return
	}

	key := domain.AccountKey{ChatID: req.ChatID, UserID: req.UserID}
	settings, err := h.settings.ConfigureAccount(r.Context(), service.ConfigureRequest{
		Account:        key,
		Currency:       req.Currency,
		Rate:           req.Rate,
		FeeRate:        req.FeeRate,
		CommissionRate: req.CommissionRate,
	})
	if err != nil {
		log.Warn("configure failed", "error", err, logging.Account(key))
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toSettingsDTO(settings))
}
