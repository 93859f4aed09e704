package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/weiloon/settlebook/internal/auth"
	"github.com/weiloon/settlebook/internal/command"
	"github.com/weiloon/settlebook/internal/domain"
	"github.com/weiloon/settlebook/internal/logging"
	"github.com/weiloon/settlebook/internal/service"
)

type messageService interface {
	settingsService
	ledgerService
}

// MessageHandler is the chat webhook: it parses inbound message text into a
// typed command, dispatches to the ledger service and returns the reply the
// transport should post back to the chat.
type MessageHandler struct {
	svc             messageService
	defaultCurrency string
}

func NewMessageHandler(svc messageService, defaultCurrency string) *MessageHandler {
	if defaultCurrency == "" {
		defaultCurrency = domain.DefaultCurrency
	}
	return &MessageHandler{svc: svc, defaultCurrency: defaultCurrency}
}

type inboundMessage struct {
	ChatID      int64  `json:"chat_id"`
	UserID      int64  `json:"user_id"`
	DisplayName string `json:"display_name"`
	MessageID   int64  `json:"message_id"`
	Text        string `json:"text"`
}

type messageReply struct {
	Handled bool   `json:"handled"`
	Reply   string `json:"reply,omitempty"`
}

const menuText = "Settlement ledger ready.\n" +
	"/trade — configure rates\n" +
	"+<amount> — record a deposit\n" +
	"下发<amount> — record an issuance\n" +
	"- — undo the latest entry\n" +
	"删除订单<ref> — remove an entry by reference\n" +
	"/summary — settlement report\n" +
	"/reset — clear the ledger"

func (h *MessageHandler) Receive(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var msg inboundMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if msg.ChatID == 0 || msg.UserID == 0 {
		RespondValidationError(w, []FieldError{{Field: "chat_id/user_id", Message: "required"}})
		return
	}

	cmd, err := command.Parse(msg.Text)
	if err != nil {
		// ordinary chatter: acknowledged, no reply
		RespondSuccess(w, http.StatusOK, messageReply{Handled: false})
		return
	}

	reply, err := h.dispatch(r, msg, cmd)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateMessage) {
			RespondSuccess(w, http.StatusOK, messageReply{Handled: false})
			return
		}
		log.Warn("command failed", "error", err,
			logging.Account(domain.AccountKey{ChatID: msg.ChatID, UserID: msg.UserID}), "kind", cmd.Kind)
		RespondSuccess(w, http.StatusOK, messageReply{Handled: true, Reply: replyForError(err)})
		return
	}

	RespondSuccess(w, http.StatusOK, messageReply{Handled: true, Reply: reply})
}

func (h *MessageHandler) dispatch(r *http.Request, msg inboundMessage, cmd *command.Command) (string, error) {
	ctx := r.Context()
	key := domain.AccountKey{ChatID: msg.ChatID, UserID: msg.UserID}

	switch cmd.Kind {
	case command.KindMenu:
		return menuText, nil

	case command.KindConfigureTemplate:
		return "Copy the block below, adjust the numbers and send it back:\n" +
			command.ConfigureTemplate(h.defaultCurrency), nil

	case command.KindConfigure:
		if !isAdmin(r) {
			return "Not allowed: configuring rates requires an admin token.", nil
		}
		p := cmd.Configure
		if len(p.FieldErrors) > 0 {
			reply := "Settings rejected:"
			for _, fe := range p.FieldErrors {
				reply += "\n- " + fe
			}
			return reply, nil
		}
		settings, err := h.svc.ConfigureAccount(ctx, service.ConfigureRequest{
			Account:        key,
			Currency:       p.Currency,
			Rate:           p.Rate,
			FeeRate:        p.FeeRate,
			CommissionRate: p.CommissionRate,
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Settings saved\nCurrency: %s\nRate: %s\nFee: %s%%\nCommission: %s%%",
			settings.Currency, settings.Rate, settings.FeeRate, settings.CommissionRate), nil

	case command.KindDeposit:
		entry, err := h.svc.RecordDeposit(ctx, service.EntryRequest{
			Account:   key,
			Amount:    cmd.Amount,
			Name:      msg.DisplayName,
			MessageID: msg.MessageID,
		})
		if err != nil {
			return "", err
		}
		return h.entryReply(ctx, key, "Recorded +%s (ref %s)\n\n", entry)

	case command.KindIssue:
		entry, err := h.svc.RecordIssuance(ctx, service.EntryRequest{
			Account:   key,
			Amount:    cmd.Amount,
			Name:      msg.DisplayName,
			MessageID: msg.MessageID,
		})
		if err != nil {
			return "", err
		}
		return h.entryReply(ctx, key, "Issued %s (ref %s)\n\n", entry)

	case command.KindReverseLatest:
		entry, err := h.svc.ReverseLatest(ctx, key, msg.MessageID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Removed entry %s (%s %s)", entry.DisplaySequence(), entry.Kind, entry.RawAmount.StringFixed(1)), nil

	case command.KindReverseBySequence:
		entry, err := h.svc.ReverseBySequence(ctx, key, cmd.Sequence, msg.MessageID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Removed entry %s (%s %s)", entry.DisplaySequence(), entry.Kind, entry.RawAmount.StringFixed(1)), nil

	case command.KindSummary:
		summary, err := h.svc.GetSummary(ctx, key)
		if err != nil {
			return "", err
		}
		return summary.Render(), nil

	case command.KindReset:
		if !isAdmin(r) {
			return "Not allowed: resetting the ledger requires an admin token.", nil
		}
		if err := h.svc.ResetAccount(ctx, key); err != nil {
			return "", err
		}
		return "Ledger cleared. Settings were kept.", nil
	}

	return "", fmt.Errorf("dispatch: %w", command.ErrUnrecognized)
}

func (h *MessageHandler) entryReply(ctx context.Context, key domain.AccountKey, format string, entry *domain.LedgerEntry) (string, error) {
	summary, err := h.svc.GetSummary(ctx, key)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(format, entry.RawAmount.StringFixed(1), entry.DisplaySequence()) + summary.Render(), nil
}

func replyForError(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotConfigured):
		return "Configure the exchange rate first: send /trade and fill in the settings block."
	case errors.Is(err, domain.ErrNotFound):
		return "No matching entry to remove."
	case errors.Is(err, domain.ErrInvalidAmount):
		return "Amount must be greater than zero."
	case errors.Is(err, domain.ErrInvalidRate):
		return "Exchange rate must be greater than zero."
	case errors.Is(err, domain.ErrInvalidPercent):
		return "Fee and commission percentages must not be negative."
	default:
		return "Something went wrong; the entry was not recorded."
	}
}

func isAdmin(r *http.Request) bool {
	claims, ok := auth.ClaimsFromContext(r.Context())
	return ok && claims.Admin
}
