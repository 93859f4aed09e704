package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/weiloon/settlebook/internal/domain"
)

type SettingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context, key domain.AccountKey) (*domain.Settings, error) {
	var s domain.Settings
	err := r.db.QueryRowContext(ctx,
		`SELECT chat_id, user_id, currency, rate, fee_rate, commission_rate
		FROM settings WHERE chat_id = $1 AND user_id = $2`,
		key.ChatID, key.UserID,
	).Scan(&s.ChatID, &s.UserID, &s.Currency, &s.Rate, &s.FeeRate, &s.CommissionRate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("Get: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return &s, nil
}

// Upsert replaces the whole settings record for the account. Fields are
// never merged individually.
func (r *SettingsRepository) Upsert(ctx context.Context, s *domain.Settings) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (chat_id, user_id, currency, rate, fee_rate, commission_rate, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (chat_id, user_id) DO UPDATE SET
			currency = EXCLUDED.currency,
			rate = EXCLUDED.rate,
			fee_rate = EXCLUDED.fee_rate,
			commission_rate = EXCLUDED.commission_rate,
			updated_at = EXCLUDED.updated_at`,
		s.ChatID, s.UserID, s.Currency, s.Rate, s.FeeRate, s.CommissionRate, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}
