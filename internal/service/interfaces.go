package service

import (
	"context"
	"database/sql"

	"github.com/weiloon/settlebook/internal/domain"
)

type settingsRepository interface {
	Get(ctx context.Context, key domain.AccountKey) (*domain.Settings, error)
	Upsert(ctx context.Context, s *domain.Settings) error
}

type ledgerRepository interface {
	LockAccount(ctx context.Context, tx *sql.Tx, key domain.AccountKey) error
	Insert(ctx context.Context, tx *sql.Tx, e *domain.LedgerEntry) error
	ListActive(ctx context.Context, key domain.AccountKey) ([]domain.LedgerEntry, error)
	LatestActive(ctx context.Context, tx *sql.Tx, key domain.AccountKey) (*domain.LedgerEntry, error)
	GetBySequence(ctx context.Context, tx *sql.Tx, key domain.AccountKey, sequence int) (*domain.LedgerEntry, error)
	MarkRemoved(ctx context.Context, tx *sql.Tx, id int64) error
	DeleteAll(ctx context.Context, tx *sql.Tx, key domain.AccountKey) error
}

type messageRepository interface {
	MarkProcessed(ctx context.Context, tx *sql.Tx, chatID, messageID int64) (bool, error)
}

type txBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
