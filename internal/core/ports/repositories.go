package ports

import (
	"context"
	"errors"

	"player-wallet-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Storage-agnostic outcome sentinels. The postgres adapter maps driver
// errors (conditional-update misses, 23505 unique violations) onto these so
// the mutation engine can tell a retryable conflict from a terminal outcome
// without inspecting driver types.
var (
	// ErrVersionConflict means the wallet row changed since it was read:
	// the conditional balance write matched zero rows.
	ErrVersionConflict = errors.New("wallet version conflict")

	// ErrDuplicateKey means a ledger entry with the same idempotency key
	// already exists: the request has already been applied.
	ErrDuplicateKey = errors.New("duplicate idempotency key")

	// ErrWalletExists means a wallet already exists for the player.
	ErrWalletExists = errors.New("wallet already exists")
)

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx run inside the mutation engine's unit of work.
type WalletRepository interface {
	// Create inserts a zero-balance wallet and fills in its generated ID.
	// Returns ErrWalletExists when the player already has one.
	Create(ctx context.Context, wallet *domain.Wallet) error
	// GetByPlayerID fetches a wallet outside any transaction.
	// Returns nil, nil when absent.
	GetByPlayerID(ctx context.Context, playerID uuid.UUID) (*domain.Wallet, error)
	// GetByPlayerIDTx fetches a wallet inside a transaction, capturing the
	// version the subsequent conditional write is checked against.
	GetByPlayerIDTx(ctx context.Context, tx pgx.Tx, playerID uuid.UUID) (*domain.Wallet, error)
	// UpdateBalance writes the new balance conditioned on the version
	// observed at read time. Returns ErrVersionConflict when another writer
	// got there first.
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID int64, balance decimal.Decimal, version int64) error
}

// TransactionRepository defines persistence operations for ledger entries.
type TransactionRepository interface {
	// Create appends a ledger entry within the same transaction as the
	// balance write. Returns ErrDuplicateKey on an idempotency-key clash.
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	// GetByIdempotencyKey fetches the entry for a key. Returns nil, nil
	// when absent.
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error)
	// ListByWallet returns a wallet's ledger ordered by creation time.
	ListByWallet(ctx context.Context, walletID int64) ([]domain.Transaction, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
