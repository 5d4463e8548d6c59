package ports

import (
	"context"
	"time"

	"player-wallet-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletService is the core wallet contract exposed to the HTTP layer.
type WalletService interface {
	// CreateWallet provisions a zero-balance wallet for the player.
	CreateWallet(ctx context.Context, playerID uuid.UUID) (*domain.Wallet, error)
	// Credit adds amount to the player's balance, keyed for deduplication.
	Credit(ctx context.Context, req MutationRequest) (*domain.Transaction, error)
	// Debit removes amount from the player's balance, rejecting overdrafts.
	Debit(ctx context.Context, req MutationRequest) (*domain.Transaction, error)
	// GetBalance returns the player's current balance.
	GetBalance(ctx context.Context, playerID uuid.UUID) (decimal.Decimal, error)
	// ListTransactions returns the player's ledger, oldest first.
	ListTransactions(ctx context.Context, playerID uuid.UUID) ([]domain.Transaction, error)
}

// MutationRequest holds validated input for a balance mutation.
type MutationRequest struct {
	PlayerID       uuid.UUID
	Amount         decimal.Decimal
	IdempotencyKey string
}

// BalanceCache is a read accelerator in front of balance lookups. It is
// never consulted by the mutation engine and never a source of truth.
type BalanceCache interface {
	// Get returns the cached balance, or nil on a miss.
	Get(ctx context.Context, playerID uuid.UUID) (*decimal.Decimal, error)
	// Set stores a balance with TTL.
	Set(ctx context.Context, playerID uuid.UUID, balance decimal.Decimal, ttl time.Duration) error
	// Invalidate drops the cached balance after a mutation commits.
	Invalidate(ctx context.Context, playerID uuid.UUID) error
}

// EventPublisher emits committed ledger entries to interested consumers.
type EventPublisher interface {
	PublishTransaction(ctx context.Context, playerID uuid.UUID, txn *domain.Transaction) error
}
