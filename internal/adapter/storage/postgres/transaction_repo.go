package postgres

import (
	"context"
	"errors"
	"fmt"

	"player-wallet-service/internal/core/domain"
	"player-wallet-service/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create appends a ledger entry within the caller's transaction. The global
// unique constraint on idempotency_key maps to ports.ErrDuplicateKey; that
// check happening at commit time inside the same transaction as the balance
// write is what makes the idempotency guard race-free.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (wallet_id, idempotency_key, amount, created_at)
		VALUES ($1, $2, $3, $4) RETURNING id`

	err := tx.QueryRow(ctx, query,
		t.WalletID, t.IdempotencyKey, t.Amount, t.CreatedAt,
	).Scan(&t.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ports.ErrDuplicateKey
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByIdempotencyKey fetches the ledger entry for a key.
func (r *TransactionRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Transaction, error) {
	query := `SELECT id, wallet_id, idempotency_key, amount, created_at
		FROM transactions WHERE idempotency_key = $1`

	t := &domain.Transaction{}
	err := r.pool.QueryRow(ctx, query, key).Scan(
		&t.ID, &t.WalletID, &t.IdempotencyKey, &t.Amount, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction by key: %w", err)
	}
	return t, nil
}

// ListByWallet returns a wallet's ledger entries, oldest first.
func (r *TransactionRepo) ListByWallet(ctx context.Context, walletID int64) ([]domain.Transaction, error) {
	query := `SELECT id, wallet_id, idempotency_key, amount, created_at
		FROM transactions WHERE wallet_id = $1 ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t := domain.Transaction{}
		err := rows.Scan(&t.ID, &t.WalletID, &t.IdempotencyKey, &t.Amount, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}
