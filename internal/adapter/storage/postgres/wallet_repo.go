package postgres

import (
	"context"
	"errors"
	"fmt"

	"player-wallet-service/internal/core/domain"
	"player-wallet-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

const uniqueViolation = "23505"

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Create inserts a new wallet and fills in its generated surrogate key.
// The unique constraint on player_id maps to ports.ErrWalletExists.
func (r *WalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	query := `INSERT INTO wallets (player_id, balance, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		w.PlayerID, w.Balance, w.Version, w.CreatedAt, w.UpdatedAt,
	).Scan(&w.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ports.ErrWalletExists
		}
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByPlayerID fetches a wallet by player identity (non-transactional read).
func (r *WalletRepo) GetByPlayerID(ctx context.Context, playerID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT id, player_id, balance, version, created_at, updated_at
		FROM wallets WHERE player_id = $1`

	return scanWallet(r.pool.QueryRow(ctx, query, playerID))
}

// GetByPlayerIDTx fetches a wallet inside a transaction. The returned
// Version is what the subsequent conditional write is checked against.
func (r *WalletRepo) GetByPlayerIDTx(ctx context.Context, tx pgx.Tx, playerID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT id, player_id, balance, version, created_at, updated_at
		FROM wallets WHERE player_id = $1`

	return scanWallet(tx.QueryRow(ctx, query, playerID))
}

// UpdateBalance writes the new balance conditioned on the observed version.
// A zero-row match means another writer advanced the version first.
func (r *WalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID int64, balance decimal.Decimal, version int64) error {
	query := `UPDATE wallets SET balance = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3`

	tag, err := tx.Exec(ctx, query, balance, walletID, version)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrVersionConflict
	}
	return nil
}

func scanWallet(row pgx.Row) (*domain.Wallet, error) {
	w := &domain.Wallet{}
	err := row.Scan(&w.ID, &w.PlayerID, &w.Balance, &w.Version, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan wallet: %w", err)
	}
	return w, nil
}
