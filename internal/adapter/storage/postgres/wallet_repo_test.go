package postgres

import (
	"context"
	"testing"
	"time"

	"player-wallet-service/internal/core/domain"
	"player-wallet-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWallet(playerID uuid.UUID) *domain.Wallet {
	return &domain.Wallet{
		ID:        42,
		PlayerID:  playerID,
		Balance:   decimal.NewFromInt(100),
		Version:   1,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func walletColumns() []string {
	return []string{"id", "player_id", "balance", "version", "created_at", "updated_at"}
}

func walletRow(w *domain.Wallet) *pgxmock.Rows {
	return pgxmock.NewRows(walletColumns()).AddRow(
		w.ID, w.PlayerID, w.Balance, w.Version, w.CreatedAt, w.UpdatedAt,
	)
}

func TestWalletRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := &domain.Wallet{
		PlayerID:  uuid.New(),
		Balance:   decimal.Zero,
		Version:   1,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	mock.ExpectQuery("INSERT INTO wallets").
		WithArgs(w.PlayerID, w.Balance, w.Version, w.CreatedAt, w.UpdatedAt).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	err = repo.Create(context.Background(), w)
	require.NoError(t, err)
	assert.Equal(t, int64(7), w.ID, "generated id should be filled in")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_Create_PlayerAlreadyHasWallet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())

	mock.ExpectQuery("INSERT INTO wallets").
		WithArgs(w.PlayerID, w.Balance, w.Version, w.CreatedAt, w.UpdatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "wallets_player_id_key"})

	err = repo.Create(context.Background(), w)
	assert.ErrorIs(t, err, ports.ErrWalletExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByPlayerID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE player_id").
		WithArgs(w.PlayerID).
		WillReturnRows(walletRow(w))

	result, err := repo.GetByPlayerID(context.Background(), w.PlayerID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, w.ID, result.ID)
	assert.True(t, w.Balance.Equal(result.Balance))
	assert.Equal(t, w.Version, result.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByPlayerID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	playerID := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM wallets WHERE player_id").
		WithArgs(playerID).
		WillReturnRows(pgxmock.NewRows(walletColumns()))

	result, err := repo.GetByPlayerID(context.Background(), playerID)
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByPlayerIDTx(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	w := newTestWallet(uuid.New())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM wallets WHERE player_id").
		WithArgs(w.PlayerID).
		WillReturnRows(walletRow(w))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetByPlayerIDTx(context.Background(), tx, w.PlayerID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, w.Version, result.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_UpdateBalance(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	newBalance := decimal.NewFromInt(150)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE wallets SET balance").
		WithArgs(newBalance, int64(42), int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateBalance(context.Background(), tx, 42, newBalance, 3)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_UpdateBalance_VersionConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	newBalance := decimal.NewFromInt(150)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE wallets SET balance").
		WithArgs(newBalance, int64(42), int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateBalance(context.Background(), tx, 42, newBalance, 3)
	assert.ErrorIs(t, err, ports.ErrVersionConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
