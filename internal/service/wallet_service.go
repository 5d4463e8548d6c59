package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"player-wallet-service/internal/core/domain"
	"player-wallet-service/internal/core/ports"
	"player-wallet-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const defaultMaxAttempts = 3

// WalletServiceImpl implements ports.WalletService. Mutations run under
// optimistic concurrency: read the wallet and its version inside a
// transaction, write the new balance conditioned on that version, and retry
// the whole attempt when another writer commits in between.
type WalletServiceImpl struct {
	walletRepo   ports.WalletRepository
	txRepo       ports.TransactionRepository
	transactor   ports.DBTransactor
	cache        ports.BalanceCache
	publisher    ports.EventPublisher
	log          zerolog.Logger
	maxAttempts  int
	retryBackoff time.Duration
	balanceTTL   time.Duration
}

// WalletServiceOption customizes a WalletServiceImpl.
type WalletServiceOption func(*WalletServiceImpl)

// WithRetryPolicy sets the conflict retry budget and base backoff.
func WithRetryPolicy(maxAttempts int, backoff time.Duration) WalletServiceOption {
	return func(s *WalletServiceImpl) {
		if maxAttempts > 0 {
			s.maxAttempts = maxAttempts
		}
		s.retryBackoff = backoff
	}
}

// WithBalanceCache attaches a read-side balance cache with the given TTL.
func WithBalanceCache(cache ports.BalanceCache, ttl time.Duration) WalletServiceOption {
	return func(s *WalletServiceImpl) {
		s.cache = cache
		s.balanceTTL = ttl
	}
}

// WithEventPublisher attaches a post-commit transaction event publisher.
func WithEventPublisher(pub ports.EventPublisher) WalletServiceOption {
	return func(s *WalletServiceImpl) {
		s.publisher = pub
	}
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
	opts ...WalletServiceOption,
) *WalletServiceImpl {
	s := &WalletServiceImpl{
		walletRepo:  walletRepo,
		txRepo:      txRepo,
		transactor:  transactor,
		log:         log,
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateWallet provisions a zero-balance wallet for the player.
func (s *WalletServiceImpl) CreateWallet(ctx context.Context, playerID uuid.UUID) (*domain.Wallet, error) {
	now := time.Now().UTC()
	wallet := &domain.Wallet{
		PlayerID:  playerID,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		if errors.Is(err, ports.ErrWalletExists) {
			return nil, apperror.ErrWalletExists()
		}
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create wallet: %w", err))
	}

	s.log.Info().
		Str("player_id", playerID.String()).
		Int64("wallet_id", wallet.ID).
		Msg("wallet created")

	return wallet, nil
}

// Credit adds amount to the player's balance.
func (s *WalletServiceImpl) Credit(ctx context.Context, req ports.MutationRequest) (*domain.Transaction, error) {
	return s.mutate(ctx, req, req.Amount)
}

// Debit removes amount from the player's balance, rejecting overdrafts.
func (s *WalletServiceImpl) Debit(ctx context.Context, req ports.MutationRequest) (*domain.Transaction, error) {
	return s.mutate(ctx, req, req.Amount.Neg())
}

// mutate applies a signed balance delta under optimistic concurrency.
// Version conflicts retry up to the configured budget; every other outcome
// is terminal on the first occurrence.
func (s *WalletServiceImpl) mutate(ctx context.Context, req ports.MutationRequest, delta decimal.Decimal) (*domain.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.IdempotencyKey == "" {
		return nil, apperror.Validation("Idempotency key is required")
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		txn, err := s.attemptMutation(ctx, req, delta)
		if err == nil {
			s.afterCommit(ctx, req.PlayerID, txn)
			return txn, nil
		}
		if !errors.Is(err, ports.ErrVersionConflict) {
			return nil, err
		}

		lastErr = err
		s.log.Debug().
			Str("player_id", req.PlayerID.String()).
			Str("idempotency_key", req.IdempotencyKey).
			Int("attempt", attempt).
			Msg("version conflict, retrying mutation")

		if attempt < s.maxAttempts {
			s.sleepBeforeRetry(ctx)
		}
	}

	s.log.Warn().
		Str("player_id", req.PlayerID.String()).
		Str("idempotency_key", req.IdempotencyKey).
		Int("attempts", s.maxAttempts).
		Msg("mutation retry budget exhausted")

	return nil, apperror.Wrap(apperror.CodeConcurrencyConflict,
		"Concurrent update conflict, please retry",
		apperror.ErrConcurrencyConflict().HTTPStatus, lastErr)
}

// attemptMutation runs one read-modify-write cycle inside a transaction.
// The ledger insert and the conditional balance write commit together or
// not at all.
func (s *WalletServiceImpl) attemptMutation(ctx context.Context, req ports.MutationRequest, delta decimal.Decimal) (*domain.Transaction, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByPlayerIDTx(ctx, dbTx, req.PlayerID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}

	newBalance := wallet.Balance.Add(delta)
	if delta.IsNegative() && !wallet.CanDebit(delta.Neg()) {
		return nil, apperror.ErrInsufficientFunds()
	}

	txn := &domain.Transaction{
		WalletID:       wallet.ID,
		IdempotencyKey: req.IdempotencyKey,
		Amount:         delta,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		if errors.Is(err, ports.ErrDuplicateKey) {
			if prior, lookupErr := s.txRepo.GetByIdempotencyKey(ctx, req.IdempotencyKey); lookupErr == nil && prior != nil {
				s.log.Info().
					Str("idempotency_key", req.IdempotencyKey).
					Int64("transaction_id", prior.ID).
					Msg("mutation already applied, replay resolved")
			}
			return nil, apperror.ErrDuplicateRequest()
		}
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create ledger entry: %w", err))
	}

	if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, newBalance, wallet.Version); err != nil {
		if errors.Is(err, ports.ErrVersionConflict) {
			return nil, err
		}
		return nil, apperror.ErrDatabaseError(fmt.Errorf("update balance: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("commit tx: %w", err))
	}
	return txn, nil
}

// afterCommit runs best-effort post-commit side effects. Failures are
// logged, never surfaced: the mutation has already committed.
func (s *WalletServiceImpl) afterCommit(ctx context.Context, playerID uuid.UUID, txn *domain.Transaction) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, playerID); err != nil {
			s.log.Warn().Err(err).Str("player_id", playerID.String()).Msg("balance cache invalidation failed")
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishTransaction(ctx, playerID, txn); err != nil {
			s.log.Warn().Err(err).Str("player_id", playerID.String()).Msg("transaction event publish failed")
		}
	}
}

func (s *WalletServiceImpl) sleepBeforeRetry(ctx context.Context) {
	if s.retryBackoff <= 0 {
		return
	}
	// Base backoff plus up to 100% jitter to spread competing writers.
	delay := s.retryBackoff + time.Duration(rand.Int63n(int64(s.retryBackoff)))
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}

// GetBalance returns the player's current balance, served from cache when
// possible. Cache failures fall through to the database.
func (s *WalletServiceImpl) GetBalance(ctx context.Context, playerID uuid.UUID) (decimal.Decimal, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, playerID)
		if err != nil {
			s.log.Warn().Err(err).Str("player_id", playerID.String()).Msg("balance cache read failed, falling through to DB")
		}
		if cached != nil {
			return *cached, nil
		}
	}

	wallet, err := s.walletRepo.GetByPlayerID(ctx, playerID)
	if err != nil {
		return decimal.Zero, apperror.ErrDatabaseError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return decimal.Zero, apperror.ErrWalletNotFound()
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, playerID, wallet.Balance, s.balanceTTL); err != nil {
			s.log.Warn().Err(err).Str("player_id", playerID.String()).Msg("balance cache write failed")
		}
	}
	return wallet.Balance, nil
}

// ListTransactions returns the player's ledger, oldest first.
func (s *WalletServiceImpl) ListTransactions(ctx context.Context, playerID uuid.UUID) ([]domain.Transaction, error) {
	wallet, err := s.walletRepo.GetByPlayerID(ctx, playerID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound()
	}

	txns, err := s.txRepo.ListByWallet(ctx, wallet.ID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list transactions: %w", err))
	}
	return txns, nil
}
