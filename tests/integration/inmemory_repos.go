package integration

import (
	"context"
	"sync"
	"time"

	"player-wallet-service/internal/core/domain"
	"player-wallet-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// memStore is a transactional in-memory stand-in for Postgres. It keeps the
// semantics the wallet engine depends on: per-wallet row locks held from the
// conditional balance write until commit, writes visible only after commit,
// and a ledger-wide unique idempotency key.
type memStore struct {
	mu           sync.Mutex
	wallets      map[int64]*domain.Wallet
	byPlayer     map[uuid.UUID]int64
	entries      []domain.Transaction
	keys         map[string]int64
	rowLocks     map[int64]*sync.Mutex
	nextWalletID int64
	nextTxnID    int64
}

func newMemStore() *memStore {
	return &memStore{
		wallets:  make(map[int64]*domain.Wallet),
		byPlayer: make(map[uuid.UUID]int64),
		keys:     make(map[string]int64),
		rowLocks: make(map[int64]*sync.Mutex),
	}
}

func (s *memStore) rowLock(walletID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.rowLocks[walletID]
	if !ok {
		lock = &sync.Mutex{}
		s.rowLocks[walletID] = lock
	}
	return lock
}

func (s *memStore) snapshotWallet(walletID int64) *domain.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[walletID]
	if !ok {
		return nil
	}
	cp := *w
	return &cp
}

// --- Transactor ---

type stagedBalance struct {
	walletID int64
	balance  decimal.Decimal
}

// memTx implements pgx.Tx over memStore. Writes stage until Commit; row
// locks release on Commit or Rollback.
type memTx struct {
	pgx.Tx
	store      *memStore
	stagedTxns []*domain.Transaction
	stagedBal  *stagedBalance
	locks      []*sync.Mutex
	done       bool
}

func (t *memTx) Commit(_ context.Context) error {
	t.store.mu.Lock()
	for _, txn := range t.stagedTxns {
		t.store.nextTxnID++
		txn.ID = t.store.nextTxnID
		t.store.entries = append(t.store.entries, *txn)
		t.store.keys[txn.IdempotencyKey] = txn.ID
	}
	if t.stagedBal != nil {
		w := t.store.wallets[t.stagedBal.walletID]
		w.Balance = t.stagedBal.balance
		w.Version++
		w.UpdatedAt = time.Now().UTC()
	}
	t.store.mu.Unlock()
	t.release()
	return nil
}

func (t *memTx) Rollback(_ context.Context) error {
	t.release()
	return nil
}

func (t *memTx) release() {
	if t.done {
		return
	}
	t.done = true
	for _, l := range t.locks {
		l.Unlock()
	}
	t.locks = nil
}

type memTransactor struct {
	store *memStore
}

func (tr *memTransactor) Begin(_ context.Context) (pgx.Tx, error) {
	return &memTx{store: tr.store}, nil
}

// --- Wallet repo ---

type memWalletRepo struct {
	store *memStore
}

func (r *memWalletRepo) Create(_ context.Context, w *domain.Wallet) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.byPlayer[w.PlayerID]; exists {
		return ports.ErrWalletExists
	}
	r.store.nextWalletID++
	w.ID = r.store.nextWalletID
	now := time.Now().UTC()
	w.CreatedAt = now
	w.UpdatedAt = now
	cp := *w
	r.store.wallets[w.ID] = &cp
	r.store.byPlayer[w.PlayerID] = w.ID
	return nil
}

func (r *memWalletRepo) GetByPlayerID(_ context.Context, playerID uuid.UUID) (*domain.Wallet, error) {
	r.store.mu.Lock()
	id, ok := r.store.byPlayer[playerID]
	r.store.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return r.store.snapshotWallet(id), nil
}

func (r *memWalletRepo) GetByPlayerIDTx(ctx context.Context, _ pgx.Tx, playerID uuid.UUID) (*domain.Wallet, error) {
	return r.GetByPlayerID(ctx, playerID)
}

func (r *memWalletRepo) UpdateBalance(_ context.Context, tx pgx.Tx, walletID int64, balance decimal.Decimal, version int64) error {
	mtx := tx.(*memTx)

	// Take the row lock the way the UPDATE would, then check the version
	// against committed state.
	lock := r.store.rowLock(walletID)
	lock.Lock()

	current := r.store.snapshotWallet(walletID)
	if current == nil || current.Version != version {
		lock.Unlock()
		return ports.ErrVersionConflict
	}

	mtx.locks = append(mtx.locks, lock)
	mtx.stagedBal = &stagedBalance{walletID: walletID, balance: balance}
	return nil
}

// --- Transaction repo ---

type memTransactionRepo struct {
	store *memStore
}

func (r *memTransactionRepo) Create(_ context.Context, tx pgx.Tx, txn *domain.Transaction) error {
	mtx := tx.(*memTx)

	r.store.mu.Lock()
	_, exists := r.store.keys[txn.IdempotencyKey]
	r.store.mu.Unlock()
	if exists {
		return ports.ErrDuplicateKey
	}

	mtx.stagedTxns = append(mtx.stagedTxns, txn)
	return nil
}

func (r *memTransactionRepo) GetByIdempotencyKey(_ context.Context, key string) (*domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	id, ok := r.store.keys[key]
	if !ok {
		return nil, nil
	}
	for i := range r.store.entries {
		if r.store.entries[i].ID == id {
			cp := r.store.entries[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memTransactionRepo) ListByWallet(_ context.Context, walletID int64) ([]domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.Transaction
	for i := range r.store.entries {
		if r.store.entries[i].WalletID == walletID {
			out = append(out, r.store.entries[i])
		}
	}
	return out, nil
}
