package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is an immutable ledger entry for one balance delta.
// Amount is signed: positive for credits, negative for debits. The
// idempotency key is unique across the whole ledger and doubles as the
// durable "already applied" marker for retried requests.
type Transaction struct {
	ID             int64           `json:"id"`
	WalletID       int64           `json:"wallet_id"`
	IdempotencyKey string          `json:"idempotency_key"`
	Amount         decimal.Decimal `json:"amount"`
	CreatedAt      time.Time       `json:"created_at"`
}

// IsCredit reports whether the entry added funds.
func (t *Transaction) IsCredit() bool {
	return t.Amount.IsPositive()
}
