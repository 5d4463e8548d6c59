package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet holds a single player's balance. One wallet per player, enforced
// by a unique constraint on PlayerID.
type Wallet struct {
	ID        int64           `json:"id"`
	PlayerID  uuid.UUID       `json:"player_id"`
	Balance   decimal.Decimal `json:"balance"`
	Version   int64           `json:"-"` // optimistic concurrency token, bumped on every write
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CanDebit reports whether the wallet covers a debit of the given amount.
func (w *Wallet) CanDebit(amount decimal.Decimal) bool {
	return w.Balance.GreaterThanOrEqual(amount)
}
