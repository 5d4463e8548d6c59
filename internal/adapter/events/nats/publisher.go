package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"player-wallet-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bus abstracts the publishing side of a NATS connection so the
// publisher can be tested without a live server.
type Bus interface {
	Publish(subject string, data []byte) error
}

// TransactionEvent is the payload emitted after a balance mutation commits.
type TransactionEvent struct {
	TransactionID  int64           `json:"transaction_id"`
	PlayerID       uuid.UUID       `json:"player_id"`
	WalletID       int64           `json:"wallet_id"`
	IdempotencyKey string          `json:"idempotency_key"`
	Amount         decimal.Decimal `json:"amount"`
	Direction      string          `json:"direction"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// Publisher emits transaction events on a NATS subject. It implements
// ports.EventPublisher.
type Publisher struct {
	bus     Bus
	subject string
}

// NewPublisher creates a transaction event publisher.
func NewPublisher(bus Bus, subject string) *Publisher {
	return &Publisher{bus: bus, subject: subject}
}

// PublishTransaction serializes the committed transaction and publishes it.
// Delivery is fire-and-forget; callers treat failures as non-fatal.
func (p *Publisher) PublishTransaction(_ context.Context, playerID uuid.UUID, txn *domain.Transaction) error {
	direction := "debit"
	if txn.IsCredit() {
		direction = "credit"
	}

	event := TransactionEvent{
		TransactionID:  txn.ID,
		PlayerID:       playerID,
		WalletID:       txn.WalletID,
		IdempotencyKey: txn.IdempotencyKey,
		Amount:         txn.Amount,
		Direction:      direction,
		OccurredAt:     txn.CreatedAt,
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal transaction event: %w", err)
	}

	if err := p.bus.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish transaction event: %w", err)
	}
	return nil
}
