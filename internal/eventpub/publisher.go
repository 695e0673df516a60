// Package eventpub publishes committed ledger transactions to Redis pub/sub.
package eventpub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
)

// EventTransactionPosted is the type of the event published for every committed transaction.
const EventTransactionPosted = "transaction.posted"

// TransactionEvent is the message published for a committed transaction.
type TransactionEvent struct {
	EventType       string          `json:"event_type"`
	TransactionID   string          `json:"transaction_id"`
	TransactionType string          `json:"transaction_type"`
	AccountNumber   string          `json:"account_number"`
	Amount          decimal.Decimal `json:"amount"`
	Note            string          `json:"note,omitempty"`
	Timestamp       time.Time       `json:"timestamp"`
}

// NewTransactionEvent returns the event announcing t.
func NewTransactionEvent(t domain.Transaction) TransactionEvent {
	return TransactionEvent{
		EventType:       EventTransactionPosted,
		TransactionID:   t.ID,
		TransactionType: string(t.Type),
		AccountNumber:   t.AccountNumber,
		Amount:          t.Amount,
		Note:            t.Note,
		Timestamp:       t.Timestamp,
	}
}

// Publisher publishes transaction events to a Redis channel.
type Publisher struct {
	rdb     *redis.Client
	channel string
}

// New returns Publisher that owns rdb and publishes to channel.
func New(rdb *redis.Client, channel string) *Publisher {
	return &Publisher{
		rdb:     rdb,
		channel: channel,
	}
}

// Publish sends one event per transaction in a single round trip.
func (p *Publisher) Publish(ctx context.Context, transactions []domain.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	l := zerolog.Ctx(ctx)

	pipe := p.rdb.Pipeline()

	for _, t := range transactions {
		payload, err := json.Marshal(NewTransactionEvent(t))
		if err != nil {
			return fmt.Errorf("failed to marshal event: %w", err)
		}

		pipe.Publish(ctx, p.channel, payload)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish events: %w", err)
	}

	l.Debug().Str("channel", p.channel).Int("events", len(transactions)).Msg("transaction events published")

	return nil
}

// Close closes the Redis client.
func (p *Publisher) Close() error {
	return p.rdb.Close()
}
