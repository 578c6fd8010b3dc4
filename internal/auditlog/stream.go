package auditlog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-bank/ledger/internal/bankservice"
	"github.com/go-bank/ledger/internal/domain"
)

var _ bankservice.Observer = (*StreamPublisher)(nil)

// Event is the payload published to the audit stream for each committed leg.
type Event struct {
	Account   string    `json:"account"`
	Operation string    `json:"operation"`
	Amount    string    `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// StreamPublisher publishes committed legs to a redis stream.
//
// Publishing is fire-and-forget: failures are logged and dropped, never
// surfaced to the mutation result.
type StreamPublisher struct {
	client *redis.Client
	stream string
	logger zerolog.Logger
}

// NewStreamPublisher returns a publisher writing to the given stream.
func NewStreamPublisher(client *redis.Client, stream string, logger zerolog.Logger) *StreamPublisher {
	return &StreamPublisher{
		client: client,
		stream: stream,
		logger: logger,
	}
}

// OnTransaction publishes the committed leg as a JSON event.
func (p *StreamPublisher) OnTransaction(number string, operation domain.Operation, amount decimal.Decimal) {
	event := Event{
		Account:   number,
		Operation: string(operation),
		Amount:    amount.String(),
		Timestamp: time.Now().UTC(),
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Msg("cannot marshal audit event")
		return
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"event": eventJSON,
		},
	}

	if err := p.client.XAdd(context.Background(), args).Err(); err != nil {
		p.logger.Error().Err(err).Msg("cannot publish audit event")
	}
}
