package matchpublisher

import (
	"context"

	matchpublisherv1 "github.com/lucaCambi77/valr/internal/domain/match-publisher/v1"
	tradev1 "github.com/lucaCambi77/valr/internal/domain/trade/v1"
	"github.com/lucaCambi77/valr/pkg/config"
	"github.com/lucaCambi77/valr/pkg/errors"
	"github.com/lucaCambi77/valr/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes trade events to the trade topic, keyed by pair so the
// events of one pair stay ordered within a partition.
type Publisher struct {
	kafkaWriter messageWriter
	logger      logger.Interface
}

var _ matchpublisherv1.MatchPublisher = (*Publisher)(nil)

// NewPublisher creates a new Kafka publisher for trade events.
func NewPublisher(cfg config.MatchKafkaConfig, log logger.Interface) *Publisher {
	kafkaWriter := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
	return newPublisher(kafkaWriter, log)
}

func newPublisher(w messageWriter, log logger.Interface) *Publisher {
	return &Publisher{
		kafkaWriter: w,
		logger:      log,
	}
}

// PublishTrades writes one message per trade in a single batch.
func (p *Publisher) PublishTrades(ctx context.Context, trades []tradev1.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(trades))
	for _, t := range trades {
		value, err := matchpublisherv1.ToBytes(t)
		if err != nil {
			return errors.NewTracerf("encoding trade %s", t.ID).Wrap(err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(t.CurrencyPair), Value: value})
	}

	if err := p.kafkaWriter.WriteMessages(ctx, msgs...); err != nil {
		p.logger.ErrorContext(ctx, err,
			logger.Field{Key: "error", Value: err.Error()},
			logger.Field{Key: "trades", Value: len(trades)},
		)
		return errors.NewTracer("failed to publish trades").Wrap(
			errors.NewErrorDetails(err.Error(), string(errors.KafkaPublishError), "trades"))
	}
	return nil
}

// Close flushes pending writes and closes the writer.
func (p *Publisher) Close() error {
	return p.kafkaWriter.Close()
}
