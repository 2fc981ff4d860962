package orderreader

import (
	"context"

	orderreaderv1 "github.com/lucaCambi77/valr/internal/domain/order-reader/v1"
	"github.com/lucaCambi77/valr/pkg/config"
	"github.com/lucaCambi77/valr/pkg/errors"
	"github.com/lucaCambi77/valr/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// messageReader is the part of *kafka.Reader the consumer needs.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Reader consumes order commands from the order topic as part of a consumer group.
type Reader struct {
	kafkaReader messageReader
	logger      logger.Interface
}

var _ orderreaderv1.OrderReader = (*Reader)(nil)

// NewReader creates a consumer-group reader for the order topic.
func NewReader(cfg config.OrderKafkaConfig, log logger.Interface) *Reader {
	kafkaReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})

	return newReader(kafkaReader, log)
}

func newReader(r messageReader, log logger.Interface) *Reader {
	return &Reader{
		kafkaReader: r,
		logger:      log,
	}
}

func (r *Reader) logError(ctx context.Context, err error, operation string) {
	r.logger.ErrorContext(ctx, err,
		logger.Field{Key: "error", Value: err.Error()},
		logger.Field{Key: "operation", Value: operation},
	)
}

// ReadCommand fetches the next message and decodes it. A message that fails
// to decode is still returned so the caller can commit past it.
func (r *Reader) ReadCommand(ctx context.Context) (kafka.Message, *orderreaderv1.Command, error) {
	msg, err := r.kafkaReader.FetchMessage(ctx)
	if err != nil {
		if ctx.Err() == nil {
			r.logError(ctx, err, "FetchMessage")
		}
		return kafka.Message{}, nil, err
	}

	cmd, err := orderreaderv1.FromBytes(msg.Value)
	if err == nil {
		err = cmd.Validate()
	}
	if err != nil {
		r.logError(ctx, err, "DecodeCommand")
		return msg, nil, errors.NewErrorDetailsWithObject(err.Error(), string(errors.KafkaReadError), "value", msg.Offset)
	}
	cmd.Offset = msg.Offset

	r.logger.DebugContext(ctx, "ReadCommand",
		logger.Field{Key: "type", Value: cmd.Type},
		logger.Field{Key: "pair", Value: cmd.Pair},
		logger.Field{Key: "offset", Value: msg.Offset},
	)
	return msg, cmd, nil
}

// CommitMessages commits the messages to Kafka after processing.
func (r *Reader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	if err := r.kafkaReader.CommitMessages(ctx, msgs...); err != nil {
		r.logError(ctx, err, "CommitMessages")
		return err
	}
	return nil
}

// Close properly closes the Kafka reader.
func (r *Reader) Close() error {
	if err := r.kafkaReader.Close(); err != nil {
		r.logError(context.Background(), err, "Close")
		return err
	}
	return nil
}
