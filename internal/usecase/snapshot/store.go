package snapshot

import (
	"context"
	"encoding/json"
	"fmt"

	snapshotv1 "github.com/lucaCambi77/valr/internal/domain/snapshot/v1"
	"github.com/lucaCambi77/valr/pkg/errors"
	"github.com/lucaCambi77/valr/pkg/logger"
	"github.com/lucaCambi77/valr/pkg/redis"
)

// Store keeps the latest order-book view of every pair in Redis and announces
// each new one on a channel.
type Store struct {
	config      redis.Config
	logger      logger.Interface
	redisclient redis.Client
}

var _ snapshotv1.Store = (*Store)(nil)

// NewSnapshotStore creates a new Store writing through redisclient.
func NewSnapshotStore(redisclient redis.Client, cfg redis.Config, log logger.Interface) *Store {
	return &Store{
		config:      cfg,
		redisclient: redisclient,
		logger:      log,
	}
}

// Key returns the Redis key the snapshot of pair is stored under.
func (s *Store) Key(pair string) string {
	return fmt.Sprintf("%sorderbook:%s", s.config.PrefixKey, pair)
}

// Channel returns the channel snapshot notifications are published on.
func (s *Store) Channel() string {
	return s.config.PrefixKey + "orderbook"
}

// Store writes the snapshot and publishes its revision.
func (s *Store) Store(ctx context.Context, snapshot *snapshotv1.Snapshot) error {
	buf, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{Key: "pair", Value: snapshot.Pair})
		return errors.NewTracer("snapshot_marshal_error").Wrap(err)
	}

	if err := s.redisclient.Set(ctx, s.Key(snapshot.Pair), buf, s.config.SnapshotTTL); err != nil {
		s.logger.ErrorContext(ctx, err,
			logger.Field{Key: "pair", Value: snapshot.Pair},
			logger.Field{Key: "action", Value: "store snapshot"},
		)
		return errors.NewTracer("snapshot_store_error").Wrap(err)
	}

	note, err := json.Marshal(snapshotv1.Notification{Pair: snapshot.Pair, SequenceNumber: snapshot.Book.SequenceNumber})
	if err != nil {
		return errors.NewTracer("snapshot_marshal_error").Wrap(err)
	}
	if _, err := s.redisclient.Publish(ctx, s.Channel(), note); err != nil {
		s.logger.ErrorContext(ctx, err,
			logger.Field{Key: "pair", Value: snapshot.Pair},
			logger.Field{Key: "action", Value: "publish snapshot"},
		)
		return errors.NewTracer("snapshot_publish_error").Wrap(err)
	}

	s.logger.DebugContext(ctx, "snapshot stored",
		logger.Field{Key: "pair", Value: snapshot.Pair},
		logger.Field{Key: "sequence", Value: snapshot.Book.SequenceNumber},
	)
	return nil
}

// Load reads the latest snapshot of pair. It returns nil when none is stored.
func (s *Store) Load(ctx context.Context, pair string) (*snapshotv1.Snapshot, error) {
	data, err := s.redisclient.Get(ctx, s.Key(pair))
	if err != nil {
		s.logger.ErrorContext(ctx, err,
			logger.Field{Key: "pair", Value: pair},
			logger.Field{Key: "action", Value: "load snapshot"},
		)
		return nil, errors.NewTracer("snapshot_load_error").Wrap(err)
	}

	if data == "" {
		s.logger.WarnContext(ctx, fmt.Sprintf("No snapshot found for pair %s", pair),
			logger.Field{Key: "pair", Value: pair},
		)
		return nil, nil
	}

	var snapshot snapshotv1.Snapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		s.logger.ErrorContext(ctx, err,
			logger.Field{Key: "pair", Value: pair},
			logger.Field{Key: "action", Value: "unmarshal snapshot"},
		)
		return nil, errors.NewTracer("snapshot_unmarshal_error").Wrap(err)
	}

	return &snapshot, nil
}
