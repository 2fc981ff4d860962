package trade

import (
	"context"
	"fmt"
	"strings"
	"time"

	orderbookv1 "github.com/lucaCambi77/valr/internal/domain/orderbook/v1"
	tradev1 "github.com/lucaCambi77/valr/internal/domain/trade/v1"
	"github.com/lucaCambi77/valr/pkg/errors"
	"github.com/lucaCambi77/valr/pkg/logger"
	"github.com/lucaCambi77/valr/pkg/postgresql"
	"github.com/shopspring/decimal"
)

const insertColumns = 10

const selectByPairQuery = `SELECT id, pair, price::text, quantity::text, quote_volume::text, taker_side, sequence_id, maker_order_id, taker_order_id, traded_at FROM trades WHERE pair = $1 ORDER BY sequence_id DESC LIMIT $2`

// repository archives trades in PostgreSQL.
type repository struct {
	db     postgresql.PostgreSQLClient
	logger logger.Interface
}

var _ tradev1.Repository = (*repository)(nil)

// NewRepository creates a new repository.
func NewRepository(db postgresql.PostgreSQLClient, logger logger.Interface) *repository {
	return &repository{
		db:     db,
		logger: logger,
	}
}

func insertQuery(n int) string {
	var b strings.Builder
	b.WriteString("INSERT INTO trades (id, pair, price, quantity, quote_volume, taker_side, sequence_id, maker_order_id, taker_order_id, traded_at) VALUES ")
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := 0; j < insertColumns; j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", i*insertColumns+j+1)
		}
		b.WriteString(")")
	}
	b.WriteString(" ON CONFLICT (id) DO NOTHING")
	return b.String()
}

// InsertTrades stores trades in one statement. Trades already archived are skipped.
func (r *repository) InsertTrades(ctx context.Context, trades []tradev1.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	args := make([]any, 0, len(trades)*insertColumns)
	for _, t := range trades {
		args = append(args,
			t.ID,
			t.CurrencyPair,
			t.Price.String(),
			t.Quantity.String(),
			t.QuoteVolume.String(),
			string(t.TakerSide),
			int64(t.SequenceID),
			t.MakerOrderID,
			t.TakerOrderID,
			t.TradedAt,
		)
	}

	cmd, err := r.db.Exec(ctx, insertQuery(len(trades)), args...)
	if err != nil {
		r.logger.Error(err, logger.Field{
			Key:   "error",
			Value: err.Error(),
		})
		return errors.TracerFromError(err)
	}

	r.logger.Info("Inserted trades", logger.Field{
		Key:   "commandTag",
		Value: cmd.String(),
	})

	return nil
}

// ListByPair returns up to limit archived trades of pair, highest sequence first.
func (r *repository) ListByPair(ctx context.Context, pair string, limit int) ([]tradev1.Trade, error) {
	rows, err := r.db.Query(ctx, selectByPairQuery, pair, limit)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	defer rows.Close()

	trades := []tradev1.Trade{}
	for rows.Next() {
		var (
			t                         tradev1.Trade
			price, qty, volume, taker string
			sequenceID                int64
			tradedAt                  time.Time
		)
		if err := rows.Scan(
			&t.ID,
			&t.CurrencyPair,
			&price,
			&qty,
			&volume,
			&taker,
			&sequenceID,
			&t.MakerOrderID,
			&t.TakerOrderID,
			&tradedAt,
		); err != nil {
			return nil, errors.TracerFromError(err)
		}

		if t.Price, err = decimal.NewFromString(price); err != nil {
			return nil, errors.TracerFromError(err)
		}
		if t.Quantity, err = decimal.NewFromString(qty); err != nil {
			return nil, errors.TracerFromError(err)
		}
		if t.QuoteVolume, err = decimal.NewFromString(volume); err != nil {
			return nil, errors.TracerFromError(err)
		}
		t.TakerSide = orderbookv1.Side(taker)
		t.SequenceID = uint64(sequenceID)
		t.TradedAt = tradedAt
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.TracerFromError(err)
	}

	return trades, nil
}
