package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	exchangev1 "github.com/lucaCambi77/valr/internal/domain/exchange/v1"
	orderreaderv1 "github.com/lucaCambi77/valr/internal/domain/order-reader/v1"
	pairv1 "github.com/lucaCambi77/valr/internal/domain/pair/v1"
	"github.com/lucaCambi77/valr/pkg/errors"
	"github.com/lucaCambi77/valr/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// Engine drives the exchange from the order topic and keeps the published
// snapshots fresh.
type Engine struct {
	exchange    *Publishing
	orderReader orderreaderv1.OrderReader
	pairs       pairv1.Registry
	logger      logger.Interface

	mu          sync.RWMutex
	orderOffset int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	readBackoff      time.Duration
	snapshotInterval time.Duration

	processed atomic.Int64
	rejected  atomic.Int64
}

// NewEngine creates an engine with the default options. orderReader may be nil
// when commands only arrive over HTTP.
func NewEngine(
	exchange *Publishing,
	orderReader orderreaderv1.OrderReader,
	pairs pairv1.Registry,
	logger logger.Interface,
) *Engine {
	return NewEngineWithOptions(exchange, orderReader, pairs, logger, DefaultEngineOptions())
}

// NewEngineWithOptions creates a new engine with custom options
func NewEngineWithOptions(
	exchange *Publishing,
	orderReader orderreaderv1.OrderReader,
	pairs pairv1.Registry,
	logger logger.Interface,
	options *Options,
) *Engine {
	return &Engine{
		exchange:         exchange,
		orderReader:      orderReader,
		pairs:            pairs,
		logger:           logger,
		orderOffset:      -1,
		readBackoff:      options.ReadBackoff,
		snapshotInterval: options.SnapshotInterval,
	}
}

// Start publishes an initial snapshot of every pair and starts the loops.
func (e *Engine) Start(ctx context.Context) error {
	e.ctx, e.cancel = context.WithCancel(ctx)

	e.snapshotAll()

	if e.orderReader != nil {
		e.wg.Add(1)
		go e.runOrderProcessor()
	}
	if e.snapshotInterval > 0 {
		e.wg.Add(1)
		go e.runSnapshotManager()
	}

	e.logger.Info("Engine started", logger.Field{
		Key:   "pairs",
		Value: len(e.pairs.List()),
	})
	return nil
}

// Stop gracefully shuts down the engine
func (e *Engine) Stop(ctx context.Context) error {
	if e.cancel != nil {
		e.cancel()
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("Engine stopped gracefully")
		return nil
	case <-ctx.Done():
		e.logger.Warn("Engine stop timeout exceeded")
		return ctx.Err()
	}
}

// runOrderProcessor applies commands in offset order and commits each one
// after it has been applied.
func (e *Engine) runOrderProcessor() {
	defer e.wg.Done()
	defer func() {
		if err := e.orderReader.Close(); err != nil {
			e.logger.Error(err, logger.Field{Key: "action", Value: "close_order_reader"})
		}
	}()

	e.logger.Info("Starting order processor")

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info("Order processor shutting down")
			return
		default:
		}

		msg, cmd, err := e.orderReader.ReadCommand(e.ctx)
		if err != nil {
			if e.ctx.Err() != nil {
				continue
			}
			if errors.ErrorCodeEquals(err, string(errors.KafkaReadError)) {
				// undecodable, skip it for good
				e.commit(msg)
				continue
			}
			e.logger.ErrorContext(e.ctx, err, logger.Field{
				Key:   "action",
				Value: "read_order_message",
			})
			e.sleep(e.readBackoff)
			continue
		}

		e.processCommand(e.ctx, cmd)
		e.commit(msg)
		e.setOrderOffset(msg.Offset)
	}
}

// commit marks msg as consumed. A commit failure is only logged: the command
// has been applied and will be seen again only after a restart.
func (e *Engine) commit(msg kafka.Message) {
	if err := e.orderReader.CommitMessages(e.ctx, msg); err != nil {
		e.logger.ErrorContext(e.ctx, err, logger.Field{
			Key:   "action",
			Value: "commit_order_message",
		})
	}
}

func (e *Engine) sleep(d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-e.ctx.Done():
	case <-t.C:
	}
}

// processCommand applies one command. Business rejections are logged and
// counted; they never stop the loop.
func (e *Engine) processCommand(ctx context.Context, cmd *orderreaderv1.Command) {
	e.logger.DebugContext(ctx, "Processing command",
		logger.Field{Key: "type", Value: cmd.Type},
		logger.Field{Key: "pair", Value: cmd.Pair},
		logger.Field{Key: "offset", Value: cmd.Offset},
	)

	var err error
	switch cmd.Type {
	case orderreaderv1.CommandPlace:
		var res exchangev1.PlaceOrderResult
		res, err = e.exchange.PlaceOrder(ctx, cmd.PlaceRequest())
		if err == nil {
			e.logger.InfoContext(ctx, "Order placed",
				logger.Field{Key: "order", Value: res.OrderID},
				logger.Field{Key: "status", Value: res.Status},
				logger.Field{Key: "trades", Value: len(res.Trades)},
			)
		}
	case orderreaderv1.CommandCancel:
		err = e.exchange.CancelOrder(ctx, cmd.CancelRequest())
	}

	if err != nil {
		e.rejected.Add(1)
		e.logger.ErrorContext(ctx, err,
			logger.Field{Key: "action", Value: "process_command"},
			logger.Field{Key: "offset", Value: cmd.Offset},
		)
		return
	}
	e.processed.Add(1)
}

// runSnapshotManager republishes every pair's book on a fixed interval so a
// reader that missed a change notification catches up.
func (e *Engine) runSnapshotManager() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.snapshotInterval)
	defer ticker.Stop()

	e.logger.Info("Starting snapshot manager")

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info("Snapshot manager shutting down")
			return
		case <-ticker.C:
			e.snapshotAll()
		}
	}
}

func (e *Engine) snapshotAll() {
	for _, p := range e.pairs.List() {
		e.exchange.Snapshot(e.ctx, p.Symbol)
	}
}

// Thread-safe getters and setters
func (e *Engine) getOrderOffset() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.orderOffset
}

func (e *Engine) setOrderOffset(offset int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.orderOffset = offset
}

// GetOrderOffset returns the offset of the last applied command, -1 before any.
func (e *Engine) GetOrderOffset() int64 {
	return e.getOrderOffset()
}

// GetProcessed returns the number of commands applied successfully.
func (e *Engine) GetProcessed() int64 {
	return e.processed.Load()
}

// GetRejected returns the number of commands the exchange refused.
func (e *Engine) GetRejected() int64 {
	return e.rejected.Load()
}
