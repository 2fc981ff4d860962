package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	exchangev1 "github.com/lucaCambi77/valr/internal/domain/exchange/v1"
	exchangev1_mock "github.com/lucaCambi77/valr/internal/domain/exchange/v1/mock"
	orderreaderv1 "github.com/lucaCambi77/valr/internal/domain/order-reader/v1"
	orderreaderv1_mock "github.com/lucaCambi77/valr/internal/domain/order-reader/v1/mock"
	orderbookv1 "github.com/lucaCambi77/valr/internal/domain/orderbook/v1"
	pairv1 "github.com/lucaCambi77/valr/internal/domain/pair/v1"
	snapshotv1 "github.com/lucaCambi77/valr/internal/domain/snapshot/v1"
	snapshotv1_mock "github.com/lucaCambi77/valr/internal/domain/snapshot/v1/mock"
	"github.com/lucaCambi77/valr/internal/usecase/pair"
	pkgerrors "github.com/lucaCambi77/valr/pkg/errors"
	"github.com/lucaCambi77/valr/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	ctrl              *gomock.Controller
	mockExchange      *exchangev1_mock.MockUsecase
	mockOrderReader   *orderreaderv1_mock.MockOrderReader
	mockSnapshotStore *snapshotv1_mock.MockStore
	pairs             *pair.Registry
	logger            *logger.Logger
}

func setupTestFixture(t *testing.T) *testFixture {
	ctrl := gomock.NewController(t)

	log, err := logger.NewLogger()
	require.NoError(t, err)

	return &testFixture{
		ctrl:              ctrl,
		mockExchange:      exchangev1_mock.NewMockUsecase(ctrl),
		mockOrderReader:   orderreaderv1_mock.NewMockOrderReader(ctrl),
		mockSnapshotStore: snapshotv1_mock.NewMockStore(ctrl),
		pairs: pair.NewRegistry(pairv1.CurrencyPair{
			Symbol:        "BTCUSDC",
			BaseCurrency:  "BTC",
			QuoteCurrency: "USDC",
			ShortName:     "BTC/USDC",
			BaseDecimals:  8,
		}),
		logger: log,
	}
}

func (f *testFixture) engine(opts *Options) *Engine {
	pub := NewPublishing(f.mockExchange, nil, f.mockSnapshotStore, f.logger)
	return NewEngineWithOptions(pub, f.mockOrderReader, f.pairs, f.logger, opts)
}

// expectInitialSnapshot covers the snapshot Start takes of every pair.
func (f *testFixture) expectInitialSnapshot() {
	f.mockExchange.EXPECT().OrderBook(gomock.Any(), "BTCUSDC").Return(exchangev1.OrderBookView{}, nil).AnyTimes()
	f.mockSnapshotStore.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}

func placeCommand(offset int64) *orderreaderv1.Command {
	return &orderreaderv1.Command{
		Type:     orderreaderv1.CommandPlace,
		ID:       "o1",
		Pair:     "BTCUSDC",
		Side:     orderbookv1.SideBuy,
		Price:    decimal.NewFromInt(20000),
		Quantity: decimal.RequireFromString("0.5"),
		UserID:   "alice",
		Offset:   offset,
	}
}

func noRefresh() *Options {
	return &Options{ReadBackoff: time.Millisecond}
}

func TestNewEngine(t *testing.T) {
	f := setupTestFixture(t)

	e := NewEngine(NewPublishing(f.mockExchange, nil, nil, f.logger), nil, f.pairs, f.logger)

	assert.Equal(t, int64(-1), e.GetOrderOffset())
	assert.Equal(t, DefaultEngineOptions().ReadBackoff, e.readBackoff)
	assert.Equal(t, DefaultEngineOptions().SnapshotInterval, e.snapshotInterval)
}

func TestEngine_RunOrderProcessor(t *testing.T) {
	testCases := []struct {
		name     string
		mockFn   func(f *testFixture, cancel context.CancelFunc)
		assertFn func(t *testing.T, e *Engine)
	}{
		{
			name: "place command is applied then committed",
			mockFn: func(f *testFixture, cancel context.CancelFunc) {
				msg := kafka.Message{Offset: 7}
				cmd := placeCommand(7)
				gomock.InOrder(
					f.mockOrderReader.EXPECT().ReadCommand(gomock.Any()).Return(msg, cmd, nil),
					f.mockExchange.EXPECT().PlaceOrder(gomock.Any(), cmd.PlaceRequest()).
						Return(exchangev1.PlaceOrderResult{OrderID: "o1", Status: orderbookv1.StatusOpen}, nil),
					f.mockOrderReader.EXPECT().CommitMessages(gomock.Any(), msg).Return(nil),
					f.mockOrderReader.EXPECT().ReadCommand(gomock.Any()).
						DoAndReturn(func(ctx context.Context) (kafka.Message, *orderreaderv1.Command, error) {
							cancel()
							return kafka.Message{}, nil, ctx.Err()
						}),
				)
			},
			assertFn: func(t *testing.T, e *Engine) {
				assert.Equal(t, int64(7), e.GetOrderOffset())
				assert.Equal(t, int64(1), e.GetProcessed())
				assert.Equal(t, int64(0), e.GetRejected())
			},
		},
		{
			name: "cancel command is applied",
			mockFn: func(f *testFixture, cancel context.CancelFunc) {
				msg := kafka.Message{Offset: 3}
				cmd := &orderreaderv1.Command{Type: orderreaderv1.CommandCancel, OrderID: "o1", Pair: "BTCUSDC", Offset: 3}
				gomock.InOrder(
					f.mockOrderReader.EXPECT().ReadCommand(gomock.Any()).Return(msg, cmd, nil),
					f.mockExchange.EXPECT().CancelOrder(gomock.Any(), cmd.CancelRequest()).Return(nil),
					f.mockOrderReader.EXPECT().CommitMessages(gomock.Any(), msg).Return(nil),
					f.mockOrderReader.EXPECT().ReadCommand(gomock.Any()).
						DoAndReturn(func(ctx context.Context) (kafka.Message, *orderreaderv1.Command, error) {
							cancel()
							return kafka.Message{}, nil, ctx.Err()
						}),
				)
			},
			assertFn: func(t *testing.T, e *Engine) {
				assert.Equal(t, int64(3), e.GetOrderOffset())
				assert.Equal(t, int64(1), e.GetProcessed())
			},
		},
		{
			name: "rejected command is still committed",
			mockFn: func(f *testFixture, cancel context.CancelFunc) {
				msg := kafka.Message{Offset: 4}
				cmd := &orderreaderv1.Command{Type: orderreaderv1.CommandCancel, OrderID: "missing", Pair: "BTCUSDC", Offset: 4}
				gomock.InOrder(
					f.mockOrderReader.EXPECT().ReadCommand(gomock.Any()).Return(msg, cmd, nil),
					f.mockExchange.EXPECT().CancelOrder(gomock.Any(), cmd.CancelRequest()).Return(exchangev1.ErrOrderNotFound),
					f.mockOrderReader.EXPECT().CommitMessages(gomock.Any(), msg).Return(nil),
					f.mockOrderReader.EXPECT().ReadCommand(gomock.Any()).
						DoAndReturn(func(ctx context.Context) (kafka.Message, *orderreaderv1.Command, error) {
							cancel()
							return kafka.Message{}, nil, ctx.Err()
						}),
				)
			},
			assertFn: func(t *testing.T, e *Engine) {
				assert.Equal(t, int64(4), e.GetOrderOffset())
				assert.Equal(t, int64(0), e.GetProcessed())
				assert.Equal(t, int64(1), e.GetRejected())
			},
		},
		{
			name: "undecodable message is skipped and committed",
			mockFn: func(f *testFixture, cancel context.CancelFunc) {
				msg := kafka.Message{Offset: 9, Value: []byte("{")}
				decodeErr := pkgerrors.NewErrorDetails("bad json", string(pkgerrors.KafkaReadError), "value")
				gomock.InOrder(
					f.mockOrderReader.EXPECT().ReadCommand(gomock.Any()).Return(msg, nil, decodeErr),
					f.mockOrderReader.EXPECT().CommitMessages(gomock.Any(), msg).Return(nil),
					f.mockOrderReader.EXPECT().ReadCommand(gomock.Any()).
						DoAndReturn(func(ctx context.Context) (kafka.Message, *orderreaderv1.Command, error) {
							cancel()
							return kafka.Message{}, nil, ctx.Err()
						}),
				)
			},
			assertFn: func(t *testing.T, e *Engine) {
				assert.Equal(t, int64(-1), e.GetOrderOffset())
				assert.Equal(t, int64(0), e.GetProcessed())
			},
		},
		{
			name: "fetch error backs off and retries",
			mockFn: func(f *testFixture, cancel context.CancelFunc) {
				msg := kafka.Message{Offset: 1}
				cmd := placeCommand(1)
				gomock.InOrder(
					f.mockOrderReader.EXPECT().ReadCommand(gomock.Any()).Return(kafka.Message{}, nil, errors.New("broker down")),
					f.mockOrderReader.EXPECT().ReadCommand(gomock.Any()).Return(msg, cmd, nil),
					f.mockExchange.EXPECT().PlaceOrder(gomock.Any(), cmd.PlaceRequest()).
						Return(exchangev1.PlaceOrderResult{OrderID: "o1", Status: orderbookv1.StatusFilled}, nil),
					f.mockOrderReader.EXPECT().CommitMessages(gomock.Any(), msg).Return(errors.New("commit failed")),
					f.mockOrderReader.EXPECT().ReadCommand(gomock.Any()).
						DoAndReturn(func(ctx context.Context) (kafka.Message, *orderreaderv1.Command, error) {
							cancel()
							return kafka.Message{}, nil, ctx.Err()
						}),
				)
			},
			assertFn: func(t *testing.T, e *Engine) {
				assert.Equal(t, int64(1), e.GetOrderOffset())
				assert.Equal(t, int64(1), e.GetProcessed())
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := setupTestFixture(t)
			f.expectInitialSnapshot()
			f.mockOrderReader.EXPECT().Close().Return(nil)

			e := f.engine(noRefresh())
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			tc.mockFn(f, cancel)

			require.NoError(t, e.Start(ctx))

			stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
			defer stopCancel()
			<-ctx.Done()
			require.NoError(t, e.Stop(stopCtx))

			tc.assertFn(t, e)
		})
	}
}

func TestEngine_StartWithoutReader(t *testing.T) {
	f := setupTestFixture(t)
	f.mockExchange.EXPECT().OrderBook(gomock.Any(), "BTCUSDC").Return(exchangev1.OrderBookView{SequenceNumber: 5}, nil)
	f.mockSnapshotStore.EXPECT().Store(gomock.Any(), &snapshotv1.Snapshot{
		Pair: "BTCUSDC",
		Book: exchangev1.OrderBookView{SequenceNumber: 5},
	}).Return(nil)

	pub := NewPublishing(f.mockExchange, nil, f.mockSnapshotStore, f.logger)
	e := NewEngineWithOptions(pub, nil, f.pairs, f.logger, noRefresh())

	require.NoError(t, e.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, e.Stop(ctx))
}

func TestEngine_SnapshotManagerRefreshes(t *testing.T) {
	f := setupTestFixture(t)

	refreshed := make(chan struct{}, 8)
	f.mockExchange.EXPECT().OrderBook(gomock.Any(), "BTCUSDC").Return(exchangev1.OrderBookView{}, nil).MinTimes(2)
	f.mockSnapshotStore.EXPECT().Store(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *snapshotv1.Snapshot) error {
			select {
			case refreshed <- struct{}{}:
			default:
			}
			return nil
		}).MinTimes(2)

	pub := NewPublishing(f.mockExchange, nil, f.mockSnapshotStore, f.logger)
	e := NewEngineWithOptions(pub, nil, f.pairs, f.logger, &Options{
		ReadBackoff:      time.Millisecond,
		SnapshotInterval: 5 * time.Millisecond,
	})

	require.NoError(t, e.Start(context.Background()))
	for i := 0; i < 2; i++ {
		select {
		case <-refreshed:
		case <-time.After(time.Second):
			t.Fatal("snapshot was not refreshed")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, e.Stop(ctx))
}

func TestEngine_StopTimeout(t *testing.T) {
	f := setupTestFixture(t)
	e := NewEngine(NewPublishing(f.mockExchange, nil, nil, f.logger), nil, f.pairs, f.logger)

	e.wg.Add(1)
	defer e.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, e.Stop(ctx), context.DeadlineExceeded)
}
