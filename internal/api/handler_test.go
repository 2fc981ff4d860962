package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	exchangev1 "github.com/lucaCambi77/valr/internal/domain/exchange/v1"
	exchangev1_mock "github.com/lucaCambi77/valr/internal/domain/exchange/v1/mock"
	orderbookv1 "github.com/lucaCambi77/valr/internal/domain/orderbook/v1"
	pairv1 "github.com/lucaCambi77/valr/internal/domain/pair/v1"
	tradev1 "github.com/lucaCambi77/valr/internal/domain/trade/v1"
	walletv1 "github.com/lucaCambi77/valr/internal/domain/wallet/v1"
	pkgerrors "github.com/lucaCambi77/valr/pkg/errors"
	"github.com/lucaCambi77/valr/pkg/httplib/healthcheck"
	logger_mock "github.com/lucaCambi77/valr/pkg/logger/mock"
	"github.com/lucaCambi77/valr/pkg/util"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	exchange *exchangev1_mock.MockUsecase
	logger   *logger_mock.MockInterface
	handler  http.Handler
}

func setupTestFixture(t *testing.T) *testFixture {
	ctrl := gomock.NewController(t)
	f := &testFixture{
		exchange: exchangev1_mock.NewMockUsecase(ctrl),
		logger:   logger_mock.NewMockInterface(ctrl),
	}
	f.logger.EXPECT().InfoContext(gomock.Any(), "HTTP request", gomock.Any()).AnyTimes()
	f.logger.EXPECT().WarnContext(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	f.handler = NewHandler(f.exchange, healthcheck.HealthCheck{}, f.logger).Routes()
	return f
}

func (f *testFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	var body errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestHandler_PlaceLimitOrder(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		header   map[string]string
		mockFn   func(f *testFixture)
		assertFn func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name: "accepted",
			body: `{"pair":"BTCUSDC","side":"BUY","price":"20000","quantity":"0.5","user":"alice"}`,
			mockFn: func(f *testFixture) {
				f.exchange.EXPECT().PlaceOrder(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req exchangev1.PlaceOrderRequest) (exchangev1.PlaceOrderResult, error) {
						assert.Equal(t, "BTCUSDC", req.Pair)
						assert.Equal(t, orderbookv1.SideBuy, req.Side)
						assert.True(t, req.Price.Equal(decimal.NewFromInt(20000)))
						assert.True(t, req.Quantity.Equal(decimal.RequireFromString("0.5")))
						assert.Equal(t, "alice", req.UserID)
						assert.Empty(t, req.ID)
						return exchangev1.PlaceOrderResult{OrderID: "01J0", Status: orderbookv1.StatusOpen}, nil
					})
			},
			assertFn: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusAccepted, rec.Code)
				assert.JSONEq(t, `{"id":"01J0"}`, rec.Body.String())
				assert.NotEmpty(t, rec.Header().Get(headerRequestID))
			},
		},
		{
			name:   "user comes from header when the body omits it",
			body:   `{"id":"o1","pair":"BTCUSDC","side":"SELL","price":"20000","quantity":"1"}`,
			header: map[string]string{headerUserID: "bob", headerRequestID: "req-1"},
			mockFn: func(f *testFixture) {
				f.exchange.EXPECT().PlaceOrder(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, req exchangev1.PlaceOrderRequest) (exchangev1.PlaceOrderResult, error) {
						assert.Equal(t, "bob", req.UserID)
						assert.Equal(t, "req-1", util.GetRequestID(ctx))
						return exchangev1.PlaceOrderResult{OrderID: req.ID}, nil
					})
			},
			assertFn: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusAccepted, rec.Code)
				assert.Equal(t, "req-1", rec.Header().Get(headerRequestID))
				assert.JSONEq(t, `{"id":"o1"}`, rec.Body.String())
			},
		},
		{
			name:   "malformed body",
			body:   `{"pair":`,
			mockFn: func(f *testFixture) {},
			assertFn: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.Equal(t, string(pkgerrors.GeneralBadRequestError), decodeError(t, rec).Code)
			},
		},
		{
			name: "validation error",
			body: `{"pair":"BTCUSDC","side":"HOLD","price":"-1","quantity":"1","user":"alice"}`,
			mockFn: func(f *testFixture) {
				f.exchange.EXPECT().PlaceOrder(gomock.Any(), gomock.Any()).Return(exchangev1.PlaceOrderResult{},
					pkgerrors.NewBaseError(
						pkgerrors.NewErrorDetails("side must be BUY or SELL", string(pkgerrors.InvalidOrderError), "side"),
						pkgerrors.NewErrorDetails("price must be positive", string(pkgerrors.InvalidOrderError), "price"),
					))
			},
			assertFn: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
				body := decodeError(t, rec)
				assert.Equal(t, string(pkgerrors.InvalidOrderError), body.Code)
				assert.Contains(t, body.Message, "price must be positive")
			},
		},
		{
			name: "duplicate id",
			body: `{"id":"o1","pair":"BTCUSDC","side":"BUY","price":"1","quantity":"1","user":"alice"}`,
			mockFn: func(f *testFixture) {
				f.exchange.EXPECT().PlaceOrder(gomock.Any(), gomock.Any()).
					Return(exchangev1.PlaceOrderResult{}, exchangev1.ErrDuplicateOrder)
			},
			assertFn: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.Equal(t, string(pkgerrors.DuplicateOrderError), decodeError(t, rec).Code)
			},
		},
		{
			name: "unknown pair",
			body: `{"pair":"DOGEUSDC","side":"BUY","price":"1","quantity":"1","user":"alice"}`,
			mockFn: func(f *testFixture) {
				f.exchange.EXPECT().PlaceOrder(gomock.Any(), gomock.Any()).
					Return(exchangev1.PlaceOrderResult{}, pairv1.ErrUnknownPair)
			},
			assertFn: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusNotFound, rec.Code)
				assert.Equal(t, string(pkgerrors.UnknownPairError), decodeError(t, rec).Code)
			},
		},
		{
			name: "unknown user",
			body: `{"pair":"BTCUSDC","side":"BUY","price":"1","quantity":"1","user":"mallory"}`,
			mockFn: func(f *testFixture) {
				f.exchange.EXPECT().PlaceOrder(gomock.Any(), gomock.Any()).
					Return(exchangev1.PlaceOrderResult{}, walletv1.ErrUnknownUser)
			},
			assertFn: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusNotFound, rec.Code)
			},
		},
		{
			name: "settlement failure is internal",
			body: `{"pair":"BTCUSDC","side":"BUY","price":"1","quantity":"1","user":"alice"}`,
			mockFn: func(f *testFixture) {
				f.exchange.EXPECT().PlaceOrder(gomock.Any(), gomock.Any()).
					Return(exchangev1.PlaceOrderResult{}, pkgerrors.NewTracer("settling").Wrap(walletv1.ErrInvariantViolation))
			},
			assertFn: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusInternalServerError, rec.Code)
				assert.Equal(t, string(pkgerrors.InvariantViolationError), decodeError(t, rec).Code)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := setupTestFixture(t)
			tc.mockFn(f)

			req := httptest.NewRequest(http.MethodPost, "/v1/orders/limit", strings.NewReader(tc.body))
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}
			tc.assertFn(t, f.do(req))
		})
	}
}

func TestHandler_CancelOrder(t *testing.T) {
	testCases := []struct {
		name     string
		mockFn   func(f *testFixture)
		assertFn func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name: "cancelled",
			mockFn: func(f *testFixture) {
				f.exchange.EXPECT().CancelOrder(gomock.Any(), exchangev1.CancelOrderRequest{OrderID: "o1", Pair: "BTCUSDC"}).Return(nil)
			},
			assertFn: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusOK, rec.Code)
			},
		},
		{
			name: "not resting",
			mockFn: func(f *testFixture) {
				f.exchange.EXPECT().CancelOrder(gomock.Any(), gomock.Any()).Return(pkgerrors.NewErrorDetails(
					"Order o1 does not exists or it has already been fulfilled", string(pkgerrors.OrderNotFoundError), "orderId"))
			},
			assertFn: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusNotFound, rec.Code)
				body := decodeError(t, rec)
				assert.Equal(t, string(pkgerrors.OrderNotFoundError), body.Code)
				assert.Equal(t, "Order o1 does not exists or it has already been fulfilled", body.Message)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := setupTestFixture(t)
			tc.mockFn(f)

			req := httptest.NewRequest(http.MethodDelete, "/v1/orders/order", strings.NewReader(`{"orderId":"o1","pair":"BTCUSDC"}`))
			tc.assertFn(t, f.do(req))
		})
	}
}

func TestHandler_OrderBook(t *testing.T) {
	f := setupTestFixture(t)
	f.exchange.EXPECT().OrderBook(gomock.Any(), "BTCUSDC").Return(exchangev1.OrderBookView{
		Asks:           []exchangev1.OrderSummary{{Side: orderbookv1.SideSell, Quantity: "0.5", Price: "20000", CurrencyPair: "BTC/USDC", OrderCount: 1}},
		Bids:           []exchangev1.OrderSummary{},
		SequenceNumber: 3,
	}, nil)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/v1/BTCUSDC/orderbook", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var view exchangev1.OrderBookView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Equal(t, uint64(3), view.SequenceNumber)
	require.Len(t, view.Asks, 1)
	assert.Equal(t, "BTC/USDC", view.Asks[0].CurrencyPair)
}

func TestHandler_TradeHistory(t *testing.T) {
	testCases := []struct {
		name     string
		query    string
		mockFn   func(f *testFixture)
		assertFn func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name:  "default limit",
			query: "",
			mockFn: func(f *testFixture) {
				f.exchange.EXPECT().TradeHistory(gomock.Any(), "BTCUSDC", 100).Return(nil, nil)
			},
			assertFn: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusOK, rec.Code)
				assert.JSONEq(t, `[]`, rec.Body.String())
			},
		},
		{
			name:  "limit is capped",
			query: "?limit=1000",
			mockFn: func(f *testFixture) {
				f.exchange.EXPECT().TradeHistory(gomock.Any(), "BTCUSDC", 100).Return(nil, nil)
			},
			assertFn: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusOK, rec.Code)
			},
		},
		{
			name:  "explicit limit",
			query: "?limit=2",
			mockFn: func(f *testFixture) {
				f.exchange.EXPECT().TradeHistory(gomock.Any(), "BTCUSDC", 2).Return([]tradev1.Trade{
					{ID: "t2", CurrencyPair: "BTCUSDC", SequenceID: 2},
					{ID: "t1", CurrencyPair: "BTCUSDC", SequenceID: 1},
				}, nil)
			},
			assertFn: func(t *testing.T, rec *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, rec.Code)
				var trades []tradev1.Trade
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&trades))
				require.Len(t, trades, 2)
				assert.Equal(t, "t2", trades[0].ID)
			},
		},
		{
			name:   "bad limit",
			query:  "?limit=ten",
			mockFn: func(f *testFixture) {},
			assertFn: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
			},
		},
		{
			name:  "unexpected error",
			query: "",
			mockFn: func(f *testFixture) {
				f.exchange.EXPECT().TradeHistory(gomock.Any(), "BTCUSDC", 100).Return(nil, errors.New("boom"))
			},
			assertFn: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusInternalServerError, rec.Code)
				assert.Equal(t, string(pkgerrors.GeneralInternalServerError), decodeError(t, rec).Code)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := setupTestFixture(t)
			tc.mockFn(f)
			tc.assertFn(t, f.do(httptest.NewRequest(http.MethodGet, "/v1/BTCUSDC/tradehistory"+tc.query, nil)))
		})
	}
}

func TestHandler_OrderStatus(t *testing.T) {
	f := setupTestFixture(t)
	f.exchange.EXPECT().OrderStatus(gomock.Any(), "BTCUSDC", "o1").Return(exchangev1.OrderStatusView{
		OrderID:         "o1",
		OrderStatusType: orderbookv1.StatusFailed,
		FailedReason:    "insufficient balance",
		OrderType:       "limit",
	}, nil)
	f.exchange.EXPECT().OrderStatus(gomock.Any(), "BTCUSDC", "missing").Return(exchangev1.OrderStatusView{},
		pkgerrors.NewErrorDetails("Order missing not found for pair BTCUSDC", string(pkgerrors.OrderNotFoundError), "orderId"))

	rec := f.do(httptest.NewRequest(http.MethodGet, "/v1/orders/BTCUSDC/orderid/o1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var view exchangev1.OrderStatusView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	assert.Equal(t, orderbookv1.StatusFailed, view.OrderStatusType)
	assert.Equal(t, "insufficient balance", view.FailedReason)

	rec = f.do(httptest.NewRequest(http.MethodGet, "/v1/orders/BTCUSDC/orderid/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Health(t *testing.T) {
	ctrl := gomock.NewController(t)
	exchange := exchangev1_mock.NewMockUsecase(ctrl)
	log := logger_mock.NewMockInterface(ctrl)

	down := healthcheck.HealthCheck{Checkers: map[string]healthcheck.Checker{
		"redis": func(context.Context) error { return errors.New("unreachable") },
	}}
	rec := httptest.NewRecorder()
	NewHandler(exchange, down, log).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	NewHandler(exchange, healthcheck.HealthCheck{}, log).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_UnknownRoute(t *testing.T) {
	f := setupTestFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodPut, "/v1/orders/limit", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
