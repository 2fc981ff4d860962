package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	exchangev1 "github.com/lucaCambi77/valr/internal/domain/exchange/v1"
	orderbookv1 "github.com/lucaCambi77/valr/internal/domain/orderbook/v1"
	tradev1 "github.com/lucaCambi77/valr/internal/domain/trade/v1"
	"github.com/lucaCambi77/valr/pkg/httplib/healthcheck"
	"github.com/lucaCambi77/valr/pkg/logger"
	"github.com/lucaCambi77/valr/pkg/util"
	"github.com/shopspring/decimal"
)

// maxTradeHistory caps the limit query parameter of the trade history route.
const maxTradeHistory = 100

// Handler serves the exchange over HTTP.
type Handler struct {
	exchange exchangev1.Usecase
	health   healthcheck.HealthCheck
	logger   logger.Interface
}

// NewHandler creates the HTTP transport for exchange.
func NewHandler(exchange exchangev1.Usecase, health healthcheck.HealthCheck, log logger.Interface) *Handler {
	return &Handler{
		exchange: exchange,
		health:   health,
		logger:   log,
	}
}

// Routes returns the router with the request-scoped middleware applied.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/orders/limit", h.placeLimitOrder)
	mux.HandleFunc("DELETE /v1/orders/order", h.cancelOrder)
	mux.HandleFunc("GET /v1/{pair}/orderbook", h.orderBook)
	mux.HandleFunc("GET /v1/{pair}/tradehistory", h.tradeHistory)
	mux.HandleFunc("GET /v1/orders/{pair}/orderid/{id}", h.orderStatus)

	return h.health.Handler(withRequestContext(withAccessLog(h.logger, mux)))
}

type placeLimitOrderRequest struct {
	ID       string           `json:"id"`
	Pair     string           `json:"pair"`
	Side     orderbookv1.Side `json:"side"`
	Price    decimal.Decimal  `json:"price"`
	Quantity decimal.Decimal  `json:"quantity"`
	UserID   string           `json:"user"`
}

type placeLimitOrderResponse struct {
	ID string `json:"id"`
}

func (h *Handler) placeLimitOrder(w http.ResponseWriter, r *http.Request) {
	var body placeLimitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, badRequest("malformed request body"))
		return
	}
	if body.UserID == "" {
		body.UserID = util.GetUserID(r.Context())
	}

	res, err := h.exchange.PlaceOrder(r.Context(), exchangev1.PlaceOrderRequest{
		ID:       body.ID,
		Pair:     body.Pair,
		Side:     body.Side,
		Price:    body.Price,
		Quantity: body.Quantity,
		UserID:   body.UserID,
	})
	if err != nil {
		h.logger.WarnContext(r.Context(), "Place order rejected", logger.Field{Key: "error", Value: err.Error()})
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, placeLimitOrderResponse{ID: res.OrderID})
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	var body exchangev1.CancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, badRequest("malformed request body"))
		return
	}

	if err := h.exchange.CancelOrder(r.Context(), body); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) orderBook(w http.ResponseWriter, r *http.Request) {
	view, err := h.exchange.OrderBook(r.Context(), r.PathValue("pair"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) tradeHistory(w http.ResponseWriter, r *http.Request) {
	limit := exchangev1.DefaultTradeHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, badRequest("limit must be an integer"))
			return
		}
		limit = n
	}
	if limit <= 0 || limit > maxTradeHistory {
		limit = maxTradeHistory
	}

	trades, err := h.exchange.TradeHistory(r.Context(), r.PathValue("pair"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if trades == nil {
		trades = []tradev1.Trade{}
	}
	writeJSON(w, http.StatusOK, trades)
}

func (h *Handler) orderStatus(w http.ResponseWriter, r *http.Request) {
	view, err := h.exchange.OrderStatus(r.Context(), r.PathValue("pair"), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
