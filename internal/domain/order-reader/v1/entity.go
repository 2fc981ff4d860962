package orderreaderv1

import (
	"encoding/json"
	"fmt"

	exchangev1 "github.com/lucaCambi77/valr/internal/domain/exchange/v1"
	orderbookv1 "github.com/lucaCambi77/valr/internal/domain/orderbook/v1"
	"github.com/shopspring/decimal"
)

// CommandType selects what an inbound command does.
type CommandType string

const (
	// CommandPlace places a limit order.
	CommandPlace CommandType = "place"
	// CommandCancel cancels a resting order.
	CommandCancel CommandType = "cancel"
)

// Command is the wire shape of an inbound order command.
type Command struct {
	Type     CommandType      `json:"type"`
	ID       string           `json:"id,omitempty"`
	OrderID  string           `json:"orderId,omitempty"`
	Pair     string           `json:"pair"`
	Side     orderbookv1.Side `json:"side,omitempty"`
	Price    decimal.Decimal  `json:"price"`
	Quantity decimal.Decimal  `json:"quantity"`
	UserID   string           `json:"user,omitempty"`
	Offset   int64            `json:"-"`
}

// Validate checks the fields required by the command type.
func (c *Command) Validate() error {
	switch c.Type {
	case CommandPlace:
		if c.Pair == "" || c.UserID == "" {
			return fmt.Errorf("place command requires pair and user")
		}
	case CommandCancel:
		if c.Pair == "" || c.OrderID == "" {
			return fmt.Errorf("cancel command requires pair and orderId")
		}
	default:
		return fmt.Errorf("unknown command type %q", c.Type)
	}
	return nil
}

// PlaceRequest converts a place command into an exchange request.
func (c *Command) PlaceRequest() exchangev1.PlaceOrderRequest {
	return exchangev1.PlaceOrderRequest{
		ID:       c.ID,
		Pair:     c.Pair,
		Side:     c.Side,
		Price:    c.Price,
		Quantity: c.Quantity,
		UserID:   c.UserID,
	}
}

// CancelRequest converts a cancel command into an exchange request.
func (c *Command) CancelRequest() exchangev1.CancelOrderRequest {
	return exchangev1.CancelOrderRequest{
		OrderID: c.OrderID,
		Pair:    c.Pair,
	}
}

// ToBytes converts the command to JSON.
func (c *Command) ToBytes() ([]byte, error) {
	return json.Marshal(c)
}

// FromBytes parses a JSON command.
func FromBytes(data []byte) (*Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil, err
	}
	return &cmd, nil
}
