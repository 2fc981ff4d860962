package orderbookv1

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNilOrder        = errors.New("order cannot be nil")
	ErrOrderNotInLimit = errors.New("order not found in limit")
	ErrOrderNotResting = errors.New("order has no remaining quantity")
)

// Limit is one price level of a book side. Orders are kept in arrival order.
type Limit struct {
	Price  decimal.Decimal
	Orders []*Order
}

// NewLimit creates an empty Limit with the specified price.
func NewLimit(price decimal.Decimal) *Limit {
	return &Limit{
		Price:  price,
		Orders: make([]*Order, 0, 4),
	}
}

// AddOrder appends order at the back of the queue.
func (l *Limit) AddOrder(order *Order) error {
	if order == nil {
		return ErrNilOrder
	}
	if !order.Remaining().IsPositive() || order.Status.Terminal() {
		return ErrOrderNotResting
	}

	order.limit = l
	l.Orders = append(l.Orders, order)
	return nil
}

// RemoveOrder removes order from the queue, keeping the others in order.
func (l *Limit) RemoveOrder(order *Order) error {
	if order == nil {
		return ErrNilOrder
	}

	for i, o := range l.Orders {
		if o == order {
			copy(l.Orders[i:], l.Orders[i+1:])
			l.Orders[len(l.Orders)-1] = nil
			l.Orders = l.Orders[:len(l.Orders)-1]
			order.limit = nil
			return nil
		}
	}

	return ErrOrderNotInLimit
}

// Head returns the oldest order of the level, or nil when empty.
func (l *Limit) Head() *Order {
	if len(l.Orders) == 0 {
		return nil
	}
	return l.Orders[0]
}

// IsEmpty checks if the limit has no orders
func (l *Limit) IsEmpty() bool {
	return len(l.Orders) == 0
}

// OrderCount returns the number of orders at this limit
func (l *Limit) OrderCount() int {
	return len(l.Orders)
}

// TotalVolume returns the remaining quantity resting at this price.
func (l *Limit) TotalVolume() decimal.Decimal {
	total := decimal.Zero
	for _, o := range l.Orders {
		total = total.Add(o.Remaining())
	}
	return total
}
