package orderbook

import (
	"fmt"
	"time"

	"github.com/google/btree"
	orderbookv1 "github.com/lucaCambi77/valr/internal/domain/orderbook/v1"
	"github.com/shopspring/decimal"
)

const btreeDegree = 16

// SettleFunc is called for every match before both orders are filled. An error
// aborts the walk and leaves both orders as they were for that match.
type SettleFunc func(match orderbookv1.Match) error

// Orderbook holds the resting orders of one pair. Each side is a B-tree of
// price levels ordered best price first; each level is a FIFO queue. It is not
// safe for concurrent use: the owner serializes access per pair.
type Orderbook struct {
	Pair   string
	bids   *btree.BTreeG[*orderbookv1.Limit]
	asks   *btree.BTreeG[*orderbookv1.Limit]
	orders map[string]*orderbookv1.Order
}

// NewOrderbook creates an empty book for pair.
func NewOrderbook(pair string) *Orderbook {
	return &Orderbook{
		Pair: pair,
		bids: btree.NewG(btreeDegree, func(a, b *orderbookv1.Limit) bool {
			return a.Price.GreaterThan(b.Price)
		}),
		asks: btree.NewG(btreeDegree, func(a, b *orderbookv1.Limit) bool {
			return a.Price.LessThan(b.Price)
		}),
		orders: make(map[string]*orderbookv1.Order),
	}
}

func (ob *Orderbook) side(side orderbookv1.Side) *btree.BTreeG[*orderbookv1.Limit] {
	if side == orderbookv1.SideBuy {
		return ob.bids
	}
	return ob.asks
}

// Add rests order at the back of its price level.
func (ob *Orderbook) Add(order *orderbookv1.Order) error {
	if order == nil {
		return orderbookv1.ErrNilOrder
	}
	if _, exists := ob.orders[order.ID]; exists {
		return fmt.Errorf("order with ID %s already rests in %s", order.ID, ob.Pair)
	}

	tree := ob.side(order.Side)
	limit, ok := tree.Get(orderbookv1.NewLimit(order.Price))
	if !ok {
		limit = orderbookv1.NewLimit(order.Price)
		tree.ReplaceOrInsert(limit)
	}

	if err := limit.AddOrder(order); err != nil {
		if limit.IsEmpty() {
			tree.Delete(limit)
		}
		return err
	}

	ob.orders[order.ID] = order
	return nil
}

// Remove takes a resting order out of the book.
func (ob *Orderbook) Remove(order *orderbookv1.Order) error {
	if order == nil {
		return orderbookv1.ErrNilOrder
	}
	if _, exists := ob.orders[order.ID]; !exists {
		return fmt.Errorf("order with ID %s does not rest in %s", order.ID, ob.Pair)
	}

	tree := ob.side(order.Side)
	limit, ok := tree.Get(orderbookv1.NewLimit(order.Price))
	if !ok {
		return fmt.Errorf("no %s level at %s in %s", order.Side, order.Price, ob.Pair)
	}
	if err := limit.RemoveOrder(order); err != nil {
		return err
	}
	if limit.IsEmpty() {
		tree.Delete(limit)
	}

	delete(ob.orders, order.ID)
	return nil
}

// Get returns the resting order with id.
func (ob *Orderbook) Get(id string) (*orderbookv1.Order, bool) {
	o, ok := ob.orders[id]
	return o, ok
}

// Len returns the number of resting orders.
func (ob *Orderbook) Len() int {
	return len(ob.orders)
}

// Best returns the best price level of side.
func (ob *Orderbook) Best(side orderbookv1.Side) (*orderbookv1.Limit, bool) {
	return ob.side(side).Min()
}

// Levels returns the price levels of side, best price first.
func (ob *Orderbook) Levels(side orderbookv1.Side) []*orderbookv1.Limit {
	tree := ob.side(side)
	out := make([]*orderbookv1.Limit, 0, tree.Len())
	tree.Ascend(func(l *orderbookv1.Limit) bool {
		out = append(out, l)
		return true
	})
	return out
}

func crosses(taker *orderbookv1.Order, price decimal.Decimal) bool {
	if taker.IsBid() {
		return taker.Price.GreaterThanOrEqual(price)
	}
	return taker.Price.LessThanOrEqual(price)
}

// Match walks the opposite side best price first and oldest order first,
// trading taker against every crossing order at the resting order's price.
// It stops when the taker is filled, when nothing crosses, or when the next
// crossing order belongs to the taker's user. Filled makers leave the book.
// The taker itself is never inserted; the caller decides what to do with the rest.
func (ob *Orderbook) Match(taker *orderbookv1.Order, now time.Time, settle SettleFunc) ([]orderbookv1.Match, orderbookv1.MatchOutcome, error) {
	var matches []orderbookv1.Match
	opposite := ob.side(taker.Side.Opposite())

	for taker.Remaining().IsPositive() {
		limit, ok := opposite.Min()
		if !ok || !crosses(taker, limit.Price) {
			break
		}

		maker := limit.Head()
		if maker.UserID == taker.UserID {
			return matches, orderbookv1.OutcomeSelfTrade, nil
		}

		match := orderbookv1.Match{
			Maker:    maker,
			Taker:    taker,
			Quantity: decimal.Min(taker.Remaining(), maker.Remaining()),
			Price:    limit.Price,
		}
		if err := settle(match); err != nil {
			return matches, orderbookv1.OutcomeExhausted, err
		}

		maker.Fill(match.Quantity, now)
		taker.Fill(match.Quantity, now)
		matches = append(matches, match)

		if maker.Status == orderbookv1.StatusFilled {
			if err := ob.Remove(maker); err != nil {
				return matches, orderbookv1.OutcomeExhausted, err
			}
		}
	}

	return matches, orderbookv1.OutcomeExhausted, nil
}
