package exchange

import (
	"time"

	"github.com/lucaCambi77/valr/pkg/sequence"
)

// Option configures an Exchange.
type Option func(*Exchange)

// WithClock sets the time source stamped on orders, trades and book changes.
func WithClock(clock func() time.Time) Option {
	return func(e *Exchange) {
		e.clock = clock
	}
}

// WithRevisionSequencer sets the book revision counter.
func WithRevisionSequencer(seq *sequence.Sequencer) Option {
	return func(e *Exchange) {
		e.revision = seq
	}
}

// WithArrivalSequencer sets the counter that stamps accepted orders with their arrival number.
func WithArrivalSequencer(seq *sequence.Sequencer) Option {
	return func(e *Exchange) {
		e.arrival = seq
	}
}

// WithIDGenerator sets the generator used for orders placed without an id.
func WithIDGenerator(fn func() string) Option {
	return func(e *Exchange) {
		e.newID = fn
	}
}
