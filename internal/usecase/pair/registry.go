package pair

import (
	"fmt"
	"sort"
	"sync"

	pairv1 "github.com/lucaCambi77/valr/internal/domain/pair/v1"
	"github.com/lucaCambi77/valr/pkg/errors"
)

// Registry is an in-memory pair registry seeded at startup.
type Registry struct {
	mu    sync.RWMutex
	pairs map[string]pairv1.CurrencyPair
}

// NewRegistry creates a registry holding pairs.
func NewRegistry(pairs ...pairv1.CurrencyPair) *Registry {
	r := &Registry{pairs: make(map[string]pairv1.CurrencyPair, len(pairs))}
	for _, p := range pairs {
		r.pairs[p.Symbol] = p
	}
	return r
}

// Resolve returns the pair listed under symbol.
func (r *Registry) Resolve(symbol string) (pairv1.CurrencyPair, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.pairs[symbol]
	if !ok {
		return pairv1.CurrencyPair{}, errors.NewErrorDetails(
			fmt.Sprintf("Currency pair %s does not exists or it is not supported", symbol),
			string(errors.UnknownPairError), "pair")
	}
	return p, nil
}

// List returns every pair ordered by symbol.
func (r *Registry) List() []pairv1.CurrencyPair {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pairv1.CurrencyPair, 0, len(r.pairs))
	for _, p := range r.pairs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
