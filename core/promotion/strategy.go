// Package promotion applies time-limited promotions and promo codes.
package promotion

import (
	"sync"

	"github.com/shopspring/decimal"

	"courier-pricing/core/types"
	"courier-pricing/internal/errors"
)

// Strategy computes the discount for promotion types that need
// order-line context beyond this engine's model (buy_x_get_y,
// tier_discount). Implementations are host-supplied.
type Strategy interface {
	// ID is the strategy identifier promotions reference
	ID() string

	// Apply returns the discount amount for the context
	Apply(promo types.PromotionalPricing, ctx Context) (decimal.Decimal, error)
}

// StrategyRegistry holds named promotion strategies
type StrategyRegistry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
}

// NewStrategyRegistry creates an empty registry
func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{strategies: make(map[string]Strategy)}
}

// Register adds a strategy, returning an error on duplicate IDs
func (r *StrategyRegistry) Register(s Strategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.strategies[s.ID()]; exists {
		return errors.Configf("promotion strategy already registered: %s", s.ID())
	}
	r.strategies[s.ID()] = s
	return nil
}

// Get returns a strategy by ID
func (r *StrategyRegistry) Get(id string) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[id]
	return s, ok
}
