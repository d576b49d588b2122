// Package discount resolves negotiated B2B customer discounts.
package discount

import (
	"sync"

	"github.com/shopspring/decimal"

	"courier-pricing/core/types"
	"courier-pricing/internal/errors"
)

// StrategyContext carries the inputs a custom discount rule may use
type StrategyContext struct {
	// Agreement is the custom_rules agreement being applied
	Agreement types.CustomerPricing

	// Subtotal is the amount the discount applies to
	Subtotal decimal.Decimal

	// ShipmentCount is the customer's current-period shipment count,
	// supplied by the host application
	ShipmentCount int
}

// Strategy computes the discount for a custom_rules agreement
type Strategy interface {
	// ID is the rule identifier agreements reference
	ID() string

	// Apply returns the discount amount for the context
	Apply(ctx StrategyContext) (decimal.Decimal, error)
}

// StrategyRegistry holds named custom-rule strategies
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
		return errors.Configf("discount strategy already registered: %s", s.ID())
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
