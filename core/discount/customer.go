// Package discount - Negotiated agreement resolution
package discount

import (
	"time"

	"github.com/shopspring/decimal"

	"courier-pricing/core/types"
	"courier-pricing/internal/errors"
)

// Resolver computes customer discounts from negotiated agreements
type Resolver struct {
	strategies *StrategyRegistry
}

// NewResolver creates a resolver with the given custom-rule registry.
// A nil registry is valid when no custom_rules agreements exist.
func NewResolver(strategies *StrategyRegistry) *Resolver {
	return &Resolver{strategies: strategies}
}

// Input carries the discount resolution context
type Input struct {
	// CustomerID is empty for anonymous calculations
	CustomerID string

	// TableID scopes agreements to the selected pricing table
	TableID string

	// Subtotal is the amount the discount applies to
	Subtotal decimal.Decimal

	// ShipmentCount is the customer's current-period shipment count,
	// supplied by the host application for volume agreements
	ShipmentCount int
}

// Resolve returns the discount amount for the customer's active
// agreement. Anonymous customers and subtotals outside the agreement's
// order-value bounds yield zero, not an error. When several agreements
// overlap, the highest priority level wins.
//
// The agreement is returned even when its order-value bounds zero the
// discount: terms that ride on the agreement itself, such as its tax
// rate override, still apply to the calculation.
func (r *Resolver) Resolve(in Input, agreements []types.CustomerPricing, at time.Time) (decimal.Decimal, *types.CustomerPricing, error) {
	if in.CustomerID == "" {
		return decimal.Zero, nil, nil
	}

	agreement := pickAgreement(in.CustomerID, in.TableID, agreements, at)
	if agreement == nil {
		return decimal.Zero, nil, nil
	}

	if agreement.MinimumOrderValue != nil && in.Subtotal.LessThan(*agreement.MinimumOrderValue) {
		return decimal.Zero, agreement, nil
	}
	if agreement.MaximumOrderValue != nil && in.Subtotal.GreaterThan(*agreement.MaximumOrderValue) {
		return decimal.Zero, agreement, nil
	}

	amount, err := r.compute(*agreement, in)
	if err != nil {
		return decimal.Zero, nil, err
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return amount, agreement, nil
}

func pickAgreement(customerID, tableID string, agreements []types.CustomerPricing, at time.Time) *types.CustomerPricing {
	var best *types.CustomerPricing
	for i := range agreements {
		a := &agreements[i]
		if a.CustomerID != customerID || a.BasePricingTableID != tableID {
			continue
		}
		if !a.IsActive || !a.EffectiveAt(at) {
			continue
		}
		if best == nil || a.PriorityLevel > best.PriorityLevel {
			best = a
		}
	}
	return best
}

func (r *Resolver) compute(a types.CustomerPricing, in Input) (decimal.Decimal, error) {
	switch a.DiscountType {
	case types.DiscountPercentage:
		if a.BaseDiscountPercent == nil {
			return decimal.Zero, errors.Configf("percentage agreement %s has no discount percent", a.ID)
		}
		return types.Percent(in.Subtotal, *a.BaseDiscountPercent), nil

	case types.DiscountFixed:
		if a.FixedDiscountAmount == nil {
			return decimal.Zero, errors.Configf("fixed agreement %s has no discount amount", a.ID)
		}
		return *a.FixedDiscountAmount, nil

	case types.DiscountVolume:
		for _, tier := range a.VolumeTiers {
			if tier.Contains(in.ShipmentCount) {
				return types.Percent(in.Subtotal, tier.DiscountPercent), nil
			}
		}
		// Below the lowest tier: no discount earned yet
		return decimal.Zero, nil

	case types.DiscountCustomRules:
		if r.strategies == nil {
			return decimal.Zero, errors.Configf("agreement %s needs custom rule %q but no strategies are registered", a.ID, a.CustomRuleID)
		}
		strategy, ok := r.strategies.Get(a.CustomRuleID)
		if !ok {
			return decimal.Zero, errors.Configf("agreement %s references unregistered custom rule %q", a.ID, a.CustomRuleID)
		}
		return strategy.Apply(StrategyContext{
			Agreement:     a,
			Subtotal:      in.Subtotal,
			ShipmentCount: in.ShipmentCount,
		})
	}
	return decimal.Zero, errors.Configf("agreement %s has unknown discount type %q", a.ID, a.DiscountType)
}
