// Package promotion - Promotion filtering, stacking and discount math
package promotion

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"courier-pricing/core/types"
	"courier-pricing/internal/errors"
)

// Context carries the calculation state promotions match against
type Context struct {
	CarrierCode   string
	ZoneCode      string
	ServiceType   string
	CustomerID    string
	CustomerGroup string

	// Subtotal is base price plus additional services, before discounts
	Subtotal decimal.Decimal

	// BasePrice is the shipping component, the amount free_shipping waives
	BasePrice decimal.Decimal
}

// Engine evaluates promotions against a calculation context
type Engine struct {
	strategies *StrategyRegistry
}

// NewEngine creates a promotion engine with the given strategy
// registry. A nil registry is valid when no strategy-backed promotions
// exist.
func NewEngine(strategies *StrategyRegistry) *Engine {
	return &Engine{strategies: strategies}
}

// FindByCode locates a code-entered promotion. The error distinguishes
// unknown, inactive/expired and usage-exhausted codes so the caller can
// surface "promo invalid" rather than "calculation failed".
func (e *Engine) FindByCode(code string, promos []types.PromotionalPricing, at time.Time) (*types.PromotionalPricing, error) {
	for i := range promos {
		p := &promos[i]
		if p.PromoCode != code {
			continue
		}
		if !p.IsActive || !p.ValidAt(at) {
			return nil, errors.InvalidPromoCode(code, "is expired or not active")
		}
		if p.UsageExhausted() {
			return nil, errors.InvalidPromoCode(code, "has reached its usage limit")
		}
		out := *p
		return &out, nil
	}
	return nil, errors.InvalidPromoCode(code, "is not recognized")
}

// Apply filters the promotions against the context, resolves stacking
// by priority, and returns the total discount with the itemized list.
// Usage counts are read-only preconditions; the host performs the
// actual increment after a completed purchase.
func (e *Engine) Apply(ctx Context, promos []types.PromotionalPricing, at time.Time) (decimal.Decimal, []types.AppliedPromotion, error) {
	applicable := e.filter(ctx, promos, at)
	if len(applicable) == 0 {
		return decimal.Zero, nil, nil
	}

	// Highest priority first; stable so equal priorities keep input order
	sort.SliceStable(applicable, func(i, j int) bool {
		return applicable[i].Priority > applicable[j].Priority
	})

	total := decimal.Zero
	var applied []types.AppliedPromotion
	for i, p := range applicable {
		// Behind a stackable head, non-stackable candidates are
		// skipped; they do not end the stack.
		if i > 0 && !p.Stackable {
			continue
		}
		amount, err := e.discount(p, ctx)
		if err != nil {
			return decimal.Zero, nil, err
		}
		total = total.Add(amount)
		applied = append(applied, types.AppliedPromotion{
			PromotionID:  p.ID,
			PromoCode:    p.PromoCode,
			DiscountType: p.DiscountType,
			Amount:       amount,
		})
		if i == 0 && !p.Stackable {
			break
		}
	}
	return total, applied, nil
}

func (e *Engine) filter(ctx Context, promos []types.PromotionalPricing, at time.Time) []types.PromotionalPricing {
	var out []types.PromotionalPricing
	for _, p := range promos {
		if !p.IsActive || !p.ValidAt(at) {
			continue
		}
		if !matchesTarget(p, ctx) {
			continue
		}
		if p.MinimumOrderValue != nil && ctx.Subtotal.LessThan(*p.MinimumOrderValue) {
			continue
		}
		if p.UsageExhausted() {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesTarget(p types.PromotionalPricing, ctx Context) bool {
	switch p.TargetType {
	case types.TargetAll:
		return true
	case types.TargetCarrier:
		return p.MatchesTarget(ctx.CarrierCode)
	case types.TargetZone:
		return p.MatchesTarget(ctx.ZoneCode)
	case types.TargetServiceType:
		return p.MatchesTarget(ctx.ServiceType)
	case types.TargetCustomer:
		return ctx.CustomerID != "" && p.MatchesTarget(ctx.CustomerID)
	case types.TargetCustomerGroup:
		return ctx.CustomerGroup != "" && p.MatchesTarget(ctx.CustomerGroup)
	}
	return false
}

func (e *Engine) discount(p types.PromotionalPricing, ctx Context) (decimal.Decimal, error) {
	switch p.DiscountType {
	case types.PromoPercentage:
		amount := types.Percent(ctx.Subtotal, p.DiscountValue)
		return types.ClampMax(amount, p.MaximumDiscountAmount), nil

	case types.PromoFixedAmount:
		return p.DiscountValue, nil

	case types.PromoFreeShipping:
		return ctx.BasePrice, nil

	case types.PromoBuyXGetY, types.PromoTierDiscount:
		if e.strategies == nil {
			return decimal.Zero, errors.Configf("promotion %s needs strategy %q but no strategies are registered", p.ID, p.StrategyID)
		}
		strategy, ok := e.strategies.Get(p.StrategyID)
		if !ok {
			return decimal.Zero, errors.Configf("promotion %s references unregistered strategy %q", p.ID, p.StrategyID)
		}
		return strategy.Apply(p, ctx)
	}
	return decimal.Zero, errors.Configf("promotion %s has unknown discount type %q", p.ID, p.DiscountType)
}
