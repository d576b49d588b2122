// Package baseprice computes the pre-discount shipment price from a
// pricing table's weight rules, including dimensional weight.
package baseprice

import (
	"github.com/shopspring/decimal"

	"courier-pricing/core/types"
	"courier-pricing/internal/errors"
)

// Result is the outcome of a base price calculation
type Result struct {
	// Price is the computed base price, unrounded
	Price decimal.Decimal

	// EffectiveWeight is max(physical, dimensional) weight in kg
	EffectiveWeight decimal.Decimal

	// Rule is the weight band that priced the shipment
	Rule types.PricingRule
}

// EffectiveWeight returns the billable weight: the greater of the
// physical weight and the dimensional weight derived from the table's
// volumetric divisor.
func EffectiveWeight(table types.PricingTable, weightKg decimal.Decimal, dims *types.Dimensions) decimal.Decimal {
	if table.VolumetricDivisor == nil || dims == nil || dims.IsZero() {
		return weightKg
	}
	dimensional := dims.Volume().Div(*table.VolumetricDivisor)
	if dimensional.GreaterThan(weightKg) {
		return dimensional
	}
	return weightKg
}

// Calculate applies the table's weight rules to the shipment.
// The rule whose [WeightFrom, WeightTo) band contains the effective
// weight is applied; a miss is an error, never a clamp to the nearest
// band. Monetary values stay unrounded.
func Calculate(table types.PricingTable, rules []types.PricingRule, weightKg decimal.Decimal, dims *types.Dimensions, declaredValue *decimal.Decimal) (*Result, error) {
	if !weightKg.IsPositive() {
		return nil, errors.Validation("weight must be positive")
	}

	effective := EffectiveWeight(table, weightKg, dims)

	if effective.LessThan(table.MinWeightKg) {
		return nil, errors.WeightOutOfRange(effective.String(), table.ID)
	}
	if table.MaxWeightKg != nil && effective.GreaterThan(*table.MaxWeightKg) {
		return nil, errors.WeightOutOfRange(effective.String(), table.ID)
	}

	rule, ok := selectRule(rules, effective)
	if !ok {
		return nil, errors.WeightOutOfRange(effective.String(), table.ID)
	}

	price, err := applyRule(rule, effective, declaredValue)
	if err != nil {
		return nil, err
	}

	// Min clamp, then max clamp, in that order
	price = types.ClampMin(price, rule.MinPrice)
	price = types.ClampMax(price, rule.MaxPrice)

	return &Result{Price: price, EffectiveWeight: effective, Rule: rule}, nil
}

func selectRule(rules []types.PricingRule, w decimal.Decimal) (types.PricingRule, bool) {
	for _, r := range rules {
		if r.Contains(w) {
			return r, true
		}
	}
	return types.PricingRule{}, false
}

func applyRule(rule types.PricingRule, effective decimal.Decimal, declaredValue *decimal.Decimal) (decimal.Decimal, error) {
	switch rule.Method {
	case types.MethodFixed:
		return rule.Price, nil

	case types.MethodPerKg:
		if rule.PricePerKg == nil {
			return decimal.Zero, errors.Configf("per_kg rule %s is missing price_per_kg", rule.ID)
		}
		excess := excessWeight(effective, rule.WeightFrom)
		return rule.Price.Add(excess.Mul(*rule.PricePerKg)), nil

	case types.MethodPerKgStep:
		if rule.PricePerKg == nil || rule.WeightStep == nil || !rule.WeightStep.IsPositive() {
			return decimal.Zero, errors.Configf("per_kg_step rule %s needs price_per_kg and a positive weight_step", rule.ID)
		}
		// Partial steps bill as full steps
		excess := excessWeight(effective, rule.WeightFrom)
		steps := excess.Div(*rule.WeightStep).Ceil()
		return rule.Price.Add(steps.Mul(*rule.PricePerKg)), nil

	case types.MethodPercentage:
		if declaredValue == nil {
			return decimal.Zero, errors.MissingDeclaredValue("percentage pricing rule " + rule.ID)
		}
		return types.Percent(*declaredValue, rule.Price), nil
	}
	return decimal.Zero, errors.Configf("rule %s has unknown calculation method %q", rule.ID, rule.Method)
}

func excessWeight(effective, from decimal.Decimal) decimal.Decimal {
	excess := effective.Sub(from)
	if excess.IsNegative() {
		return decimal.Zero
	}
	return excess
}
