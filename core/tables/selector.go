// Package tables selects the effective pricing table for a
// carrier+zone+service lane at a reference time.
package tables

import (
	"time"

	"courier-pricing/core/types"
	"courier-pricing/internal/errors"
)

// Select returns the single effective pricing table for the lane.
// Among tables that are active and whose validity window contains at,
// the highest version wins. Missing pricing is a hard error; there is
// no fallback to another zone or service type.
func Select(carrierCode, zoneCode, serviceType string, at time.Time, candidates []types.PricingTable) (*types.PricingTable, error) {
	var best *types.PricingTable
	for i := range candidates {
		t := &candidates[i]
		if t.CarrierCode != carrierCode || t.ZoneCode != zoneCode || t.ServiceType != serviceType {
			continue
		}
		if !t.IsActive || !t.EffectiveAt(at) {
			continue
		}
		if best == nil || t.Version > best.Version {
			best = t
		}
	}
	if best == nil {
		return nil, errors.NoPricingAvailable(carrierCode, zoneCode, serviceType)
	}
	out := *best
	return &out, nil
}

// ValidateRules checks that a table's rules are non-overlapping and
// weight-ordered. Intended for load-time validation of rate cards.
func ValidateRules(table types.PricingTable, rules []types.PricingRule) error {
	var prev *types.PricingRule
	for i := range rules {
		r := &rules[i]
		if r.TableID != table.ID {
			return errors.Configf("rule %s does not belong to table %s", r.ID, table.ID)
		}
		if !r.Method.Valid() {
			return errors.Configf("rule %s has unknown calculation method %q", r.ID, r.Method)
		}
		if r.WeightTo != nil && !r.WeightFrom.LessThan(*r.WeightTo) {
			return errors.Configf("rule %s has empty weight band [%s, %s)", r.ID, r.WeightFrom, *r.WeightTo)
		}
		if prev != nil {
			if prev.WeightTo == nil {
				return errors.Configf("rule %s follows an unbounded rule in table %s", r.ID, table.ID)
			}
			if r.WeightFrom.LessThan(*prev.WeightTo) {
				return errors.Configf("rules %s and %s overlap in table %s", prev.ID, r.ID, table.ID)
			}
		}
		switch r.Method {
		case types.MethodPerKg:
			if r.PricePerKg == nil {
				return errors.Configf("per_kg rule %s is missing price_per_kg", r.ID)
			}
		case types.MethodPerKgStep:
			if r.PricePerKg == nil || r.WeightStep == nil || !r.WeightStep.IsPositive() {
				return errors.Configf("per_kg_step rule %s needs price_per_kg and a positive weight_step", r.ID)
			}
		}
		prev = r
	}
	return nil
}
