// Package addons computes costs for requested add-on services (COD,
// insurance, SMS, Saturday delivery, ...) against a pricing table's
// service-price overrides.
package addons

import (
	"github.com/shopspring/decimal"

	"courier-pricing/core/types"
	"courier-pricing/internal/errors"
)

// Input bundles the shipment context an add-on price may depend on
type Input struct {
	// EffectiveWeightKg keys weight-tiered services
	EffectiveWeightKg decimal.Decimal

	// DeclaredValue keys percentage and value-tiered services
	DeclaredValue *decimal.Decimal
}

// Calculate prices the requested service codes for a table.
// A table-bound override wins over the carrier default; an unknown code
// is an error, never silently skipped. The returned total and charges
// are unrounded.
func Calculate(table types.PricingTable, requested []string, in Input, services []types.AdditionalService, overrides []types.ServicePriceOverride) (decimal.Decimal, []types.ServiceCharge, error) {
	total := decimal.Zero
	charges := make([]types.ServiceCharge, 0, len(requested))

	for _, code := range requested {
		svc, ok := findService(services, table.CarrierCode, code)
		if !ok {
			return decimal.Zero, nil, errors.UnknownService(table.CarrierCode, code)
		}

		eff := effectivePricing(svc, findOverride(overrides, table.ID, code))
		amount, err := eff.price(code, in)
		if err != nil {
			return decimal.Zero, nil, err
		}

		amount = types.ClampMin(amount, eff.minPrice)
		amount = types.ClampMax(amount, eff.maxPrice)

		total = total.Add(amount)
		charges = append(charges, types.ServiceCharge{Code: code, Source: eff.source, Amount: amount})
	}
	return total, charges, nil
}

// effective is a service's pricing after override resolution
type effective struct {
	source         string
	pricingType    types.ServicePricingType
	flatPrice      *decimal.Decimal
	percentageRate *decimal.Decimal
	minPrice       *decimal.Decimal
	maxPrice       *decimal.Decimal
	weightTiers    []types.ServiceTier
	valueTiers     []types.ServiceTier
}

func effectivePricing(svc types.AdditionalService, ov *types.ServicePriceOverride) effective {
	eff := effective{
		source:         "default",
		pricingType:    svc.PricingType,
		flatPrice:      svc.DefaultPrice,
		percentageRate: svc.PercentageRate,
		minPrice:       svc.MinPrice,
		maxPrice:       svc.MaxPrice,
		weightTiers:    svc.WeightTiers,
		valueTiers:     svc.ValueTiers,
	}
	if ov == nil {
		return eff
	}
	eff.source = "override"
	if ov.PricingType != nil {
		eff.pricingType = *ov.PricingType
	}
	if ov.Price != nil {
		eff.flatPrice = ov.Price
	}
	if ov.PercentageRate != nil {
		eff.percentageRate = ov.PercentageRate
	}
	if ov.MinPrice != nil {
		eff.minPrice = ov.MinPrice
	}
	if ov.MaxPrice != nil {
		eff.maxPrice = ov.MaxPrice
	}
	if len(ov.WeightTiers) > 0 {
		eff.weightTiers = ov.WeightTiers
	}
	if len(ov.ValueTiers) > 0 {
		eff.valueTiers = ov.ValueTiers
	}
	return eff
}

func (e effective) price(code string, in Input) (decimal.Decimal, error) {
	switch e.pricingType {
	case types.ServiceFixed:
		if e.flatPrice == nil {
			return decimal.Zero, errors.Configf("fixed service %q has no price", code)
		}
		return *e.flatPrice, nil

	case types.ServicePercentage:
		if e.percentageRate == nil {
			return decimal.Zero, errors.Configf("percentage service %q has no rate", code)
		}
		if in.DeclaredValue == nil {
			return decimal.Zero, errors.MissingDeclaredValue("percentage-priced service " + code)
		}
		return types.Percent(*in.DeclaredValue, *e.percentageRate), nil

	case types.ServiceTiered:
		if len(e.weightTiers) > 0 {
			return selectTier(e.weightTiers, in.EffectiveWeightKg, code)
		}
		if len(e.valueTiers) > 0 {
			if in.DeclaredValue == nil {
				return decimal.Zero, errors.MissingDeclaredValue("value-tiered service " + code)
			}
			return selectTier(e.valueTiers, *in.DeclaredValue, code)
		}
		return decimal.Zero, errors.Configf("tiered service %q has no tiers", code)
	}
	return decimal.Zero, errors.Configf("service %q has unknown pricing type %q", code, e.pricingType)
}

func selectTier(tiers []types.ServiceTier, key decimal.Decimal, code string) (decimal.Decimal, error) {
	for _, t := range tiers {
		if t.Contains(key) {
			return t.Price, nil
		}
	}
	return decimal.Zero, errors.Configf("no tier of service %q covers %s", code, key)
}

func findService(services []types.AdditionalService, carrier, code string) (types.AdditionalService, bool) {
	for _, s := range services {
		if s.CarrierCode == carrier && s.Code == code {
			return s, true
		}
	}
	return types.AdditionalService{}, false
}

func findOverride(overrides []types.ServicePriceOverride, tableID, code string) *types.ServicePriceOverride {
	for i := range overrides {
		if overrides[i].TableID == tableID && overrides[i].ServiceCode == code {
			return &overrides[i]
		}
	}
	return nil
}
