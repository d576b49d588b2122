// Package types holds the courier pricing domain records.
// All records are immutable value types supplied by the host application;
// the engine never mutates them.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// ZoneType classifies a pricing zone by geographic scope
type ZoneType string

const (
	ZoneLocal         ZoneType = "local"
	ZoneNational      ZoneType = "national"
	ZoneInternational ZoneType = "international"
)

// Specificity orders zone types for tie-breaking, most specific first
func (z ZoneType) Specificity() int {
	switch z {
	case ZoneLocal:
		return 0
	case ZoneNational:
		return 1
	case ZoneInternational:
		return 2
	}
	return 3
}

// Valid reports whether the zone type is a known value
func (z ZoneType) Valid() bool {
	return z == ZoneLocal || z == ZoneNational || z == ZoneInternational
}

// PricingZone is a geographic pricing region
type PricingZone struct {
	// Code uniquely identifies the zone
	Code string `json:"code"`

	// Name is a human-readable label
	Name string `json:"name,omitempty"`

	// ZoneType is the geographic scope
	ZoneType ZoneType `json:"zone_type"`

	// Countries is the set of ISO 3166-1 alpha-2 codes the zone covers
	Countries []string `json:"countries"`

	// PostalCodePatterns narrows the zone within its countries.
	// Empty means the zone covers all postal codes of its countries.
	PostalCodePatterns []string `json:"postal_code_patterns,omitempty"`
}

// Carrier describes a courier's capability envelope.
// Used for capability validation only, never for pricing math.
type Carrier struct {
	// Code uniquely identifies the carrier
	Code string `json:"code"`

	// Name is a human-readable label
	Name string `json:"name,omitempty"`

	// MaxWeightKg is the heaviest shipment the carrier accepts
	MaxWeightKg decimal.Decimal `json:"max_weight_kg"`

	// MaxDimensionsCm is the largest parcel the carrier accepts
	MaxDimensionsCm Dimensions `json:"max_dimensions_cm"`

	// SupportedZones lists the zone codes the carrier serves
	SupportedZones []string `json:"supported_zones"`
}

// SupportsZone reports whether the carrier serves a zone
func (c Carrier) SupportsZone(zoneCode string) bool {
	for _, z := range c.SupportedZones {
		if z == zoneCode {
			return true
		}
	}
	return false
}

// Dimensions is a parcel's size in centimeters
type Dimensions struct {
	LengthCm decimal.Decimal `json:"length_cm"`
	WidthCm  decimal.Decimal `json:"width_cm"`
	HeightCm decimal.Decimal `json:"height_cm"`
}

// Volume returns L*W*H in cubic centimeters
func (d Dimensions) Volume() decimal.Decimal {
	return d.LengthCm.Mul(d.WidthCm).Mul(d.HeightCm)
}

// FitsWithin reports whether every side fits inside the limit
func (d Dimensions) FitsWithin(limit Dimensions) bool {
	return d.LengthCm.LessThanOrEqual(limit.LengthCm) &&
		d.WidthCm.LessThanOrEqual(limit.WidthCm) &&
		d.HeightCm.LessThanOrEqual(limit.HeightCm)
}

// IsZero reports whether no dimension is set
func (d Dimensions) IsZero() bool {
	return d.LengthCm.IsZero() && d.WidthCm.IsZero() && d.HeightCm.IsZero()
}

// PricingTable is a versioned, time-bounded rate card for one
// carrier+zone+service combination
type PricingTable struct {
	// ID uniquely identifies the table version
	ID string `json:"id"`

	// CarrierCode is the carrier the table prices
	CarrierCode string `json:"carrier_code"`

	// ZoneCode is the zone the table prices
	ZoneCode string `json:"zone_code"`

	// ServiceType is the shipping service (e.g. "standard", "express")
	ServiceType string `json:"service_type"`

	// Version is monotonic per carrier+zone+service; highest wins on overlap
	Version int `json:"version"`

	// BasePrice is the table's baseline price component
	BasePrice decimal.Decimal `json:"base_price"`

	// MinWeightKg is the lightest shipment the table covers
	MinWeightKg decimal.Decimal `json:"min_weight_kg"`

	// MaxWeightKg is the heaviest shipment the table covers, nil = unbounded
	MaxWeightKg *decimal.Decimal `json:"max_weight_kg,omitempty"`

	// VolumetricDivisor converts parcel volume to dimensional weight, nil = disabled
	VolumetricDivisor *decimal.Decimal `json:"volumetric_divisor,omitempty"`

	// Currency is the ISO 4217 code all prices in the table are quoted in
	Currency Currency `json:"currency"`

	// TaxRatePercent applies at final assembly, nil = engine default
	TaxRatePercent *decimal.Decimal `json:"tax_rate_percent,omitempty"`

	// EffectiveFrom is the start of the table's validity window
	EffectiveFrom time.Time `json:"effective_from"`

	// EffectiveUntil is the exclusive end of validity, nil = open-ended
	EffectiveUntil *time.Time `json:"effective_until,omitempty"`

	// IsActive gates the table regardless of its window
	IsActive bool `json:"is_active"`
}

// EffectiveAt reports whether the table's validity window contains at
func (t PricingTable) EffectiveAt(at time.Time) bool {
	if at.Before(t.EffectiveFrom) {
		return false
	}
	if t.EffectiveUntil != nil && !at.Before(*t.EffectiveUntil) {
		return false
	}
	return true
}

// CalculationMethod selects how a pricing rule computes its price
type CalculationMethod string

const (
	MethodFixed      CalculationMethod = "fixed"
	MethodPerKg      CalculationMethod = "per_kg"
	MethodPerKgStep  CalculationMethod = "per_kg_step"
	MethodPercentage CalculationMethod = "percentage"
)

// Valid reports whether the calculation method is a known value
func (m CalculationMethod) Valid() bool {
	switch m {
	case MethodFixed, MethodPerKg, MethodPerKgStep, MethodPercentage:
		return true
	}
	return false
}

// PricingRule is one weight band of a pricing table.
// Bands are half-open [WeightFrom, WeightTo) and must not overlap
// within a table.
type PricingRule struct {
	// ID uniquely identifies the rule
	ID string `json:"id"`

	// TableID is the owning pricing table
	TableID string `json:"table_id"`

	// WeightFrom is the inclusive lower bound in kg
	WeightFrom decimal.Decimal `json:"weight_from"`

	// WeightTo is the exclusive upper bound in kg, nil = unbounded
	WeightTo *decimal.Decimal `json:"weight_to,omitempty"`

	// Method selects the price computation
	Method CalculationMethod `json:"calculation_method"`

	// Price is the rule's base amount; for percentage it is the percent rate
	Price decimal.Decimal `json:"price"`

	// PricePerKg is the marginal rate for per_kg and per_kg_step
	PricePerKg *decimal.Decimal `json:"price_per_kg,omitempty"`

	// WeightStep is the billing increment in kg for per_kg_step
	WeightStep *decimal.Decimal `json:"weight_step,omitempty"`

	// MinPrice clamps the computed price from below
	MinPrice *decimal.Decimal `json:"min_price,omitempty"`

	// MaxPrice clamps the computed price from above
	MaxPrice *decimal.Decimal `json:"max_price,omitempty"`
}

// Contains reports whether the rule's weight band contains w
func (r PricingRule) Contains(w decimal.Decimal) bool {
	if w.LessThan(r.WeightFrom) {
		return false
	}
	if r.WeightTo != nil && !w.LessThan(*r.WeightTo) {
		return false
	}
	return true
}

// ServicePricingType selects how an additional service is priced
type ServicePricingType string

const (
	ServiceFixed      ServicePricingType = "fixed"
	ServicePercentage ServicePricingType = "percentage"
	ServiceTiered     ServicePricingType = "tiered"
)

// Valid reports whether the pricing type is a known value
func (t ServicePricingType) Valid() bool {
	return t == ServiceFixed || t == ServicePercentage || t == ServiceTiered
}

// ServiceTier is one band of a tiered additional-service price.
// Bands are half-open [From, To), keyed by weight or declared value.
type ServiceTier struct {
	From  decimal.Decimal  `json:"from"`
	To    *decimal.Decimal `json:"to,omitempty"`
	Price decimal.Decimal  `json:"price"`
}

// Contains reports whether the tier band contains v
func (t ServiceTier) Contains(v decimal.Decimal) bool {
	if v.LessThan(t.From) {
		return false
	}
	if t.To != nil && !v.LessThan(*t.To) {
		return false
	}
	return true
}

// AdditionalService is a carrier add-on (COD, insurance, SMS, ...)
// with its default pricing
type AdditionalService struct {
	// CarrierCode is the carrier offering the service
	CarrierCode string `json:"carrier_code"`

	// Code identifies the service (e.g. "cod", "insurance")
	Code string `json:"code"`

	// Name is a human-readable label
	Name string `json:"name,omitempty"`

	// PricingType selects the price computation
	PricingType ServicePricingType `json:"pricing_type"`

	// DefaultPrice is the flat price for fixed services
	DefaultPrice *decimal.Decimal `json:"default_price,omitempty"`

	// PercentageRate is the percent of declared value for percentage services
	PercentageRate *decimal.Decimal `json:"percentage_rate,omitempty"`

	// MinPrice clamps the computed charge from below
	MinPrice *decimal.Decimal `json:"min_price,omitempty"`

	// MaxPrice clamps the computed charge from above
	MaxPrice *decimal.Decimal `json:"max_price,omitempty"`

	// WeightTiers prices tiered services by effective weight
	WeightTiers []ServiceTier `json:"weight_tiers,omitempty"`

	// ValueTiers prices tiered services by declared value
	ValueTiers []ServiceTier `json:"value_tiers,omitempty"`
}

// ServicePriceOverride rebinds an additional service's price for one
// pricing table
type ServicePriceOverride struct {
	// TableID is the pricing table the override is bound to
	TableID string `json:"table_id"`

	// ServiceCode is the additional service being overridden
	ServiceCode string `json:"service_code"`

	// PricingType overrides the computation when set
	PricingType *ServicePricingType `json:"pricing_type,omitempty"`

	// Price overrides the flat price
	Price *decimal.Decimal `json:"price,omitempty"`

	// PercentageRate overrides the percent rate
	PercentageRate *decimal.Decimal `json:"percentage_rate,omitempty"`

	// MinPrice overrides the lower clamp
	MinPrice *decimal.Decimal `json:"min_price,omitempty"`

	// MaxPrice overrides the upper clamp
	MaxPrice *decimal.Decimal `json:"max_price,omitempty"`

	// WeightTiers overrides weight-keyed tiers
	WeightTiers []ServiceTier `json:"weight_tiers,omitempty"`

	// ValueTiers overrides value-keyed tiers
	ValueTiers []ServiceTier `json:"value_tiers,omitempty"`
}

// DiscountType selects how a customer agreement discounts a subtotal
type DiscountType string

const (
	DiscountPercentage  DiscountType = "percentage"
	DiscountFixed       DiscountType = "fixed"
	DiscountVolume      DiscountType = "volume"
	DiscountCustomRules DiscountType = "custom_rules"
)

// Valid reports whether the discount type is a known value
func (t DiscountType) Valid() bool {
	switch t {
	case DiscountPercentage, DiscountFixed, DiscountVolume, DiscountCustomRules:
		return true
	}
	return false
}

// VolumeTier is one band of a volume discount, keyed by the customer's
// current-period shipment count
type VolumeTier struct {
	// MinShipments is the inclusive lower bound
	MinShipments int `json:"min_shipments"`

	// MaxShipments is the inclusive upper bound, nil = unbounded
	MaxShipments *int `json:"max_shipments,omitempty"`

	// DiscountPercent applies to the subtotal
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// Contains reports whether the tier covers a shipment count
func (t VolumeTier) Contains(count int) bool {
	if count < t.MinShipments {
		return false
	}
	if t.MaxShipments != nil && count > *t.MaxShipments {
		return false
	}
	return true
}

// CustomerPricing is a negotiated B2B pricing agreement.
// Created on contract signing, superseded by a new row on renegotiation.
type CustomerPricing struct {
	// ID uniquely identifies the agreement
	ID string `json:"id"`

	// CustomerID is the customer the agreement binds
	CustomerID string `json:"customer_id"`

	// BasePricingTableID is the pricing table the agreement discounts
	BasePricingTableID string `json:"base_pricing_table_id"`

	// DiscountType selects the discount computation
	DiscountType DiscountType `json:"discount_type"`

	// BaseDiscountPercent is the rate for percentage discounts
	BaseDiscountPercent *decimal.Decimal `json:"base_discount_percent,omitempty"`

	// FixedDiscountAmount is the amount for fixed discounts
	FixedDiscountAmount *decimal.Decimal `json:"fixed_discount_amount,omitempty"`

	// VolumeTiers bands volume discounts by shipment count
	VolumeTiers []VolumeTier `json:"volume_discount_tiers,omitempty"`

	// CustomRuleID names the registered strategy for custom_rules agreements
	CustomRuleID string `json:"custom_rule_id,omitempty"`

	// MinimumOrderValue disables the agreement below this subtotal
	MinimumOrderValue *decimal.Decimal `json:"minimum_order_value,omitempty"`

	// MaximumOrderValue disables the agreement above this subtotal
	MaximumOrderValue *decimal.Decimal `json:"maximum_order_value,omitempty"`

	// TaxRateOverride replaces the table's tax rate when set
	TaxRateOverride *decimal.Decimal `json:"tax_rate_override,omitempty"`

	// EffectiveFrom is the start of the agreement's validity window
	EffectiveFrom time.Time `json:"effective_from"`

	// EffectiveUntil is the exclusive end of validity, nil = open-ended
	EffectiveUntil *time.Time `json:"effective_until,omitempty"`

	// IsActive gates the agreement regardless of its window
	IsActive bool `json:"is_active"`

	// PriorityLevel breaks ties between overlapping agreements, highest wins
	PriorityLevel int `json:"priority_level"`
}

// EffectiveAt reports whether the agreement's window contains at
func (p CustomerPricing) EffectiveAt(at time.Time) bool {
	if at.Before(p.EffectiveFrom) {
		return false
	}
	if p.EffectiveUntil != nil && !at.Before(*p.EffectiveUntil) {
		return false
	}
	return true
}

// PromoDiscountType selects how a promotion computes its discount
type PromoDiscountType string

const (
	PromoPercentage   PromoDiscountType = "percentage"
	PromoFixedAmount  PromoDiscountType = "fixed_amount"
	PromoFreeShipping PromoDiscountType = "free_shipping"
	PromoBuyXGetY     PromoDiscountType = "buy_x_get_y"
	PromoTierDiscount PromoDiscountType = "tier_discount"
)

// Valid reports whether the promo discount type is a known value
func (t PromoDiscountType) Valid() bool {
	switch t {
	case PromoPercentage, PromoFixedAmount, PromoFreeShipping, PromoBuyXGetY, PromoTierDiscount:
		return true
	}
	return false
}

// PromoTargetType scopes which calculations a promotion applies to
type PromoTargetType string

const (
	TargetAll           PromoTargetType = "all"
	TargetCarrier       PromoTargetType = "carrier"
	TargetZone          PromoTargetType = "zone"
	TargetServiceType   PromoTargetType = "service_type"
	TargetCustomer      PromoTargetType = "customer"
	TargetCustomerGroup PromoTargetType = "customer_group"
)

// Valid reports whether the target type is a known value
func (t PromoTargetType) Valid() bool {
	switch t {
	case TargetAll, TargetCarrier, TargetZone, TargetServiceType, TargetCustomer, TargetCustomerGroup:
		return true
	}
	return false
}

// UsageLimitType scopes a promotion's usage limit
type UsageLimitType string

const (
	UsageTotal       UsageLimitType = "total"
	UsagePerCustomer UsageLimitType = "per_customer"
	UsagePerDay      UsageLimitType = "per_day"
)

// PromotionalPricing is a time-limited promotion or promo code.
// UsageCount is maintained by the host application; the engine only
// reads it as a precondition and never increments it.
type PromotionalPricing struct {
	// ID uniquely identifies the promotion
	ID string `json:"id"`

	// PromoCode is the customer-entered code, empty for automatic promotions
	PromoCode string `json:"promo_code,omitempty"`

	// DiscountType selects the discount computation
	DiscountType PromoDiscountType `json:"discount_type"`

	// DiscountValue is the percent rate or fixed amount, per DiscountType
	DiscountValue decimal.Decimal `json:"discount_value"`

	// MinimumOrderValue disables the promotion below this subtotal
	MinimumOrderValue *decimal.Decimal `json:"minimum_order_value,omitempty"`

	// MaximumDiscountAmount caps percentage discounts
	MaximumDiscountAmount *decimal.Decimal `json:"maximum_discount_amount,omitempty"`

	// TargetType scopes the promotion
	TargetType PromoTargetType `json:"target_type"`

	// TargetValues lists the matching values for the target type
	TargetValues []string `json:"target_values,omitempty"`

	// UsageLimit caps redemptions, nil = unlimited
	UsageLimit *int `json:"usage_limit,omitempty"`

	// UsageLimitType scopes the limit; the host supplies UsageCount
	// already scoped accordingly
	UsageLimitType UsageLimitType `json:"usage_limit_type,omitempty"`

	// UsageCount is the redemption count in the limit's scope
	UsageCount int `json:"usage_count"`

	// ValidFrom is the inclusive start of validity
	ValidFrom time.Time `json:"valid_from"`

	// ValidUntil is the inclusive end of validity
	ValidUntil time.Time `json:"valid_until"`

	// Priority orders competing promotions, highest first
	Priority int `json:"priority"`

	// Stackable allows combining with other stackable promotions
	Stackable bool `json:"stackable"`

	// IsActive gates the promotion regardless of its window
	IsActive bool `json:"is_active"`

	// StrategyID names the registered strategy for buy_x_get_y and
	// tier_discount promotions
	StrategyID string `json:"strategy_id,omitempty"`
}

// ValidAt reports whether the promotion's window contains at.
// Both bounds are inclusive.
func (p PromotionalPricing) ValidAt(at time.Time) bool {
	return !at.Before(p.ValidFrom) && !at.After(p.ValidUntil)
}

// UsageExhausted reports whether another redemption would exceed the limit
func (p PromotionalPricing) UsageExhausted() bool {
	return p.UsageLimit != nil && p.UsageCount >= *p.UsageLimit
}

// MatchesTarget reports whether a target value is listed
func (p PromotionalPricing) MatchesTarget(value string) bool {
	for _, v := range p.TargetValues {
		if v == value {
			return true
		}
	}
	return false
}
