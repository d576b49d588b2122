// Package types - Calculation output
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceCharge is one itemized additional-service cost
type ServiceCharge struct {
	// Code is the additional service code
	Code string `json:"code"`

	// Source records whether the price came from a table override
	// or the carrier default ("override" / "default")
	Source string `json:"source"`

	// Amount is the computed charge before final rounding
	Amount decimal.Decimal `json:"amount"`
}

// AppliedPromotion is one itemized promotional discount
type AppliedPromotion struct {
	// PromotionID is the applied promotion
	PromotionID string `json:"promotion_id"`

	// PromoCode is set when the promotion was code-entered
	PromoCode string `json:"promo_code,omitempty"`

	// DiscountType records the computation used
	DiscountType PromoDiscountType `json:"discount_type"`

	// Amount is the discount granted
	Amount decimal.Decimal `json:"amount"`
}

// PriceBreakdown is the engine's output for one calculation
type PriceBreakdown struct {
	// CalculationID uniquely identifies this calculation
	CalculationID string `json:"calculation_id"`

	// CarrierCode, ZoneCode and ServiceType identify the priced lane
	CarrierCode string `json:"carrier_code"`
	ZoneCode    string `json:"zone_code"`
	ServiceType string `json:"service_type"`

	// EffectiveWeightKg is max(physical, dimensional) weight
	EffectiveWeightKg decimal.Decimal `json:"effective_weight_kg"`

	// BasePrice is the weight-rule price before discounts
	BasePrice decimal.Decimal `json:"base_price"`

	// AdditionalServicesTotal sums the itemized service charges
	AdditionalServicesTotal decimal.Decimal `json:"additional_services_total"`

	// ServiceCharges itemizes the add-on services
	ServiceCharges []ServiceCharge `json:"service_charges,omitempty"`

	// CustomerDiscount is the negotiated-agreement discount
	CustomerDiscount decimal.Decimal `json:"customer_discount"`

	// PromotionalDiscount sums the applied promotions
	PromotionalDiscount decimal.Decimal `json:"promotional_discount"`

	// AppliedPromotions itemizes the promotions
	AppliedPromotions []AppliedPromotion `json:"applied_promotions,omitempty"`

	// TaxRatePercent is the rate applied to the net amount
	TaxRatePercent decimal.Decimal `json:"tax_rate_percent"`

	// TaxAmount is the tax on the discounted net amount
	TaxAmount decimal.Decimal `json:"tax_amount"`

	// TotalPrice is the tax-inclusive final price, rounded to the
	// currency's minor unit
	TotalPrice decimal.Decimal `json:"total_price"`

	// Currency is the quote currency
	Currency Currency `json:"currency"`

	// CalculatedAt is the reference time used
	CalculatedAt time.Time `json:"calculated_at"`
}

// SkipReason explains why a carrier was omitted from a comparison
type SkipReason string

const (
	SkipZoneUnsupported    SkipReason = "zone_unsupported"
	SkipOverMaxWeight      SkipReason = "over_max_weight"
	SkipOverMaxDimensions  SkipReason = "over_max_dimensions"
	SkipNoPricingAvailable SkipReason = "no_pricing_available"
	SkipCalculationFailed  SkipReason = "calculation_failed"
)

// CarrierQuote is one carrier's entry in a comparison result
type CarrierQuote struct {
	// CarrierCode identifies the carrier
	CarrierCode string `json:"carrier_code"`

	// Breakdown is the priced quote, nil when skipped
	Breakdown *PriceBreakdown `json:"breakdown,omitempty"`

	// SkipReason is set when the carrier could not be priced
	SkipReason SkipReason `json:"skip_reason,omitempty"`

	// SkipDetail carries the underlying message for diagnostics
	SkipDetail string `json:"skip_detail,omitempty"`
}

// Priced reports whether the quote carries a breakdown
func (q CarrierQuote) Priced() bool {
	return q.Breakdown != nil
}

// BulkDiscount is an aggregate discount for bulk calculations
type BulkDiscount struct {
	// Threshold is the minimum item count for the discount to apply
	Threshold int `json:"threshold"`

	// Percent is the flat percentage off the aggregate total
	Percent decimal.Decimal `json:"percent"`
}

// BulkItemResult is one line of a bulk calculation
type BulkItemResult struct {
	// Index is the request's position in the batch
	Index int `json:"index"`

	// Breakdown is the priced line, nil on failure
	Breakdown *PriceBreakdown `json:"breakdown,omitempty"`

	// ErrorType and ErrorMessage describe a per-line failure
	ErrorType    string `json:"error_type,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// Succeeded reports whether the line priced successfully
func (r BulkItemResult) Succeeded() bool {
	return r.Breakdown != nil
}

// BulkResult is the outcome of a bulk calculation
type BulkResult struct {
	// Items holds one result per request, in request order
	Items []BulkItemResult `json:"items"`

	// SucceededCount and FailedCount summarize the batch
	SucceededCount int `json:"succeeded_count"`
	FailedCount    int `json:"failed_count"`

	// AggregateTotal sums the successful line totals
	AggregateTotal decimal.Decimal `json:"aggregate_total"`

	// DiscountApplied is the aggregate bulk discount granted
	DiscountApplied decimal.Decimal `json:"discount_applied"`

	// FinalTotal is the aggregate total after the bulk discount
	FinalTotal decimal.Decimal `json:"final_total"`

	// Currency is the batch currency; set when all lines agree
	Currency Currency `json:"currency,omitempty"`
}
