// Package types - Calculation request
package types

import (
	"time"

	"github.com/shopspring/decimal"

	"courier-pricing/internal/errors"
)

// PriceCalculationRequest is the input for a single price calculation
type PriceCalculationRequest struct {
	// CarrierCode selects the carrier; ignored by CompareAllCarriers
	CarrierCode string `json:"carrier_code"`

	// CountryCode + PostalCode locate the destination for zone resolution
	CountryCode string `json:"country_code,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`

	// ZoneCode bypasses zone resolution when the caller already knows the zone
	ZoneCode string `json:"zone_code,omitempty"`

	// WeightKg is the physical shipment weight
	WeightKg decimal.Decimal `json:"weight_kg"`

	// Dimensions is the parcel size, nil when unknown
	Dimensions *Dimensions `json:"dimensions_cm,omitempty"`

	// ServiceType selects the shipping service
	ServiceType string `json:"service_type"`

	// DeclaredValue is the insured shipment value, required by
	// percentage-priced rules and services
	DeclaredValue *decimal.Decimal `json:"declared_value,omitempty"`

	// AdditionalServices lists requested add-on service codes
	AdditionalServices []string `json:"additional_services,omitempty"`

	// CustomerID enables negotiated pricing and customer-targeted promotions
	CustomerID string `json:"customer_id,omitempty"`

	// CustomerGroup enables group-targeted promotions
	CustomerGroup string `json:"customer_group,omitempty"`

	// PromoCode is a customer-entered promotion code
	PromoCode string `json:"promo_code,omitempty"`

	// At is the reference time; zero means now
	At time.Time `json:"at,omitempty"`
}

// ReferenceTime returns At, defaulting to the current time
func (r PriceCalculationRequest) ReferenceTime() time.Time {
	if r.At.IsZero() {
		return time.Now().UTC()
	}
	return r.At
}

// Validate checks the request for structural defects
func (r PriceCalculationRequest) Validate() error {
	if r.ZoneCode == "" && (r.CountryCode == "" || r.PostalCode == "") {
		return errors.Validation("either zone_code or country_code+postal_code is required")
	}
	if r.ServiceType == "" {
		return errors.Validation("service_type is required")
	}
	if !r.WeightKg.IsPositive() {
		return errors.Validation("weight_kg must be positive")
	}
	if r.DeclaredValue != nil && r.DeclaredValue.IsNegative() {
		return errors.Validation("declared_value must not be negative")
	}
	return nil
}
