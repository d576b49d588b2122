// Package cmd - shared shipment flag handling
package cmd

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"courier-pricing/core/types"
	"courier-pricing/internal/errors"
)

// shipmentFlags collects the flags describing one shipment. quote and
// compare register the same set so their invocations stay symmetric.
type shipmentFlags struct {
	carrier       string
	country       string
	postal        string
	zone          string
	weight        string
	dims          string
	service       string
	declaredValue string
	services      []string
	customer      string
	group         string
	promo         string
}

func (f *shipmentFlags) register(cmd *cobra.Command, withCarrier bool) {
	if withCarrier {
		cmd.Flags().StringVar(&f.carrier, "carrier", "", "carrier code")
		cmd.MarkFlagRequired("carrier")
	}
	cmd.Flags().StringVar(&f.country, "country", "", "destination country code (ISO 3166-1 alpha-2)")
	cmd.Flags().StringVar(&f.postal, "postal", "", "destination postal code")
	cmd.Flags().StringVar(&f.zone, "zone", "", "zone code (skips zone resolution)")
	cmd.Flags().StringVarP(&f.weight, "weight", "w", "", "shipment weight in kg")
	cmd.Flags().StringVar(&f.dims, "dims", "", "parcel dimensions in cm, LxWxH (e.g. 30x20x10)")
	cmd.Flags().StringVarP(&f.service, "service", "s", "standard", "service type (standard, express, economy)")
	cmd.Flags().StringVar(&f.declaredValue, "declared-value", "", "declared shipment value for insurance and percentage pricing")
	cmd.Flags().StringSliceVar(&f.services, "add-service", nil, "additional service codes (repeatable)")
	cmd.Flags().StringVar(&f.customer, "customer", "", "customer ID for negotiated pricing")
	cmd.Flags().StringVar(&f.group, "group", "", "customer group for targeted promotions")
	cmd.Flags().StringVar(&f.promo, "promo", "", "promotion code")
	cmd.MarkFlagRequired("weight")
}

// request builds the calculation request from the parsed flags
func (f *shipmentFlags) request() (types.PriceCalculationRequest, error) {
	var req types.PriceCalculationRequest

	weight, err := decimal.NewFromString(f.weight)
	if err != nil {
		return req, errors.Validationf("invalid weight %q", f.weight)
	}

	req = types.PriceCalculationRequest{
		CarrierCode:        f.carrier,
		CountryCode:        f.country,
		PostalCode:         f.postal,
		ZoneCode:           f.zone,
		WeightKg:           weight,
		ServiceType:        f.service,
		AdditionalServices: f.services,
		CustomerID:         f.customer,
		CustomerGroup:      f.group,
		PromoCode:          f.promo,
	}

	if f.declaredValue != "" {
		dv, err := decimal.NewFromString(f.declaredValue)
		if err != nil {
			return req, errors.Validationf("invalid declared value %q", f.declaredValue)
		}
		req.DeclaredValue = &dv
	}

	if f.dims != "" {
		dims, err := parseDims(f.dims)
		if err != nil {
			return req, err
		}
		req.Dimensions = dims
	}

	return req, nil
}

func parseDims(s string) (*types.Dimensions, error) {
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 3 {
		return nil, errors.Validationf("invalid dimensions %q, expected LxWxH", s)
	}
	vals := make([]decimal.Decimal, 3)
	for i, p := range parts {
		v, err := decimal.NewFromString(strings.TrimSpace(p))
		if err != nil {
			return nil, errors.Validationf("invalid dimensions %q, expected LxWxH", s)
		}
		vals[i] = v
	}
	return &types.Dimensions{LengthCm: vals[0], WidthCm: vals[1], HeightCm: vals[2]}, nil
}
