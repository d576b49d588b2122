package ratecard

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courier-pricing/core/engine"
	"courier-pricing/core/types"
	"courier-pricing/internal/errors"
)

const sampleCard = `
zone "NAT_PL" {
  zone_type = "national"
  countries = ["PL"]
}

zone "LOC_WAW" {
  zone_type            = "local"
  countries            = ["PL"]
  postal_code_patterns = ["^0[0-4]-\\d{3}$"]
}

carrier "meest" {
  max_weight_kg     = "30"
  max_dimensions_cm = ["120", "60", "60"]
  supported_zones   = ["NAT_PL", "LOC_WAW"]
}

pricing_table "t-meest-nat-std-v1" {
  carrier            = "meest"
  zone               = "NAT_PL"
  service_type       = "standard"
  version            = 1
  base_price         = "15.00"
  min_weight_kg      = "0.1"
  max_weight_kg      = "30"
  volumetric_divisor = "5000"
  currency           = "PLN"
  tax_rate_percent   = "23"
  effective_from     = "2026-01-01T00:00:00Z"
  active             = true

  rule "r1" {
    weight_from = "0.1"
    weight_to   = "1"
    method      = "fixed"
    price       = "15.00"
  }

  rule "r2" {
    weight_from  = "1"
    weight_to    = "5"
    method       = "per_kg"
    price        = "18.00"
    price_per_kg = "2.50"
  }

  service_override "cod" {
    price = "4.50"
  }
}

additional_service "meest" "cod" {
  pricing_type  = "fixed"
  default_price = "5.00"
}

additional_service "meest" "insurance" {
  pricing_type    = "percentage"
  percentage_rate = "1"
  min_price       = "2.00"
}

customer_pricing "a1" {
  customer_id           = "cust-1"
  table                 = "t-meest-nat-std-v1"
  discount_type         = "percentage"
  base_discount_percent = "10"
  effective_from        = "2026-01-01T00:00:00Z"
  active                = true
  priority_level        = 1
}

promotion "save5" {
  promo_code     = "SAVE5"
  discount_type  = "fixed_amount"
  discount_value = "5.00"
  target_type    = "all"
  valid_from     = "2026-01-01T00:00:00Z"
  valid_until    = "2026-12-31T23:59:59Z"
  priority       = 10
  active         = true
}
`

func writeCard(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "cards.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return dir
}

func TestLoadDir(t *testing.T) {
	dir := writeCard(t, sampleCard)

	cat, err := NewLoader().LoadDir(dir)
	require.NoError(t, err)

	assert.Len(t, cat.Zones, 2)
	assert.Len(t, cat.Carriers, 1)
	assert.Len(t, cat.Tables, 1)
	assert.Len(t, cat.Rules, 2)
	assert.Len(t, cat.Services, 2)
	assert.Len(t, cat.Overrides, 1)
	assert.Len(t, cat.Agreements, 1)
	assert.Len(t, cat.Promotions, 1)

	table := cat.Tables[0]
	assert.True(t, table.BasePrice.Equal(decimal.RequireFromString("15.00")))
	require.NotNil(t, table.VolumetricDivisor)
	assert.True(t, table.VolumetricDivisor.Equal(decimal.RequireFromString("5000")))
	assert.Equal(t, types.CurrencyPLN, table.Currency)

	rule := cat.Rules[1]
	assert.Equal(t, types.MethodPerKg, rule.Method)
	require.NotNil(t, rule.PricePerKg)
	assert.True(t, rule.PricePerKg.Equal(decimal.RequireFromString("2.50")))
}

func TestLoadedCatalogDrivesEngine(t *testing.T) {
	dir := writeCard(t, sampleCard)
	cat, err := NewLoader().LoadDir(dir)
	require.NoError(t, err)

	e := engine.New(cat.Repositories(), engine.DefaultOptions())
	b, err := e.Calculate(context.Background(), types.PriceCalculationRequest{
		CarrierCode:        "meest",
		CountryCode:        "PL",
		PostalCode:         "90-001",
		WeightKg:           decimal.RequireFromString("3"),
		ServiceType:        "standard",
		AdditionalServices: []string{"cod"},
		At:                 time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	// base 23.00 + overridden cod 4.50 = 27.50, 23% tax -> 33.825 -> 33.83
	assert.True(t, b.BasePrice.Equal(decimal.RequireFromString("23")), "base %s", b.BasePrice)
	assert.True(t, b.AdditionalServicesTotal.Equal(decimal.RequireFromString("4.50")))
	assert.True(t, b.TotalPrice.Equal(decimal.RequireFromString("33.83")), "total %s", b.TotalPrice)
}

func TestLoadRejectsOverlappingRules(t *testing.T) {
	card := `
pricing_table "bad" {
  carrier        = "meest"
  zone           = "NAT_PL"
  service_type   = "standard"
  version        = 1
  base_price     = "10"
  min_weight_kg  = "0"
  currency       = "PLN"
  effective_from = "2026-01-01T00:00:00Z"
  active         = true

  rule "r1" {
    weight_from = "0"
    weight_to   = "5"
    method      = "fixed"
    price       = "10"
  }

  rule "r2" {
    weight_from = "4"
    method      = "fixed"
    price       = "20"
  }
}
`
	dir := writeCard(t, card)
	_, err := NewLoader().LoadDir(dir)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeConfig))
}

func TestLoadRejectsBadDecimal(t *testing.T) {
	card := `
carrier "meest" {
  max_weight_kg   = "heavy"
  supported_zones = ["NAT_PL"]
}
`
	dir := writeCard(t, card)
	_, err := NewLoader().LoadDir(dir)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeConfig))
}

func TestLoadEmptyDirFails(t *testing.T) {
	_, err := NewLoader().LoadDir(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeConfig))
}
