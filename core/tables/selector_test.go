package tables

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courier-pricing/core/types"
	"courier-pricing/internal/errors"
)

var (
	jan1 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	jun1 = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	dec1 = time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
)

func table(id string, version int, from time.Time, until *time.Time, active bool) types.PricingTable {
	return types.PricingTable{
		ID:            id,
		CarrierCode:   "meest",
		ZoneCode:      "NAT_PL",
		ServiceType:   "standard",
		Version:       version,
		BasePrice:     decimal.NewFromInt(15),
		Currency:      types.CurrencyPLN,
		EffectiveFrom: from,
		EffectiveUntil: until,
		IsActive:      active,
	}
}

func TestSelectEffectiveTable(t *testing.T) {
	tabs := []types.PricingTable{
		table("t1", 1, jan1, nil, true),
	}
	got, err := Select("meest", "NAT_PL", "standard", jun1, tabs)
	require.NoError(t, err)
	assert.Equal(t, "t1", got.ID)
}

func TestSelectHighestVersionWins(t *testing.T) {
	tabs := []types.PricingTable{
		table("t1", 1, jan1, nil, true),
		table("t2", 3, jan1, nil, true),
		table("t3", 2, jan1, nil, true),
	}
	got, err := Select("meest", "NAT_PL", "standard", jun1, tabs)
	require.NoError(t, err)
	assert.Equal(t, "t2", got.ID)
}

func TestSelectSkipsInactiveAndExpired(t *testing.T) {
	tabs := []types.PricingTable{
		table("inactive", 5, jan1, nil, false),
		table("expired", 4, jan1, &jun1, true),
		table("live", 1, jan1, nil, true),
	}
	got, err := Select("meest", "NAT_PL", "standard", dec1, tabs)
	require.NoError(t, err)
	assert.Equal(t, "live", got.ID)
}

func TestSelectEffectiveUntilIsExclusive(t *testing.T) {
	tabs := []types.PricingTable{
		table("t1", 1, jan1, &jun1, true),
	}
	_, err := Select("meest", "NAT_PL", "standard", jun1, tabs)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeNoPricingAvailable))
}

func TestSelectNoFallbackAcrossLanes(t *testing.T) {
	tabs := []types.PricingTable{
		table("t1", 1, jan1, nil, true),
	}
	_, err := Select("meest", "NAT_PL", "express", jun1, tabs)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeNoPricingAvailable))

	_, err = Select("meest", "EU_WEST", "standard", jun1, tabs)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeNoPricingAvailable))
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }
func dp(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func TestValidateRulesDetectsOverlap(t *testing.T) {
	tab := table("t1", 1, jan1, nil, true)
	rules := []types.PricingRule{
		{ID: "r1", TableID: "t1", WeightFrom: d("0"), WeightTo: dp("5"), Method: types.MethodFixed, Price: d("10")},
		{ID: "r2", TableID: "t1", WeightFrom: d("4"), WeightTo: dp("10"), Method: types.MethodFixed, Price: d("20")},
	}
	err := ValidateRules(tab, rules)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeConfig))
}

func TestValidateRulesAcceptsOrderedBands(t *testing.T) {
	tab := table("t1", 1, jan1, nil, true)
	rules := []types.PricingRule{
		{ID: "r1", TableID: "t1", WeightFrom: d("0.1"), WeightTo: dp("1"), Method: types.MethodFixed, Price: d("15")},
		{ID: "r2", TableID: "t1", WeightFrom: d("1"), WeightTo: dp("5"), Method: types.MethodPerKg, Price: d("18"), PricePerKg: dp("2.5")},
		{ID: "r3", TableID: "t1", WeightFrom: d("5"), Method: types.MethodPerKgStep, Price: d("30"), PricePerKg: dp("3"), WeightStep: dp("0.5")},
	}
	require.NoError(t, ValidateRules(tab, rules))
}

func TestValidateRulesRejectsRuleAfterUnbounded(t *testing.T) {
	tab := table("t1", 1, jan1, nil, true)
	rules := []types.PricingRule{
		{ID: "r1", TableID: "t1", WeightFrom: d("0"), Method: types.MethodFixed, Price: d("10")},
		{ID: "r2", TableID: "t1", WeightFrom: d("5"), Method: types.MethodFixed, Price: d("20")},
	}
	err := ValidateRules(tab, rules)
	require.Error(t, err)
}

func TestValidateRulesRequiresStepFields(t *testing.T) {
	tab := table("t1", 1, jan1, nil, true)
	rules := []types.PricingRule{
		{ID: "r1", TableID: "t1", WeightFrom: d("0"), WeightTo: dp("5"), Method: types.MethodPerKgStep, Price: d("10"), PricePerKg: dp("2")},
	}
	err := ValidateRules(tab, rules)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeConfig))
}
