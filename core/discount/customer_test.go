package discount

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courier-pricing/core/types"
	"courier-pricing/internal/errors"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }
func dp(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

var at = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func percentageAgreement() types.CustomerPricing {
	return types.CustomerPricing{
		ID:                  "a1",
		CustomerID:          "cust-1",
		BasePricingTableID:  "t1",
		DiscountType:        types.DiscountPercentage,
		BaseDiscountPercent: dp("10"),
		EffectiveFrom:       at.AddDate(-1, 0, 0),
		IsActive:            true,
		PriorityLevel:       1,
	}
}

func TestAnonymousCustomerGetsZero(t *testing.T) {
	r := NewResolver(nil)
	amount, agreement, err := r.Resolve(Input{TableID: "t1", Subtotal: d("100")}, []types.CustomerPricing{percentageAgreement()}, at)
	require.NoError(t, err)
	assert.Nil(t, agreement)
	assert.True(t, amount.IsZero())
}

func TestPercentageDiscount(t *testing.T) {
	r := NewResolver(nil)
	in := Input{CustomerID: "cust-1", TableID: "t1", Subtotal: d("23")}
	amount, agreement, err := r.Resolve(in, []types.CustomerPricing{percentageAgreement()}, at)
	require.NoError(t, err)
	require.NotNil(t, agreement)
	assert.True(t, amount.Equal(d("2.3")), "got %s", amount)
}

func TestFixedDiscount(t *testing.T) {
	a := percentageAgreement()
	a.DiscountType = types.DiscountFixed
	a.FixedDiscountAmount = dp("7.50")

	r := NewResolver(nil)
	amount, _, err := r.Resolve(Input{CustomerID: "cust-1", TableID: "t1", Subtotal: d("100")}, []types.CustomerPricing{a}, at)
	require.NoError(t, err)
	assert.True(t, amount.Equal(d("7.50")))
}

func TestOrderValueBoundsDisableAgreement(t *testing.T) {
	a := percentageAgreement()
	a.MinimumOrderValue = dp("50")
	a.MaximumOrderValue = dp("500")
	r := NewResolver(nil)

	// A bounded-out agreement yields zero but is still returned, so
	// terms like its tax rate override survive the bounds check
	amount, agreement, err := r.Resolve(Input{CustomerID: "cust-1", TableID: "t1", Subtotal: d("30")}, []types.CustomerPricing{a}, at)
	require.NoError(t, err)
	assert.True(t, amount.IsZero())
	require.NotNil(t, agreement)
	assert.Equal(t, a.ID, agreement.ID)

	amount, agreement, err = r.Resolve(Input{CustomerID: "cust-1", TableID: "t1", Subtotal: d("600")}, []types.CustomerPricing{a}, at)
	require.NoError(t, err)
	assert.True(t, amount.IsZero())
	require.NotNil(t, agreement)

	amount, _, err = r.Resolve(Input{CustomerID: "cust-1", TableID: "t1", Subtotal: d("100")}, []types.CustomerPricing{a}, at)
	require.NoError(t, err)
	assert.True(t, amount.Equal(d("10")))
}

func TestHighestPriorityAgreementWins(t *testing.T) {
	low := percentageAgreement()
	high := percentageAgreement()
	high.ID = "a2"
	high.BaseDiscountPercent = dp("20")
	high.PriorityLevel = 5

	r := NewResolver(nil)
	amount, agreement, err := r.Resolve(Input{CustomerID: "cust-1", TableID: "t1", Subtotal: d("100")}, []types.CustomerPricing{low, high}, at)
	require.NoError(t, err)
	assert.Equal(t, "a2", agreement.ID)
	assert.True(t, amount.Equal(d("20")))
}

func TestInactiveAndExpiredAgreementsIgnored(t *testing.T) {
	inactive := percentageAgreement()
	inactive.IsActive = false

	expired := percentageAgreement()
	expired.ID = "a3"
	until := at.AddDate(0, -1, 0)
	expired.EffectiveUntil = &until

	r := NewResolver(nil)
	amount, agreement, err := r.Resolve(Input{CustomerID: "cust-1", TableID: "t1", Subtotal: d("100")}, []types.CustomerPricing{inactive, expired}, at)
	require.NoError(t, err)
	assert.Nil(t, agreement)
	assert.True(t, amount.IsZero())
}

func TestVolumeDiscountTiers(t *testing.T) {
	ten := 49
	a := percentageAgreement()
	a.DiscountType = types.DiscountVolume
	a.VolumeTiers = []types.VolumeTier{
		{MinShipments: 10, MaxShipments: &ten, DiscountPercent: d("5")},
		{MinShipments: 50, DiscountPercent: d("12")},
	}

	r := NewResolver(nil)

	amount, _, err := r.Resolve(Input{CustomerID: "cust-1", TableID: "t1", Subtotal: d("100"), ShipmentCount: 5}, []types.CustomerPricing{a}, at)
	require.NoError(t, err)
	assert.True(t, amount.IsZero())

	amount, _, err = r.Resolve(Input{CustomerID: "cust-1", TableID: "t1", Subtotal: d("100"), ShipmentCount: 20}, []types.CustomerPricing{a}, at)
	require.NoError(t, err)
	assert.True(t, amount.Equal(d("5")))

	amount, _, err = r.Resolve(Input{CustomerID: "cust-1", TableID: "t1", Subtotal: d("100"), ShipmentCount: 80}, []types.CustomerPricing{a}, at)
	require.NoError(t, err)
	assert.True(t, amount.Equal(d("12")))
}

type halfOffStrategy struct{}

func (halfOffStrategy) ID() string { return "half_off" }
func (halfOffStrategy) Apply(ctx StrategyContext) (decimal.Decimal, error) {
	return ctx.Subtotal.Div(decimal.NewFromInt(2)), nil
}

func TestCustomRuleStrategy(t *testing.T) {
	reg := NewStrategyRegistry()
	require.NoError(t, reg.Register(halfOffStrategy{}))

	a := percentageAgreement()
	a.DiscountType = types.DiscountCustomRules
	a.CustomRuleID = "half_off"

	r := NewResolver(reg)
	amount, _, err := r.Resolve(Input{CustomerID: "cust-1", TableID: "t1", Subtotal: d("100")}, []types.CustomerPricing{a}, at)
	require.NoError(t, err)
	assert.True(t, amount.Equal(d("50")))
}

func TestUnregisteredCustomRuleFails(t *testing.T) {
	a := percentageAgreement()
	a.DiscountType = types.DiscountCustomRules
	a.CustomRuleID = "missing"

	r := NewResolver(NewStrategyRegistry())
	_, _, err := r.Resolve(Input{CustomerID: "cust-1", TableID: "t1", Subtotal: d("100")}, []types.CustomerPricing{a}, at)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeConfig))
}

func TestDuplicateStrategyRegistrationFails(t *testing.T) {
	reg := NewStrategyRegistry()
	require.NoError(t, reg.Register(halfOffStrategy{}))
	assert.Error(t, reg.Register(halfOffStrategy{}))
}
