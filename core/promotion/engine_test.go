package promotion

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

var (
	at  = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	ctx = Context{
		CarrierCode: "meest",
		ZoneCode:    "NAT_PL",
		ServiceType: "standard",
		CustomerID:  "cust-1",
		Subtotal:    d("23"),
		BasePrice:   d("18"),
	}
)

func promo(id string, priority int, stackable bool) types.PromotionalPricing {
	return types.PromotionalPricing{
		ID:            id,
		DiscountType:  types.PromoPercentage,
		DiscountValue: d("10"),
		TargetType:    types.TargetAll,
		ValidFrom:     at.AddDate(0, -1, 0),
		ValidUntil:    at.AddDate(0, 1, 0),
		Priority:      priority,
		Stackable:     stackable,
		IsActive:      true,
	}
}

func TestPercentageDiscountWithCap(t *testing.T) {
	p := promo("p1", 1, false)
	p.MaximumDiscountAmount = dp("1.50")

	e := NewEngine(nil)
	total, applied, err := e.Apply(ctx, []types.PromotionalPricing{p}, at)
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.True(t, total.Equal(d("1.50")), "got %s", total)
}

func TestFixedAmountDiscount(t *testing.T) {
	p := promo("p1", 1, false)
	p.DiscountType = types.PromoFixedAmount
	p.DiscountValue = d("5")

	e := NewEngine(nil)
	total, _, err := e.Apply(ctx, []types.PromotionalPricing{p}, at)
	require.NoError(t, err)
	assert.True(t, total.Equal(d("5")))
}

func TestFreeShippingEqualsBasePrice(t *testing.T) {
	p := promo("p1", 1, false)
	p.DiscountType = types.PromoFreeShipping

	e := NewEngine(nil)
	total, _, err := e.Apply(ctx, []types.PromotionalPricing{p}, at)
	require.NoError(t, err)
	assert.True(t, total.Equal(d("18")))
}

// Non-stackable top promotion excludes everything else regardless of
// how many others qualify.
func TestNonStackableTopAppliesAlone(t *testing.T) {
	save5 := promo("save5", 10, false)
	save5.PromoCode = "SAVE5"
	save5.DiscountType = types.PromoFixedAmount
	save5.DiscountValue = d("5")

	vol10 := promo("vol10", 5, true)

	e := NewEngine(nil)
	total, applied, err := e.Apply(ctx, []types.PromotionalPricing{vol10, save5}, at)
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, "save5", applied[0].PromotionID)
	assert.True(t, total.Equal(d("5")))
}

func TestStackableChainApplies(t *testing.T) {
	a := promo("a", 10, true)
	a.DiscountType = types.PromoFixedAmount
	a.DiscountValue = d("2")
	b := promo("b", 5, true)
	b.DiscountType = types.PromoFixedAmount
	b.DiscountValue = d("1")
	c := promo("c", 1, false)
	c.DiscountType = types.PromoFixedAmount
	c.DiscountValue = d("100")

	e := NewEngine(nil)
	total, applied, err := e.Apply(ctx, []types.PromotionalPricing{a, b, c}, at)
	require.NoError(t, err)
	// The non-stackable c is skipped, never stacked
	require.Len(t, applied, 2)
	assert.True(t, total.Equal(d("3")))
}

// A non-stackable promotion in the middle of the priority order is
// skipped; stackable promotions behind it still join the stack.
func TestNonStackableMidChainIsSkipped(t *testing.T) {
	a := promo("a", 10, true)
	a.DiscountType = types.PromoFixedAmount
	a.DiscountValue = d("2")
	b := promo("b", 5, false)
	b.DiscountType = types.PromoFixedAmount
	b.DiscountValue = d("100")
	c := promo("c", 1, true)
	c.DiscountType = types.PromoFixedAmount
	c.DiscountValue = d("1")

	e := NewEngine(nil)
	total, applied, err := e.Apply(ctx, []types.PromotionalPricing{a, b, c}, at)
	require.NoError(t, err)
	require.Len(t, applied, 2)
	assert.Equal(t, "a", applied[0].PromotionID)
	assert.Equal(t, "c", applied[1].PromotionID)
	assert.True(t, total.Equal(d("3")))
}

func TestTargetMatching(t *testing.T) {
	cases := []struct {
		name    string
		target  types.PromoTargetType
		values  []string
		matches bool
	}{
		{"all always matches", types.TargetAll, nil, true},
		{"carrier match", types.TargetCarrier, []string{"meest"}, true},
		{"carrier mismatch", types.TargetCarrier, []string{"dhl"}, false},
		{"zone match", types.TargetZone, []string{"NAT_PL"}, true},
		{"service match", types.TargetServiceType, []string{"standard"}, true},
		{"customer match", types.TargetCustomer, []string{"cust-1"}, true},
		{"customer mismatch", types.TargetCustomer, []string{"cust-2"}, false},
		{"group without context", types.TargetCustomerGroup, []string{"vip"}, false},
	}

	e := NewEngine(nil)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := promo("p1", 1, false)
			p.TargetType = tc.target
			p.TargetValues = tc.values
			total, _, err := e.Apply(ctx, []types.PromotionalPricing{p}, at)
			require.NoError(t, err)
			assert.Equal(t, tc.matches, total.IsPositive())
		})
	}
}

func TestMinimumOrderValueFilters(t *testing.T) {
	p := promo("p1", 1, false)
	p.MinimumOrderValue = dp("100")

	e := NewEngine(nil)
	total, _, err := e.Apply(ctx, []types.PromotionalPricing{p}, at)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestUsageExhaustedFilters(t *testing.T) {
	limit := 100
	p := promo("p1", 1, false)
	p.UsageLimit = &limit
	p.UsageCount = 100

	e := NewEngine(nil)
	total, _, err := e.Apply(ctx, []types.PromotionalPricing{p}, at)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestInactiveOrOutOfWindowFilters(t *testing.T) {
	inactive := promo("p1", 1, false)
	inactive.IsActive = false

	future := promo("p2", 1, false)
	future.ValidFrom = at.AddDate(0, 2, 0)
	future.ValidUntil = at.AddDate(0, 3, 0)

	e := NewEngine(nil)
	total, _, err := e.Apply(ctx, []types.PromotionalPricing{inactive, future}, at)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestFindByCode(t *testing.T) {
	p := promo("p1", 1, false)
	p.PromoCode = "SAVE5"
	promos := []types.PromotionalPricing{p}

	e := NewEngine(nil)
	found, err := e.FindByCode("SAVE5", promos, at)
	require.NoError(t, err)
	assert.Equal(t, "p1", found.ID)

	_, err = e.FindByCode("NOPE", promos, at)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInvalidPromoCode))
}

func TestFindByCodeExpired(t *testing.T) {
	p := promo("p1", 1, false)
	p.PromoCode = "OLD"
	p.ValidUntil = at.AddDate(0, -1, 0)

	e := NewEngine(nil)
	_, err := e.FindByCode("OLD", []types.PromotionalPricing{p}, at)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInvalidPromoCode))
}

func TestFindByCodeExhausted(t *testing.T) {
	limit := 1
	p := promo("p1", 1, false)
	p.PromoCode = "FULL"
	p.UsageLimit = &limit
	p.UsageCount = 1

	e := NewEngine(nil)
	_, err := e.FindByCode("FULL", []types.PromotionalPricing{p}, at)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInvalidPromoCode))
}

type flatStrategy struct{ amount decimal.Decimal }

func (s flatStrategy) ID() string { return "bxgy_basic" }
func (s flatStrategy) Apply(_ types.PromotionalPricing, _ Context) (decimal.Decimal, error) {
	return s.amount, nil
}

func TestStrategyBackedPromotion(t *testing.T) {
	reg := NewStrategyRegistry()
	require.NoError(t, reg.Register(flatStrategy{amount: d("4")}))

	p := promo("p1", 1, false)
	p.DiscountType = types.PromoBuyXGetY
	p.StrategyID = "bxgy_basic"

	e := NewEngine(reg)
	total, _, err := e.Apply(ctx, []types.PromotionalPricing{p}, at)
	require.NoError(t, err)
	assert.True(t, total.Equal(d("4")))
}

func TestUnregisteredStrategyFails(t *testing.T) {
	p := promo("p1", 1, false)
	p.DiscountType = types.PromoTierDiscount
	p.StrategyID = "missing"

	e := NewEngine(NewStrategyRegistry())
	_, _, err := e.Apply(ctx, []types.PromotionalPricing{p}, at)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeConfig))
}
