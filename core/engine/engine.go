// Package engine - Pricing orchestrator
package engine

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"courier-pricing/core/addons"
	"courier-pricing/core/baseprice"
	"courier-pricing/core/discount"
	"courier-pricing/core/promotion"
	"courier-pricing/core/tables"
	"courier-pricing/core/types"
	"courier-pricing/core/zone"
	"courier-pricing/internal/errors"
	"courier-pricing/internal/logging"
)

// Options tunes the orchestrator
type Options struct {
	// DefaultCurrency is used when a table carries no currency
	DefaultCurrency types.Currency

	// DefaultTaxRatePercent applies when neither the customer agreement
	// nor the table carries a tax rate
	DefaultTaxRatePercent decimal.Decimal

	// MaxBatchSize caps bulk calculation requests
	MaxBatchSize int

	// Workers bounds concurrency for compare and bulk fan-out
	Workers int

	// DiscountStrategies backs custom_rules agreements
	DiscountStrategies *discount.StrategyRegistry

	// PromotionStrategies backs buy_x_get_y and tier_discount promotions
	PromotionStrategies *promotion.StrategyRegistry
}

// DefaultOptions returns sensible defaults
func DefaultOptions() Options {
	return Options{
		DefaultCurrency:       types.CurrencyPLN,
		DefaultTaxRatePercent: decimal.NewFromInt(23),
		MaxBatchSize:          100,
		Workers:               8,
	}
}

// Engine is the pricing orchestrator. It is stateless and safe for
// concurrent use.
type Engine struct {
	repos     Repositories
	opts      Options
	discounts *discount.Resolver
	promos    *promotion.Engine
}

// New creates a pricing engine
func New(repos Repositories, opts Options) *Engine {
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = DefaultOptions().MaxBatchSize
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultOptions().Workers
	}
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = DefaultOptions().DefaultCurrency
	}
	return &Engine{
		repos:     repos,
		opts:      opts,
		discounts: discount.NewResolver(opts.DiscountStrategies),
		promos:    promotion.NewEngine(opts.PromotionStrategies),
	}
}

// Calculate produces a price breakdown for a single request
func (e *Engine) Calculate(ctx context.Context, req types.PriceCalculationRequest) (*types.PriceBreakdown, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	at := req.ReferenceTime()

	zoneCode, err := e.resolveZoneCode(ctx, req)
	if err != nil {
		return nil, err
	}

	carrier, err := e.repos.Carriers.FindCarrier(ctx, req.CarrierCode)
	if err != nil {
		return nil, err
	}
	if carrier == nil {
		return nil, errors.Validationf("unknown carrier %q", req.CarrierCode)
	}
	if reason, detail := capabilityCheck(*carrier, zoneCode, req); reason != "" {
		return nil, errors.Validationf("carrier %s cannot serve this shipment: %s", carrier.Code, detail)
	}

	return e.calculateForLane(ctx, req, carrier.Code, zoneCode, at)
}

// resolveZoneCode honours an explicit zone code, otherwise resolves the
// destination through the zone catalog.
func (e *Engine) resolveZoneCode(ctx context.Context, req types.PriceCalculationRequest) (string, error) {
	if req.ZoneCode != "" {
		return req.ZoneCode, nil
	}
	zones, err := e.repos.Zones.ListZones(ctx)
	if err != nil {
		return "", err
	}
	resolver, err := zone.NewResolver(zones)
	if err != nil {
		return "", err
	}
	z, err := resolver.Resolve(req.CountryCode, req.PostalCode)
	if err != nil {
		return "", err
	}
	return z.Code, nil
}

// capabilityCheck validates a carrier against the shipment envelope.
// Empty reason means the carrier is capable.
func capabilityCheck(c types.Carrier, zoneCode string, req types.PriceCalculationRequest) (types.SkipReason, string) {
	if !c.SupportsZone(zoneCode) {
		return types.SkipZoneUnsupported, "zone " + zoneCode + " not supported"
	}
	if c.MaxWeightKg.IsPositive() && req.WeightKg.GreaterThan(c.MaxWeightKg) {
		return types.SkipOverMaxWeight, "weight " + req.WeightKg.String() + " kg exceeds carrier limit " + c.MaxWeightKg.String() + " kg"
	}
	if req.Dimensions != nil && !c.MaxDimensionsCm.IsZero() && !req.Dimensions.FitsWithin(c.MaxDimensionsCm) {
		return types.SkipOverMaxDimensions, "parcel exceeds carrier dimension limits"
	}
	return "", ""
}

// calculateForLane runs the component pipeline for an already-resolved
// carrier+zone lane.
func (e *Engine) calculateForLane(ctx context.Context, req types.PriceCalculationRequest, carrierCode, zoneCode string, at time.Time) (*types.PriceBreakdown, error) {
	candidates, err := e.repos.Tables.FindTables(ctx, carrierCode, zoneCode, req.ServiceType)
	if err != nil {
		return nil, err
	}
	table, err := tables.Select(carrierCode, zoneCode, req.ServiceType, at, candidates)
	if err != nil {
		return nil, err
	}

	rules, err := e.repos.Rules.FindRulesForTable(ctx, table.ID)
	if err != nil {
		return nil, err
	}
	base, err := baseprice.Calculate(*table, rules, req.WeightKg, req.Dimensions, req.DeclaredValue)
	if err != nil {
		return nil, err
	}

	servicesTotal := decimal.Zero
	var charges []types.ServiceCharge
	if len(req.AdditionalServices) > 0 {
		services, err := e.repos.Services.ListServices(ctx, carrierCode)
		if err != nil {
			return nil, err
		}
		overrides, err := e.repos.Services.ListOverrides(ctx, table.ID)
		if err != nil {
			return nil, err
		}
		servicesTotal, charges, err = addons.Calculate(*table, req.AdditionalServices, addons.Input{
			EffectiveWeightKg: base.EffectiveWeight,
			DeclaredValue:     req.DeclaredValue,
		}, services, overrides)
		if err != nil {
			return nil, err
		}
	}

	subtotal := base.Price.Add(servicesTotal)

	customerDiscount, agreement, err := e.customerDiscount(ctx, req, table.ID, subtotal, at)
	if err != nil {
		return nil, err
	}

	promoDiscount, applied, err := e.promotionalDiscount(ctx, req, carrierCode, zoneCode, subtotal, base.Price, at)
	if err != nil {
		return nil, err
	}

	// Discounts may exceed the subtotal; the net never goes below zero
	net := subtotal.Sub(customerDiscount).Sub(promoDiscount)
	if net.IsNegative() {
		net = decimal.Zero
	}

	taxRate := e.taxRate(table, agreement)
	taxAmount := types.Percent(net, taxRate)
	currency := table.Currency
	if currency == "" {
		currency = e.opts.DefaultCurrency
	}
	total := currency.RoundMinor(net.Add(taxAmount))

	logging.Debug("calculated price",
		zap.String("carrier", carrierCode),
		zap.String("zone", zoneCode),
		zap.String("service", req.ServiceType),
		zap.String("total", total.String()),
	)

	return &types.PriceBreakdown{
		CalculationID:           calculationID(req, carrierCode, zoneCode, at),
		CarrierCode:             carrierCode,
		ZoneCode:                zoneCode,
		ServiceType:             req.ServiceType,
		EffectiveWeightKg:       base.EffectiveWeight,
		BasePrice:               currency.RoundMinor(base.Price),
		AdditionalServicesTotal: currency.RoundMinor(servicesTotal),
		ServiceCharges:          charges,
		CustomerDiscount:        currency.RoundMinor(customerDiscount),
		PromotionalDiscount:     currency.RoundMinor(promoDiscount),
		AppliedPromotions:       applied,
		TaxRatePercent:          taxRate,
		TaxAmount:               currency.RoundMinor(taxAmount),
		TotalPrice:              total,
		Currency:                currency,
		CalculatedAt:            at,
	}, nil
}

func (e *Engine) customerDiscount(ctx context.Context, req types.PriceCalculationRequest, tableID string, subtotal decimal.Decimal, at time.Time) (decimal.Decimal, *types.CustomerPricing, error) {
	if req.CustomerID == "" {
		return decimal.Zero, nil, nil
	}
	agreements, err := e.repos.Customers.FindAgreements(ctx, req.CustomerID, tableID)
	if err != nil {
		return decimal.Zero, nil, err
	}
	shipmentCount := 0
	if e.repos.Volumes != nil {
		shipmentCount, err = e.repos.Volumes.CurrentPeriodShipmentCount(ctx, req.CustomerID)
		if err != nil {
			return decimal.Zero, nil, err
		}
	}
	return e.discounts.Resolve(discount.Input{
		CustomerID:    req.CustomerID,
		TableID:       tableID,
		Subtotal:      subtotal,
		ShipmentCount: shipmentCount,
	}, agreements, at)
}

func (e *Engine) promotionalDiscount(ctx context.Context, req types.PriceCalculationRequest, carrierCode, zoneCode string, subtotal, basePrice decimal.Decimal, at time.Time) (decimal.Decimal, []types.AppliedPromotion, error) {
	promos, err := e.repos.Promos.ListPromotions(ctx, at)
	if err != nil {
		return decimal.Zero, nil, err
	}

	// Automatic promotions always compete; code-bearing promotions only
	// participate when the customer entered their code.
	candidates := make([]types.PromotionalPricing, 0, len(promos))
	for _, p := range promos {
		if p.PromoCode == "" {
			candidates = append(candidates, p)
		}
	}
	if req.PromoCode != "" {
		coded, err := e.promos.FindByCode(req.PromoCode, promos, at)
		if err != nil {
			return decimal.Zero, nil, err
		}
		candidates = append(candidates, *coded)
	}

	return e.promos.Apply(promotion.Context{
		CarrierCode:   carrierCode,
		ZoneCode:      zoneCode,
		ServiceType:   req.ServiceType,
		CustomerID:    req.CustomerID,
		CustomerGroup: req.CustomerGroup,
		Subtotal:      subtotal,
		BasePrice:     basePrice,
	}, candidates, at)
}

var calcIDNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("courier-pricing/calculation"))

// calculationID derives a name-based UUID from the resolved lane and the
// canonical request, so identical inputs at the same reference time
// produce identical breakdowns, ID included.
func calculationID(req types.PriceCalculationRequest, carrierCode, zoneCode string, at time.Time) string {
	req.CarrierCode = carrierCode
	req.ZoneCode = zoneCode
	req.At = at
	canonical, _ := json.Marshal(req)
	return uuid.NewSHA1(calcIDNamespace, canonical).String()
}

func (e *Engine) taxRate(table *types.PricingTable, agreement *types.CustomerPricing) decimal.Decimal {
	if agreement != nil && agreement.TaxRateOverride != nil {
		return *agreement.TaxRateOverride
	}
	if table.TaxRatePercent != nil {
		return *table.TaxRatePercent
	}
	return e.opts.DefaultTaxRatePercent
}

// CompareAllCarriers prices the request against every carrier capable
// of serving the resolved zone. Incapable or unpriceable carriers are
// returned as skip entries, never as errors; priced quotes sort
// ascending by total.
func (e *Engine) CompareAllCarriers(ctx context.Context, req types.PriceCalculationRequest) ([]types.CarrierQuote, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	at := req.ReferenceTime()

	zoneCode, err := e.resolveZoneCode(ctx, req)
	if err != nil {
		return nil, err
	}
	carriers, err := e.repos.Carriers.ListCarriers(ctx)
	if err != nil {
		return nil, err
	}

	quotes := make([]types.CarrierQuote, len(carriers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)

	for i, c := range carriers {
		i, c := i, c
		g.Go(func() error {
			quotes[i] = e.quoteCarrier(gctx, req, c, zoneCode, at)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(quotes, func(i, j int) bool {
		qi, qj := quotes[i], quotes[j]
		if qi.Priced() != qj.Priced() {
			return qi.Priced()
		}
		if !qi.Priced() {
			return false
		}
		return qi.Breakdown.TotalPrice.LessThan(qj.Breakdown.TotalPrice)
	})
	return quotes, nil
}

func (e *Engine) quoteCarrier(ctx context.Context, req types.PriceCalculationRequest, c types.Carrier, zoneCode string, at time.Time) types.CarrierQuote {
	if reason, detail := capabilityCheck(c, zoneCode, req); reason != "" {
		return types.CarrierQuote{CarrierCode: c.Code, SkipReason: reason, SkipDetail: detail}
	}
	breakdown, err := e.calculateForLane(ctx, req, c.Code, zoneCode, at)
	if err != nil {
		reason := types.SkipCalculationFailed
		if errors.IsType(err, errors.TypeNoPricingAvailable) {
			reason = types.SkipNoPricingAvailable
		}
		return types.CarrierQuote{CarrierCode: c.Code, SkipReason: reason, SkipDetail: err.Error()}
	}
	return types.CarrierQuote{CarrierCode: c.Code, Breakdown: breakdown}
}

// CalculateBulk prices a batch of requests. One line's failure never
// aborts the batch; failures are recorded per item. When the batch
// reaches the discount threshold, a flat percentage comes off the
// aggregate total.
func (e *Engine) CalculateBulk(ctx context.Context, reqs []types.PriceCalculationRequest, bulkDiscount *types.BulkDiscount) (*types.BulkResult, error) {
	if len(reqs) == 0 {
		return nil, errors.Validation("bulk request is empty")
	}
	if len(reqs) > e.opts.MaxBatchSize {
		return nil, errors.BatchTooLarge(len(reqs), e.opts.MaxBatchSize)
	}

	items := make([]types.BulkItemResult, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)

	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			breakdown, err := e.Calculate(gctx, req)
			if err != nil {
				items[i] = types.BulkItemResult{
					Index:        i,
					ErrorType:    string(errors.TypeOf(err)),
					ErrorMessage: err.Error(),
				}
				return nil
			}
			items[i] = types.BulkItemResult{Index: i, Breakdown: breakdown}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &types.BulkResult{Items: items}
	currency := types.Currency("")
	uniform := true
	for _, item := range items {
		if !item.Succeeded() {
			result.FailedCount++
			continue
		}
		result.SucceededCount++
		result.AggregateTotal = result.AggregateTotal.Add(item.Breakdown.TotalPrice)
		if currency == "" {
			currency = item.Breakdown.Currency
		} else if currency != item.Breakdown.Currency {
			uniform = false
		}
	}
	if uniform {
		result.Currency = currency
	}

	result.FinalTotal = result.AggregateTotal
	if bulkDiscount != nil && result.SucceededCount >= bulkDiscount.Threshold {
		roundCurrency := currency
		if roundCurrency == "" || !uniform {
			roundCurrency = e.opts.DefaultCurrency
		}
		result.DiscountApplied = roundCurrency.RoundMinor(types.Percent(result.AggregateTotal, bulkDiscount.Percent))
		result.FinalTotal = result.AggregateTotal.Sub(result.DiscountApplied)
	}

	logging.Info("bulk calculation complete",
		zap.Int("requested", len(reqs)),
		zap.Int("succeeded", result.SucceededCount),
		zap.Int("failed", result.FailedCount),
	)
	return result, nil
}
