// Package ratecard loads pricing catalogs from HCL rate-card files.
// Operators author zones, carriers, tables, services, agreements and
// promotions as .hcl files; the loader builds an in-memory catalog
// implementing the engine's repository interfaces.
package ratecard

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"

	"courier-pricing/core/catalog"
	"courier-pricing/core/types"
	"courier-pricing/internal/errors"
)

// Loader parses HCL rate-card files
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a rate-card loader
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// LoadDir parses every .hcl file under dir into one validated catalog
func (l *Loader) LoadDir(dir string) (*catalog.Catalog, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, ".hcl") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "failed to walk rate-card directory", err)
	}
	if len(files) == 0 {
		return nil, errors.Configf("no .hcl rate-card files under %s", dir)
	}
	return l.LoadFiles(files...)
}

// LoadFiles parses the given files into one validated catalog
func (l *Loader) LoadFiles(paths ...string) (*catalog.Catalog, error) {
	cat := &catalog.Catalog{ShipmentCounts: map[string]int{}}
	for _, path := range paths {
		file, diags := l.parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return nil, errors.Wrap(errors.TypeConfig, "failed to parse "+path, diags)
		}
		if err := l.decodeFile(file, cat); err != nil {
			return nil, err
		}
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}

// root mirrors the rate-card file structure
type root struct {
	Zones      []zoneBlock      `hcl:"zone,block"`
	Carriers   []carrierBlock   `hcl:"carrier,block"`
	Tables     []tableBlock     `hcl:"pricing_table,block"`
	Services   []serviceBlock   `hcl:"additional_service,block"`
	Agreements []agreementBlock `hcl:"customer_pricing,block"`
	Promotions []promoBlock     `hcl:"promotion,block"`
}

type zoneBlock struct {
	Code               string   `hcl:"code,label"`
	Name               string   `hcl:"name,optional"`
	ZoneType           string   `hcl:"zone_type"`
	Countries          []string `hcl:"countries"`
	PostalCodePatterns []string `hcl:"postal_code_patterns,optional"`
}

type carrierBlock struct {
	Code           string   `hcl:"code,label"`
	Name           string   `hcl:"name,optional"`
	MaxWeightKg    string   `hcl:"max_weight_kg"`
	MaxDimensions  []string `hcl:"max_dimensions_cm,optional"`
	SupportedZones []string `hcl:"supported_zones"`
}

type tableBlock struct {
	ID                string          `hcl:"id,label"`
	Carrier           string          `hcl:"carrier"`
	Zone              string          `hcl:"zone"`
	ServiceType       string          `hcl:"service_type"`
	Version           int             `hcl:"version"`
	BasePrice         string          `hcl:"base_price"`
	MinWeightKg       string          `hcl:"min_weight_kg"`
	MaxWeightKg       *string         `hcl:"max_weight_kg"`
	VolumetricDivisor *string         `hcl:"volumetric_divisor"`
	Currency          string          `hcl:"currency"`
	TaxRatePercent    *string         `hcl:"tax_rate_percent"`
	EffectiveFrom     string          `hcl:"effective_from"`
	EffectiveUntil    *string         `hcl:"effective_until"`
	Active            bool            `hcl:"active"`
	Rules             []ruleBlock     `hcl:"rule,block"`
	Overrides         []overrideBlock `hcl:"service_override,block"`
}

type ruleBlock struct {
	ID         string  `hcl:"id,label"`
	WeightFrom string  `hcl:"weight_from"`
	WeightTo   *string `hcl:"weight_to"`
	Method     string  `hcl:"method"`
	Price      string  `hcl:"price"`
	PricePerKg *string `hcl:"price_per_kg"`
	WeightStep *string `hcl:"weight_step"`
	MinPrice   *string `hcl:"min_price"`
	MaxPrice   *string `hcl:"max_price"`
}

type overrideBlock struct {
	ServiceCode    string      `hcl:"service_code,label"`
	PricingType    *string     `hcl:"pricing_type"`
	Price          *string     `hcl:"price"`
	PercentageRate *string     `hcl:"percentage_rate"`
	MinPrice       *string     `hcl:"min_price"`
	MaxPrice       *string     `hcl:"max_price"`
	WeightTiers    []tierBlock `hcl:"weight_tier,block"`
	ValueTiers     []tierBlock `hcl:"value_tier,block"`
}

type tierBlock struct {
	From  string  `hcl:"from"`
	To    *string `hcl:"to"`
	Price string  `hcl:"price"`
}

type serviceBlock struct {
	Carrier        string      `hcl:"carrier,label"`
	Code           string      `hcl:"code,label"`
	Name           string      `hcl:"name,optional"`
	PricingType    string      `hcl:"pricing_type"`
	DefaultPrice   *string     `hcl:"default_price"`
	PercentageRate *string     `hcl:"percentage_rate"`
	MinPrice       *string     `hcl:"min_price"`
	MaxPrice       *string     `hcl:"max_price"`
	WeightTiers    []tierBlock `hcl:"weight_tier,block"`
	ValueTiers     []tierBlock `hcl:"value_tier,block"`
}

type volumeTierBlock struct {
	MinShipments    int    `hcl:"min_shipments"`
	MaxShipments    *int   `hcl:"max_shipments"`
	DiscountPercent string `hcl:"discount_percent"`
}

type agreementBlock struct {
	ID                  string            `hcl:"id,label"`
	CustomerID          string            `hcl:"customer_id"`
	Table               string            `hcl:"table"`
	DiscountType        string            `hcl:"discount_type"`
	BaseDiscountPercent *string           `hcl:"base_discount_percent"`
	FixedDiscountAmount *string           `hcl:"fixed_discount_amount"`
	CustomRuleID        *string           `hcl:"custom_rule_id"`
	MinimumOrderValue   *string           `hcl:"minimum_order_value"`
	MaximumOrderValue   *string           `hcl:"maximum_order_value"`
	TaxRateOverride     *string           `hcl:"tax_rate_override"`
	EffectiveFrom       string            `hcl:"effective_from"`
	EffectiveUntil      *string           `hcl:"effective_until"`
	Active              bool              `hcl:"active"`
	PriorityLevel       int               `hcl:"priority_level,optional"`
	VolumeTiers         []volumeTierBlock `hcl:"volume_tier,block"`
}

type promoBlock struct {
	ID                    string   `hcl:"id,label"`
	PromoCode             *string  `hcl:"promo_code"`
	DiscountType          string   `hcl:"discount_type"`
	DiscountValue         string   `hcl:"discount_value"`
	MinimumOrderValue     *string  `hcl:"minimum_order_value"`
	MaximumDiscountAmount *string  `hcl:"maximum_discount_amount"`
	TargetType            string   `hcl:"target_type"`
	TargetValues          []string `hcl:"target_values,optional"`
	UsageLimit            *int     `hcl:"usage_limit"`
	UsageLimitType        *string  `hcl:"usage_limit_type"`
	UsageCount            int      `hcl:"usage_count,optional"`
	ValidFrom             string   `hcl:"valid_from"`
	ValidUntil            string   `hcl:"valid_until"`
	Priority              int      `hcl:"priority,optional"`
	Stackable             bool     `hcl:"stackable,optional"`
	Active                bool     `hcl:"active"`
	StrategyID            *string  `hcl:"strategy_id"`
}

func (l *Loader) decodeFile(file *hcl.File, cat *catalog.Catalog) error {
	var r root
	if diags := gohcl.DecodeBody(file.Body, nil, &r); diags.HasErrors() {
		return errors.Wrap(errors.TypeConfig, "failed to decode rate card", diags)
	}

	for _, z := range r.Zones {
		cat.Zones = append(cat.Zones, types.PricingZone{
			Code:               z.Code,
			Name:               z.Name,
			ZoneType:           types.ZoneType(z.ZoneType),
			Countries:          z.Countries,
			PostalCodePatterns: z.PostalCodePatterns,
		})
	}

	for _, c := range r.Carriers {
		maxWeight, err := parseDec(c.MaxWeightKg, "carrier "+c.Code+" max_weight_kg")
		if err != nil {
			return err
		}
		var dims types.Dimensions
		if len(c.MaxDimensions) == 3 {
			l0, err := parseDec(c.MaxDimensions[0], "carrier "+c.Code+" max_dimensions_cm")
			if err != nil {
				return err
			}
			w, err := parseDec(c.MaxDimensions[1], "carrier "+c.Code+" max_dimensions_cm")
			if err != nil {
				return err
			}
			h, err := parseDec(c.MaxDimensions[2], "carrier "+c.Code+" max_dimensions_cm")
			if err != nil {
				return err
			}
			dims = types.Dimensions{LengthCm: l0, WidthCm: w, HeightCm: h}
		} else if len(c.MaxDimensions) != 0 {
			return errors.Configf("carrier %s max_dimensions_cm needs exactly 3 values", c.Code)
		}
		cat.Carriers = append(cat.Carriers, types.Carrier{
			Code:            c.Code,
			Name:            c.Name,
			MaxWeightKg:     maxWeight,
			MaxDimensionsCm: dims,
			SupportedZones:  c.SupportedZones,
		})
	}

	for _, t := range r.Tables {
		if err := l.decodeTable(t, cat); err != nil {
			return err
		}
	}

	for _, s := range r.Services {
		svc := types.AdditionalService{
			CarrierCode: s.Carrier,
			Code:        s.Code,
			Name:        s.Name,
			PricingType: types.ServicePricingType(s.PricingType),
		}
		var err error
		label := "service " + s.Carrier + "/" + s.Code
		if svc.DefaultPrice, err = parseDecPtr(s.DefaultPrice, label); err != nil {
			return err
		}
		if svc.PercentageRate, err = parseDecPtr(s.PercentageRate, label); err != nil {
			return err
		}
		if svc.MinPrice, err = parseDecPtr(s.MinPrice, label); err != nil {
			return err
		}
		if svc.MaxPrice, err = parseDecPtr(s.MaxPrice, label); err != nil {
			return err
		}
		if svc.WeightTiers, err = parseTiers(s.WeightTiers, label); err != nil {
			return err
		}
		if svc.ValueTiers, err = parseTiers(s.ValueTiers, label); err != nil {
			return err
		}
		cat.Services = append(cat.Services, svc)
	}

	for _, a := range r.Agreements {
		if err := l.decodeAgreement(a, cat); err != nil {
			return err
		}
	}

	for _, p := range r.Promotions {
		if err := l.decodePromotion(p, cat); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) decodeTable(t tableBlock, cat *catalog.Catalog) error {
	label := "table " + t.ID
	table := types.PricingTable{
		ID:          t.ID,
		CarrierCode: t.Carrier,
		ZoneCode:    t.Zone,
		ServiceType: t.ServiceType,
		Version:     t.Version,
		Currency:    types.Currency(t.Currency),
		IsActive:    t.Active,
	}
	var err error
	if table.BasePrice, err = parseDec(t.BasePrice, label+" base_price"); err != nil {
		return err
	}
	if table.MinWeightKg, err = parseDec(t.MinWeightKg, label+" min_weight_kg"); err != nil {
		return err
	}
	if table.MaxWeightKg, err = parseDecPtr(t.MaxWeightKg, label); err != nil {
		return err
	}
	if table.VolumetricDivisor, err = parseDecPtr(t.VolumetricDivisor, label); err != nil {
		return err
	}
	if table.TaxRatePercent, err = parseDecPtr(t.TaxRatePercent, label); err != nil {
		return err
	}
	if table.EffectiveFrom, err = parseTime(t.EffectiveFrom, label+" effective_from"); err != nil {
		return err
	}
	if table.EffectiveUntil, err = parseTimePtr(t.EffectiveUntil, label+" effective_until"); err != nil {
		return err
	}
	cat.Tables = append(cat.Tables, table)

	for _, rb := range t.Rules {
		rule := types.PricingRule{
			ID:      rb.ID,
			TableID: t.ID,
			Method:  types.CalculationMethod(rb.Method),
		}
		rlabel := label + " rule " + rb.ID
		if rule.WeightFrom, err = parseDec(rb.WeightFrom, rlabel); err != nil {
			return err
		}
		if rule.WeightTo, err = parseDecPtr(rb.WeightTo, rlabel); err != nil {
			return err
		}
		if rule.Price, err = parseDec(rb.Price, rlabel); err != nil {
			return err
		}
		if rule.PricePerKg, err = parseDecPtr(rb.PricePerKg, rlabel); err != nil {
			return err
		}
		if rule.WeightStep, err = parseDecPtr(rb.WeightStep, rlabel); err != nil {
			return err
		}
		if rule.MinPrice, err = parseDecPtr(rb.MinPrice, rlabel); err != nil {
			return err
		}
		if rule.MaxPrice, err = parseDecPtr(rb.MaxPrice, rlabel); err != nil {
			return err
		}
		cat.Rules = append(cat.Rules, rule)
	}

	for _, ob := range t.Overrides {
		ov := types.ServicePriceOverride{
			TableID:     t.ID,
			ServiceCode: ob.ServiceCode,
		}
		olabel := label + " override " + ob.ServiceCode
		if ob.PricingType != nil {
			pt := types.ServicePricingType(*ob.PricingType)
			ov.PricingType = &pt
		}
		if ov.Price, err = parseDecPtr(ob.Price, olabel); err != nil {
			return err
		}
		if ov.PercentageRate, err = parseDecPtr(ob.PercentageRate, olabel); err != nil {
			return err
		}
		if ov.MinPrice, err = parseDecPtr(ob.MinPrice, olabel); err != nil {
			return err
		}
		if ov.MaxPrice, err = parseDecPtr(ob.MaxPrice, olabel); err != nil {
			return err
		}
		if ov.WeightTiers, err = parseTiers(ob.WeightTiers, olabel); err != nil {
			return err
		}
		if ov.ValueTiers, err = parseTiers(ob.ValueTiers, olabel); err != nil {
			return err
		}
		cat.Overrides = append(cat.Overrides, ov)
	}
	return nil
}

func (l *Loader) decodeAgreement(a agreementBlock, cat *catalog.Catalog) error {
	label := "agreement " + a.ID
	agreement := types.CustomerPricing{
		ID:                 a.ID,
		CustomerID:         a.CustomerID,
		BasePricingTableID: a.Table,
		DiscountType:       types.DiscountType(a.DiscountType),
		IsActive:           a.Active,
		PriorityLevel:      a.PriorityLevel,
	}
	if a.CustomRuleID != nil {
		agreement.CustomRuleID = *a.CustomRuleID
	}
	var err error
	if agreement.BaseDiscountPercent, err = parseDecPtr(a.BaseDiscountPercent, label); err != nil {
		return err
	}
	if agreement.FixedDiscountAmount, err = parseDecPtr(a.FixedDiscountAmount, label); err != nil {
		return err
	}
	if agreement.MinimumOrderValue, err = parseDecPtr(a.MinimumOrderValue, label); err != nil {
		return err
	}
	if agreement.MaximumOrderValue, err = parseDecPtr(a.MaximumOrderValue, label); err != nil {
		return err
	}
	if agreement.TaxRateOverride, err = parseDecPtr(a.TaxRateOverride, label); err != nil {
		return err
	}
	if agreement.EffectiveFrom, err = parseTime(a.EffectiveFrom, label+" effective_from"); err != nil {
		return err
	}
	if agreement.EffectiveUntil, err = parseTimePtr(a.EffectiveUntil, label+" effective_until"); err != nil {
		return err
	}
	for _, vt := range a.VolumeTiers {
		percent, err := parseDec(vt.DiscountPercent, label+" volume_tier")
		if err != nil {
			return err
		}
		agreement.VolumeTiers = append(agreement.VolumeTiers, types.VolumeTier{
			MinShipments:    vt.MinShipments,
			MaxShipments:    vt.MaxShipments,
			DiscountPercent: percent,
		})
	}
	cat.Agreements = append(cat.Agreements, agreement)
	return nil
}

func (l *Loader) decodePromotion(p promoBlock, cat *catalog.Catalog) error {
	label := "promotion " + p.ID
	promo := types.PromotionalPricing{
		ID:           p.ID,
		DiscountType: types.PromoDiscountType(p.DiscountType),
		TargetType:   types.PromoTargetType(p.TargetType),
		TargetValues: p.TargetValues,
		UsageLimit:   p.UsageLimit,
		UsageCount:   p.UsageCount,
		Priority:     p.Priority,
		Stackable:    p.Stackable,
		IsActive:     p.Active,
	}
	if p.PromoCode != nil {
		promo.PromoCode = *p.PromoCode
	}
	if p.UsageLimitType != nil {
		promo.UsageLimitType = types.UsageLimitType(*p.UsageLimitType)
	}
	if p.StrategyID != nil {
		promo.StrategyID = *p.StrategyID
	}
	var err error
	if promo.DiscountValue, err = parseDec(p.DiscountValue, label+" discount_value"); err != nil {
		return err
	}
	if promo.MinimumOrderValue, err = parseDecPtr(p.MinimumOrderValue, label); err != nil {
		return err
	}
	if promo.MaximumDiscountAmount, err = parseDecPtr(p.MaximumDiscountAmount, label); err != nil {
		return err
	}
	if promo.ValidFrom, err = parseTime(p.ValidFrom, label+" valid_from"); err != nil {
		return err
	}
	if promo.ValidUntil, err = parseTime(p.ValidUntil, label+" valid_until"); err != nil {
		return err
	}
	cat.Promotions = append(cat.Promotions, promo)
	return nil
}

// Monetary values are declared as strings in rate cards so they parse
// through decimal, never through binary floats.
func parseDec(s, label string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, errors.Configf("%s: invalid decimal %q", label, s)
	}
	return v, nil
}

func parseDecPtr(s *string, label string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	v, err := parseDec(*s, label)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseTiers(blocks []tierBlock, label string) ([]types.ServiceTier, error) {
	var out []types.ServiceTier
	for _, b := range blocks {
		from, err := parseDec(b.From, label+" tier")
		if err != nil {
			return nil, err
		}
		to, err := parseDecPtr(b.To, label+" tier")
		if err != nil {
			return nil, err
		}
		price, err := parseDec(b.Price, label+" tier")
		if err != nil {
			return nil, err
		}
		out = append(out, types.ServiceTier{From: from, To: to, Price: price})
	}
	return out, nil
}

func parseTime(s, label string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, errors.Configf("%s: invalid RFC3339 timestamp %q", label, s)
	}
	return t, nil
}

func parseTimePtr(s *string, label string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := parseTime(*s, label)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
