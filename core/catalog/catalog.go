// Package catalog provides an in-memory pricing catalog implementing
// the engine's repository interfaces. Hosts with real persistence
// implement the interfaces directly; the catalog backs tests, the CLI
// and cache-style deployments where all rate data fits in memory.
package catalog

import (
	"context"
	"time"

	"courier-pricing/core/engine"
	"courier-pricing/core/tables"
	"courier-pricing/core/types"
	"courier-pricing/core/zone"
	"courier-pricing/internal/errors"
)

// Catalog is an immutable in-memory pricing data set
type Catalog struct {
	Zones      []types.PricingZone
	Carriers   []types.Carrier
	Tables     []types.PricingTable
	Rules      []types.PricingRule
	Services   []types.AdditionalService
	Overrides  []types.ServicePriceOverride
	Agreements []types.CustomerPricing
	Promotions []types.PromotionalPricing

	// ShipmentCounts maps customer IDs to their current-period shipment
	// count for volume discounts
	ShipmentCounts map[string]int
}

// Validate checks the catalog for structural defects: compilable zone
// patterns, known enum values, and non-overlapping weight bands.
func (c *Catalog) Validate() error {
	if _, err := zone.NewResolver(c.Zones); err != nil {
		return err
	}
	for _, t := range c.Tables {
		if err := tables.ValidateRules(t, c.rulesFor(t.ID)); err != nil {
			return err
		}
	}
	for _, s := range c.Services {
		if !s.PricingType.Valid() {
			return errors.Configf("service %s/%s has unknown pricing type %q", s.CarrierCode, s.Code, s.PricingType)
		}
	}
	for _, a := range c.Agreements {
		if !a.DiscountType.Valid() {
			return errors.Configf("agreement %s has unknown discount type %q", a.ID, a.DiscountType)
		}
	}
	for _, p := range c.Promotions {
		if !p.DiscountType.Valid() {
			return errors.Configf("promotion %s has unknown discount type %q", p.ID, p.DiscountType)
		}
		if !p.TargetType.Valid() {
			return errors.Configf("promotion %s has unknown target type %q", p.ID, p.TargetType)
		}
	}
	return nil
}

// Repositories returns the catalog wired as engine collaborators
func (c *Catalog) Repositories() engine.Repositories {
	return engine.Repositories{
		Zones:     c,
		Carriers:  c,
		Tables:    c,
		Rules:     c,
		Services:  c,
		Customers: c,
		Promos:    c,
		Volumes:   c,
	}
}

func (c *Catalog) rulesFor(tableID string) []types.PricingRule {
	var out []types.PricingRule
	for _, r := range c.Rules {
		if r.TableID == tableID {
			out = append(out, r)
		}
	}
	return out
}

// ListZones implements engine.ZoneRepository
func (c *Catalog) ListZones(_ context.Context) ([]types.PricingZone, error) {
	return c.Zones, nil
}

// ListCarriers implements engine.CarrierRepository
func (c *Catalog) ListCarriers(_ context.Context) ([]types.Carrier, error) {
	return c.Carriers, nil
}

// FindCarrier implements engine.CarrierRepository
func (c *Catalog) FindCarrier(_ context.Context, code string) (*types.Carrier, error) {
	for i := range c.Carriers {
		if c.Carriers[i].Code == code {
			out := c.Carriers[i]
			return &out, nil
		}
	}
	return nil, nil
}

// FindTables implements engine.PricingTableRepository
func (c *Catalog) FindTables(_ context.Context, carrierCode, zoneCode, serviceType string) ([]types.PricingTable, error) {
	var out []types.PricingTable
	for _, t := range c.Tables {
		if t.CarrierCode == carrierCode && t.ZoneCode == zoneCode && t.ServiceType == serviceType {
			out = append(out, t)
		}
	}
	return out, nil
}

// FindRulesForTable implements engine.PricingRuleRepository
func (c *Catalog) FindRulesForTable(_ context.Context, tableID string) ([]types.PricingRule, error) {
	return c.rulesFor(tableID), nil
}

// ListServices implements engine.AdditionalServiceRepository
func (c *Catalog) ListServices(_ context.Context, carrierCode string) ([]types.AdditionalService, error) {
	var out []types.AdditionalService
	for _, s := range c.Services {
		if s.CarrierCode == carrierCode {
			out = append(out, s)
		}
	}
	return out, nil
}

// ListOverrides implements engine.AdditionalServiceRepository
func (c *Catalog) ListOverrides(_ context.Context, tableID string) ([]types.ServicePriceOverride, error) {
	var out []types.ServicePriceOverride
	for _, o := range c.Overrides {
		if o.TableID == tableID {
			out = append(out, o)
		}
	}
	return out, nil
}

// FindAgreements implements engine.CustomerPricingRepository
func (c *Catalog) FindAgreements(_ context.Context, customerID, tableID string) ([]types.CustomerPricing, error) {
	var out []types.CustomerPricing
	for _, a := range c.Agreements {
		if a.CustomerID == customerID && a.BasePricingTableID == tableID {
			out = append(out, a)
		}
	}
	return out, nil
}

// ListPromotions implements engine.PromotionRepository
func (c *Catalog) ListPromotions(_ context.Context, _ time.Time) ([]types.PromotionalPricing, error) {
	return c.Promotions, nil
}

// CurrentPeriodShipmentCount implements engine.ShipmentVolumeRepository
func (c *Catalog) CurrentPeriodShipmentCount(_ context.Context, customerID string) (int, error) {
	return c.ShipmentCounts[customerID], nil
}
