// Package engine composes the pricing components into the end-to-end
// calculate, compare and bulk operations.
package engine

import (
	"context"
	"time"

	"courier-pricing/core/types"
)

// The engine performs no I/O of its own; all pricing data arrives
// through these collaborator interfaces. Host applications implement
// them over their persistence layer and return plain records, never
// ORM-managed entities. Lookup implementations own their timeout and
// retry policy.

// ZoneRepository supplies the pricing zone catalog
type ZoneRepository interface {
	ListZones(ctx context.Context) ([]types.PricingZone, error)
}

// CarrierRepository supplies carrier capability records
type CarrierRepository interface {
	ListCarriers(ctx context.Context) ([]types.Carrier, error)
	FindCarrier(ctx context.Context, code string) (*types.Carrier, error)
}

// PricingTableRepository supplies rate-card tables for a lane
type PricingTableRepository interface {
	FindTables(ctx context.Context, carrierCode, zoneCode, serviceType string) ([]types.PricingTable, error)
}

// PricingRuleRepository supplies a table's weight rules, weight-ordered
type PricingRuleRepository interface {
	FindRulesForTable(ctx context.Context, tableID string) ([]types.PricingRule, error)
}

// AdditionalServiceRepository supplies add-on services and overrides
type AdditionalServiceRepository interface {
	ListServices(ctx context.Context, carrierCode string) ([]types.AdditionalService, error)
	ListOverrides(ctx context.Context, tableID string) ([]types.ServicePriceOverride, error)
}

// CustomerPricingRepository supplies negotiated agreements
type CustomerPricingRepository interface {
	FindAgreements(ctx context.Context, customerID, tableID string) ([]types.CustomerPricing, error)
}

// PromotionRepository supplies promotions valid around a reference time
type PromotionRepository interface {
	ListPromotions(ctx context.Context, at time.Time) ([]types.PromotionalPricing, error)
}

// ShipmentVolumeRepository supplies the customer's current-period
// shipment count for volume discounts. The engine never computes this
// itself.
type ShipmentVolumeRepository interface {
	CurrentPeriodShipmentCount(ctx context.Context, customerID string) (int, error)
}

// Repositories bundles every collaborator the engine depends on
type Repositories struct {
	Zones     ZoneRepository
	Carriers  CarrierRepository
	Tables    PricingTableRepository
	Rules     PricingRuleRepository
	Services  AdditionalServiceRepository
	Customers CustomerPricingRepository
	Promos    PromotionRepository
	Volumes   ShipmentVolumeRepository
}
