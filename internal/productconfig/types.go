package productconfig

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/printshop-backend/pkg/enums"
)

// Prices are stored as numeric(12,4) and discounts as numeric(5,2).
const (
	PricePlaces    = 4
	DiscountPlaces = 2
)

// HasMorePlaces reports whether d carries more than places decimal digits,
// which storage would silently round away.
func HasMorePlaces(d decimal.Decimal, places int32) bool {
	return !d.Equal(d.Truncate(places))
}

// PricingTier maps a contiguous quantity band to a per-unit sale price.
// MaxQuantity nil means the band is unbounded.
type PricingTier struct {
	MinQuantity        int             `json:"min_quantity"`
	MaxQuantity        *int            `json:"max_quantity"`
	PricePerUnit       decimal.Decimal `json:"price_per_unit"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
}

// Contains reports whether q falls inside [MinQuantity, MaxQuantity].
func (t PricingTier) Contains(q int) bool {
	if q < t.MinQuantity {
		return false
	}
	return t.MaxQuantity == nil || q <= *t.MaxQuantity
}

// AddOnDefinition is a globally owned add-on referenced by add-on sets.
type AddOnDefinition struct {
	ID            uuid.UUID          `json:"id"`
	Name          string             `json:"name"`
	Kind          enums.AddOnKind    `json:"kind"`
	PricingModel  enums.PricingModel `json:"pricing_model"`
	Configuration Configuration      `json:"configuration"`
	Mandatory     bool               `json:"mandatory"`
	Active        bool               `json:"active"`
	SortOrder     int                `json:"sort_order"`
}

// Control returns the storefront widget for the definition.
func (d AddOnDefinition) Control() enums.AddOnControl {
	if d.PricingModel == enums.PricingModelCustom && d.Configuration.Custom != nil {
		return d.Configuration.Custom.Control
	}
	return enums.AddOnControlCheckbox
}

// AddOnSetItem places one add-on inside an add-on set.
type AddOnSetItem struct {
	AddOnID         uuid.UUID             `json:"addon_id"`
	DisplayPosition enums.DisplayPosition `json:"display_position"`
	IsDefault       bool                  `json:"is_default"`
	SortOrder       int                   `json:"sort_order"`
}

// AddOnSet is a named, ordered bundle of add-ons.
type AddOnSet struct {
	ID      uuid.UUID      `json:"id"`
	Name    string         `json:"name"`
	Version int            `json:"version"`
	Items   []AddOnSetItem `json:"items"`
}

// Find returns the item for addOnID and its index.
func (s AddOnSet) Find(addOnID uuid.UUID) (AddOnSetItem, int, bool) {
	for i, item := range s.Items {
		if item.AddOnID == addOnID {
			return item, i, true
		}
	}
	return AddOnSetItem{}, -1, false
}

// Clone returns a deep copy of the set.
func (s AddOnSet) Clone() AddOnSet {
	out := s
	out.Items = append([]AddOnSetItem(nil), s.Items...)
	return out
}

// ProductPaperStock attaches a catalog paper stock to a product.
// A zero Multiplier prices as 1.
type ProductPaperStock struct {
	PaperStockID   uuid.UUID       `json:"paper_stock_id"`
	Name           string          `json:"name"`
	Multiplier     decimal.Decimal `json:"multiplier"`
	IsDefault      bool            `json:"is_default"`
	AdditionalCost decimal.Decimal `json:"additional_cost"`
}

// EffectiveMultiplier returns the multiplier applied to the tier price.
func (p ProductPaperStock) EffectiveMultiplier() decimal.Decimal {
	if p.Multiplier.IsZero() {
		return decimal.NewFromInt(1)
	}
	return p.Multiplier
}

// GangRunConfig bounds the quantities that may be pooled on a shared press run.
type GangRunConfig struct {
	Eligible        bool `json:"eligible"`
	MinGangQuantity int  `json:"min_gang_quantity"`
	MaxGangQuantity int  `json:"max_gang_quantity"`
}

// RushConfig describes the expedited production option.
type RushConfig struct {
	Available bool            `json:"available"`
	Days      int             `json:"days"`
	Fee       decimal.Decimal `json:"fee"`
}

// ProductConfig is the immutable snapshot the engine prices against.
type ProductConfig struct {
	ProductID       uuid.UUID                     `json:"product_id"`
	Name            string                        `json:"name"`
	Status          enums.ConfigStatus            `json:"status"`
	Version         int                           `json:"version"`
	BasePrice       decimal.Decimal               `json:"base_price"`
	SetupFee        decimal.Decimal               `json:"setup_fee"`
	Tiers           []PricingTier                 `json:"tiers"`
	PaperStocks     []ProductPaperStock           `json:"paper_stocks"`
	DefaultAddOnSet *AddOnSet                     `json:"default_addon_set,omitempty"`
	ExtraAddOnSets  []AddOnSet                    `json:"extra_addon_sets,omitempty"`
	AddOns          map[uuid.UUID]AddOnDefinition `json:"addons,omitempty"`
	QuantityGroupID *uuid.UUID                    `json:"quantity_group_id,omitempty"`
	Quantities      []int                         `json:"quantities,omitempty"`
	SizeGroupID     *uuid.UUID                    `json:"size_group_id,omitempty"`
	Sizes           []string                      `json:"sizes,omitempty"`
	ProductionDays  int                           `json:"production_days"`
	Rush            RushConfig                    `json:"rush"`
	GangRun         GangRunConfig                 `json:"gang_run"`
	PublishedAt     *time.Time                    `json:"published_at,omitempty"`
}

// ReplaceSet swaps in set wherever the product references a set with the
// same id. It reports whether a reference was found.
func (c *ProductConfig) ReplaceSet(set AddOnSet) bool {
	found := false
	if c.DefaultAddOnSet != nil && c.DefaultAddOnSet.ID == set.ID {
		clone := set.Clone()
		c.DefaultAddOnSet = &clone
		found = true
	}
	for i := range c.ExtraAddOnSets {
		if c.ExtraAddOnSets[i].ID == set.ID {
			c.ExtraAddOnSets[i] = set.Clone()
			found = true
		}
	}
	return found
}

// AddOnSets returns the default set first, then the extra sets.
func (c ProductConfig) AddOnSets() []AddOnSet {
	sets := make([]AddOnSet, 0, len(c.ExtraAddOnSets)+1)
	if c.DefaultAddOnSet != nil {
		sets = append(sets, *c.DefaultAddOnSet)
	}
	return append(sets, c.ExtraAddOnSets...)
}

// AttachedItem finds the set item that attaches addOnID to the product.
func (c ProductConfig) AttachedItem(addOnID uuid.UUID) (AddOnSetItem, bool) {
	for _, set := range c.AddOnSets() {
		if item, _, ok := set.Find(addOnID); ok {
			return item, true
		}
	}
	return AddOnSetItem{}, false
}

// DefaultPaperStock returns the stock flagged as default.
func (c ProductConfig) DefaultPaperStock() (ProductPaperStock, bool) {
	for _, stock := range c.PaperStocks {
		if stock.IsDefault {
			return stock, true
		}
	}
	return ProductPaperStock{}, false
}

// FindPaperStock returns the attached stock with the given catalog id.
func (c ProductConfig) FindPaperStock(id uuid.UUID) (ProductPaperStock, bool) {
	for _, stock := range c.PaperStocks {
		if stock.PaperStockID == id {
			return stock, true
		}
	}
	return ProductPaperStock{}, false
}

// Clone returns a copy whose slices can be mutated without touching c.
func (c ProductConfig) Clone() ProductConfig {
	out := c
	out.Tiers = make([]PricingTier, len(c.Tiers))
	for i, tier := range c.Tiers {
		out.Tiers[i] = tier
		if tier.MaxQuantity != nil {
			max := *tier.MaxQuantity
			out.Tiers[i].MaxQuantity = &max
		}
	}
	out.PaperStocks = append([]ProductPaperStock(nil), c.PaperStocks...)
	if c.DefaultAddOnSet != nil {
		set := c.DefaultAddOnSet.Clone()
		out.DefaultAddOnSet = &set
	}
	out.ExtraAddOnSets = make([]AddOnSet, len(c.ExtraAddOnSets))
	for i, set := range c.ExtraAddOnSets {
		out.ExtraAddOnSets[i] = set.Clone()
	}
	if c.AddOns != nil {
		out.AddOns = make(map[uuid.UUID]AddOnDefinition, len(c.AddOns))
		for id, def := range c.AddOns {
			out.AddOns[id] = def
		}
	}
	out.Quantities = append([]int(nil), c.Quantities...)
	out.Sizes = append([]string(nil), c.Sizes...)
	return out
}
