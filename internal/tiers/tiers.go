// Package tiers maintains the quantity-to-price tier table of a product.
// Every function returns a fresh slice; inputs are never mutated.
package tiers

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/printshop-backend/internal/productconfig"
)

var hundred = decimal.NewFromInt(100)

// ValidateTier rejects tiers with a negative boundary, a negative price or a
// discount outside [0,100], and amounts finer than their stored precision.
func ValidateTier(tier productconfig.PricingTier) error {
	if tier.MinQuantity < 0 {
		return productconfig.InvalidTier("min_quantity", tier.MinQuantity, "min quantity cannot be negative")
	}
	if tier.PricePerUnit.IsNegative() {
		return productconfig.InvalidTier("price_per_unit", tier.PricePerUnit.String(), "price per unit cannot be negative")
	}
	if productconfig.HasMorePlaces(tier.PricePerUnit, productconfig.PricePlaces) {
		return productconfig.InvalidTier("price_per_unit", tier.PricePerUnit.String(), fmt.Sprintf("price per unit allows at most %d decimal places", productconfig.PricePlaces))
	}
	if tier.DiscountPercentage.IsNegative() || tier.DiscountPercentage.GreaterThan(hundred) {
		return productconfig.InvalidTier("discount_percentage", tier.DiscountPercentage.String(), "discount percentage must be between 0 and 100")
	}
	if productconfig.HasMorePlaces(tier.DiscountPercentage, productconfig.DiscountPlaces) {
		return productconfig.InvalidTier("discount_percentage", tier.DiscountPercentage.String(), fmt.Sprintf("discount percentage allows at most %d decimal places", productconfig.DiscountPlaces))
	}
	return nil
}

// InsertTier places newTier by min quantity and re-bounds the table. A tier
// sharing an existing min quantity replaces it.
func InsertTier(table []productconfig.PricingTier, newTier productconfig.PricingTier) ([]productconfig.PricingTier, error) {
	if err := ValidateTier(newTier); err != nil {
		return nil, err
	}

	out := make([]productconfig.PricingTier, 0, len(table)+1)
	for _, tier := range table {
		if tier.MinQuantity == newTier.MinQuantity {
			continue
		}
		out = append(out, tier)
	}
	out = append(out, newTier)
	return Normalize(out), nil
}

// RemoveTier drops the tier at index and re-bounds the rest. An empty result
// means pricing falls back to the product's base price.
func RemoveTier(table []productconfig.PricingTier, index int) ([]productconfig.PricingTier, error) {
	if index < 0 || index >= len(table) {
		return nil, productconfig.InvalidTier("index", index, fmt.Sprintf("tier index out of range [0,%d)", len(table)))
	}

	out := make([]productconfig.PricingTier, 0, len(table)-1)
	out = append(out, table[:index]...)
	out = append(out, table[index+1:]...)
	return Normalize(out), nil
}

// ReplaceTiers validates a complete table supplied in one request. Unlike
// InsertTier it refuses duplicate boundaries.
func ReplaceTiers(table []productconfig.PricingTier) ([]productconfig.PricingTier, error) {
	seen := make(map[int]struct{}, len(table))
	for i, tier := range table {
		if err := ValidateTier(tier); err != nil {
			return nil, err
		}
		if _, dup := seen[tier.MinQuantity]; dup {
			return nil, productconfig.InvalidTier(fmt.Sprintf("tiers[%d].min_quantity", i), tier.MinQuantity, "duplicate tier boundary")
		}
		seen[tier.MinQuantity] = struct{}{}
	}
	return Normalize(table), nil
}

// Normalize sorts by min quantity, rewrites every max to next.min-1 and
// leaves the top tier unbounded. It is idempotent.
func Normalize(table []productconfig.PricingTier) []productconfig.PricingTier {
	out := make([]productconfig.PricingTier, len(table))
	copy(out, table)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MinQuantity < out[j].MinQuantity
	})

	for i := range out {
		if i == len(out)-1 {
			out[i].MaxQuantity = nil
			continue
		}
		max := out[i+1].MinQuantity - 1
		out[i].MaxQuantity = &max
	}
	return out
}

// Match returns the tier covering quantity. Quantities below the first
// boundary resolve to the first tier. ok is false only for an empty table.
func Match(table []productconfig.PricingTier, quantity int) (productconfig.PricingTier, bool) {
	if len(table) == 0 {
		return productconfig.PricingTier{}, false
	}
	if quantity < table[0].MinQuantity {
		return table[0], true
	}
	for _, tier := range table {
		if tier.Contains(quantity) {
			return tier, true
		}
	}
	return productconfig.PricingTier{}, false
}

// CheckPartition verifies that table is already normalized and every tier is
// well formed. It returns nil for an empty table.
func CheckPartition(table []productconfig.PricingTier) error {
	for i, tier := range table {
		if err := ValidateTier(tier); err != nil {
			return err
		}
		field := fmt.Sprintf("tiers[%d].max_quantity", i)
		if i == len(table)-1 {
			if tier.MaxQuantity != nil {
				return productconfig.InvalidTier(field, *tier.MaxQuantity, "top tier must be unbounded")
			}
			continue
		}
		next := table[i+1]
		if next.MinQuantity <= tier.MinQuantity {
			return productconfig.InvalidTier(fmt.Sprintf("tiers[%d].min_quantity", i+1), next.MinQuantity, "tiers must be strictly ascending")
		}
		if tier.MaxQuantity == nil {
			return productconfig.InvalidTier(field, nil, "only the top tier may be unbounded")
		}
		if *tier.MaxQuantity != next.MinQuantity-1 {
			return productconfig.InvalidTier(field, *tier.MaxQuantity, "tier bounds leave a gap or overlap")
		}
	}
	return nil
}
