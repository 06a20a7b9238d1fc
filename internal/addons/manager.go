// Package addons maintains add-on set ordering and product paper stocks,
// and reads the global add-on catalog.
package addons

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/angelmondragon/printshop-backend/internal/productconfig"
	"github.com/angelmondragon/printshop-backend/pkg/enums"
)

// DerivePosition returns the bucket a newly attached add-on lands in.
// Special kinds and mandatory add-ons render above the primary selector.
func DerivePosition(def productconfig.AddOnDefinition) enums.DisplayPosition {
	if def.Kind.IsSpecial() || def.Mandatory {
		return enums.DisplayPositionAbove
	}
	return enums.DisplayPositionIn
}

// ToggleAddOn attaches def to the set, or detaches it when already present.
// The returned flag reports whether the add-on is attached afterwards.
func ToggleAddOn(set productconfig.AddOnSet, def productconfig.AddOnDefinition) (productconfig.AddOnSet, bool, error) {
	out := set.Clone()

	if _, idx, ok := out.Find(def.ID); ok {
		removed := out.Items[idx]
		out.Items = append(out.Items[:idx], out.Items[idx+1:]...)
		repack(out.Items, removed.DisplayPosition)
		return out, false, nil
	}

	if !def.Active {
		return set, false, productconfig.InvalidAddOn("addon_id", def.ID.String(), "inactive add-ons cannot be attached")
	}

	position := DerivePosition(def)
	out.Items = append(out.Items, productconfig.AddOnSetItem{
		AddOnID:         def.ID,
		DisplayPosition: position,
		IsDefault:       def.Mandatory,
		SortOrder:       math.MaxInt,
	})
	repack(out.Items, position)
	return out, true, nil
}

// MoveToPosition moves an attached add-on into another bucket, appending it
// at the end of that bucket.
func MoveToPosition(set productconfig.AddOnSet, addOnID uuid.UUID, position enums.DisplayPosition) (productconfig.AddOnSet, error) {
	if !position.IsValid() {
		return set, productconfig.InvalidAddOn("display_position", position, "unknown display position")
	}
	out := set.Clone()
	_, idx, ok := out.Find(addOnID)
	if !ok {
		return set, productconfig.UnconfiguredOption("addon_id", addOnID.String(), "add-on is not part of the set")
	}

	from := out.Items[idx].DisplayPosition
	if from == position {
		return out, nil
	}
	out.Items[idx].DisplayPosition = position
	out.Items[idx].SortOrder = math.MaxInt
	repack(out.Items, position)
	repack(out.Items, from)
	return out, nil
}

// SetItemDefault marks an attached add-on as pre-selected or not.
func SetItemDefault(set productconfig.AddOnSet, addOnID uuid.UUID, isDefault bool) (productconfig.AddOnSet, error) {
	out := set.Clone()
	_, idx, ok := out.Find(addOnID)
	if !ok {
		return set, productconfig.UnconfiguredOption("addon_id", addOnID.String(), "add-on is not part of the set")
	}
	out.Items[idx].IsDefault = isDefault
	return out, nil
}

// Ordered returns the items in display order: bucket first, then sort order.
func Ordered(items []productconfig.AddOnSetItem) []productconfig.AddOnSetItem {
	out := append([]productconfig.AddOnSetItem(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].DisplayPosition.Rank(), out[j].DisplayPosition.Rank()
		if ri != rj {
			return ri < rj
		}
		return out[i].SortOrder < out[j].SortOrder
	})
	return out
}

// Reorder moves the item at from to to within the flattened display order
// and rewrites sort orders. Both indexes must fall inside the same bucket;
// MoveToPosition changes buckets.
func Reorder(items []productconfig.AddOnSetItem, from, to int) ([]productconfig.AddOnSetItem, error) {
	ordered := Ordered(items)
	if from < 0 || from >= len(ordered) {
		return nil, productconfig.InvalidAddOn("from_index", from, fmt.Sprintf("index out of range [0,%d)", len(ordered)))
	}
	if to < 0 || to >= len(ordered) {
		return nil, productconfig.InvalidAddOn("to_index", to, fmt.Sprintf("index out of range [0,%d)", len(ordered)))
	}
	if ordered[from].DisplayPosition != ordered[to].DisplayPosition {
		return nil, productconfig.InvalidAddOn("to_index", to, "reorder cannot cross display positions")
	}

	moved := ordered[from]
	ordered = append(ordered[:from], ordered[from+1:]...)
	ordered = append(ordered[:to], append([]productconfig.AddOnSetItem{moved}, ordered[to:]...)...)

	counters := make(map[enums.DisplayPosition]int, 3)
	for i := range ordered {
		pos := ordered[i].DisplayPosition
		ordered[i].SortOrder = counters[pos]
		counters[pos]++
	}
	return ordered, nil
}

// Placement groups a set's items by where they render.
type Placement struct {
	Above []productconfig.AddOnSetItem `json:"above_dropdown"`
	In    []productconfig.AddOnSetItem `json:"in_dropdown"`
	Below []productconfig.AddOnSetItem `json:"below_dropdown"`
}

// Place splits the set into its display buckets, each in sort order.
func Place(set productconfig.AddOnSet) Placement {
	var placement Placement
	for _, item := range Ordered(set.Items) {
		switch item.DisplayPosition {
		case enums.DisplayPositionAbove:
			placement.Above = append(placement.Above, item)
		case enums.DisplayPositionBelow:
			placement.Below = append(placement.Below, item)
		default:
			placement.In = append(placement.In, item)
		}
	}
	return placement
}

// CheckOrdering verifies that every add-on appears once and that sort orders
// are unique within each bucket.
func CheckOrdering(set productconfig.AddOnSet) error {
	ids := make(map[uuid.UUID]struct{}, len(set.Items))
	orders := make(map[enums.DisplayPosition]map[int]struct{}, 3)
	for i, item := range set.Items {
		field := fmt.Sprintf("addon_sets[%s].items[%d]", set.ID, i)
		if !item.DisplayPosition.IsValid() {
			return productconfig.InvalidAddOn(field+".display_position", item.DisplayPosition, "unknown display position")
		}
		if _, dup := ids[item.AddOnID]; dup {
			return productconfig.InvalidAddOn(field+".addon_id", item.AddOnID.String(), "add-on attached twice")
		}
		ids[item.AddOnID] = struct{}{}

		bucket := orders[item.DisplayPosition]
		if bucket == nil {
			bucket = make(map[int]struct{})
			orders[item.DisplayPosition] = bucket
		}
		if _, dup := bucket[item.SortOrder]; dup {
			return productconfig.InvalidAddOn(field+".sort_order", item.SortOrder, "sort order repeated within display position")
		}
		bucket[item.SortOrder] = struct{}{}
	}
	return nil
}

// repack rewrites sort orders of one bucket to 0..n-1 keeping relative order.
func repack(items []productconfig.AddOnSetItem, position enums.DisplayPosition) {
	idx := make([]int, 0, len(items))
	for i, item := range items {
		if item.DisplayPosition == position {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return items[idx[a]].SortOrder < items[idx[b]].SortOrder
	})
	for order, i := range idx {
		items[i].SortOrder = order
	}
}
