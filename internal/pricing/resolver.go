// Package pricing turns a product configuration and a customer selection
// into an itemized price. Everything here is pure and safe for concurrent use.
package pricing

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/printshop-backend/internal/gangrun"
	"github.com/angelmondragon/printshop-backend/internal/productconfig"
	"github.com/angelmondragon/printshop-backend/internal/tiers"
	"github.com/angelmondragon/printshop-backend/pkg/enums"
)

// ResolvePrice computes the breakdown for sel against cfg. The unit price
// and every option line are rounded to cents first, and the subtotal and
// total are summed from those reported amounts, so the breakdown always adds
// up to what the customer is charged.
func ResolvePrice(cfg productconfig.ProductConfig, sel Selection) (*PriceBreakdown, error) {
	if sel.Quantity <= 0 {
		return nil, productconfig.InvalidQuantity(sel.Quantity)
	}
	qty := decimal.NewFromInt(int64(sel.Quantity))

	out := &PriceBreakdown{Quantity: sel.Quantity}

	tier, ok := tiers.Match(cfg.Tiers, sel.Quantity)
	if ok {
		min := tier.MinQuantity
		out.TierMinQuantity = &min
		if tier.MaxQuantity != nil {
			max := *tier.MaxQuantity
			out.TierMaxQuantity = &max
		}
		out.BaseUnitPrice = tier.PricePerUnit
		out.DiscountPercentage = tier.DiscountPercentage
	} else {
		if !cfg.BasePrice.IsPositive() {
			return nil, productconfig.NoPriceForQuantity(sel.Quantity)
		}
		out.BaseUnitPrice = cfg.BasePrice
		out.DiscountPercentage = decimal.Zero
	}

	stock, err := resolvePaperStock(cfg, sel.PaperStockID)
	if err != nil {
		return nil, err
	}
	multiplier := decimal.NewFromInt(1)
	additional := decimal.Zero
	if stock != nil {
		id := stock.PaperStockID
		out.PaperStockID = &id
		multiplier = stock.EffectiveMultiplier()
		additional = stock.AdditionalCost
	}
	out.PaperMultiplier = multiplier
	out.PaperAdditionalCost = round(additional)

	unitPrice := out.BaseUnitPrice.Mul(multiplier).Add(additional)

	lines, optionsTotal, err := priceAddOns(cfg, sel, qty)
	if err != nil {
		return nil, err
	}

	rushFee := decimal.Zero
	if sel.RushRequested {
		if !cfg.Rush.Available {
			return nil, productconfig.UnconfiguredOption("rush_requested", true, "rush production is not offered for this product")
		}
		rushFee = cfg.Rush.Fee
	}

	out.BaseUnitPrice = round(out.BaseUnitPrice)
	out.UnitPrice = round(unitPrice)
	out.OptionsTotal = optionsTotal
	out.Options = lines
	out.Subtotal = out.UnitPrice.Mul(qty).Add(optionsTotal)
	out.SetupFee = round(cfg.SetupFee)
	out.RushFee = round(rushFee)
	out.Total = out.Subtotal.Add(out.SetupFee).Add(out.RushFee)
	out.GangRun = gangrun.IsAllowed(cfg.GangRun, sel.Quantity)
	out.ProductionPath = gangrun.Path(cfg.GangRun, sel.Quantity)
	return out, nil
}

func resolvePaperStock(cfg productconfig.ProductConfig, id *uuid.UUID) (*productconfig.ProductPaperStock, error) {
	if id != nil {
		stock, ok := cfg.FindPaperStock(*id)
		if !ok {
			return nil, productconfig.UnconfiguredOption("paper_stock_id", id.String(), "paper stock is not attached to the product")
		}
		return &stock, nil
	}
	if stock, ok := cfg.DefaultPaperStock(); ok {
		return &stock, nil
	}
	return nil, nil
}

func priceAddOns(cfg productconfig.ProductConfig, sel Selection, qty decimal.Decimal) ([]OptionLine, decimal.Decimal, error) {
	for id := range sel.AddOns {
		if _, attached := cfg.AttachedItem(id); !attached {
			return nil, decimal.Zero, productconfig.UnconfiguredOption("addons", id.String(), "add-on is not attached to the product")
		}
	}

	var lines []OptionLine
	total := decimal.Zero
	seen := make(map[uuid.UUID]struct{})
	for _, set := range cfg.AddOnSets() {
		for _, item := range set.Items {
			if _, dup := seen[item.AddOnID]; dup {
				continue
			}
			seen[item.AddOnID] = struct{}{}

			def, known := cfg.AddOns[item.AddOnID]
			value, selected := sel.AddOns[item.AddOnID]
			if !selected && !(known && def.Mandatory) {
				continue
			}
			if !known || !def.Active {
				return nil, decimal.Zero, productconfig.UnconfiguredOption("addons", item.AddOnID.String(), "add-on is not available")
			}

			line, err := priceAddOn(def, value, sel.SubFields[def.ID], qty)
			if err != nil {
				return nil, decimal.Zero, err
			}
			line.Amount = round(line.Amount)
			total = total.Add(line.Amount)
			lines = append(lines, line)
		}
	}
	return lines, total, nil
}

func priceAddOn(def productconfig.AddOnDefinition, value string, subFields map[string]string, qty decimal.Decimal) (OptionLine, error) {
	line := OptionLine{
		AddOnID:      def.ID,
		Name:         def.Name,
		PricingModel: def.PricingModel,
		Mandatory:    def.Mandatory,
	}
	field := fmt.Sprintf("addons[%s]", def.ID)
	cfg := def.Configuration

	switch def.PricingModel {
	case enums.PricingModelFlat:
		if cfg.Flat == nil {
			return line, productconfig.UnconfiguredOption(field, def.PricingModel, "add-on has no flat price")
		}
		line.Amount = cfg.Flat.Price
	case enums.PricingModelPerUnit:
		if cfg.PerUnit == nil {
			return line, productconfig.UnconfiguredOption(field, def.PricingModel, "add-on has no per-unit price")
		}
		line.Amount = cfg.PerUnit.BasePrice.Add(cfg.PerUnit.PricePerUnit.Mul(qty))
	case enums.PricingModelCustom:
		if cfg.Custom == nil {
			return line, productconfig.UnconfiguredOption(field, def.PricingModel, "add-on has no choices")
		}
		if value == "" {
			value = cfg.Custom.DefaultChoice
		}
		if value == "" {
			return line, productconfig.UnconfiguredOption(field, nil, "a choice is required")
		}
		choice, ok := cfg.Custom.Choice(value)
		if !ok {
			return line, productconfig.UnconfiguredOption(field, value, "choice is not offered by the add-on")
		}
		line.Value = choice.Value
		line.Amount = choice.AdditionalPrice
	default:
		return line, productconfig.UnconfiguredOption(field, def.PricingModel, "unknown pricing model")
	}

	resolved, err := resolveSubFields(def, line.Value, subFields)
	if err != nil {
		return line, err
	}
	line.SubFields = resolved
	return line, nil
}

// resolveSubFields applies defaults and checks every visible sub-field.
// Hidden sub-fields are dropped.
func resolveSubFields(def productconfig.AddOnDefinition, choice string, values map[string]string) (map[string]string, error) {
	if len(def.Configuration.SubFields) == 0 {
		return nil, nil
	}

	out := make(map[string]string, len(def.Configuration.SubFields))
	for _, sf := range def.Configuration.SubFields {
		if sf.ShowWhen != "" && sf.ShowWhen != choice {
			continue
		}
		field := fmt.Sprintf("addons[%s].sub_fields.%s", def.ID, sf.Key)

		value, ok := values[sf.Key]
		if !ok || value == "" {
			if sf.Default != "" {
				value = sf.Default
			} else if sf.Required {
				return nil, productconfig.UnconfiguredOption(field, nil, fmt.Sprintf("%s is required", labelOf(sf)))
			} else {
				continue
			}
		}

		if err := checkSubField(sf, field, value); err != nil {
			return nil, err
		}
		out[sf.Key] = value
	}
	return out, nil
}

func checkSubField(sf productconfig.SubField, field, value string) error {
	switch sf.Type {
	case enums.SubFieldTypeNumber:
		n, err := decimal.NewFromString(value)
		if err != nil {
			return productconfig.UnconfiguredOption(field, value, fmt.Sprintf("%s must be a number", labelOf(sf)))
		}
		if sf.Min != nil && n.LessThan(*sf.Min) {
			return productconfig.UnconfiguredOption(field, value, fmt.Sprintf("%s must be at least %s", labelOf(sf), sf.Min.String()))
		}
		if sf.Max != nil && n.GreaterThan(*sf.Max) {
			return productconfig.UnconfiguredOption(field, value, fmt.Sprintf("%s must be at most %s", labelOf(sf), sf.Max.String()))
		}
	case enums.SubFieldTypeSelect:
		for _, option := range sf.Options {
			if option == value {
				return nil
			}
		}
		return productconfig.UnconfiguredOption(field, value, fmt.Sprintf("%s is not one of the offered options", labelOf(sf)))
	case enums.SubFieldTypeBoolean:
		if _, err := strconv.ParseBool(value); err != nil {
			return productconfig.UnconfiguredOption(field, value, fmt.Sprintf("%s must be true or false", labelOf(sf)))
		}
	}
	return nil
}

func labelOf(sf productconfig.SubField) string {
	if sf.Label != "" {
		return sf.Label
	}
	return sf.Key
}
