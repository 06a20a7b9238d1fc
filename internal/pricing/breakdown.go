package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/printshop-backend/pkg/enums"
)

// MoneyPlaces is the number of decimal places money is reported with.
const MoneyPlaces = 2

// Selection is a customer's live choice for one product.
// AddOns maps an attached add-on to its value: the chosen value for select
// and radio add-ons, anything for checkboxes. SubFields carries the extra
// inputs keyed by add-on and sub-field key.
type Selection struct {
	Quantity      int
	PaperStockID  *uuid.UUID
	AddOns        map[uuid.UUID]string
	SubFields     map[uuid.UUID]map[string]string
	RushRequested bool
}

// OptionLine itemizes one priced add-on.
type OptionLine struct {
	AddOnID      uuid.UUID          `json:"addon_id"`
	Name         string             `json:"name"`
	PricingModel enums.PricingModel `json:"pricing_model"`
	Value        string             `json:"value,omitempty"`
	SubFields    map[string]string  `json:"sub_fields,omitempty"`
	Mandatory    bool               `json:"mandatory"`
	Amount       decimal.Decimal    `json:"amount"`
}

// PriceBreakdown is the itemized result of a pricing request.
// DiscountPercentage is informational; it is already reflected in the tier
// price and is never applied to Total.
type PriceBreakdown struct {
	Quantity            int                  `json:"quantity"`
	TierMinQuantity     *int                 `json:"tier_min_quantity,omitempty"`
	TierMaxQuantity     *int                 `json:"tier_max_quantity,omitempty"`
	BaseUnitPrice       decimal.Decimal      `json:"base_unit_price"`
	PaperStockID        *uuid.UUID           `json:"paper_stock_id,omitempty"`
	PaperMultiplier     decimal.Decimal      `json:"paper_multiplier"`
	PaperAdditionalCost decimal.Decimal      `json:"paper_additional_cost"`
	UnitPrice           decimal.Decimal      `json:"unit_price"`
	Subtotal            decimal.Decimal      `json:"subtotal"`
	OptionsTotal        decimal.Decimal      `json:"options_total"`
	Options             []OptionLine         `json:"options"`
	SetupFee            decimal.Decimal      `json:"setup_fee"`
	RushFee             decimal.Decimal      `json:"rush_fee"`
	DiscountPercentage  decimal.Decimal      `json:"discount_percentage"`
	Total               decimal.Decimal      `json:"total"`
	GangRun             bool                 `json:"gang_run"`
	ProductionPath      enums.ProductionPath `json:"production_path"`
}

func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}
