package productconfig

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/printshop-backend/pkg/enums"
)

// Configuration holds the pricing parameters of an add-on. Exactly one
// variant is set and it must agree with the definition's pricing model.
type Configuration struct {
	Flat      *FlatConfig    `json:"flat,omitempty"`
	PerUnit   *PerUnitConfig `json:"per_unit,omitempty"`
	Custom    *CustomConfig  `json:"custom,omitempty"`
	SubFields []SubField     `json:"sub_fields,omitempty"`
}

type FlatConfig struct {
	Price decimal.Decimal `json:"price"`
}

type PerUnitConfig struct {
	BasePrice    decimal.Decimal `json:"base_price"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
}

type Choice struct {
	Value           string          `json:"value"`
	Label           string          `json:"label"`
	AdditionalPrice decimal.Decimal `json:"additional_price"`
}

type CustomConfig struct {
	Control       enums.AddOnControl `json:"control"`
	Choices       []Choice           `json:"choices"`
	DefaultChoice string             `json:"default_choice,omitempty"`
}

// Choice returns the choice matching value.
func (c CustomConfig) Choice(value string) (Choice, bool) {
	for _, choice := range c.Choices {
		if choice.Value == value {
			return choice, true
		}
	}
	return Choice{}, false
}

// SubField is an extra input collected when the add-on is chosen.
// ShowWhen limits the field to one choice value; empty means always shown.
type SubField struct {
	Key      string             `json:"key"`
	Label    string             `json:"label"`
	Type     enums.SubFieldType `json:"type"`
	Required bool               `json:"required"`
	Min      *decimal.Decimal   `json:"min,omitempty"`
	Max      *decimal.Decimal   `json:"max,omitempty"`
	Options  []string           `json:"options,omitempty"`
	Default  string             `json:"default,omitempty"`
	ShowWhen string             `json:"show_when,omitempty"`
}

// Validate checks the configuration against the pricing model it belongs to.
func (c Configuration) Validate(model enums.PricingModel) error {
	set := 0
	for _, ok := range []bool{c.Flat != nil, c.PerUnit != nil, c.Custom != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return InvalidAddOn("configuration", model, "exactly one pricing variant must be set")
	}

	switch model {
	case enums.PricingModelFlat:
		if c.Flat == nil {
			return InvalidAddOn("configuration.flat", model, "flat pricing requires a flat configuration")
		}
		if c.Flat.Price.IsNegative() {
			return InvalidAddOn("configuration.flat.price", c.Flat.Price.String(), "price cannot be negative")
		}
		if err := checkPricePlaces("configuration.flat.price", c.Flat.Price); err != nil {
			return err
		}
	case enums.PricingModelPerUnit:
		if c.PerUnit == nil {
			return InvalidAddOn("configuration.per_unit", model, "per-unit pricing requires a per_unit configuration")
		}
		if c.PerUnit.BasePrice.IsNegative() || c.PerUnit.PricePerUnit.IsNegative() {
			return InvalidAddOn("configuration.per_unit", nil, "prices cannot be negative")
		}
		if err := checkPricePlaces("configuration.per_unit.base_price", c.PerUnit.BasePrice); err != nil {
			return err
		}
		if err := checkPricePlaces("configuration.per_unit.price_per_unit", c.PerUnit.PricePerUnit); err != nil {
			return err
		}
	case enums.PricingModelCustom:
		if c.Custom == nil {
			return InvalidAddOn("configuration.custom", model, "custom pricing requires a custom configuration")
		}
		if err := c.Custom.validate(); err != nil {
			return err
		}
	default:
		return InvalidAddOn("pricing_model", model, "unknown pricing model")
	}

	return c.validateSubFields()
}

func checkPricePlaces(field string, price decimal.Decimal) error {
	if HasMorePlaces(price, PricePlaces) {
		return InvalidAddOn(field, price.String(), fmt.Sprintf("price allows at most %d decimal places", PricePlaces))
	}
	return nil
}

func (c CustomConfig) validate() error {
	if !c.Control.IsChoice() {
		return InvalidAddOn("configuration.custom.control", c.Control, "custom pricing requires a select or radio control")
	}
	if len(c.Choices) == 0 {
		return InvalidAddOn("configuration.custom.choices", nil, "choice controls need at least one choice")
	}
	seen := make(map[string]struct{}, len(c.Choices))
	for i, choice := range c.Choices {
		field := fmt.Sprintf("configuration.custom.choices[%d]", i)
		if choice.Value == "" {
			return InvalidAddOn(field+".value", nil, "choice value is required")
		}
		if _, dup := seen[choice.Value]; dup {
			return InvalidAddOn(field+".value", choice.Value, "duplicate choice value")
		}
		seen[choice.Value] = struct{}{}
		if choice.AdditionalPrice.IsNegative() {
			return InvalidAddOn(field+".additional_price", choice.AdditionalPrice.String(), "price cannot be negative")
		}
		if err := checkPricePlaces(field+".additional_price", choice.AdditionalPrice); err != nil {
			return err
		}
	}
	if c.DefaultChoice != "" {
		if _, ok := seen[c.DefaultChoice]; !ok {
			return InvalidAddOn("configuration.custom.default_choice", c.DefaultChoice, "default choice is not one of the choices")
		}
	}
	return nil
}

func (c Configuration) validateSubFields() error {
	keys := make(map[string]struct{}, len(c.SubFields))
	for i, field := range c.SubFields {
		name := fmt.Sprintf("configuration.sub_fields[%d]", i)
		if field.Key == "" {
			return InvalidAddOn(name+".key", nil, "sub-field key is required")
		}
		if _, dup := keys[field.Key]; dup {
			return InvalidAddOn(name+".key", field.Key, "duplicate sub-field key")
		}
		keys[field.Key] = struct{}{}
		if !field.Type.IsValid() {
			return InvalidAddOn(name+".type", field.Type, "unknown sub-field type")
		}
		if field.Type == enums.SubFieldTypeSelect && len(field.Options) == 0 {
			return InvalidAddOn(name+".options", nil, "select sub-fields need options")
		}
		if field.Min != nil && field.Max != nil && field.Min.GreaterThan(*field.Max) {
			return InvalidAddOn(name+".min", field.Min.String(), "min exceeds max")
		}
		if field.ShowWhen != "" {
			if c.Custom == nil {
				return InvalidAddOn(name+".show_when", field.ShowWhen, "show_when requires choices")
			}
			if _, ok := c.Custom.Choice(field.ShowWhen); !ok {
				return InvalidAddOn(name+".show_when", field.ShowWhen, "show_when references an unknown choice")
			}
		}
	}
	return nil
}
