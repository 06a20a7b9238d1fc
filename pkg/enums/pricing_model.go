package enums

import "fmt"

// PricingModel selects how an add-on contributes to the options total.
type PricingModel string

const (
	PricingModelFlat    PricingModel = "FLAT"
	PricingModelPerUnit PricingModel = "PER_UNIT"
	PricingModelCustom  PricingModel = "CUSTOM"
)

var validPricingModels = []PricingModel{
	PricingModelFlat,
	PricingModelPerUnit,
	PricingModelCustom,
}

// String implements fmt.Stringer.
func (m PricingModel) String() string {
	return string(m)
}

// IsValid reports whether the value is a known PricingModel.
func (m PricingModel) IsValid() bool {
	for _, candidate := range validPricingModels {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParsePricingModel converts raw input into a PricingModel.
func ParsePricingModel(value string) (PricingModel, error) {
	for _, candidate := range validPricingModels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pricing model %q", value)
}

// AddOnControl is the storefront widget an add-on renders as.
type AddOnControl string

const (
	AddOnControlCheckbox AddOnControl = "CHECKBOX"
	AddOnControlSelect   AddOnControl = "SELECT"
	AddOnControlRadio    AddOnControl = "RADIO"
)

var validAddOnControls = []AddOnControl{
	AddOnControlCheckbox,
	AddOnControlSelect,
	AddOnControlRadio,
}

// String implements fmt.Stringer.
func (c AddOnControl) String() string {
	return string(c)
}

// IsValid reports whether the value is a known AddOnControl.
func (c AddOnControl) IsValid() bool {
	for _, candidate := range validAddOnControls {
		if candidate == c {
			return true
		}
	}
	return false
}

// IsChoice reports whether the control picks one value out of a list.
func (c AddOnControl) IsChoice() bool {
	return c == AddOnControlSelect || c == AddOnControlRadio
}

// ParseAddOnControl converts raw input into an AddOnControl.
func ParseAddOnControl(value string) (AddOnControl, error) {
	for _, candidate := range validAddOnControls {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid add-on control %q", value)
}
