package enums

import "fmt"

// AddOnKind is the closed set of add-on types known to the catalog.
type AddOnKind string

const (
	AddOnKindStandard       AddOnKind = "STANDARD"
	AddOnKindVariableData   AddOnKind = "VARIABLE_DATA"
	AddOnKindPerforation    AddOnKind = "PERFORATION"
	AddOnKindBanding        AddOnKind = "BANDING"
	AddOnKindCornerRounding AddOnKind = "CORNER_ROUNDING"
	AddOnKindDesign         AddOnKind = "DESIGN"
	AddOnKindProof          AddOnKind = "PROOF"
	AddOnKindShrinkWrap     AddOnKind = "SHRINK_WRAP"
)

var validAddOnKinds = []AddOnKind{
	AddOnKindStandard,
	AddOnKindVariableData,
	AddOnKindPerforation,
	AddOnKindBanding,
	AddOnKindCornerRounding,
	AddOnKindDesign,
	AddOnKindProof,
	AddOnKindShrinkWrap,
}

// String implements fmt.Stringer.
func (k AddOnKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known AddOnKind.
func (k AddOnKind) IsValid() bool {
	for _, candidate := range validAddOnKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// IsSpecial reports whether the kind renders above the primary dropdown by default.
func (k AddOnKind) IsSpecial() bool {
	switch k {
	case AddOnKindVariableData, AddOnKindPerforation, AddOnKindBanding, AddOnKindCornerRounding:
		return true
	}
	return false
}

// ParseAddOnKind converts raw input into an AddOnKind.
func ParseAddOnKind(value string) (AddOnKind, error) {
	for _, candidate := range validAddOnKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid add-on kind %q", value)
}
