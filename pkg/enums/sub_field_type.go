package enums

import "fmt"

// SubFieldType describes the input collected by a conditional add-on sub-field.
type SubFieldType string

const (
	SubFieldTypeText    SubFieldType = "TEXT"
	SubFieldTypeNumber  SubFieldType = "NUMBER"
	SubFieldTypeSelect  SubFieldType = "SELECT"
	SubFieldTypeBoolean SubFieldType = "BOOLEAN"
)

var validSubFieldTypes = []SubFieldType{
	SubFieldTypeText,
	SubFieldTypeNumber,
	SubFieldTypeSelect,
	SubFieldTypeBoolean,
}

// String implements fmt.Stringer.
func (t SubFieldType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known SubFieldType.
func (t SubFieldType) IsValid() bool {
	for _, candidate := range validSubFieldTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseSubFieldType converts raw input into a SubFieldType.
func ParseSubFieldType(value string) (SubFieldType, error) {
	for _, candidate := range validSubFieldTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sub-field type %q", value)
}
