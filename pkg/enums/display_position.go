package enums

import "fmt"

// DisplayPosition places an add-on relative to the primary option dropdown.
type DisplayPosition string

const (
	DisplayPositionAbove DisplayPosition = "ABOVE_DROPDOWN"
	DisplayPositionIn    DisplayPosition = "IN_DROPDOWN"
	DisplayPositionBelow DisplayPosition = "BELOW_DROPDOWN"
)

// validDisplayPositions is ordered by render order.
var validDisplayPositions = []DisplayPosition{
	DisplayPositionAbove,
	DisplayPositionIn,
	DisplayPositionBelow,
}

// DisplayPositions returns the positions in render order.
func DisplayPositions() []DisplayPosition {
	return append([]DisplayPosition(nil), validDisplayPositions...)
}

// String implements fmt.Stringer.
func (p DisplayPosition) String() string {
	return string(p)
}

// IsValid reports whether the value is a known DisplayPosition.
func (p DisplayPosition) IsValid() bool {
	for _, candidate := range validDisplayPositions {
		if candidate == p {
			return true
		}
	}
	return false
}

// Rank returns the render order of the position; unknown values sort last.
func (p DisplayPosition) Rank() int {
	for i, candidate := range validDisplayPositions {
		if candidate == p {
			return i
		}
	}
	return len(validDisplayPositions)
}

// ParseDisplayPosition converts raw input into a DisplayPosition.
func ParseDisplayPosition(value string) (DisplayPosition, error) {
	for _, candidate := range validDisplayPositions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid display position %q", value)
}
