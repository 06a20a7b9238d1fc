package enums

import "fmt"

// ConfigStatus tracks whether a product configuration is sellable.
type ConfigStatus string

const (
	ConfigStatusDraft     ConfigStatus = "DRAFT"
	ConfigStatusPublished ConfigStatus = "PUBLISHED"
)

var validConfigStatuses = []ConfigStatus{
	ConfigStatusDraft,
	ConfigStatusPublished,
}

// String implements fmt.Stringer.
func (s ConfigStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ConfigStatus.
func (s ConfigStatus) IsValid() bool {
	for _, candidate := range validConfigStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseConfigStatus converts raw input into a ConfigStatus.
func ParseConfigStatus(value string) (ConfigStatus, error) {
	for _, candidate := range validConfigStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid config status %q", value)
}

// ProductionPath is the press path a quoted quantity is routed to.
type ProductionPath string

const (
	ProductionPathStandalone ProductionPath = "standalone"
	ProductionPathGangRun    ProductionPath = "gang_run"
)

// String implements fmt.Stringer.
func (p ProductionPath) String() string {
	return string(p)
}
