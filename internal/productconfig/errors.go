package productconfig

import (
	"errors"

	pkgerrors "github.com/angelmondragon/printshop-backend/pkg/errors"
)

var (
	ErrInvalidTier        = errors.New("invalid_tier")
	ErrInvalidQuantity    = errors.New("invalid_quantity")
	ErrUnconfiguredOption = errors.New("unconfigured_option")
	ErrInvalidAddOn       = errors.New("invalid_addon")
	ErrValidation         = errors.New("validation_failed")
	ErrVersionConflict    = errors.New("version_conflict")
)

// Violation identifies the offending field of a rejected request.
type Violation struct {
	Kind    string `json:"kind"`
	Field   string `json:"field"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

// ViolationOf extracts the violation carried by an engine error.
func ViolationOf(err error) (Violation, bool) {
	typed := pkgerrors.As(err)
	if typed == nil {
		return Violation{}, false
	}
	v, ok := typed.Details().(Violation)
	return v, ok
}

func violationError(sentinel error, kind, field string, value any, message string) *pkgerrors.Error {
	return pkgerrors.Wrap(pkgerrors.CodeValidation, sentinel, message).
		WithDetails(Violation{Kind: kind, Field: field, Value: value, Message: message})
}

// InvalidTier reports a tier whose bounds or prices are malformed.
func InvalidTier(field string, value any, message string) *pkgerrors.Error {
	return violationError(ErrInvalidTier, "invalid_tier", field, value, message)
}

// InvalidQuantity reports a quantity that is not positive.
func InvalidQuantity(value int) *pkgerrors.Error {
	return violationError(ErrInvalidQuantity, "invalid_quantity", "quantity", value, "quantity must be positive")
}

// NoPriceForQuantity reports a quantity with neither a tier nor a base price.
func NoPriceForQuantity(value int) *pkgerrors.Error {
	return violationError(ErrInvalidQuantity, "invalid_quantity", "quantity", value, "no tier covers the quantity and no base price is set")
}

// UnconfiguredOption reports a selection that is not attached to the product.
func UnconfiguredOption(field string, value any, message string) *pkgerrors.Error {
	return violationError(ErrUnconfiguredOption, "unconfigured_option", field, value, message)
}

// InvalidAddOn reports a malformed add-on definition or set.
func InvalidAddOn(field string, value any, message string) *pkgerrors.Error {
	return violationError(ErrInvalidAddOn, "invalid_addon", field, value, message)
}

// VersionConflict reports an edit lost to a concurrent writer.
func VersionConflict(expected int) *pkgerrors.Error {
	return pkgerrors.Wrap(pkgerrors.CodeVersionConflict, ErrVersionConflict, "configuration was modified by another editor").
		WithDetails(map[string]any{"expected_version": expected})
}
