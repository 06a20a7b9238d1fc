package validators

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/printshop-backend/pkg/errors"
)

type tierPayload struct {
	MinQuantity int             `json:"min_quantity" validate:"required,min=1"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Discount    decimal.Decimal `json:"discount" validate:"gte=0,lte=100"`
}

type tiersPayload struct {
	Tiers []tierPayload `json:"tiers" validate:"dive"`
}

func decodeErr(t *testing.T, body string, dest any) *pkgerrors.Error {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	err := DecodeJSONBody(req, dest)
	if err == nil {
		return nil
	}
	var typed *pkgerrors.Error
	if !errors.As(err, &typed) {
		t.Fatalf("expected typed error, got %T", err)
	}
	if typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %s", typed.Code())
	}
	return typed
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	var dest tiersPayload
	if err := decodeErr(t, `{"tiers":[{"min_quantity":1,"price":"0.50","discount":"10"}]}`, &dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dest.Tiers) != 1 || !dest.Tiers[0].Price.Equal(decimal.RequireFromString("0.5")) {
		t.Fatalf("unexpected decode %+v", dest)
	}
}

func TestDecodeJSONBodyChecksDecimalBounds(t *testing.T) {
	cases := map[string]string{
		"negative price":   `{"tiers":[{"min_quantity":1,"price":"-0.01"}]}`,
		"discount too big": `{"tiers":[{"min_quantity":1,"price":"1","discount":"100.5"}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			var dest tiersPayload
			err := decodeErr(t, body, &dest)
			if err == nil {
				t.Fatalf("expected validation error")
			}
			details, ok := err.Details().(map[string]string)
			if !ok {
				t.Fatalf("expected field details, got %T", err.Details())
			}
			if len(details) != 1 {
				t.Fatalf("expected one failing field, got %v", details)
			}
		})
	}
}

func TestDecodeJSONBodyReportsNestedFieldPath(t *testing.T) {
	var dest tiersPayload
	err := decodeErr(t, `{"tiers":[{"min_quantity":1,"price":"1"},{"min_quantity":0,"price":"1"}]}`, &dest)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	details := err.Details().(map[string]string)
	if details["tiers[1].min_quantity"] != "is required" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestDecodeJSONBodyRejectsTrailingData(t *testing.T) {
	var dest tiersPayload
	if err := decodeErr(t, `{"tiers":[]} {"tiers":[]}`, &dest); err == nil {
		t.Fatalf("expected error for concatenated objects")
	}
}

func TestDecodeJSONBodyRejectsOversizedBody(t *testing.T) {
	var dest tiersPayload
	body := `{"tiers":[` + strings.Repeat(`{"min_quantity":1,"price":"1"},`, MaxBodyBytes/16) + `{"min_quantity":1,"price":"1"}]}`
	err := decodeErr(t, body, &dest)
	if err == nil {
		t.Fatalf("expected size error")
	}
	if err.Message() != "request body too large" {
		t.Fatalf("unexpected message %q", err.Message())
	}
}
