package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/printshop-backend/api/responses"
	"github.com/angelmondragon/printshop-backend/api/validators"
	productsvc "github.com/angelmondragon/printshop-backend/internal/products"
	pkgerrors "github.com/angelmondragon/printshop-backend/pkg/errors"
	"github.com/angelmondragon/printshop-backend/pkg/logger"
)

// StorefrontQuote prices a storefront selection against the published configuration.
func StorefrontQuote(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := parseUUIDParam(r, "productId", "invalid product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := logger.WithProductID(r.Context(), productID.String())

		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input, err := payload.toInput(productID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		breakdown, err := svc.Quote(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, breakdown)
	}
}

// StorefrontGangRun reports whether a quantity can be produced on a gang sheet.
func StorefrontGangRun(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := parseUUIDParam(r, "productId", "invalid product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quantity, err := validators.RequireQueryInt(r, "quantity", 1, maxQuantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CheckGangRun(r.Context(), productID, quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

const maxQuantity = 10_000_000

type quoteRequest struct {
	Quantity       int                          `json:"quantity" validate:"required,min=1"`
	PaperStockID   *string                      `json:"paper_stock_id,omitempty"`
	SelectedAddOns map[string]string            `json:"selected_addons,omitempty"`
	SubFields      map[string]map[string]string `json:"sub_fields,omitempty"`
	RushRequested  bool                         `json:"rush"`
}

func (q quoteRequest) toInput(productID uuid.UUID) (productsvc.QuoteInput, error) {
	input := productsvc.QuoteInput{
		ProductID:     productID,
		Quantity:      q.Quantity,
		RushRequested: q.RushRequested,
	}

	if q.PaperStockID != nil && strings.TrimSpace(*q.PaperStockID) != "" {
		id, err := uuid.Parse(strings.TrimSpace(*q.PaperStockID))
		if err != nil {
			return productsvc.QuoteInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid paper_stock_id")
		}
		input.PaperStockID = &id
	}

	if len(q.SelectedAddOns) > 0 {
		input.SelectedAddOns = make(map[uuid.UUID]string, len(q.SelectedAddOns))
		for raw, value := range q.SelectedAddOns {
			id, err := uuid.Parse(strings.TrimSpace(raw))
			if err != nil {
				return productsvc.QuoteInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid addon id").WithDetails(map[string]any{"field": "selected_addons", "value": raw})
			}
			input.SelectedAddOns[id] = value
		}
	}

	if len(q.SubFields) > 0 {
		input.SubFields = make(map[uuid.UUID]map[string]string, len(q.SubFields))
		for raw, values := range q.SubFields {
			id, err := uuid.Parse(strings.TrimSpace(raw))
			if err != nil {
				return productsvc.QuoteInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid addon id").WithDetails(map[string]any{"field": "sub_fields", "value": raw})
			}
			input.SubFields[id] = values
		}
	}

	return input, nil
}

func parseUUIDParam(r *http.Request, name, message string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, message)
	}
	return id, nil
}
