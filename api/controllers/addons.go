package controllers

import (
	"net/http"

	"github.com/angelmondragon/printshop-backend/api/responses"
	"github.com/angelmondragon/printshop-backend/api/validators"
	productsvc "github.com/angelmondragon/printshop-backend/internal/products"
	pkgerrors "github.com/angelmondragon/printshop-backend/pkg/errors"
	"github.com/angelmondragon/printshop-backend/pkg/logger"
)

// AdminListAddOns returns the add-on catalog, optionally filtered to active entries.
func AdminListAddOns(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		activeOnly, err := validators.ParseQueryBool(r, "active", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		defs, err := svc.ListAddOns(r.Context(), activeOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, defs)
	}
}

// AdminToggleSetAddOn attaches or detaches an add-on within a set.
func AdminToggleSetAddOn(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		setID, err := parseUUIDParam(r, "setId", "invalid addon set id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		addOnID, err := parseUUIDParam(r, "addOnId", "invalid addon id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		set, err := svc.ToggleSetAddOn(logger.WithAddOnSetID(r.Context(), setID.String()), setID, addOnID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, set)
	}
}

// AdminReorderAddOnSet moves an item within its display bucket.
func AdminReorderAddOnSet(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		setID, err := parseUUIDParam(r, "setId", "invalid addon set id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload reorderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		set, err := svc.ReorderSet(logger.WithAddOnSetID(r.Context(), setID.String()), setID, payload.From, payload.To)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, set)
	}
}

type reorderRequest struct {
	From int `json:"from" validate:"min=0"`
	To   int `json:"to" validate:"min=0"`
}
