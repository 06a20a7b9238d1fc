package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/printshop-backend/api/responses"
	"github.com/angelmondragon/printshop-backend/api/validators"
	"github.com/angelmondragon/printshop-backend/internal/productconfig"
	productsvc "github.com/angelmondragon/printshop-backend/internal/products"
	pkgerrors "github.com/angelmondragon/printshop-backend/pkg/errors"
	"github.com/angelmondragon/printshop-backend/pkg/logger"
)

// AdminCreateProductConfig stores a new draft configuration.
func AdminCreateProductConfig(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload createConfigRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cfg, err := svc.CreateConfig(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, cfg)
	}
}

// AdminGetProductConfig returns the current configuration of a product.
func AdminGetProductConfig(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		cfg, err := svc.GetConfig(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cfg)
	}
}

// AdminInsertTier adds one tier and rebuilds the quantity partition.
func AdminInsertTier(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload tierRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cfg, err := svc.InsertTier(logger.WithProductID(r.Context(), productID.String()), productID, payload.toTier())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cfg)
	}
}

// AdminRemoveTier deletes the tier at the given index.
func AdminRemoveTier(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		index, err := strconv.Atoi(strings.TrimSpace(chi.URLParam(r, "index")))
		if err != nil || index < 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid tier index").WithDetails(map[string]any{"field": "index"}))
			return
		}

		cfg, err := svc.RemoveTier(logger.WithProductID(r.Context(), productID.String()), productID, index)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cfg)
	}
}

// AdminReplaceTiers swaps the full tier table in one edit.
func AdminReplaceTiers(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload replaceTiersRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cfg, err := svc.ReplaceTiers(logger.WithProductID(r.Context(), productID.String()), productID, toTiers(payload.Tiers))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cfg)
	}
}

// AdminTogglePaperStock attaches or detaches a paper stock.
func AdminTogglePaperStock(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
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
		paperStockID, err := parseUUIDParam(r, "paperStockId", "invalid paper stock id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload togglePaperStockRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		cfg, err := svc.TogglePaperStock(logger.WithProductID(r.Context(), productID.String()), productID, paperStockID, payload.AdditionalCost)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cfg)
	}
}

// AdminSetDefaultPaperStock marks an attached paper stock as the default.
func AdminSetDefaultPaperStock(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
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
		paperStockID, err := parseUUIDParam(r, "paperStockId", "invalid paper stock id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cfg, err := svc.SetDefaultPaperStock(logger.WithProductID(r.Context(), productID.String()), productID, paperStockID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cfg)
	}
}

// AdminValidateProductConfig runs the publish checks without changing state.
func AdminValidateProductConfig(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		result, err := svc.Validate(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AdminPublishProductConfig publishes a configuration that passes validation.
func AdminPublishProductConfig(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		cfg, err := svc.Publish(logger.WithProductID(r.Context(), productID.String()), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cfg)
	}
}

const (
	maxNameLength = 255
	maxSizeLength = 64
)

type tierRequest struct {
	MinQuantity        int             `json:"min_quantity" validate:"required,min=1"`
	PricePerUnit       decimal.Decimal `json:"price_per_unit" validate:"gte=0"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage" validate:"gte=0,lte=100"`
}

func (t tierRequest) toTier() productconfig.PricingTier {
	return productconfig.PricingTier{
		MinQuantity:        t.MinQuantity,
		PricePerUnit:       t.PricePerUnit,
		DiscountPercentage: t.DiscountPercentage,
	}
}

func toTiers(reqs []tierRequest) []productconfig.PricingTier {
	out := make([]productconfig.PricingTier, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, req.toTier())
	}
	return out
}

type replaceTiersRequest struct {
	Tiers []tierRequest `json:"tiers" validate:"dive"`
}

type togglePaperStockRequest struct {
	AdditionalCost decimal.Decimal `json:"additional_cost" validate:"gte=0"`
}

type rushRequest struct {
	Available bool            `json:"available"`
	Days      int             `json:"days" validate:"min=0"`
	Fee       decimal.Decimal `json:"fee" validate:"gte=0"`
}

type gangRunRequest struct {
	Eligible        bool `json:"eligible"`
	MinGangQuantity int  `json:"min_gang_quantity" validate:"min=0"`
	MaxGangQuantity int  `json:"max_gang_quantity" validate:"min=0"`
}

type createConfigRequest struct {
	Name              string          `json:"name" validate:"required,max=255"`
	BasePrice         decimal.Decimal `json:"base_price" validate:"gte=0"`
	SetupFee          decimal.Decimal `json:"setup_fee" validate:"gte=0"`
	Tiers             []tierRequest   `json:"tiers" validate:"dive"`
	QuantityGroupID   *string         `json:"quantity_group_id,omitempty"`
	Quantities        []int           `json:"quantities,omitempty" validate:"dive,min=1"`
	SizeGroupID       *string         `json:"size_group_id,omitempty"`
	Sizes             []string        `json:"sizes,omitempty" validate:"dive,required"`
	ProductionDays    int             `json:"production_days" validate:"min=0"`
	Rush              rushRequest     `json:"rush"`
	GangRun           gangRunRequest  `json:"gang_run"`
	DefaultAddOnSetID *string         `json:"default_addon_set_id,omitempty"`
	ExtraAddOnSetIDs  []string        `json:"extra_addon_set_ids,omitempty"`
}

func (r createConfigRequest) toInput() (productsvc.CreateConfigInput, error) {
	quantityGroup, err := parseOptionalUUID(r.QuantityGroupID, "quantity_group_id")
	if err != nil {
		return productsvc.CreateConfigInput{}, err
	}
	sizeGroup, err := parseOptionalUUID(r.SizeGroupID, "size_group_id")
	if err != nil {
		return productsvc.CreateConfigInput{}, err
	}
	defaultSet, err := parseOptionalUUID(r.DefaultAddOnSetID, "default_addon_set_id")
	if err != nil {
		return productsvc.CreateConfigInput{}, err
	}

	extras := make([]uuid.UUID, 0, len(r.ExtraAddOnSetIDs))
	for _, raw := range r.ExtraAddOnSetIDs {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return productsvc.CreateConfigInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid extra_addon_set_ids").WithDetails(map[string]any{"field": "extra_addon_set_ids", "value": raw})
		}
		extras = append(extras, id)
	}

	return productsvc.CreateConfigInput{
		Name:              validators.SanitizeString(r.Name, maxNameLength),
		BasePrice:         r.BasePrice,
		SetupFee:          r.SetupFee,
		Tiers:             toTiers(r.Tiers),
		QuantityGroupID:   quantityGroup,
		Quantities:        r.Quantities,
		SizeGroupID:       sizeGroup,
		Sizes:             validators.SanitizeStrings(r.Sizes, maxSizeLength),
		ProductionDays:    r.ProductionDays,
		Rush:              productconfig.RushConfig{Available: r.Rush.Available, Days: r.Rush.Days, Fee: r.Rush.Fee},
		GangRun:           productconfig.GangRunConfig{Eligible: r.GangRun.Eligible, MinGangQuantity: r.GangRun.MinGangQuantity, MaxGangQuantity: r.GangRun.MaxGangQuantity},
		DefaultAddOnSetID: defaultSet,
		ExtraAddOnSetIDs:  extras,
	}, nil
}

func parseOptionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field).WithDetails(map[string]any{"field": field})
	}
	return &id, nil
}
