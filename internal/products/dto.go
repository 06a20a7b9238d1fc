package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/printshop-backend/internal/addons"
	"github.com/angelmondragon/printshop-backend/internal/productconfig"
	"github.com/angelmondragon/printshop-backend/pkg/enums"
)

// ConfigDTO is the admin view of a product configuration.
type ConfigDTO struct {
	ProductID       uuid.UUID                         `json:"product_id"`
	Name            string                            `json:"name"`
	Status          enums.ConfigStatus                `json:"status"`
	Version         int                               `json:"version"`
	BasePrice       decimal.Decimal                   `json:"base_price"`
	SetupFee        decimal.Decimal                   `json:"setup_fee"`
	Tiers           []productconfig.PricingTier       `json:"tiers"`
	PaperStocks     []productconfig.ProductPaperStock `json:"paper_stocks"`
	AddOnSets       []AddOnSetDTO                     `json:"addon_sets"`
	QuantityGroupID *uuid.UUID                        `json:"quantity_group_id,omitempty"`
	Quantities      []int                             `json:"quantities"`
	SizeGroupID     *uuid.UUID                        `json:"size_group_id,omitempty"`
	Sizes           []string                          `json:"sizes"`
	ProductionDays  int                               `json:"production_days"`
	Rush            productconfig.RushConfig          `json:"rush"`
	GangRun         productconfig.GangRunConfig       `json:"gang_run"`
	PublishedAt     *time.Time                        `json:"published_at,omitempty"`
}

// AddOnSetDTO exposes a set with its items grouped by display position.
type AddOnSetDTO struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Version   int              `json:"version"`
	IsDefault bool             `json:"is_default"`
	Placement addons.Placement `json:"placement"`
}

// GangRunDTO answers whether a quantity may be gang-run.
type GangRunDTO struct {
	ProductID      uuid.UUID            `json:"product_id"`
	Quantity       int                  `json:"quantity"`
	Allowed        bool                 `json:"allowed"`
	ProductionPath enums.ProductionPath `json:"production_path"`
}

// NewConfigDTO maps a configuration snapshot to its admin payload.
func NewConfigDTO(cfg productconfig.ProductConfig) *ConfigDTO {
	dto := &ConfigDTO{
		ProductID:       cfg.ProductID,
		Name:            cfg.Name,
		Status:          cfg.Status,
		Version:         cfg.Version,
		BasePrice:       cfg.BasePrice,
		SetupFee:        cfg.SetupFee,
		Tiers:           cfg.Tiers,
		PaperStocks:     cfg.PaperStocks,
		AddOnSets:       []AddOnSetDTO{},
		QuantityGroupID: cfg.QuantityGroupID,
		Quantities:      cfg.Quantities,
		SizeGroupID:     cfg.SizeGroupID,
		Sizes:           cfg.Sizes,
		ProductionDays:  cfg.ProductionDays,
		Rush:            cfg.Rush,
		GangRun:         cfg.GangRun,
		PublishedAt:     cfg.PublishedAt,
	}
	if dto.Tiers == nil {
		dto.Tiers = []productconfig.PricingTier{}
	}
	if dto.PaperStocks == nil {
		dto.PaperStocks = []productconfig.ProductPaperStock{}
	}
	if dto.Quantities == nil {
		dto.Quantities = []int{}
	}
	if dto.Sizes == nil {
		dto.Sizes = []string{}
	}
	if cfg.DefaultAddOnSet != nil {
		set := NewAddOnSetDTO(*cfg.DefaultAddOnSet)
		set.IsDefault = true
		dto.AddOnSets = append(dto.AddOnSets, set)
	}
	for _, set := range cfg.ExtraAddOnSets {
		dto.AddOnSets = append(dto.AddOnSets, NewAddOnSetDTO(set))
	}
	return dto
}

// NewAddOnSetDTO maps a set to its grouped payload.
func NewAddOnSetDTO(set productconfig.AddOnSet) AddOnSetDTO {
	return AddOnSetDTO{
		ID:        set.ID,
		Name:      set.Name,
		Version:   set.Version,
		Placement: addons.Place(set),
	}
}
