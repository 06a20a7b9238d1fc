package product

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/angelmondragon/printshop-backend/internal/addons"
	"github.com/angelmondragon/printshop-backend/internal/productconfig"
	"github.com/angelmondragon/printshop-backend/internal/repo"
	dbpkg "github.com/angelmondragon/printshop-backend/pkg/db"
	"github.com/angelmondragon/printshop-backend/pkg/db/models"
	"github.com/angelmondragon/printshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/printshop-backend/pkg/errors"
)

const (
	tierMinIndex            = "idx_product_pricing_tiers_product_min"
	singleDefaultPaperIndex = "idx_product_paper_stocks_single_default"
)

// ConfigStore loads and saves product configurations with an optimistic
// version check.
type ConfigStore interface {
	LoadProductConfig(ctx context.Context, productID uuid.UUID) (productconfig.ProductConfig, error)
	SaveProductConfig(ctx context.Context, cfg productconfig.ProductConfig, expectedVersion int) (productconfig.ProductConfig, error)
}

// Repository persists product configurations and resolves the add-on sets
// and definitions they reference.
type Repository struct {
	repo.Base
	addOns *addons.Repository
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db), addOns: addons.NewRepository(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Bind(tx), addOns: r.addOns.WithTx(tx)}
}

// AddOns exposes the add-on repository sharing this repository's connection.
func (r *Repository) AddOns() *addons.Repository {
	return r.addOns
}

// LoadProductConfig assembles the full configuration snapshot of a product.
func (r *Repository) LoadProductConfig(ctx context.Context, productID uuid.UUID) (productconfig.ProductConfig, error) {
	var row models.ProductConfiguration
	err := r.DB(ctx).
		Preload("Tiers", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("PaperStocks", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("PaperStocks.PaperStock").
		Preload("ExtraAddOnSets", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&row, "id = ?", productID).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return productconfig.ProductConfig{}, pkgerrors.New(pkgerrors.CodeNotFound, "product configuration not found")
		}
		return productconfig.ProductConfig{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product configuration")
	}

	cfg := toConfig(row)

	setIDs := make([]uuid.UUID, 0, len(row.ExtraAddOnSets)+1)
	if row.DefaultAddOnSetID != nil {
		setIDs = append(setIDs, *row.DefaultAddOnSetID)
	}
	for _, ref := range row.ExtraAddOnSets {
		setIDs = append(setIDs, ref.AddOnSetID)
	}
	sets, err := r.addOns.LoadAddOnSets(ctx, setIDs)
	if err != nil {
		return productconfig.ProductConfig{}, err
	}
	if row.DefaultAddOnSetID != nil {
		if set, ok := sets[*row.DefaultAddOnSetID]; ok {
			cfg.DefaultAddOnSet = &set
		}
	}
	for _, ref := range row.ExtraAddOnSets {
		if set, ok := sets[ref.AddOnSetID]; ok {
			cfg.ExtraAddOnSets = append(cfg.ExtraAddOnSets, set)
		}
	}

	defs, err := r.addOns.GetAddOns(ctx, referencedAddOns(cfg))
	if err != nil {
		return productconfig.ProductConfig{}, err
	}
	cfg.AddOns = defs
	return cfg, nil
}

// CreateProductConfig inserts a new draft configuration at version 1.
func (r *Repository) CreateProductConfig(ctx context.Context, cfg productconfig.ProductConfig) (productconfig.ProductConfig, error) {
	if cfg.ProductID == uuid.Nil {
		cfg.ProductID = uuid.New()
	}
	if cfg.Status == "" {
		cfg.Status = enums.ConfigStatusDraft
	}
	cfg.Version = 1

	row := fromConfig(cfg)
	if err := r.DB(ctx).Omit("Tiers", "PaperStocks", "ExtraAddOnSets").Create(&row).Error; err != nil {
		return productconfig.ProductConfig{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert product configuration")
	}
	if err := r.replaceChildren(ctx, cfg); err != nil {
		return productconfig.ProductConfig{}, err
	}
	return cfg, nil
}

// SaveProductConfig writes cfg when the stored version still equals
// expectedVersion. Callers run it inside a transaction so the child rows and
// the version bump land together.
func (r *Repository) SaveProductConfig(ctx context.Context, cfg productconfig.ProductConfig, expectedVersion int) (productconfig.ProductConfig, error) {
	row := fromConfig(cfg)
	applied, err := r.UpdateVersioned(ctx, &models.ProductConfiguration{}, cfg.ProductID, expectedVersion, map[string]any{
		"name":                 row.Name,
		"status":               row.Status,
		"base_price":           row.BasePrice,
		"setup_fee":            row.SetupFee,
		"quantity_group_id":    row.QuantityGroupID,
		"quantities":           row.Quantities,
		"size_group_id":        row.SizeGroupID,
		"sizes":                row.Sizes,
		"production_days":      row.ProductionDays,
		"rush_available":       row.RushAvailable,
		"rush_days":            row.RushDays,
		"rush_fee":             row.RushFee,
		"gang_run_eligible":    row.GangRunEligible,
		"min_gang_quantity":    row.MinGangQuantity,
		"max_gang_quantity":    row.MaxGangQuantity,
		"default_addon_set_id": row.DefaultAddOnSetID,
		"published_at":         row.PublishedAt,
		"updated_at":           time.Now().UTC(),
	})
	if err != nil {
		return productconfig.ProductConfig{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product configuration")
	}
	if !applied {
		return productconfig.ProductConfig{}, productconfig.VersionConflict(expectedVersion)
	}

	if err := r.replaceChildren(ctx, cfg); err != nil {
		return productconfig.ProductConfig{}, err
	}
	cfg.Version = expectedVersion + 1
	return cfg, nil
}

// CreatePaperStock inserts a catalog paper stock.
func (r *Repository) CreatePaperStock(ctx context.Context, stock models.PaperStock) (models.PaperStock, error) {
	if stock.ID == uuid.Nil {
		stock.ID = uuid.New()
	}
	if err := r.DB(ctx).Select("*").Create(&stock).Error; err != nil {
		return models.PaperStock{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert paper stock")
	}
	return stock, nil
}

// GetPaperStock loads a catalog paper stock.
func (r *Repository) GetPaperStock(ctx context.Context, id uuid.UUID) (models.PaperStock, error) {
	var row models.PaperStock
	if err := r.DB(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.PaperStock{}, pkgerrors.New(pkgerrors.CodeNotFound, "paper stock not found")
		}
		return models.PaperStock{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load paper stock")
	}
	return row, nil
}

// ProductIDsForAddOnSet lists the products referencing a set either as their
// default or as an extra set.
func (r *Repository) ProductIDsForAddOnSet(ctx context.Context, setID uuid.UUID) ([]uuid.UUID, error) {
	var byDefault []uuid.UUID
	if err := r.DB(ctx).
		Model(&models.ProductConfiguration{}).
		Where("default_addon_set_id = ?", setID).
		Pluck("id", &byDefault).
		Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products by default addon set")
	}

	var byExtra []uuid.UUID
	if err := r.DB(ctx).
		Model(&models.ProductAddOnSet{}).
		Where("addon_set_id = ?", setID).
		Pluck("product_id", &byExtra).
		Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products by extra addon set")
	}

	seen := make(map[uuid.UUID]struct{}, len(byDefault)+len(byExtra))
	out := make([]uuid.UUID, 0, len(byDefault)+len(byExtra))
	for _, id := range append(byDefault, byExtra...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

func (r *Repository) replaceChildren(ctx context.Context, cfg productconfig.ProductConfig) error {
	db := r.DB(ctx)

	if err := db.Where("product_id = ?", cfg.ProductID).Delete(&models.ProductPricingTier{}).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear pricing tiers")
	}
	if len(cfg.Tiers) > 0 {
		rows := make([]models.ProductPricingTier, 0, len(cfg.Tiers))
		for i, tier := range cfg.Tiers {
			rows = append(rows, models.ProductPricingTier{
				ID:                 uuid.New(),
				ProductID:          cfg.ProductID,
				Position:           i,
				MinQuantity:        tier.MinQuantity,
				MaxQuantity:        tier.MaxQuantity,
				PricePerUnit:       tier.PricePerUnit,
				DiscountPercentage: tier.DiscountPercentage,
			})
		}
		if err := db.Create(&rows).Error; err != nil {
			if dbpkg.IsUniqueViolation(err, tierMinIndex) {
				return productconfig.InvalidTier("tiers", nil, "tier minimum quantities must be unique")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert pricing tiers")
		}
	}

	if err := db.Where("product_id = ?", cfg.ProductID).Delete(&models.ProductPaperStock{}).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear product paper stocks")
	}
	if len(cfg.PaperStocks) > 0 {
		rows := make([]models.ProductPaperStock, 0, len(cfg.PaperStocks))
		for i, stock := range cfg.PaperStocks {
			rows = append(rows, models.ProductPaperStock{
				ProductID:      cfg.ProductID,
				PaperStockID:   stock.PaperStockID,
				Position:       i,
				IsDefault:      stock.IsDefault,
				AdditionalCost: stock.AdditionalCost,
			})
		}
		if err := db.Omit("PaperStock").Create(&rows).Error; err != nil {
			if dbpkg.IsUniqueViolation(err, singleDefaultPaperIndex) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "only one default paper stock is allowed")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert product paper stocks")
		}
	}

	if err := db.Where("product_id = ?", cfg.ProductID).Delete(&models.ProductAddOnSet{}).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear product addon sets")
	}
	if len(cfg.ExtraAddOnSets) > 0 {
		rows := make([]models.ProductAddOnSet, 0, len(cfg.ExtraAddOnSets))
		for i, set := range cfg.ExtraAddOnSets {
			rows = append(rows, models.ProductAddOnSet{ProductID: cfg.ProductID, AddOnSetID: set.ID, Position: i})
		}
		if err := db.Create(&rows).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert product addon sets")
		}
	}
	return nil
}

func referencedAddOns(cfg productconfig.ProductConfig) []uuid.UUID {
	seen := map[uuid.UUID]struct{}{}
	var ids []uuid.UUID
	for _, set := range cfg.AddOnSets() {
		for _, item := range set.Items {
			if _, ok := seen[item.AddOnID]; ok {
				continue
			}
			seen[item.AddOnID] = struct{}{}
			ids = append(ids, item.AddOnID)
		}
	}
	return ids
}

func toConfig(row models.ProductConfiguration) productconfig.ProductConfig {
	cfg := productconfig.ProductConfig{
		ProductID:       row.ID,
		Name:            row.Name,
		Status:          row.Status,
		Version:         row.Version,
		BasePrice:       row.BasePrice,
		SetupFee:        row.SetupFee,
		Tiers:           make([]productconfig.PricingTier, 0, len(row.Tiers)),
		PaperStocks:     make([]productconfig.ProductPaperStock, 0, len(row.PaperStocks)),
		QuantityGroupID: row.QuantityGroupID,
		SizeGroupID:     row.SizeGroupID,
		Sizes:           []string(row.Sizes),
		ProductionDays:  row.ProductionDays,
		Rush: productconfig.RushConfig{
			Available: row.RushAvailable,
			Days:      row.RushDays,
			Fee:       row.RushFee,
		},
		GangRun: productconfig.GangRunConfig{
			Eligible:        row.GangRunEligible,
			MinGangQuantity: row.MinGangQuantity,
			MaxGangQuantity: row.MaxGangQuantity,
		},
		PublishedAt: row.PublishedAt,
	}
	for _, q := range row.Quantities {
		cfg.Quantities = append(cfg.Quantities, int(q))
	}
	for _, tier := range row.Tiers {
		cfg.Tiers = append(cfg.Tiers, productconfig.PricingTier{
			MinQuantity:        tier.MinQuantity,
			MaxQuantity:        tier.MaxQuantity,
			PricePerUnit:       tier.PricePerUnit,
			DiscountPercentage: tier.DiscountPercentage,
		})
	}
	for _, stock := range row.PaperStocks {
		item := productconfig.ProductPaperStock{
			PaperStockID:   stock.PaperStockID,
			IsDefault:      stock.IsDefault,
			AdditionalCost: stock.AdditionalCost,
		}
		if stock.PaperStock != nil {
			item.Name = stock.PaperStock.Name
			item.Multiplier = stock.PaperStock.Multiplier
		}
		cfg.PaperStocks = append(cfg.PaperStocks, item)
	}
	return cfg
}

func fromConfig(cfg productconfig.ProductConfig) models.ProductConfiguration {
	quantities := make(pq.Int64Array, 0, len(cfg.Quantities))
	for _, q := range cfg.Quantities {
		quantities = append(quantities, int64(q))
	}
	sizes := make(pq.StringArray, 0, len(cfg.Sizes))
	sizes = append(sizes, cfg.Sizes...)

	row := models.ProductConfiguration{
		ID:              cfg.ProductID,
		Name:            cfg.Name,
		Status:          cfg.Status,
		Version:         cfg.Version,
		BasePrice:       cfg.BasePrice,
		SetupFee:        cfg.SetupFee,
		QuantityGroupID: cfg.QuantityGroupID,
		Quantities:      quantities,
		SizeGroupID:     cfg.SizeGroupID,
		Sizes:           sizes,
		ProductionDays:  cfg.ProductionDays,
		RushAvailable:   cfg.Rush.Available,
		RushDays:        cfg.Rush.Days,
		RushFee:         cfg.Rush.Fee,
		GangRunEligible: cfg.GangRun.Eligible,
		MinGangQuantity: cfg.GangRun.MinGangQuantity,
		MaxGangQuantity: cfg.GangRun.MaxGangQuantity,
		PublishedAt:     cfg.PublishedAt,
	}
	if cfg.DefaultAddOnSet != nil {
		id := cfg.DefaultAddOnSet.ID
		row.DefaultAddOnSetID = &id
	}
	return row
}
