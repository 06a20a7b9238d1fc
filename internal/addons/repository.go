package addons

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/angelmondragon/printshop-backend/internal/productconfig"
	"github.com/angelmondragon/printshop-backend/internal/repo"
	"github.com/angelmondragon/printshop-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/printshop-backend/pkg/errors"
)

// Catalog lists the globally owned add-on definitions.
type Catalog interface {
	ListAddOns(ctx context.Context, activeOnly bool) ([]productconfig.AddOnDefinition, error)
}

// Repository persists add-on definitions and add-on sets.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Bind(tx)}
}

// ListAddOns returns definitions ordered by sort order then name.
func (r *Repository) ListAddOns(ctx context.Context, activeOnly bool) ([]productconfig.AddOnDefinition, error) {
	query := r.DB(ctx).Model(&models.AddOn{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var rows []models.AddOn
	if err := query.Order("sort_order ASC").Order("name ASC").Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addons")
	}

	defs := make([]productconfig.AddOnDefinition, 0, len(rows))
	for _, row := range rows {
		def, err := toDefinition(row)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// GetAddOn loads a single definition.
func (r *Repository) GetAddOn(ctx context.Context, id uuid.UUID) (productconfig.AddOnDefinition, error) {
	var row models.AddOn
	if err := r.DB(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return productconfig.AddOnDefinition{}, pkgerrors.New(pkgerrors.CodeNotFound, "addon not found")
		}
		return productconfig.AddOnDefinition{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load addon")
	}
	return toDefinition(row)
}

// GetAddOns loads the definitions for ids keyed by id. Missing ids are
// absent from the map.
func (r *Repository) GetAddOns(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]productconfig.AddOnDefinition, error) {
	out := make(map[uuid.UUID]productconfig.AddOnDefinition, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []models.AddOn
	if err := r.DB(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load addons")
	}
	for _, row := range rows {
		def, err := toDefinition(row)
		if err != nil {
			return nil, err
		}
		out[def.ID] = def
	}
	return out, nil
}

// CreateAddOn validates and inserts a definition.
func (r *Repository) CreateAddOn(ctx context.Context, def productconfig.AddOnDefinition) (productconfig.AddOnDefinition, error) {
	if def.ID == uuid.Nil {
		def.ID = uuid.New()
	}
	row, err := fromDefinition(def)
	if err != nil {
		return productconfig.AddOnDefinition{}, err
	}
	// select all columns so an inactive add-on is not replaced by the column default
	if err := r.DB(ctx).Select("*").Create(&row).Error; err != nil {
		return productconfig.AddOnDefinition{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert addon")
	}
	return def, nil
}

// LoadAddOnSet loads a set with its items in display order.
func (r *Repository) LoadAddOnSet(ctx context.Context, id uuid.UUID) (productconfig.AddOnSet, error) {
	sets, err := r.LoadAddOnSets(ctx, []uuid.UUID{id})
	if err != nil {
		return productconfig.AddOnSet{}, err
	}
	set, ok := sets[id]
	if !ok {
		return productconfig.AddOnSet{}, pkgerrors.New(pkgerrors.CodeNotFound, "addon set not found")
	}
	return set, nil
}

// LoadAddOnSets loads several sets keyed by id.
func (r *Repository) LoadAddOnSets(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]productconfig.AddOnSet, error) {
	out := make(map[uuid.UUID]productconfig.AddOnSet, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []models.AddOnSet
	if err := r.DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_position ASC").Order("sort_order ASC")
		}).
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load addon sets")
	}

	for _, row := range rows {
		out[row.ID] = toSet(row)
	}
	return out, nil
}

// CreateAddOnSet inserts a new set at version 1.
func (r *Repository) CreateAddOnSet(ctx context.Context, set productconfig.AddOnSet) (productconfig.AddOnSet, error) {
	if set.ID == uuid.Nil {
		set.ID = uuid.New()
	}
	set.Version = 1
	if err := CheckOrdering(set); err != nil {
		return productconfig.AddOnSet{}, err
	}

	row := models.AddOnSet{ID: set.ID, Name: set.Name, Version: set.Version}
	if err := r.DB(ctx).Omit("Items").Create(&row).Error; err != nil {
		return productconfig.AddOnSet{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert addon set")
	}
	if err := r.replaceItems(ctx, set); err != nil {
		return productconfig.AddOnSet{}, err
	}
	return set, nil
}

// SaveAddOnSet writes set when the stored version still equals
// expectedVersion, bumping it by one.
func (r *Repository) SaveAddOnSet(ctx context.Context, set productconfig.AddOnSet, expectedVersion int) (productconfig.AddOnSet, error) {
	if err := CheckOrdering(set); err != nil {
		return productconfig.AddOnSet{}, err
	}

	applied, err := r.UpdateVersioned(ctx, &models.AddOnSet{}, set.ID, expectedVersion, map[string]any{
		"name": set.Name,
	})
	if err != nil {
		return productconfig.AddOnSet{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update addon set")
	}
	if !applied {
		return productconfig.AddOnSet{}, productconfig.VersionConflict(expectedVersion)
	}

	if err := r.replaceItems(ctx, set); err != nil {
		return productconfig.AddOnSet{}, err
	}
	set.Version = expectedVersion + 1
	return set, nil
}

// LockAddOnSet holds the set's row for the rest of the surrounding
// transaction, failing with a version conflict when the set is no longer at
// version.
func (r *Repository) LockAddOnSet(ctx context.Context, id uuid.UUID, version int) error {
	locked, err := r.LockVersioned(ctx, &models.AddOnSet{}, id, version)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock addon set")
	}
	if !locked {
		return productconfig.VersionConflict(version)
	}
	return nil
}

func (r *Repository) replaceItems(ctx context.Context, set productconfig.AddOnSet) error {
	db := r.DB(ctx)
	if err := db.Where("addon_set_id = ?", set.ID).Delete(&models.AddOnSetItem{}).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear addon set items")
	}
	if len(set.Items) == 0 {
		return nil
	}

	rows := make([]models.AddOnSetItem, 0, len(set.Items))
	for _, item := range set.Items {
		rows = append(rows, models.AddOnSetItem{
			AddOnSetID:      set.ID,
			AddOnID:         item.AddOnID,
			DisplayPosition: item.DisplayPosition,
			IsDefault:       item.IsDefault,
			SortOrder:       item.SortOrder,
		})
	}
	if err := db.Create(&rows).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert addon set items")
	}
	return nil
}

func toDefinition(row models.AddOn) (productconfig.AddOnDefinition, error) {
	var cfg productconfig.Configuration
	if len(row.Configuration) > 0 {
		if err := json.Unmarshal(row.Configuration, &cfg); err != nil {
			return productconfig.AddOnDefinition{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode addon configuration").
				WithDetails(map[string]any{"addon_id": row.ID})
		}
	}
	return productconfig.AddOnDefinition{
		ID:            row.ID,
		Name:          row.Name,
		Kind:          row.Kind,
		PricingModel:  row.PricingModel,
		Configuration: cfg,
		Mandatory:     row.Mandatory,
		Active:        row.IsActive,
		SortOrder:     row.SortOrder,
	}, nil
}

func fromDefinition(def productconfig.AddOnDefinition) (models.AddOn, error) {
	if !def.Kind.IsValid() {
		return models.AddOn{}, productconfig.InvalidAddOn("kind", def.Kind, "unknown add-on kind")
	}
	if err := def.Configuration.Validate(def.PricingModel); err != nil {
		return models.AddOn{}, err
	}
	payload, err := json.Marshal(def.Configuration)
	if err != nil {
		return models.AddOn{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode addon configuration")
	}
	return models.AddOn{
		ID:            def.ID,
		Name:          def.Name,
		Kind:          def.Kind,
		PricingModel:  def.PricingModel,
		Configuration: datatypes.JSON(payload),
		Mandatory:     def.Mandatory,
		IsActive:      def.Active,
		SortOrder:     def.SortOrder,
	}, nil
}

func toSet(row models.AddOnSet) productconfig.AddOnSet {
	set := productconfig.AddOnSet{
		ID:      row.ID,
		Name:    row.Name,
		Version: row.Version,
		Items:   make([]productconfig.AddOnSetItem, 0, len(row.Items)),
	}
	for _, item := range row.Items {
		set.Items = append(set.Items, productconfig.AddOnSetItem{
			AddOnID:         item.AddOnID,
			DisplayPosition: item.DisplayPosition,
			IsDefault:       item.IsDefault,
			SortOrder:       item.SortOrder,
		})
	}
	set.Items = Ordered(set.Items)
	return set
}
