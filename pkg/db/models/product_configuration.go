package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/printshop-backend/pkg/enums"
)

// ProductConfiguration is the versioned pricing configuration of one product.
type ProductConfiguration struct {
	ID                uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	Name              string               `gorm:"column:name;not null"`
	Status            enums.ConfigStatus   `gorm:"column:status;type:config_status;not null;default:'DRAFT'"`
	Version           int                  `gorm:"column:version;not null;default:1"`
	BasePrice         decimal.Decimal      `gorm:"column:base_price;type:numeric(12,4);not null"`
	SetupFee          decimal.Decimal      `gorm:"column:setup_fee;type:numeric(12,4);not null;default:0"`
	QuantityGroupID   *uuid.UUID           `gorm:"column:quantity_group_id;type:uuid"`
	Quantities        pq.Int64Array        `gorm:"column:quantities;type:integer[];not null;default:'{}'"`
	SizeGroupID       *uuid.UUID           `gorm:"column:size_group_id;type:uuid"`
	Sizes             pq.StringArray       `gorm:"column:sizes;type:text[];not null;default:'{}'"`
	ProductionDays    int                  `gorm:"column:production_days;not null;default:0"`
	RushAvailable     bool                 `gorm:"column:rush_available;not null;default:false"`
	RushDays          int                  `gorm:"column:rush_days;not null;default:0"`
	RushFee           decimal.Decimal      `gorm:"column:rush_fee;type:numeric(12,4);not null;default:0"`
	GangRunEligible   bool                 `gorm:"column:gang_run_eligible;not null;default:false"`
	MinGangQuantity   int                  `gorm:"column:min_gang_quantity;not null;default:0"`
	MaxGangQuantity   int                  `gorm:"column:max_gang_quantity;not null;default:0"`
	DefaultAddOnSetID *uuid.UUID           `gorm:"column:default_addon_set_id;type:uuid"`
	PublishedAt       *time.Time           `gorm:"column:published_at"`
	Tiers             []ProductPricingTier `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	PaperStocks       []ProductPaperStock  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	ExtraAddOnSets    []ProductAddOnSet    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// ProductPricingTier stores one quantity band. Position mirrors the
// normalized order.
type ProductPricingTier struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ProductID          uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Position           int             `gorm:"column:position;not null"`
	MinQuantity        int             `gorm:"column:min_quantity;not null"`
	MaxQuantity        *int            `gorm:"column:max_quantity"`
	PricePerUnit       decimal.Decimal `gorm:"column:price_per_unit;type:numeric(12,4);not null"`
	DiscountPercentage decimal.Decimal `gorm:"column:discount_percentage;type:numeric(5,2);not null;default:0"`
}

// ProductAddOnSet references an extra add-on set attached to a product.
type ProductAddOnSet struct {
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	AddOnSetID uuid.UUID `gorm:"column:addon_set_id;type:uuid;primaryKey"`
	Position   int       `gorm:"column:position;not null"`
}

func (ProductAddOnSet) TableName() string { return "product_addon_sets" }
