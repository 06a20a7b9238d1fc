package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/angelmondragon/printshop-backend/pkg/enums"
)

// AddOn is a globally owned add-on definition. Configuration holds the
// pricing-model specific payload as JSON.
type AddOn struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Name          string             `gorm:"column:name;not null"`
	Kind          enums.AddOnKind    `gorm:"column:kind;type:addon_kind;not null;default:'STANDARD'"`
	PricingModel  enums.PricingModel `gorm:"column:pricing_model;type:pricing_model;not null"`
	Configuration datatypes.JSON     `gorm:"column:configuration;type:jsonb;not null"`
	Mandatory     bool               `gorm:"column:mandatory;not null;default:false"`
	IsActive      bool               `gorm:"column:is_active;not null;default:true"`
	SortOrder     int                `gorm:"column:sort_order;not null;default:0"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (AddOn) TableName() string { return "addons" }

// AddOnSet is a named, versioned bundle of add-ons.
type AddOnSet struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Name      string         `gorm:"column:name;not null"`
	Version   int            `gorm:"column:version;not null;default:1"`
	Items     []AddOnSetItem `gorm:"foreignKey:AddOnSetID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (AddOnSet) TableName() string { return "addon_sets" }

// AddOnSetItem places an add-on inside a set.
type AddOnSetItem struct {
	AddOnSetID      uuid.UUID             `gorm:"column:addon_set_id;type:uuid;primaryKey"`
	AddOnID         uuid.UUID             `gorm:"column:addon_id;type:uuid;primaryKey"`
	DisplayPosition enums.DisplayPosition `gorm:"column:display_position;type:display_position;not null"`
	IsDefault       bool                  `gorm:"column:is_default;not null;default:false"`
	SortOrder       int                   `gorm:"column:sort_order;not null"`
}

func (AddOnSetItem) TableName() string { return "addon_set_items" }
