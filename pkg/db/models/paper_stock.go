package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaperStock is a catalog stock shared by products.
type PaperStock struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name       string          `gorm:"column:name;not null"`
	Multiplier decimal.Decimal `gorm:"column:multiplier;type:numeric(8,4);not null;default:1"`
	IsActive   bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// ProductPaperStock attaches a catalog stock to a product.
type ProductPaperStock struct {
	ProductID      uuid.UUID       `gorm:"column:product_id;type:uuid;primaryKey"`
	PaperStockID   uuid.UUID       `gorm:"column:paper_stock_id;type:uuid;primaryKey"`
	Position       int             `gorm:"column:position;not null"`
	IsDefault      bool            `gorm:"column:is_default;not null;default:false"`
	AdditionalCost decimal.Decimal `gorm:"column:additional_cost;type:numeric(12,4);not null;default:0"`
	PaperStock     *PaperStock     `gorm:"foreignKey:PaperStockID;references:ID"`
}
