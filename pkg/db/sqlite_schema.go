package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// sqliteSchema mirrors the goose migrations for local sqlite runs, which
// cannot execute the Postgres DDL.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS addons (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  kind TEXT NOT NULL DEFAULT 'STANDARD',
  pricing_model TEXT NOT NULL,
  configuration TEXT NOT NULL DEFAULT '{}',
  mandatory INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  sort_order INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS addon_sets (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  version INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS addon_set_items (
  addon_set_id TEXT NOT NULL,
  addon_id TEXT NOT NULL,
  display_position TEXT NOT NULL,
  is_default INTEGER NOT NULL DEFAULT 0,
  sort_order INTEGER NOT NULL,
  PRIMARY KEY (addon_set_id, addon_id)
);`,
	`CREATE TABLE IF NOT EXISTS paper_stocks (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  multiplier TEXT NOT NULL DEFAULT '1',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS product_configurations (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'DRAFT',
  version INTEGER NOT NULL DEFAULT 1,
  base_price TEXT NOT NULL,
  setup_fee TEXT NOT NULL DEFAULT '0',
  quantity_group_id TEXT,
  quantities TEXT NOT NULL DEFAULT '{}',
  size_group_id TEXT,
  sizes TEXT NOT NULL DEFAULT '{}',
  production_days INTEGER NOT NULL DEFAULT 0,
  rush_available INTEGER NOT NULL DEFAULT 0,
  rush_days INTEGER NOT NULL DEFAULT 0,
  rush_fee TEXT NOT NULL DEFAULT '0',
  gang_run_eligible INTEGER NOT NULL DEFAULT 0,
  min_gang_quantity INTEGER NOT NULL DEFAULT 0,
  max_gang_quantity INTEGER NOT NULL DEFAULT 0,
  default_addon_set_id TEXT,
  published_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS product_pricing_tiers (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  position INTEGER NOT NULL,
  min_quantity INTEGER NOT NULL,
  max_quantity INTEGER,
  price_per_unit TEXT NOT NULL,
  discount_percentage TEXT NOT NULL DEFAULT '0'
);`,
	`CREATE TABLE IF NOT EXISTS product_paper_stocks (
  product_id TEXT NOT NULL,
  paper_stock_id TEXT NOT NULL,
  position INTEGER NOT NULL,
  is_default INTEGER NOT NULL DEFAULT 0,
  additional_cost TEXT NOT NULL DEFAULT '0',
  PRIMARY KEY (product_id, paper_stock_id)
);`,
	`CREATE TABLE IF NOT EXISTS product_addon_sets (
  product_id TEXT NOT NULL,
  addon_set_id TEXT NOT NULL,
  position INTEGER NOT NULL,
  PRIMARY KEY (product_id, addon_set_id)
);`,
}

// ApplySQLiteSchema creates the pricing tables on a sqlite connection.
func ApplySQLiteSchema(ctx context.Context, conn *gorm.DB) error {
	for _, stmt := range sqliteSchema {
		if err := conn.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply sqlite schema: %w", err)
		}
	}
	return nil
}
