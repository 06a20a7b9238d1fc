package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAddOnCatalogMigrationContainsSchemas(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_addon_catalog.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no addon catalog migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TYPE pricing_model AS ENUM",
		"CREATE TYPE addon_kind AS ENUM",
		"CREATE TYPE display_position AS ENUM",
		"CREATE TABLE IF NOT EXISTS addons",
		"configuration jsonb NOT NULL",
		"CREATE TABLE IF NOT EXISTS addon_sets",
		"CREATE TABLE IF NOT EXISTS addon_set_items",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_addon_set_items_bucket_order",
		"CREATE TABLE IF NOT EXISTS paper_stocks",
		"DROP TABLE IF EXISTS addons",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrateValidate("migrations"); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}
