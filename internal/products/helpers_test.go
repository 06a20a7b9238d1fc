package product

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/printshop-backend/internal/addons"
	"github.com/angelmondragon/printshop-backend/internal/productconfig"
	"github.com/angelmondragon/printshop-backend/pkg/db"
	"github.com/angelmondragon/printshop-backend/pkg/db/dbtest"
	"github.com/angelmondragon/printshop-backend/pkg/db/models"
	"github.com/angelmondragon/printshop-backend/pkg/enums"
	"github.com/angelmondragon/printshop-backend/pkg/logger"
	"github.com/angelmondragon/printshop-backend/pkg/metrics"
)

func newTestRepo(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()
	conn := dbtest.OpenSQLite(t)
	return NewRepository(conn), conn
}

func newTestService(t *testing.T, repo *Repository, conn *gorm.DB, cache *SnapshotCache, m *metrics.PricingMetrics) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:    repo,
		Tx:      db.NewFromConn(conn),
		Cache:   cache,
		Metrics: m,
		Logger:  logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func mustCreatePaperStock(t *testing.T, repo *Repository, name, multiplier string) models.PaperStock {
	t.Helper()
	stock, err := repo.CreatePaperStock(context.Background(), models.PaperStock{
		Name:       name,
		Multiplier: decimal.RequireFromString(multiplier),
		IsActive:   true,
	})
	if err != nil {
		t.Fatalf("create paper stock: %v", err)
	}
	return stock
}

func flatDef(name, price string, kind enums.AddOnKind, mandatory bool) productconfig.AddOnDefinition {
	return productconfig.AddOnDefinition{
		ID:            uuid.New(),
		Name:          name,
		Kind:          kind,
		PricingModel:  enums.PricingModelFlat,
		Configuration: productconfig.Configuration{Flat: &productconfig.FlatConfig{Price: decimal.RequireFromString(price)}},
		Mandatory:     mandatory,
		Active:        true,
	}
}

func mustCreateAddOn(t *testing.T, repo *Repository, def productconfig.AddOnDefinition) productconfig.AddOnDefinition {
	t.Helper()
	created, err := repo.AddOns().CreateAddOn(context.Background(), def)
	if err != nil {
		t.Fatalf("create addon: %v", err)
	}
	return created
}

// mustCreateSet creates a set with defs attached in order.
func mustCreateSet(t *testing.T, repo *Repository, name string, defs ...productconfig.AddOnDefinition) productconfig.AddOnSet {
	t.Helper()
	set := productconfig.AddOnSet{ID: uuid.New(), Name: name}
	for _, def := range defs {
		next, _, err := addons.ToggleAddOn(set, def)
		if err != nil {
			t.Fatalf("attach %s: %v", def.Name, err)
		}
		set = next
	}
	created, err := repo.AddOns().CreateAddOnSet(context.Background(), set)
	if err != nil {
		t.Fatalf("create addon set: %v", err)
	}
	return created
}

func tier(min int, price string) productconfig.PricingTier {
	return productconfig.PricingTier{MinQuantity: min, PricePerUnit: decimal.RequireFromString(price)}
}

// publishableInput describes a product that passes validation once a paper
// stock is attached.
func publishableInput(defaultSet *uuid.UUID) CreateConfigInput {
	return CreateConfigInput{
		Name:      "Business cards",
		BasePrice: decimal.RequireFromString("0.50"),
		SetupFee:  decimal.RequireFromString("5"),
		Tiers: []productconfig.PricingTier{
			tier(1, "0.50"),
			tier(100, "0.40"),
			tier(500, "0.30"),
		},
		Quantities:        []int{100, 250, 500, 1000},
		Sizes:             []string{"3.5x2"},
		ProductionDays:    5,
		Rush:              productconfig.RushConfig{Available: true, Days: 2, Fee: decimal.RequireFromString("15")},
		GangRun:           productconfig.GangRunConfig{Eligible: true, MinGangQuantity: 100, MaxGangQuantity: 1000},
		DefaultAddOnSetID: defaultSet,
	}
}
