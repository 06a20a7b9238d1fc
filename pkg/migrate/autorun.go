package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/printshop-backend/pkg/config"
	"github.com/angelmondragon/printshop-backend/pkg/db"
	"github.com/angelmondragon/printshop-backend/pkg/logger"
)

// MaybeRunDev brings the schema up to date on API start when running in dev
// with auto-migrate enabled. SQLite gets the embedded schema; Postgres runs
// the goose migrations after checking the directory is well formed.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !shouldAutoMigrate(cfg) {
		return nil
	}
	ctx = logg.WithFields(ctx, map[string]any{"driver": cfg.DB.Driver})

	if cfg.DB.IsSQLite() {
		logg.Info(ctx, "applying sqlite schema (dev auto-run)")
		return db.ApplySQLiteSchema(ctx, client.DB())
	}

	migrations, err := ListMigrations(DefaultDir)
	if err != nil {
		return err
	}
	if err := ValidateDir(DefaultDir); err != nil {
		return err
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"dir": DefaultDir, "migrations": len(migrations)})
	logg.Info(ctx, "running goose migrations (dev auto-run)")
	if err := Up(ctx, sqlDB, DefaultDir); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}
	logg.Info(ctx, "goose migrations completed")
	return nil
}

func shouldAutoMigrate(cfg *config.Config) bool {
	return cfg != nil && cfg.App.IsDev() && cfg.FeatureFlags.AutoMigrate
}
