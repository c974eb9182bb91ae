package migrate

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/angelmondragon/atacado-backend/pkg/config"
	"github.com/angelmondragon/atacado-backend/pkg/db"
	"github.com/angelmondragon/atacado-backend/pkg/logger"
)

// MaybeRunDev brings the schema up to date on startup when running in dev
// with ATACADO_AUTO_MIGRATE set. Sqlite gets the embedded schema, postgres
// gets the goose migrations.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	ctx = logg.WithField(ctx, "env", cfg.App.Env)

	if client.IsSQLite() {
		logg.Info(ctx, "applying sqlite schema")
		return ApplySQLiteSchema(ctx, sqlDB)
	}

	if err := Run(ctx, sqlDB, DefaultDir, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}
	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	logg.Info(logg.WithField(ctx, "schema_version", version), "migrations applied")
	return nil
}
