package mongo

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mongodb"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	mongolib "go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/fastygo/taskdesk/internal/config"
)

// RunMigrations applies the JSON command migrations (collection validators and indexes) when enabled.
func RunMigrations(client *mongolib.Client, cfg *config.Config, logger *zap.Logger) error {
	if cfg == nil || !cfg.Migrations.Enabled {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	driver, err := mongodb.WithInstance(client, &mongodb.Config{
		DatabaseName:         cfg.Database.Name,
		MigrationsCollection: "schema_migrations",
		TransactionMode:      cfg.Database.UseTransactions,
	})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	sourceURL := fmt.Sprintf("file://%s", filepath.ToSlash(cfg.Migrations.Path))
	m, err := migrate.NewWithDatabaseInstance(sourceURL, cfg.Database.Name, driver)
	if err != nil {
		return err
	}

	// m.Close is not called: it would disconnect the shared client.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	version, dirty, _ := m.Version()
	logger.Info("database migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}
