package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"medcms/config"
	"medcms/models"
)

// Models lists every persisted model in dependency order.
var Models = []interface{}{
	&models.User{},
	&models.Category{},
	&models.Article{},
	&models.ArticleVersion{},
	&models.Attachment{},
	&models.ArticleCategory{},
	&models.AuditEntry{},
}

// Migrate applies the schema. Postgres uses the versioned SQL migrations
// unless AutoMigrate is forced; sqlite always uses gorm AutoMigrate.
func Migrate(db *gorm.DB, cfg config.DatabaseConfig, logger *zap.Logger) error {
	if cfg.Driver == "sqlite" || cfg.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			return err
		}
		logger.Info("Schema auto-migrated")
		return nil
	}
	return RunMigrations(cfg.DSNString(), cfg.MigrationsPath, logger)
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}
	return nil
}

// RunMigrations executes pending SQL migrations from migrationsPath over its
// own connection. Safe to call repeatedly; only pending migrations run.
func RunMigrations(dsn, migrationsPath string, logger *zap.Logger) error {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}

	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		sqlDB.Close()
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logger.Warn("Failed to close migration source", zap.Error(srcErr))
		}
		if dbErr != nil {
			logger.Warn("Failed to close migration database", zap.Error(dbErr))
		}
	}()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No migrations to apply (database up-to-date)")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, _, _ := m.Version()
	logger.Info("Applied migrations successfully", zap.Uint("version", version))
	return nil
}
