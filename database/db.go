package database

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"medcms/config"
	"medcms/retry"
)

// Open connects to the configured database, retrying while it comes up.
func Open(ctx context.Context, cfg config.DatabaseConfig, retryCfg *retry.Config, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		dialector = postgres.Open(cfg.DSNString())
	}

	attempt := 0
	var db *gorm.DB
	err := retry.Do(ctx, retryCfg, func() error {
		attempt++
		logger.Info("Connecting to database", zap.String("driver", cfg.Driver), zap.Int("attempt", attempt))

		var err error
		db, err = gorm.Open(dialector, GormConfig())
		if err != nil {
			logger.Warn("Failed to connect to database", zap.Error(err))
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempt, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "sqlite" {
		// Serializes writers; a second connection to :memory: would see an empty database.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	logger.Info("Connected to database", zap.String("driver", cfg.Driver))
	return db, nil
}

// GormConfig is shared by Open and tests. Uniqueness violations come back
// as gorm.ErrDuplicatedKey; FK constraints are owned by the SQL migrations.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
	}
}
