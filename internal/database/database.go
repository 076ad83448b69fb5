// Package database opens the relational store and keeps its schema current.
package database

import (
	"fmt"

	"github.com/quocanhngo/spark/internal/config"
	"github.com/quocanhngo/spark/internal/logger"
	"github.com/quocanhngo/spark/internal/model"
	"github.com/quocanhngo/spark/migrations"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Models lists every persisted entity, parents before children
func Models() []any {
	return []any{
		&model.User{},
		&model.Photo{},
		&model.Preference{},
		&model.Swipe{},
		&model.Match{},
		&model.Message{},
		&model.Block{},
		&model.Report{},
		&model.UserDevice{},
	}
}

// Open connects to the database selected by cfg.DB.Driver
func Open(cfg *config.Config) (*gorm.DB, error) {
	gormLogger := gormlogger.Default.LogMode(gormlogger.Info)
	if cfg.App.IsProduction() {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Warn)
	}

	var dialector gorm.Dialector
	switch cfg.DB.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DB.DSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.DB.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DB.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DB.Driver, err)
	}
	return db, nil
}

// Migrate applies the embedded SQL migrations on PostgreSQL. Other drivers,
// and PostgreSQL when the migrator fails, fall back to gorm AutoMigrate.
func Migrate(db *gorm.DB, cfg *config.Config) error {
	if cfg.DB.Driver == "postgres" {
		err := migrations.Run(cfg.DB.URL())
		if err == nil {
			return nil
		}
		logger.Warn("migration failed, falling back to AutoMigrate", "error", err)
	}
	return AutoMigrate(db)
}

// AutoMigrate creates or updates every table from the models
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
