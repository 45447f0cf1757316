package database

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// RunMigrations runs all pending migrations for the connection's dialect
func RunMigrations(db *gorm.DB, logger *slog.Logger) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	dialect := DialectPostgres
	if db.Dialector.Name() == "sqlite" {
		dialect = DialectSQLite
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations/"+dialect)
	if err != nil {
		return fmt.Errorf("failed to create migration source driver: %w", err)
	}

	var dbDriver migratedb.Driver
	if dialect == DialectSQLite {
		dbDriver, err = sqlite3.WithInstance(sqlDB, &sqlite3.Config{})
	} else {
		dbDriver, err = postgres.WithInstance(sqlDB, &postgres.Config{})
	}
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, dialect, dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("Database migrations: no changes detected (already up to date)", "dialect", dialect)
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Database migrations: successfully applied all pending migrations", "dialect", dialect)
	return nil
}
