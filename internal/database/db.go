// Package database opens the SQL database behind the database row store and
// keeps its schema current.
package database

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialects selected from the database URL
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Dialect picks the driver for databaseURL: "sqlite://" and "file:" URLs
// open sqlite, everything else postgres
func Dialect(databaseURL string) string {
	if strings.HasPrefix(databaseURL, "sqlite://") || strings.HasPrefix(databaseURL, "file:") {
		return DialectSQLite
	}
	return DialectPostgres
}

// Init opens a GORM database connection with connection pooling configured
func Init(databaseURL string) (*gorm.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	var dialector gorm.Dialector
	switch Dialect(databaseURL) {
	case DialectSQLite:
		dialector = sqlite.Open(strings.TrimPrefix(databaseURL, "sqlite://"))
	default:
		// Ensure timezone is set to UTC
		dsn, err := ensureTimezoneUTC(databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse database URL: %w", err)
		}
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if Dialect(databaseURL) == DialectSQLite {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(10)
	}
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// Close gracefully closes the database connection
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	return nil
}

// ensureTimezoneUTC ensures the database URL has TimeZone=UTC parameter
func ensureTimezoneUTC(databaseURL string) (string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", err
	}

	q := u.Query()
	if q.Get("TimeZone") == "" {
		q.Set("TimeZone", "UTC")
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}
