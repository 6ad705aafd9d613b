package database

import (
	"fmt"
	"log"

	"gorm.io/driver/clickhouse"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported store drivers
const (
	DriverClickHouse = "clickhouse"
	DriverPostgres   = "postgres"
	DriverSQLite     = "sqlite"
)

// ClickHouse engine options per table. Triage edits are ordered by
// (event_id, edited_at) so the latest edit of an event is cheap to find.
var clickhouseTableOptions = map[string]string{
	"events":       "ENGINE=MergeTree() ORDER BY (observed_at, id)",
	"alert_triage": "ENGINE=MergeTree() ORDER BY (event_id, edited_at, appended_at)",
}

// Dialector returns the gorm dialector for the named driver
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverClickHouse:
		return clickhouse.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %q", driver)
	}
}

// ParseLogLevel maps a config string to a gorm log level, defaulting to Warn
func ParseLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// Connect opens the event store
func Connect(driver, dsn string, logLevel logger.LogLevel) (*gorm.DB, error) {
	dialector, err := Dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Printf("Database connection established (driver=%s)", driver)
	return db, nil
}

// AutoMigrate creates the events and triage tables if they are missing
func AutoMigrate(db *gorm.DB, driver string) error {
	log.Println("Running database migrations...")

	for _, model := range []interface{ TableName() string }{&Event{}, &TriageEdit{}} {
		tx := db
		if driver == DriverClickHouse {
			tx = db.Set("gorm:table_options", clickhouseTableOptions[model.TableName()])
		}
		if err := tx.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", model.TableName(), err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}
