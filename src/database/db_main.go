package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"riskfortress/src/model"
)

// MainDB is the primary read/write database connection used by the
// application. All risk state lives here: day-trade history, breaker
// state, convictions, and the trade journal.
var MainDB *gorm.DB

// InitMainDB initializes the main database connection and runs
// migrations. This should be called once at application startup.
func InitMainDB() error {
	config := GetConfig()

	var dialector gorm.Dialector
	switch config.Driver {
	case "postgres":
		dialector = postgres.Open(config.DatabaseURL)
	case "sqlite":
		dialector = sqlite.Open(config.SQLitePath)
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", config.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.LogLevel(config.GormLogLevel)),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if config.Driver == "postgres" {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get DB from GORM: %w", err)
		}
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(1 * time.Hour)
	}

	// Assign to the global variable only after a successful connection.
	MainDB = db

	logrus.WithField("driver", config.Driver).Info("[database] MainDB connection established")

	if err := MainDB.AutoMigrate(
		&model.DayTradeRecord{},
		&model.BreakerState{},
		&model.Conviction{},
		&model.CatalystEvent{},
		&model.JournalEntry{},
	); err != nil {
		return fmt.Errorf("failed to run migrations on MainDB: %w", err)
	}

	logrus.Info("[database] MainDB migrations completed")
	return nil
}
