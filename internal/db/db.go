package db

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/airwavefm/airwave/internal/config"
)

// Connect opens a gorm handle for the configured backend and tunes the
// underlying connection pool.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	database, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DBBackend, err)
	}

	pool, err := database.DB()
	if err != nil {
		return nil, err
	}
	pool.SetMaxIdleConns(5)
	pool.SetMaxOpenConns(25)
	pool.SetConnMaxLifetime(time.Hour)

	return database, nil
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBBackend {
	case config.DatabasePostgres:
		return postgres.Open(cfg.DBDSN), nil
	case config.DatabaseMySQL:
		return mysql.Open(cfg.DBDSN), nil
	case config.DatabaseSQLite:
		return sqlite.Open(cfg.DBDSN), nil
	default:
		return nil, fmt.Errorf("unknown database backend: %s", cfg.DBBackend)
	}
}

// Close releases the connection pool.
func Close(database *gorm.DB) error {
	pool, err := database.DB()
	if err != nil {
		return err
	}
	return pool.Close()
}
