package db

import (
	"fmt"

	"github.com/ikkim/cart-backend/config"
	appLogger "github.com/ikkim/cart-backend/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Initialize opens the cart store
func Initialize(cfg *config.DatabaseConfig) error {
	appLogger.Info("Opening cart store", map[string]interface{}{
		"dsn": cfg.DSN,
	})

	var err error
	DB, err = Open(cfg.DSN, cfg.MaxOpenConns)
	if err != nil {
		return err
	}

	appLogger.Info("Cart store opened successfully", map[string]interface{}{
		"max_open_conns": cfg.MaxOpenConns,
	})
	return nil
}

// Open connects to a sqlite database. An in-memory DSN keeps its contents
// only while at least one connection stays open, so idle connections are
// never closed.
func Open(dsn string, maxOpenConns int) (*gorm.DB, error) {
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Use silent mode, we'll use our own logger
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cart store: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if maxOpenConns < 1 {
		maxOpenConns = 1
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxOpenConns)
	sqlDB.SetConnMaxLifetime(0)

	return conn, nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
