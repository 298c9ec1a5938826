// Package infra provides shared infrastructure wiring: database connection
// and schema migration.
package infra

import (
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/novawallet/novawallet/infra/repository/model"
	"github.com/novawallet/novawallet/pkg/config"
)

// NewDBConnection opens the postgres connection. TranslateError is required:
// the repositories distinguish duplicate-key violations through
// gorm.ErrDuplicatedKey.
func NewDBConnection(cfg *config.DB, appEnv string) (*gorm.DB, error) {
	if cfg.Url == "" {
		return nil, errors.New("DB_URL is not set")
	}

	logMode := logger.Silent
	if appEnv == "development" {
		logMode = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.Url), &gorm.Config{
		Logger:                 logger.Default.LogMode(logMode),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)

	return db, nil
}

// Migrate applies the schema for the wallet and transaction tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.Wallet{}, &model.Transaction{})
}
