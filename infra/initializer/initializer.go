// Package initializer builds the application dependency graph from
// configuration: logger, database, repositories, gateway client, cache, and
// event bus.
package initializer

import (
	"context"
	"fmt"

	"github.com/novawallet/novawallet/infra"
	infracache "github.com/novawallet/novawallet/infra/cache"
	infraledger "github.com/novawallet/novawallet/infra/ledger"
	"github.com/novawallet/novawallet/infra/provider/invictus"
	"github.com/novawallet/novawallet/infra/provider/mockpix"
	infratxlog "github.com/novawallet/novawallet/infra/txlog"
	"github.com/novawallet/novawallet/pkg/app"
	"github.com/novawallet/novawallet/pkg/cache"
	"github.com/novawallet/novawallet/pkg/config"
	"github.com/novawallet/novawallet/pkg/eventbus"
	"github.com/novawallet/novawallet/pkg/provider/pix"
)

// InitializeDependencies wires all infrastructure from configuration.
func InitializeDependencies(cfg *config.App) (*app.Deps, error) {
	deps := &app.Deps{}
	logger := setupLogger(cfg.Log)
	deps.Logger = logger

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		return nil, err
	}
	if err := infra.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	deps.Ledger = infraledger.NewGorm(db, logger)
	deps.TxLog = infratxlog.NewGorm(db)
	if sqlDB, derr := db.DB(); derr == nil {
		deps.Ready = sqlDB.PingContext
	}

	// The collection index is advisory, so a missing Redis URL just means the
	// in-memory cache.
	var index cache.Cache
	if cfg.Redis.URL != "" {
		index, err = infracache.NewRedis(context.Background(), cfg.Redis.URL, cfg.Redis.KeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		logger.Info("collection index backed by redis")
	} else {
		index = infracache.NewMemory()
		logger.Info("collection index backed by memory")
	}
	deps.CollectionIndex = index

	var gateway pix.Provider
	if cfg.Gateway.APIToken != "" {
		gateway = invictus.New(cfg.Gateway, logger)
		logger.Info("pix gateway configured", "base_url", cfg.Gateway.BaseURL)
	} else {
		gateway = mockpix.New()
		logger.Warn("no gateway api token, using mock pix provider")
	}
	deps.Gateway = gateway

	deps.EventBus = eventbus.NewMemory()
	return deps, nil
}
