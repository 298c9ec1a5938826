// Package app assembles the service graph from initialized dependencies.
package app

import (
	"context"
	"log/slog"

	"github.com/novawallet/novawallet/pkg/cache"
	"github.com/novawallet/novawallet/pkg/config"
	"github.com/novawallet/novawallet/pkg/eventbus"
	"github.com/novawallet/novawallet/pkg/ledger"
	"github.com/novawallet/novawallet/pkg/provider/pix"
	walletsvc "github.com/novawallet/novawallet/pkg/service/wallet"
	"github.com/novawallet/novawallet/pkg/txlog"
)

// Deps contains the infrastructure dependencies the services are built from.
type Deps struct {
	Ledger          ledger.Store
	TxLog           txlog.Log
	Gateway         pix.Provider
	CollectionIndex cache.Cache
	EventBus        eventbus.Bus
	Logger          *slog.Logger

	// Ready reports whether backing stores are reachable; used by the
	// readiness probe. Nil means always ready.
	Ready func(ctx context.Context) error
}

// App holds the assembled services.
type App struct {
	Deps           *Deps
	Config         *config.App
	WalletService  *walletsvc.Service
	ReversalWorker *walletsvc.ReversalWorker
}

// New assembles the orchestrator and its background worker.
func New(deps *Deps, cfg *config.App) *App {
	return &App{
		Deps:   deps,
		Config: cfg,
		WalletService: walletsvc.New(
			deps.Ledger,
			deps.TxLog,
			deps.Gateway,
			deps.CollectionIndex,
			deps.EventBus,
			cfg.Wallet,
			cfg.Reversal,
			deps.Logger,
		),
		ReversalWorker: walletsvc.NewReversalWorker(
			deps.Ledger,
			deps.TxLog,
			deps.EventBus,
			cfg.Reversal,
			deps.Logger,
		),
	}
}
