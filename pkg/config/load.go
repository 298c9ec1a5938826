// Package config loads application configuration from the environment, with
// optional .env files for local development.
package config

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads an optional .env file and then populates App from the
// environment. Missing .env files are fine; required variables are not.
func Load(envFiles ...string) (*App, error) {
	logger := slog.Default()

	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil {
			logger.Debug("no .env file found, using system environment")
		}
	} else {
		for _, path := range envFiles {
			if err := godotenv.Load(path); err != nil {
				logger.Debug("env file not loaded", "path", path, "error", err)
				continue
			}
			logger.Info("environment loaded from file", "path", path)
			break
		}
	}

	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	logger.Info("configuration loaded",
		"env", cfg.Env,
		"db", maskValue(cfg.DB.Url),
		"gateway_url", cfg.Gateway.BaseURL,
		"gateway_token", maskValue(cfg.Gateway.APIToken),
		"gateway_timeout", cfg.Gateway.HTTPTimeout,
		"min_deposit", cfg.Wallet.MinDeposit,
		"min_withdrawal", cfg.Wallet.MinWithdrawal,
	)
	return &cfg, nil
}

func maskValue(v string) string {
	if len(v) <= 6 {
		return "****"
	}
	return v[:2] + "****" + v[len(v)-4:]
}
