// app/app.go
// Package app wires configuration, logging, mail delivery and the HTTP
// stack into a running formrelay server.
package app

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/dalemusser/formrelay/config"
	"github.com/dalemusser/formrelay/httputil"
	"github.com/dalemusser/formrelay/logging"
	"github.com/dalemusser/formrelay/metrics"
	"github.com/dalemusser/formrelay/pantry/version"
	"github.com/dalemusser/formrelay/server"
)

// Name is used in startup logs.
const Name = "formrelay"

// Run executes the startup sequence:
//
//  1. Bootstrap logger
//  2. Load and validate config
//  3. Build the final logger from config
//  4. Register default metrics
//  5. Build mail dispatcher, rate limit store and handler
//  6. Wire shutdown signals to a context
//  7. Serve until shutdown
func Run(ctx context.Context) error {
	bootstrap := logging.BootstrapLogger()
	defer func() { _ = bootstrap.Sync() }()

	cfg, err := config.Load(bootstrap)
	if err != nil {
		bootstrap.Error("config load failed", zap.Error(err))
		return err
	}
	bootstrap.Info("config loaded",
		zap.String("env", cfg.Env),
		zap.String("log_level", cfg.LogLevel))

	logger := logging.BuildLogger(cfg.LogLevel, cfg.Env, logging.FileOptions{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	defer func() { _ = logger.Sync() }()
	logger.Info("logger initialized", zap.String("app", Name), zap.String("version", version.String()))
	logger.Debug("effective config", zap.String("config", cfg.Dump()))

	httputil.SetJSONLogger(logger)
	metrics.RegisterDefault(logger)

	b, err := NewBackends(ctx, cfg, logger)
	if err != nil {
		logger.Error("backend setup failed", zap.Error(err))
		return err
	}
	defer b.Close()

	handler, err := BuildHandler(cfg, logger, b)
	if err != nil {
		logger.Error("handler build failed", zap.Error(err))
		return err
	}

	ctx, cancel := server.WithShutdownSignals(ctx, logger)
	defer cancel()

	logger.Info("listening",
		zap.String("url", BaseURL(cfg)),
		zap.String("mail_provider", cfg.Mail.Provider),
		zap.String("default_to", cfg.Relay.DefaultTo))

	if err := server.ListenAndServe(ctx, cfg, handler, logger); err != nil {
		logger.Error("server exited with error", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

// BaseURL is the address the service is reachable at: public_url in
// production, otherwise localhost on the configured port.
func BaseURL(cfg *config.Config) string {
	if cfg.IsProd() && cfg.PublicURL != "" {
		return cfg.PublicURL
	}
	if cfg.HTTP.UseHTTPS {
		return fmt.Sprintf("https://localhost:%d", cfg.HTTP.HTTPSPort)
	}
	return "http://localhost:" + strconv.Itoa(cfg.HTTP.HTTPPort)
}
