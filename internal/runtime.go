package internal

import (
	"fmt"

	"github.com/hferrand/inkstream/internal/config"
	"github.com/hferrand/inkstream/internal/contentcache"
	"github.com/hferrand/inkstream/internal/ingest"
	"github.com/hferrand/inkstream/internal/logger"
	"github.com/spf13/cobra"
)

// configureLogging applies the config log settings, letting the
// --log-level flag win when set.
func configureLogging(cmd *cobra.Command, cfg *config.Config) {
	level := cfg.LogLevel
	if flagLevel, _ := cmd.Flags().GetString("log-level"); flagLevel != "" {
		level = flagLevel
	}
	logger.Configure(logger.Options{Level: level, JSON: cfg.LogJSON})
}

// newOrchestrator wires cache and workspace client for a command run.
func newOrchestrator(cfg *config.Config) (*ingest.Orchestrator, error) {
	cache, err := contentcache.New(cfg.CacheTTL(), cfg.SnapshotDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize content cache: %w", err)
	}
	return ingest.New(cfg, cache, nil), nil
}
