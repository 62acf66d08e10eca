package middleware

import (
	"context"
	"fmt"
	"os"

	"github.com/hferrand/inkstream/internal/config"
	"github.com/spf13/cobra"
)

// LoadConfig resolves the --config flag (or INKSTREAM_CONFIG), loads the
// configuration and injects it into the command context under
// CtxKeyConfig.
func LoadConfig(cmd *cobra.Command, args []string, next func(cmd *cobra.Command, args []string) error) error {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("INKSTREAM_CONFIG")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx := context.WithValue(cmd.Context(), CtxKeyConfig, cfg)
	cmd.SetContext(ctx)

	return next(cmd, args)
}
