package internal

import (
	"fmt"

	"github.com/hferrand/inkstream/internal/config"
	"github.com/hferrand/inkstream/internal/errs"
	"github.com/hferrand/inkstream/internal/logger"
	"github.com/hferrand/inkstream/internal/middleware"
	"github.com/hferrand/inkstream/internal/workspace"
	"github.com/spf13/cobra"
)

func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and workspace reachability",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := middleware.Get[*config.Config](cmd, middleware.CtxKeyConfig)
			if err != nil {
				return err
			}
			configureLogging(cmd, cfg)

			logger.Success("configuration valid (ttl=%s, port=%d)", cfg.CacheTTL(), cfg.ListenPort)

			if !cfg.HasWorkspace() {
				logger.Warn(errs.Msg(errs.NoWorkspaceConfigured))
				return nil
			}

			client := workspace.New(nil, cfg.WorkspaceURL, 0)
			records, err := client.FetchRecords(cmd.Context(), cfg.WorkspaceURL)
			if err != nil {
				return fmt.Errorf("workspace unreachable: %w", err)
			}

			logger.Success("workspace reachable, %d records available", len(records))
			return nil
		},
	}
	return cmd
}
