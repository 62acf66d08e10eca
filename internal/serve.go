package internal

import (
	"github.com/hferrand/inkstream/internal/config"
	"github.com/hferrand/inkstream/internal/errs"
	"github.com/hferrand/inkstream/internal/logger"
	"github.com/hferrand/inkstream/internal/middleware"
	"github.com/hferrand/inkstream/internal/server"
	"github.com/spf13/cobra"
)

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP content server",
		Long: `Start the blog content server.

Examples:
  inkstream serve
  inkstream serve --config /etc/inkstream.yml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := middleware.Get[*config.Config](cmd, middleware.CtxKeyConfig)
			if err != nil {
				return err
			}
			configureLogging(cmd, cfg)

			if !cfg.HasWorkspace() {
				logger.Warn(errs.Msg(errs.NoWorkspaceConfigured))
			}

			orch, err := newOrchestrator(cfg)
			if err != nil {
				return err
			}

			return server.New(cfg, orch).Listen()
		},
	}
	return cmd
}
