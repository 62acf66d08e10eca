package internal

import (
	"fmt"

	"github.com/hferrand/inkstream/internal/config"
	"github.com/hferrand/inkstream/internal/errs"
	"github.com/hferrand/inkstream/internal/logger"
	"github.com/hferrand/inkstream/internal/middleware"
	"github.com/hferrand/inkstream/internal/models"
	"github.com/spf13/cobra"
)

func NewRefreshCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Invalidate the content cache and refetch from the workspace",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := middleware.Get[*config.Config](cmd, middleware.CtxKeyConfig)
			if err != nil {
				return err
			}
			configureLogging(cmd, cfg)

			if !cfg.HasWorkspace() {
				return fmt.Errorf("%s", errs.Msg(errs.RefreshWithoutSource, "refresh"))
			}

			orch, err := newOrchestrator(cfg)
			if err != nil {
				return err
			}

			res := orch.Refresh(cmd.Context())
			switch res.Source {
			case models.SourceFresh:
				logger.Success("refreshed: %d posts, %d pages", len(res.Posts), len(res.Pages))
			case models.SourceCache:
				logger.Warn("workspace unreachable, still serving cached content (%d posts)", len(res.Posts))
			default:
				return fmt.Errorf("refresh failed: %s", res.Error)
			}
			return nil
		},
	}
	return cmd
}
