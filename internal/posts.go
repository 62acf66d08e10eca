package internal

import (
	"github.com/hferrand/inkstream/internal/config"
	"github.com/hferrand/inkstream/internal/listing"
	"github.com/hferrand/inkstream/internal/middleware"
	"github.com/spf13/cobra"
)

func NewPostsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List ingested posts and pages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := middleware.Get[*config.Config](cmd, middleware.CtxKeyConfig)
			if err != nil {
				return err
			}
			configureLogging(cmd, cfg)

			includeDrafts, err := cmd.Flags().GetBool("drafts")
			if err != nil {
				return err
			}

			orch, err := newOrchestrator(cfg)
			if err != nil {
				return err
			}

			return listing.New(orch).Execute(cmd.Context(), includeDrafts)
		},
	}

	cmd.Flags().BoolP("drafts", "d", false, "Include drafts in the listing")
	return cmd
}
