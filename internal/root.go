package internal

import (
	"fmt"
	"os"
	"strings"

	"github.com/hferrand/inkstream/internal/logger"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inkstream",
		Short: "Workspace-backed blog content server",
		Long: `Inkstream serves a blog whose content lives in a remote document
workspace. It ingests posts and pages on demand, normalizes them into a
stable schema and caches the result so the site survives upstream
outages.`,
		Example: `inkstream serve --config inkstream.yml`,
		Run: func(cmd *cobra.Command, _ []string) {
			versionFlag, _ := cmd.Flags().GetBool("version")
			if versionFlag {
				fmt.Printf("Version: %s\n", Version)
				return
			}
			_ = cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.Flags().BoolP("version", "v", false, "Print version information")
	cmd.PersistentFlags().String("config", "", "Path to the config file (default ./inkstream.yml, or INKSTREAM_CONFIG)")
	cmd.PersistentFlags().String("log-level", "", "Override the configured log level (debug, info, warn, error)")

	RegisterSubCommands(cmd)

	return cmd
}

func Execute() error {
	root := NewRootCmd()

	if os.Getenv("COMP_LINE") != "" ||
		(len(os.Args) > 1 && strings.HasPrefix(os.Args[1], "__complete")) {
		return root.Execute()
	}

	if err := root.Execute(); err != nil {
		logger.Debug("Failed to execute root command: %v", err)
		return err
	}
	return nil
}
