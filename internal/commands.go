package internal

import (
	"github.com/hferrand/inkstream/internal/middleware"
	"github.com/spf13/cobra"
)

var defaultCommands = []middleware.CommandFactory{
	middleware.UseMiddlewareChain(middleware.LoadConfig)(NewServeCmd),
	middleware.UseMiddlewareChain(middleware.LoadConfig)(NewPostsCmd),
	middleware.UseMiddlewareChain(middleware.LoadConfig)(NewRefreshCmd),
	middleware.UseMiddlewareChain(middleware.LoadConfig)(NewCheckCmd),
}

func RegisterSubCommands(cmd *cobra.Command) {
	for _, factory := range defaultCommands {
		cmd.AddCommand(factory())
	}
}
