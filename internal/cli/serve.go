package cli

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/comic-panels/internal/server"
)

func (a *app) newServeCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout",
		Long: `Starts a Model Context Protocol server that speaks JSON-RPC 2.0 over
stdin/stdout. Configure it in your MCP client (e.g., Claude Desktop).

The settings flags become the defaults of every tool call; a call may
override the detection settings for itself. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.logger.Debug("starting MCP server", "version", version)
			srv := server.New(a.cfg, a.logger, version)
			return srv.Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
