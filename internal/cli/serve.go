package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/pokemcp/internal/mcpserver"
	"github.com/cory-johannsen/pokemcp/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP tool server",
		Long:  "Serve get_pokemon_info and simulate_battle over stdio or HTTP Server-Sent Events.",
		Example: `  pokemcp serve
  pokemcp serve --transport sse --port 8080
  pokemcp serve -c configs/dev.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.load(cmd, map[string]string{
				"server.transport": "transport",
				"server.port":      "port",
			})
			if err != nil {
				return err
			}
			c, err := build(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer c.Close()

			s := mcpserver.New(cfg.Server, c.service, c.logger.Named("mcp"))
			lc := server.NewLifecycle(c.logger)
			switch cfg.Server.Transport {
			case "sse":
				lc.Add("sse", mcpserver.NewSSEService(cfg.Server, s, c.health, c.logger))
			default:
				lc.Add("stdio", mcpserver.NewStdioService(s, cmd.InOrStdin(), cmd.OutOrStdout(), c.logger))
			}

			c.logger.Info("starting tool server",
				zap.String("name", cfg.Server.Name),
				zap.String("version", cfg.Server.Version),
				zap.String("transport", cfg.Server.Transport),
			)
			return lc.Run(cmd.Context())
		},
	}

	cmd.Flags().String("transport", "stdio", "MCP transport: stdio|sse")
	cmd.Flags().Int("port", 8080, "TCP port for the sse transport")
	return cmd
}
