package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/cornerpin/internal/server"
	"github.com/matzehuels/cornerpin/pkg/store"
)

// serveCommand creates the serve command, which runs the HTTP API until the
// command context is cancelled.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the corner-pin HTTP API",
		Long: `Serve the HTTP API for solving transforms and managing stored points.

Endpoints:
  GET    /healthz
  POST   /v1/matrix
  GET    /v1/points
  GET    /v1/points/{key}
  PUT    /v1/points/{key}
  DELETE /v1/points/{key}
  GET    /v1/points/{key}/matrix?width=W&height=H`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			points, err := c.openPoints(ctx)
			if err != nil {
				return err
			}
			defer points.Close()

			switch cfg.Store.Backend {
			case store.BackendMemory, store.BackendNone:
				printWarning(cmd.ErrOrStderr(), "store backend %q does not persist points", cfg.Store.Backend)
			}
			printInfo(cmd.ErrOrStderr(), "Listening on %s", StyleHighlight.Render(addr))
			return server.New(points, c.Logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
