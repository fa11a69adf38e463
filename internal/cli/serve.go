package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/heightcompare/pkg/server"
)

// serveCommand runs the HTTP API until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		token   string
		noCache bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API for boards, charts and the character catalog.

When a token is configured (server.token or --token), every /api request
must carry "Authorization: Bearer <token>". Health checks stay open.`,
		Example: `  heightcompare serve --addr :9000
  heightcompare serve --token "$API_TOKEN"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.Config

			cat, err := c.openCatalog(ctx, false)
			if err != nil {
				return err
			}
			defer cat.Close()

			boards, err := c.openBoards(ctx)
			if err != nil {
				return err
			}
			defer boards.Close()

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			if addr == "" {
				addr = cfg.Server.Addr
			}
			if token == "" {
				token = cfg.Server.Token
			}
			srv := server.New(server.Config{
				Addr:         addr,
				Token:        token,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
				ChartHeight:  cfg.Chart.Height,
				Watermark:    cfg.Chart.Watermark,
			}, boards, cat, runner, c.Logger)
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from the config)")
	cmd.Flags().StringVar(&token, "token", "", "bearer token required on /api")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "do not cache rendered charts")
	return cmd
}
