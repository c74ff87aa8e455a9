package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/deskgrid/pkg/server"
)

// serveCommand creates the "serve" command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout over HTTP",
		Long: `Serve the layout over HTTP. Install, uninstall, badge and folder events
arrive as JSON requests and every change is persisted. The server stops on
SIGINT or SIGTERM after writing pending changes.`,
		Example: `  deskgrid serve
  deskgrid serve --addr :9000
  curl -s localhost:8420/v1/layout`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.cfg.Server.Addr
			}

			var s *session
			err := spin(ctx, "Loading layout...", "Layout loaded", func() error {
				var err error
				s, err = c.openEngine(ctx)
				return err
			})
			if err != nil {
				return err
			}
			defer s.close()

			labels, err := c.newLabelCache(ctx, noCache)
			if err != nil {
				return err
			}
			defer labels.Close()
			ttl, _ := c.cfg.CacheTTL()

			srv := server.New(s.engine, server.Options{
				Labels:   labels,
				Keyer:    c.cfg.LabelKeyer(),
				LabelTTL: ttl,
				Logger:   c.Logger,
			})
			snap := s.engine.Snapshot()
			printLayoutStats(len(snap.Items), len(snap.Folders), snap.PageCount, s.engine.Stale())
			printKeyValue("Listening", "http://"+addr)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable label storage")

	return cmd
}
