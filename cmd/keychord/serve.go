package main

import (
	"github.com/spf13/cobra"
)

func serveCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the capture field to a browser",
		Long: `Start an HTTP server with a shortcut capture page. Browser key events
are streamed over a websocket; every connection records independently.

Endpoints:
  /         capture page
  /ws       websocket
  /healthz  liveness
  /metrics  Prometheus metrics (unless --no-metrics)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Serve(cmd.Context(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&g.opts.Addr, "addr", "", "Listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().BoolVar(&g.opts.NoMetrics, "no-metrics", false, "Disable the /metrics endpoint")
	return cmd
}
