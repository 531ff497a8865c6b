// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/proposal-engine/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve proposal generation over HTTP",
	Long: `Serve starts the HTTP API: /health, /api_info, /generate_academic_report,
/generate_academic_report_detailed, and /metrics. It shuts down gracefully on
SIGINT or SIGTERM.

materialFiles in a request body are read only from server.materials_root
(default data/materials). Relative paths resolve against that directory and
absolute paths must lie inside it. Set it to an empty string to refuse
material files over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.Server.Addr
		}

		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := server.New(a.generator, a.metrics, logger.Named("http"), cfg.Server)
		return srv.ListenAndServe(cmd.Context(), addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default server.addr)")

	rootCmd.AddCommand(serveCmd)
}
