package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/querent"
	"github.com/aretw0/querent/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Serves POST /ask, GET /events, GET /graph, GET /health, GET /info and GET /metrics. Requests are validated against /openapi.yaml.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		debug, _ := cmd.Flags().GetBool("debug")
		addr, _ := cmd.Flags().GetString("addr")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		return cli.Serve(ctx, cli.ServeOptions{
			ConfigPath: configPath,
			Debug:      debug,
			Addr:       addr,
			Version:    strings.TrimSpace(querent.Version),
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (default from config, :8080)")
}
