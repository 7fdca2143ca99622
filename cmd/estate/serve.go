package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/estate/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the estate analyzer server",
	Long: `Start the estate analyzer HTTP server.

The server provides:
  - /                       - Upload page
  - /api/documents/analyze  - Multipart PDF analysis
  - /health, /status        - Health and provider status
  - /swagger.json           - OpenAPI document

Config file changes are picked up without a restart.

Examples:
  estate serve                    # Start on the configured port (default 8080)
  estate serve --port 3000        # Start on custom port
  estate serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, h, err := loadConfig()
		if err != nil {
			return err
		}

		cfg := mgr.Get()
		host, port := serveHost, servePort
		if host == "" {
			host = cfg.Server.Host
		}
		if port == "" {
			port = cfg.Server.Port
		}

		srv, err := server.New(server.Config{
			Host:          host,
			Port:          port,
			ConfigManager: mgr,
			Home:          h,
			Logger:        slog.Default(),
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default: server.host)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (default: server.port)")

	rootCmd.AddCommand(serveCmd)
}
