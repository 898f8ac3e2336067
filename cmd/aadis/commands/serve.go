package commands

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/srinivastls/AADIS/internal/logging"
	"github.com/srinivastls/AADIS/internal/server"
)

// NewServeCmd constructs the `aadis serve` command, which starts the HTTP
// API server.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the AADIS HTTP API server",
		Long: `Start the AADIS HTTP API server on localhost.

The server exposes the QA core over REST:
  POST /api/ask      answer a question
  GET  /api/history  list a session's exchanges
  POST /api/clear    clear a session's history
  GET  /api/health   liveness probe
  GET  /api/ready    readiness probe (checks store, index, embedder)
  GET  /metrics      Prometheus metrics

Examples:
  aadis serve
  aadis serve --port 9090
  AADIS_API_KEY=sekret aadis serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			core, err := buildQACore(ctx, log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer core.close()

			if host == "" {
				host = os.Getenv("AADIS_HOST")
			}
			if port == 0 {
				if v := os.Getenv("AADIS_PORT"); v != "" {
					if p, err := strconv.Atoi(v); err == nil {
						port = p
					}
				}
			}
			rateLimit := 0.0
			if v := os.Getenv("AADIS_RATE_LIMIT"); v != "" {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					rateLimit = f
				}
			}
			rateBurst := 0
			if v := os.Getenv("AADIS_RATE_BURST"); v != "" {
				if b, err := strconv.Atoi(v); err == nil {
					rateBurst = b
				}
			}

			srv, err := server.New(core.orch, &server.Config{
				Host:      host,
				Port:      port,
				Logger:    log,
				Pingers:   core.pingers,
				RateLimit: rateLimit,
				RateBurst: rateBurst,
				APIKey:    os.Getenv("AADIS_API_KEY"),
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Host address to bind to (default: 127.0.0.1)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "TCP port to listen on (default: 8080)")

	return cmd
}
