package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rshade/co2focus/internal/config"
	"github.com/rshade/co2focus/internal/server"
)

// NewServeCmd creates the "serve" command, which runs the JSON API until interrupted.
func NewServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard figures over HTTP",
		Long: `Loads the dataset and model once and serves:

  GET /api/figures                      figure list and selector ranges
  GET /api/figures/{id}?mode=&year=     one figure
  GET /api/series/{iso}/{field}?mode=&interpolate=
  GET /healthz
  GET /metrics                          Prometheus metrics

The server refuses to start when the dataset cannot be loaded. A missing model
only disables the projection figure.`,
		Example: `  co2focus serve --addr 127.0.0.1:8050`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeServe(cmd, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from configuration)")
	return cmd
}

func executeServe(cmd *cobra.Command, addr string) error {
	cfg := config.GetGlobalConfig()
	if addr == "" {
		addr = cfg.Server.Addr
	}

	state, err := loadState(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(state, server.Config{
		Addr:            addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	return srv.ListenAndServe(ctx)
}
