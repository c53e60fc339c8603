package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vellum-engine/vellum/internal/inspect"
)

const shutdownTimeout = 10 * time.Second

// newServeCommand creates the serve command
func newServeCommand(e *env) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only introspection API",
		Long: `Serve the registry over a read-only JSON API.

Endpoints live under /api/v1: types, enums, buckets, attributes and
modules. GET /health reports registry counts.`,
		Example: `  # Serve on the configured address (server.addr, default :7070)
  vellum serve

  # Serve on another port
  vellum serve --addr :8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = e.cfg.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return e.serve(ctx, cmd, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

func (e *env) serve(ctx context.Context, cmd *cobra.Command, addr string) error {
	serverCfg := inspect.DefaultConfig()
	serverCfg.Address = addr

	server, err := inspect.NewServer(serverCfg, inspect.NewAPI(e.reg, e.logger).Router())
	if err != nil {
		return err
	}
	if err := server.Listen(); err != nil {
		return err
	}

	e.logger.Info("inspect server listening", zap.String("addr", server.Addr()))
	fmt.Fprintf(cmd.OutOrStdout(), "Serving %d types on http://%s\n", e.reg.Len(), server.Addr())

	return server.Run(ctx, shutdownTimeout)
}
