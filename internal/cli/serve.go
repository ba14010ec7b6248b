package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/FACorreiaa/triply/internal/server"
)

func (a *app) serveCommand() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  `Serve location search and itinerary generation over HTTP until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				a.cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			otelShutdown, err := server.InitObservability(ctx, a.cfg.Server, a.logger)
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := otelShutdown(shutdownCtx); err != nil {
					a.logger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
				}
			}()

			srv := server.New(ctx, a.cfg, a.logger)

			if a.cfg.Server.EnablePprof {
				pprofServer := server.StartPprofServer(a.cfg.Server.PprofAddr, a.logger)
				defer func() { _ = pprofServer.Close() }()
			}

			a.logger.Info("Server starting", zap.String("port", a.cfg.Server.Port))
			if err := server.Run(ctx, srv.HTTPServer(), a.logger); err != nil {
				return fmt.Errorf("server: %w", err)
			}
			a.logger.Info("Graceful shutdown complete")
			return nil
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides SERVER_PORT)")
	return cmd
}
