package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aibee/wizard/internal/cli"
	httpAdapter "github.com/aibee/wizard/pkg/adapters/http"
	"github.com/aibee/wizard/pkg/observability"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the wizard as a JSON API over HTTP. Sessions are selected with the
X-Session-ID header; Prometheus metrics are served on /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		metrics := observability.NewMetrics()
		engine, stores := openEngine(cli.EngineOptions{Metrics: metrics})
		defer stores.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if cfg.Watch {
			exitOnError("Error watching table", engine.AutoReload(ctx))
		}

		handler := httpAdapter.NewHandler(engine,
			httpAdapter.WithMetrics(metrics),
			httpAdapter.WithLogger(logger),
		)

		srv := &http.Server{
			Addr:    cfg.Server.Addr,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("Starting wizard server", "addr", srv.Addr, "table", cfg.Table, "store", cfg.Store.Kind)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				fmt.Printf("Server error: %v\n", err)
				os.Exit(1)
			}

		case sig := <-shutdown:
			logger.Info("Start shutdown", "signal", sig.String())
			cancel()

			// Give outstanding requests a deadline for completion.
			shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer stop()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Graceful shutdown did not complete", "timeout", cfg.Server.ShutdownTimeout, "err", err)
				if err := srv.Close(); err != nil {
					logger.Error("Error killing server", "err", err)
				}
			}
			logger.Info("Wizard server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (default from config, :8080)")
}
