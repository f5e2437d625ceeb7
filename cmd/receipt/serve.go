package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/receipt"
	"github.com/aretw0/receipt/pkg/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the receipt log over HTTP",
	Long: `Start the HTTP server in front of the log:

  GET  /api/receipts         full log, newest first
  POST /api/receipts         append one entry
  POST /api/submit           compose entries from {"text": "..."}
  GET  /api/receipts/stream  server-sent snapshots on change
  GET  /api/state            introspection
  GET  /healthz              liveness`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}
		logger := slog.Default()

		svc := openService(
			receipt.WithAutoInit(true),
			receipt.WithWatcherErrorHandler(func(err error) {
				logger.Error("watcher failure", "error", err)
			}),
		)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := httpapi.New(svc, httpapi.WithLogger(logger))
		if err := srv.ListenAndServe(ctx, cfg.Addr); err != nil {
			fatal("Server failed", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "Listen address (overrides config, default :8080)")
}
