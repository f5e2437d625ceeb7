package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/receipt/pkg/client"
	"github.com/aretw0/receipt/pkg/core"
	"github.com/aretw0/receipt/pkg/viewer"
)

var (
	tailServer   string
	tailInterval time.Duration
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow a receipt server, printing new entries",
	Long: `Poll a receipt server on a fixed interval and print entries as they appear,
oldest first. Failed polls are logged and retried on the next tick.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		interval := tailInterval
		if !cmd.Flags().Changed("interval") && cfg.PollInterval > 0 {
			interval = cfg.PollInterval
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p := viewer.New(client.New(tailServer),
			viewer.WithInterval(interval),
			viewer.WithLogger(slog.Default()),
			viewer.WithOnUpdate(func(_, fresh []core.Entry) {
				for i := len(fresh) - 1; i >= 0; i-- {
					printEntry(os.Stdout, fresh[i])
				}
			}),
		)

		if err := p.Run(ctx); err != nil {
			fatal("Viewer stopped", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(tailCmd)
	tailCmd.Flags().StringVar(&tailServer, "server", "http://localhost:8080", "Base URL of the receipt server")
	tailCmd.Flags().DurationVar(&tailInterval, "interval", viewer.DefaultInterval, "Polling interval")
}
