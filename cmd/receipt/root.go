package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/receipt"
	"github.com/aretw0/receipt/internal/platform"
	"github.com/aretw0/receipt/pkg/core"
)

var (
	verbose    bool
	configPath string
	dataDir    string
	devSafety  bool

	// cfg is loaded once per invocation by the root PersistentPreRun.
	cfg platform.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "receipt",
	Short: "A shared, append-only receipt log",
	Long: `receipt keeps a running log of whimsical receipt entries in a single JSON file.
Items and bonus coupons are appended at the head; any number of viewers poll
the log over HTTP and see the same sequence.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var err error
		if configPath != "" {
			cfg, err = platform.LoadConfig(configPath)
		} else {
			cfg, err = discoverConfig()
		}
		if err != nil {
			fatal("Failed to load config", err)
		}
		if dataDir != "" {
			cfg.Data = dataDir
		}

		level, err := platform.ParseLevel(cfg.LogLevel)
		if err != nil {
			fatal("Invalid log level", err)
		}
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)

		if cfg.Source != "" {
			logger.Debug("loaded config", "path", cfg.Source)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to receipt.yaml (default: discovered upwards from the working directory)")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data", "d", "", "Data directory holding the log (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&devSafety, "dev-safety", true, "Sandbox the data directory under go run")
}

func discoverConfig() (platform.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return platform.Config{}, err
	}
	return platform.DiscoverConfig(wd)
}

// openService builds the service from the loaded config plus extra options.
func openService(extra ...receipt.Option) *core.Service {
	opts := append(cfg.Options(),
		receipt.WithLogger(slog.Default()),
		receipt.WithDevSafety(devSafety),
	)
	opts = append(opts, extra...)

	svc, err := receipt.New(cfg.Data, opts...)
	if err != nil {
		fatal("Failed to open receipt log", err)
	}
	return svc
}
