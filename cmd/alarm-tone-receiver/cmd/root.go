package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-tone/internal/logger"
	"github.com/oshokin/alarm-tone/internal/service/receiver"
	"github.com/oshokin/alarm-tone/internal/version"
)

var (
	// configPath to the receiver settings YAML file.
	configPath string
	// storageDir where delivered files are kept.
	storageDir string
	// httpAddress of the health, metrics and listing endpoints.
	httpAddress string
	// logLevel is the minimum level of printed messages.
	logLevel string

	// rootCmd represents the base command for running the receiver.
	rootCmd = &cobra.Command{
		Use:   "alarm-tone-receiver [listen-address]",
		Short: "Receive and store delivered alarm sound files.",
		Long: `Starts the gRPC receiver that stores WAV files pushed by alarm-tone --remote.

Without a settings file the receiver listens on port 50051 and stores files in ./deliveries.
Only the port of server_addr is used for listening (e.g., :50051).
Listen address can be provided as argument to override it (e.g., :9090, 0.0.0.0:8080).
With --http the receiver also serves /healthz, /metrics, /deliveries and /deliveries/{id}.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("unknown log level %q", logLevel)
			}

			logger.SetLevel(level)

			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			return receiver.Run(ctx, &receiver.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				StorageDir:    storageDir,
				HTTPAddress:   httpAddress,
			})
		},
	}
)

// Execute runs the alarm-tone-receiver CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to settings file (built-in defaults when empty)")
	rootCmd.Flags().StringVarP(&storageDir, "storage-dir", "s", "", "directory for delivered files")
	rootCmd.Flags().StringVar(&httpAddress, "http", "", "address of the HTTP endpoints, e.g. :9090")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
}
