package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/vent-alarm/internal/config"
	"github.com/oshokin/vent-alarm/internal/service/server"
	"github.com/oshokin/vent-alarm/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// rootCmd represents the base command for running the alarm controller.
	rootCmd = &cobra.Command{
		Use:   "alarm-controller [listen-address]",
		Short: "Run the ventilator alarm annunciator.",
		Long: `Runs the alarm annunciator of the ventilator controller.

Alarm conditions, key presses and resets arrive as events and are processed
one at a time. The highest-priority pending alarm drives the beeper and the
display; muting it promotes the next one. An alarm muted too often keeps
being displayed but no longer sounds.

A remote panel gRPC service is served on the configured address, or on the
listen address argument when provided (e.g. 127.0.0.1:50061).
Alarm counters are volatile and start from zero on every start.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			return server.Run(ctx, &server.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
			})
		},
	}
)

// Execute runs the alarm-controller CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
}
