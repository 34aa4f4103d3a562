package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/vent-alarm/internal/config"
	"github.com/oshokin/vent-alarm/internal/event"
	"github.com/oshokin/vent-alarm/internal/service/client"
	"github.com/oshokin/vent-alarm/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// serverAddress overrides the panel address from the configuration.
	serverAddress string
	// journalLimit is the number of journal entries to show.
	journalLimit int

	// rootCmd represents the base command of the remote panel.
	rootCmd = &cobra.Command{
		Use:   "alarm-panel",
		Short: "Remote maintenance panel for the ventilator alarm controller.",
		Long: `Sends alarm, key and reset commands to a running alarm-controller and
shows its state. Commands are queued behind alarms already being processed;
the panel never changes alarm state directly.`,
		SilenceUsage: true,
	}

	raiseCmd = &cobra.Command{
		Use:   "raise <alarm>",
		Short: "Raise an alarm by name or id.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.Raise(cmd.Context(), options(cmd), args[0])
		},
	}

	pressCmd = &cobra.Command{
		Use:   "press <key>",
		Short: "Press a front-panel key (mute, set, increment, decrement).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.PressKey(cmd.Context(), options(cmd), args[0])
		},
	}

	muteCmd = &cobra.Command{
		Use:   "mute",
		Short: "Mute the active alarm.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return client.PressKey(cmd.Context(), options(cmd), string(event.KeyMute))
		},
	}

	resetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Turn every alarm off and clear mute counters.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return client.Reset(cmd.Context(), options(cmd))
		},
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show the active alarm and every alarm state.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return client.Status(cmd.Context(), options(cmd))
		},
	}

	journalCmd = &cobra.Command{
		Use:   "journal",
		Short: "Show the most recent audit journal entries.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return client.Journal(cmd.Context(), options(cmd), journalLimit)
		},
	}

	catalogCmd = &cobra.Command{
		Use:   "catalog",
		Short: "List the configured alarm catalog.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return client.Catalog(options(cmd))
		},
	}
)

func options(cmd *cobra.Command) *client.Options {
	return &client.Options{
		ConfigPath:    cfgPath,
		ServerAddress: serverAddress,
		Output:        cmd.OutOrStdout(),
	}
}

// Execute runs the alarm-panel CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1) //nolint:gocritic // stop is called explicitly above.
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&serverAddress, "server", "s", "", "panel address of the controller (overrides config)")

	journalCmd.Flags().IntVarP(&journalLimit, "limit", "n", 20, "number of entries to show, 0 for all")

	rootCmd.AddCommand(raiseCmd, pressCmd, muteCmd, resetCmd, statusCmd, journalCmd, catalogCmd)
}
