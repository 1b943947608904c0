package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/local-notification/internal/config"
	"github.com/oshokin/local-notification/internal/logger"
	"github.com/oshokin/local-notification/internal/service/server"
	"github.com/oshokin/local-notification/internal/version"
)

var (
	// options collects flag values for server.Run.
	options server.Options

	// rootCmd runs the notification daemon.
	rootCmd = &cobra.Command{
		Use:   "notifyd [listen-address]",
		Short: "Run the local notification daemon.",
		Long: `Starts the daemon that schedules local alerts and shows them when they fire.

Pending alerts are kept in a SQLite file and restored on start.
Only the port from server_addr config is used for listening (e.g. :7070).
Launch parameters come from --extra/--action/--uri or, without them, from the
intent file, which is read again after every "notifyctl resume".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			defer logger.Sync()

			if len(args) > 0 {
				options.ListenAddress = args[0]
			}

			return server.Run(ctx, &options)
		},
	}
)

// Execute runs the notifyd CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&options.ConfigPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVar(&options.AlarmDB, "alarm-db", "", "override the SQLite file holding pending alerts")
	flags.StringArrayVarP(&options.Extras, "extra", "e", nil, "launch extra as key=value, value may be typed (int:7)")
	flags.StringVar(&options.Action, "action", "", "launch deep-link action")
	flags.StringVar(&options.URI, "uri", "", "launch deep-link URI")
}
