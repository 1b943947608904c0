package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/local-notification/internal/config"
	"github.com/oshokin/local-notification/internal/logger"
	"github.com/oshokin/local-notification/internal/service/client"
	"github.com/oshokin/local-notification/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// serverAddress overrides the server address from config.
	serverAddress string

	// rootCmd is the notifyctl command tree.
	rootCmd = &cobra.Command{
		Use:   "notifyctl",
		Short: "Talk to the local notification daemon.",
		Long: `Calls the notification facade served by notifyd.

Values are printed on stdout, one per line; absent deep-link values print null.
Logs go to stderr.`,
		SilenceUsage: true,
	}
)

// Execute runs the notifyctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)

	err := rootCmd.ExecuteContext(ctx)

	stop()
	logger.Sync()

	if err != nil {
		os.Exit(1)
	}
}

// withSession dials notifyd for the duration of one command.
func withSession(run func(ctx context.Context, s *client.Session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := logger.WithName(cmd.Context(), "notifyctl")

		s, err := client.Connect(ctx, &client.Options{
			ConfigPath:    configPath,
			ServerAddress: serverAddress,
			Out:           cmd.OutOrStdout(),
		})
		if err != nil {
			return err
		}

		defer func() {
			_ = s.Close()
		}()

		return run(ctx, s, args)
	}
}

// simpleCommand builds a no-argument command around one session call.
func simpleCommand(use, short string, call func(*client.Session, context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: withSession(func(ctx context.Context, s *client.Session, _ []string) error {
			return call(s, ctx)
		}),
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&serverAddress, "server", "s", "", "override server address from config")

	rootCmd.AddCommand(
		newInitCommand(),
		simpleCommand("inited", "Print whether the facade is initialized.", (*client.Session).IsInited),
		simpleCommand("enabled", "Print whether notifications are allowed.", (*client.Session).IsEnabled),
		newScheduleCommand(),
		newCancelCommand(),
		simpleCommand("cancel-all", "Call cancel-all, which notifyd does not implement.", (*client.Session).CancelAll),
		simpleCommand("register-remote", "Call the push registration placeholder.", (*client.Session).RegisterRemote),
		simpleCommand("token", "Print the push device token.", (*client.Session).DeviceToken),
		simpleCommand("extras", "Print launch extras as YAML.", (*client.Session).Extras),
		simpleCommand("action", "Print the deep-link action or null.", (*client.Session).Action),
		simpleCommand("uri", "Print the deep-link URI or null.", (*client.Session).URI),
		simpleCommand("resume", "Report a resume so launch parameters are read again.", (*client.Session).Resume),
		simpleCommand("pending", "List pending alerts.", (*client.Session).Pending),
		simpleCommand("watch", "Print permission results until interrupted.", (*client.Session).Watch),
		newLaunchCommand(),
	)
}
