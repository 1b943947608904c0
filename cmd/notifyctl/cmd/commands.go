package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/local-notification/internal/logger"
	"github.com/oshokin/local-notification/internal/service/client"
)

// newInitCommand builds "init".
func newInitCommand() *cobra.Command {
	var wait time.Duration

	c := &cobra.Command{
		Use:   "init",
		Short: "Request notification permission.",
		Long: `Asks notifyd to request notification permission.

With --wait the answer is printed once it arrives. When nothing arrives in time,
because no prompt is needed or nobody answered, the current state is printed.`,
		Args: cobra.NoArgs,
		RunE: withSession(func(ctx context.Context, s *client.Session, _ []string) error {
			return s.Initialize(ctx, wait)
		}),
	}

	c.Flags().DurationVarP(&wait, "wait", "w", 0, "wait this long for the permission answer")

	return c
}

// newScheduleCommand builds "schedule".
func newScheduleCommand() *cobra.Command {
	var repeat int

	c := &cobra.Command{
		Use:   "schedule MESSAGE TITLE DELAY_SECONDS TAG",
		Short: "Schedule an alert, replacing any alert with the same tag.",
		Args:  cobra.ExactArgs(4),
		RunE: withSession(func(ctx context.Context, s *client.Session, args []string) error {
			delay, err := parseInt("delay", args[2])
			if err != nil {
				return err
			}

			tag, err := parseInt("tag", args[3])
			if err != nil {
				return err
			}

			return s.Schedule(ctx, args[0], args[1], delay, tag, repeat)
		}),
	}

	c.Flags().IntVarP(&repeat, "repeat", "r", 0, "repeat interval in seconds, 0 for a one-shot alert")

	return c
}

// newCancelCommand builds "cancel".
func newCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel TAG",
		Short: "Cancel the alert with the given tag.",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(ctx context.Context, s *client.Session, args []string) error {
			tag, err := parseInt("tag", args[0])
			if err != nil {
				return err
			}

			return s.Cancel(ctx, tag)
		}),
	}
}

// newLaunchCommand builds "launch". It works without a running daemon.
func newLaunchCommand() *cobra.Command {
	var (
		opts   client.LaunchOptions
		resume bool
	)

	c := &cobra.Command{
		Use:   "launch",
		Short: "Write launch parameters to the intent file.",
		Long: `Writes the intent file notifyd reads as launch parameters.

Extras are key=value; values may carry a type prefix: string:, int:, float:,
bool: or list: (comma separated). With --resume notifyd is told to read the
file right away.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := logger.WithName(cmd.Context(), "notifyctl")

			opts.ConfigPath = configPath

			if _, err := client.WriteLaunch(ctx, &opts); err != nil {
				return err
			}

			if !resume {
				return nil
			}

			return withSession(func(ctx context.Context, s *client.Session, _ []string) error {
				return s.Resume(ctx)
			})(cmd, nil)
		},
	}

	flags := c.Flags()
	flags.StringVar(&opts.IntentFile, "intent-file", "", "override the intent file from config")
	flags.StringArrayVarP(&opts.Extras, "extra", "e", nil, "launch extra as key=value")
	flags.StringVar(&opts.Action, "action", "", "deep-link action")
	flags.StringVar(&opts.URI, "uri", "", "deep-link URI")
	flags.BoolVar(&resume, "resume", false, "tell notifyd to re-read launch parameters")

	return c
}

// parseInt parses a decimal command argument.
func parseInt(name, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", name, err)
	}

	return n, nil
}
