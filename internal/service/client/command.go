package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/local-notification/internal/config"
	domain "github.com/oshokin/local-notification/internal/domain/notification"
	"github.com/oshokin/local-notification/internal/logger"
	"github.com/oshokin/local-notification/internal/service/common"
	"github.com/oshokin/local-notification/internal/service/launch"
)

// Options configures a notifyctl session.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ServerAddress overrides server address from config when specified.
	ServerAddress string
	// Out receives command output, os.Stdout when nil.
	Out io.Writer
}

// facade is the unary part of the notification service used by a session.
type facade interface {
	Initialize(ctx context.Context) error
	IsInited(ctx context.Context) (bool, error)
	IsEnabled(ctx context.Context) (bool, error)
	ScheduleAlert(ctx context.Context, message, title string, delaySeconds, tag int) error
	ScheduleRepeatingAlert(ctx context.Context, message, title string, delaySeconds, tag, repeatIntervalSeconds int) error
	CancelAlert(ctx context.Context, tag int) error
	CancelAllAlerts(ctx context.Context) error
	RegisterRemoteNotification(ctx context.Context) error
	DeviceToken(ctx context.Context) (string, error)
	LaunchExtras(ctx context.Context) (map[string]any, error)
	DeepLinkAction(ctx context.Context) (string, bool, error)
	DeepLinkURI(ctx context.Context) (string, bool, error)
	Resume(ctx context.Context) error
	Pending(ctx context.Context) ([]*domain.Alert, error)
}

// Session is one notifyctl connection to notifyd.
type Session struct {
	rpc    facade
	client *common.Client
	out    io.Writer
}

// nullText is printed for absent optional values.
const nullText = "null"

// Connect loads settings and dials notifyd.
func Connect(ctx context.Context, opts *Options) (*Session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if err = logger.Configure(cfg.LogLevel); err != nil {
		return nil, err
	}

	serverAddress := cfg.ServerAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	c, err := common.Dial(ctx, serverAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return nil, err
	}

	logger.DebugKV(ctx, "Connected to notifyd", "server_address", serverAddress)

	return &Session{
		rpc:    c,
		client: c,
		out:    outOrStdout(opts.Out),
	}, nil
}

// Close releases the connection.
func (s *Session) Close() error {
	if s.client == nil {
		return nil
	}

	return s.client.Close()
}

// Initialize requests permission. With a positive wait it prints the answer,
// or the current permission state when no answer arrives within wait.
func (s *Session) Initialize(ctx context.Context, wait time.Duration) error {
	if wait <= 0 {
		return s.rpc.Initialize(ctx)
	}

	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	// Subscribe first so the answer to this very request is not missed.
	stream, err := s.client.PermissionResults(waitCtx)
	if err != nil {
		return err
	}

	if err = s.rpc.Initialize(ctx); err != nil {
		return err
	}

	granted, err := stream.Recv()
	if err == nil {
		return s.println(strconv.FormatBool(granted))
	}

	if waitCtx.Err() == nil {
		return fmt.Errorf("receive permission result: %w", err)
	}

	// No prompt answered in time, or none was needed.
	logger.DebugKV(ctx, "No permission result received", "wait", wait)

	return s.IsEnabled(ctx)
}

// IsInited prints whether the facade is initialized.
func (s *Session) IsInited(ctx context.Context) error {
	inited, err := s.rpc.IsInited(ctx)
	if err != nil {
		return err
	}

	return s.println(strconv.FormatBool(inited))
}

// IsEnabled prints whether notifications are allowed.
func (s *Session) IsEnabled(ctx context.Context) error {
	enabled, err := s.rpc.IsEnabled(ctx)
	if err != nil {
		return err
	}

	return s.println(strconv.FormatBool(enabled))
}

// Schedule registers an alert. A positive repeat schedules a repeating alert.
func (s *Session) Schedule(ctx context.Context, message, title string, delaySeconds, tag, repeatSeconds int) error {
	if repeatSeconds > 0 {
		if err := s.rpc.ScheduleRepeatingAlert(ctx, message, title, delaySeconds, tag, repeatSeconds); err != nil {
			return err
		}

		logger.InfoKV(ctx, "Repeating alert scheduled",
			"tag", tag, "delay_seconds", delaySeconds, "repeat_interval_seconds", repeatSeconds)

		return nil
	}

	if err := s.rpc.ScheduleAlert(ctx, message, title, delaySeconds, tag); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Alert scheduled", "tag", tag, "delay_seconds", delaySeconds)

	return nil
}

// Cancel unregisters the alert for tag.
func (s *Session) Cancel(ctx context.Context, tag int) error {
	return s.rpc.CancelAlert(ctx, tag)
}

// CancelAll calls the cancel-all operation, which notifyd does not implement.
func (s *Session) CancelAll(ctx context.Context) error {
	if err := s.rpc.CancelAllAlerts(ctx); err != nil {
		return err
	}

	logger.Warn(ctx, "notifyd does not cancel all alerts; cancel them by tag")

	return nil
}

// RegisterRemote calls the push registration placeholder.
func (s *Session) RegisterRemote(ctx context.Context) error {
	return s.rpc.RegisterRemoteNotification(ctx)
}

// DeviceToken prints the push device token.
func (s *Session) DeviceToken(ctx context.Context) error {
	token, err := s.rpc.DeviceToken(ctx)
	if err != nil {
		return err
	}

	return s.println(token)
}

// Extras prints launch extras as YAML, sorted by key.
func (s *Session) Extras(ctx context.Context) error {
	extras, err := s.rpc.LaunchExtras(ctx)
	if err != nil {
		return err
	}

	if len(extras) == 0 {
		return s.println("{}")
	}

	data, err := yaml.Marshal(extras)
	if err != nil {
		return fmt.Errorf("marshal extras: %w", err)
	}

	_, err = s.out.Write(data)

	return err
}

// Action prints the deep-link action or null.
func (s *Session) Action(ctx context.Context) error {
	return s.printOptional(s.rpc.DeepLinkAction(ctx))
}

// URI prints the deep-link URI or null.
func (s *Session) URI(ctx context.Context) error {
	return s.printOptional(s.rpc.DeepLinkURI(ctx))
}

// Resume tells notifyd the host came back to the foreground.
func (s *Session) Resume(ctx context.Context) error {
	return s.rpc.Resume(ctx)
}

// Pending prints registered alerts as a table.
func (s *Session) Pending(ctx context.Context) error {
	alerts, err := s.rpc.Pending(ctx)
	if err != nil {
		return err
	}

	return writePending(s.out, alerts)
}

// Watch prints permission answers until ctx is done.
func (s *Session) Watch(ctx context.Context) error {
	stream, err := s.client.PermissionResults(ctx)
	if err != nil {
		return err
	}

	logger.Info(ctx, "Watching permission results")

	for {
		granted, err := stream.Recv()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			return fmt.Errorf("receive permission result: %w", err)
		}

		if err = s.println("permission_result granted=" + strconv.FormatBool(granted)); err != nil {
			return err
		}
	}
}

// LaunchOptions describes a launch intent written by notifyctl.
type LaunchOptions struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// IntentFile overrides the intent file from config.
	IntentFile string
	// Extras are key=value pairs with optional type prefixes.
	Extras []string
	// Action is the deep-link action.
	Action string
	// URI is the deep-link URI.
	URI string
}

// errEmptyIntent is returned when a launch has nothing to write.
var errEmptyIntent = errors.New("launch needs at least one of --extra, --action or --uri")

// WriteLaunch writes the intent file notifyd reads on its next resume cycle.
// Values are validated so notifyd never has to skip them.
func WriteLaunch(ctx context.Context, opts *LaunchOptions) (string, error) {
	path := opts.IntentFile
	if path == "" {
		cfg, err := config.Load(opts.ConfigPath)
		if err != nil {
			return "", err
		}

		path = cfg.IntentFile
	}

	if len(opts.Extras) == 0 && opts.Action == "" && opts.URI == "" {
		return "", errEmptyIntent
	}

	extras, err := launch.ParseExtras(opts.Extras)
	if err != nil {
		return "", err
	}

	for _, e := range extras {
		if _, err = launch.DecodeValue(e.Value); err != nil {
			return "", fmt.Errorf("extra %q: %w", e.Key, err)
		}
	}

	intent := &launch.Intent{
		Extras: extras,
		Action: opts.Action,
		URI:    opts.URI,
	}

	if err = launch.WriteIntentFile(path, intent); err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Launch intent written", "intent_file", path, "extras", len(extras))

	return path, nil
}

// writePending renders alerts as an aligned table.
func writePending(out io.Writer, alerts []*domain.Alert) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "TAG\tFIRE AT\tREPEAT\tTITLE\tMESSAGE")

	for _, a := range alerts {
		repeat := "-"
		if a.Repeating() {
			repeat = a.RepeatInterval.String()
		}

		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			a.Tag, a.FireAt.Local().Format(time.DateTime), repeat, a.Title, a.Message)
	}

	return w.Flush()
}

// printOptional prints a string-or-null result.
func (s *Session) printOptional(value string, ok bool, err error) error {
	if err != nil {
		return err
	}

	if !ok {
		return s.println(nullText)
	}

	return s.println(value)
}

// println writes one line of command output.
func (s *Session) println(line string) error {
	_, err := fmt.Fprintln(s.out, line)

	return err
}

// outOrStdout defaults a nil writer to os.Stdout.
func outOrStdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}

	return w
}
