package notification

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	domain "github.com/oshokin/local-notification/internal/domain/notification"
	"github.com/oshokin/local-notification/internal/eventbus"
	"github.com/oshokin/local-notification/internal/logger"
	"github.com/oshokin/local-notification/internal/service/launch"
	"github.com/oshokin/local-notification/internal/service/permission"
)

// PermissionRequestCode identifies the facade's own permission requests.
const PermissionRequestCode = 1001

// AlarmScheduler is the alarm subsystem the facade registers alerts with.
type AlarmScheduler interface {
	Set(ctx context.Context, alert *domain.Alert) error
	Cancel(ctx context.Context, tag int) error
}

// Options holds the facade's collaborators.
type Options struct {
	Alarms AlarmScheduler
	Gate   permission.Gate
	Launch launch.Source
	Bus    eventbus.Bus
	// Now overrides the clock, time.Now when nil.
	Now func() time.Time
}

// Facade is the notification API exposed to the host application.
type Facade struct {
	alarms AlarmScheduler
	gate   permission.Gate
	launch launch.Source
	bus    eventbus.Bus
	now    func() time.Time

	// mu protects launchCtx.
	mu        sync.Mutex
	launchCtx domain.LaunchContext
}

// New creates a facade. Missing Gate, Launch and Bus fall back to an open
// gate, no launch intent and a private bus.
func New(opts Options) *Facade {
	f := &Facade{
		alarms: opts.Alarms,
		gate:   opts.Gate,
		launch: opts.Launch,
		bus:    opts.Bus,
		now:    opts.Now,
	}

	if f.gate == nil {
		f.gate = permission.Open{}
	}

	if f.launch == nil {
		f.launch = launch.NewStaticSource(nil)
	}

	if f.bus == nil {
		f.bus = eventbus.New()
	}

	if f.now == nil {
		f.now = time.Now
	}

	return f
}

// Initialize requests notification permission where consent is required.
// The answer arrives later as a permission_result event.
func (f *Facade) Initialize(ctx context.Context) {
	if !f.gate.RequiresConsent() {
		return
	}

	logger.Info(ctx, "Requesting notification permission")

	f.gate.Request(ctx, PermissionRequestCode, f.OnPermissionResult)
}

// IsInited always reports true.
func (f *Facade) IsInited() bool {
	return true
}

// IsEnabled reports whether the user currently allows notifications.
func (f *Facade) IsEnabled(ctx context.Context) bool {
	return f.gate.Enabled(ctx)
}

// ScheduleAlert registers a one-shot alert delaySeconds from now under tag.
func (f *Facade) ScheduleAlert(ctx context.Context, message, title string, delaySeconds, tag int) error {
	return f.schedule(ctx, message, title, delaySeconds, tag, 0)
}

// ScheduleRepeatingAlert registers an alert that first fires delaySeconds
// from now and then every repeatIntervalSeconds until cancelled.
// A non-positive interval schedules a one-shot.
func (f *Facade) ScheduleRepeatingAlert(
	ctx context.Context,
	message, title string,
	delaySeconds, tag, repeatIntervalSeconds int,
) error {
	return f.schedule(ctx, message, title, delaySeconds, tag, max(repeatIntervalSeconds, 0))
}

// CancelAlert unregisters the alert for tag, if any.
func (f *Facade) CancelAlert(ctx context.Context, tag int) error {
	if err := f.alarms.Cancel(ctx, tag); err != nil {
		return fmt.Errorf("cancel alert %d: %w", tag, err)
	}

	return nil
}

// CancelAllAlerts is not implemented: it only logs a warning.
func (f *Facade) CancelAllAlerts(ctx context.Context) {
	logger.Warn(ctx, "Cancel all alerts is not implemented")
}

// RegisterRemoteNotification is a placeholder for push registration.
func (f *Facade) RegisterRemoteNotification(context.Context) {}

// DeviceToken always returns an empty token.
func (f *Facade) DeviceToken() string {
	return ""
}

// LaunchExtras returns a copy of the launch extras of the current resume cycle.
func (f *Facade) LaunchExtras(ctx context.Context) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ensureCheckedLocked(ctx)

	return maps.Clone(f.launchCtx.Extras)
}

// DeepLinkAction returns the launch action and whether it is present.
func (f *Facade) DeepLinkAction(ctx context.Context) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ensureCheckedLocked(ctx)

	return deref(f.launchCtx.Action)
}

// DeepLinkURI returns the launch URI and whether it is present.
func (f *Facade) DeepLinkURI(ctx context.Context) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ensureCheckedLocked(ctx)

	return deref(f.launchCtx.URI)
}

// OnResume marks the launch context stale; the next getter re-reads it.
func (f *Facade) OnResume(ctx context.Context) {
	f.mu.Lock()
	f.launchCtx.Checked = false
	f.mu.Unlock()

	logger.Debug(ctx, "Launch context reset on resume")
}

// OnPermissionResult forwards the answer to our own permission request as an event.
func (f *Facade) OnPermissionResult(requestID int, granted bool) {
	if requestID != PermissionRequestCode {
		return
	}

	f.bus.Publish(eventbus.Event{
		Type: eventbus.EventPermissionResult,
		Time: f.now(),
		Data: granted,
	})
}

// Subscribe returns a channel of facade events.
func (f *Facade) Subscribe(buffer int) (<-chan eventbus.Event, func()) {
	return f.bus.Subscribe(buffer)
}

// schedule validates the delay and hands the alert to the alarm subsystem.
func (f *Facade) schedule(ctx context.Context, message, title string, delaySeconds, tag, repeatSeconds int) error {
	if delaySeconds <= 0 {
		logger.DebugKV(ctx, "Ignoring alert with non-positive delay", "tag", tag, "delay_seconds", delaySeconds)

		return nil
	}

	alert := &domain.Alert{
		Tag:            tag,
		Title:          title,
		Message:        message,
		FireAt:         f.now().Add(time.Duration(delaySeconds) * time.Second),
		RepeatInterval: time.Duration(repeatSeconds) * time.Second,
	}

	if err := f.alarms.Set(ctx, alert); err != nil {
		return fmt.Errorf("schedule alert %d: %w", tag, err)
	}

	return nil
}

// ensureCheckedLocked reads the launch intent once per resume cycle. Caller holds f.mu.
func (f *Facade) ensureCheckedLocked(ctx context.Context) {
	if f.launchCtx.Checked {
		return
	}

	intent, err := f.launch.Intent(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Read launch intent failed", "error", err)
	}

	if intent == nil {
		// Stay unchecked so the next getter tries again.
		f.launchCtx = domain.LaunchContext{}

		return
	}

	extras := make(map[string]any, len(intent.Extras))

	for _, e := range intent.Extras {
		value, err := launch.DecodeValue(e.Value)
		if err != nil {
			logger.WarnKV(ctx, "Skipping launch extra", "key", e.Key, "error", err)

			continue
		}

		extras[e.Key] = value
	}

	f.launchCtx = domain.LaunchContext{
		Extras:  extras,
		Action:  optional(intent.Action),
		URI:     optional(intent.URI),
		Checked: true,
	}

	logger.DebugKV(ctx, "Launch intent read", "extras", len(extras), "action", intent.Action, "uri", intent.URI)
}

// optional maps an empty string to nil.
func optional(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

// deref unpacks an optional string.
func deref(s *string) (string, bool) {
	if s == nil {
		return "", false
	}

	return *s, true
}
