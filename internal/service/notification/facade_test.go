package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/local-notification/internal/domain/notification"
	"github.com/oshokin/local-notification/internal/eventbus"
	"github.com/oshokin/local-notification/internal/service/alarm"
	"github.com/oshokin/local-notification/internal/service/launch"
	"github.com/oshokin/local-notification/internal/service/permission"
)

var (
	errTestAlarm  = errors.New("test alarm error")
	errTestIntent = errors.New("test intent error")
)

// fakeAlarms is an in-memory AlarmScheduler keyed by tag.
type fakeAlarms struct {
	alerts map[int]*domain.Alert
	err    error
}

// newFakeAlarms returns an empty scheduler.
func newFakeAlarms() *fakeAlarms {
	return &fakeAlarms{alerts: map[int]*domain.Alert{}}
}

// Set stores the alert under its tag.
func (f *fakeAlarms) Set(_ context.Context, a *domain.Alert) error {
	if f.err != nil {
		return f.err
	}

	f.alerts[a.Tag] = a.Clone()

	return nil
}

// Cancel drops the alert for tag.
func (f *fakeAlarms) Cancel(_ context.Context, tag int) error {
	if f.err != nil {
		return f.err
	}

	delete(f.alerts, tag)

	return nil
}

// fakeSource is a mutable launch.Source that counts reads.
type fakeSource struct {
	intent *launch.Intent
	err    error
	reads  int
}

// Intent returns the configured intent.
func (f *fakeSource) Intent(context.Context) (*launch.Intent, error) {
	f.reads++

	return f.intent, f.err
}

// fakeGate is a consent gate answering synchronously with a fixed value.
type fakeGate struct {
	grant    bool
	requests int
}

// RequiresConsent returns true.
func (*fakeGate) RequiresConsent() bool { return true }

// Enabled returns the configured answer.
func (g *fakeGate) Enabled(context.Context) bool { return g.grant }

// Request answers immediately.
func (g *fakeGate) Request(_ context.Context, requestID int, onResult permission.ResultFunc) {
	g.requests++
	onResult(requestID, g.grant)
}

// fixedNow returns a clock stuck at ts.
func fixedNow(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

// TestFacade_ScheduleIgnoresNonPositiveDelay verifies that delay <= 0 registers nothing.
func TestFacade_ScheduleIgnoresNonPositiveDelay(t *testing.T) {
	t.Parallel()

	alarms := newFakeAlarms()
	f := New(Options{Alarms: alarms})

	for _, delay := range []int{0, -1, -3600} {
		require.NoError(t, f.ScheduleAlert(context.Background(), "hi", "t", delay, 1))
		require.NoError(t, f.ScheduleRepeatingAlert(context.Background(), "hi", "t", delay, 2, 60))
	}

	require.Empty(t, alarms.alerts)
}

// TestFacade_ScheduleComputesFireAt checks the alert fields handed to the alarm subsystem.
func TestFacade_ScheduleComputesFireAt(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_000, 0)
	alarms := newFakeAlarms()
	f := New(Options{Alarms: alarms, Now: fixedNow(now)})

	require.NoError(t, f.ScheduleAlert(context.Background(), "hi", "t", 10, 5))
	require.Equal(t, &domain.Alert{
		Tag:     5,
		Title:   "t",
		Message: "hi",
		FireAt:  now.Add(10 * time.Second),
	}, alarms.alerts[5])

	require.NoError(t, f.ScheduleRepeatingAlert(context.Background(), "tick", "r", 5, 6, 60))
	require.Equal(t, time.Minute, alarms.alerts[6].RepeatInterval)
	require.Equal(t, now.Add(5*time.Second), alarms.alerts[6].FireAt)

	// A non-positive interval degrades to a one-shot.
	require.NoError(t, f.ScheduleRepeatingAlert(context.Background(), "tick", "r", 5, 7, -1))
	require.False(t, alarms.alerts[7].Repeating())
}

// TestFacade_SameTagKeepsLatest ensures scheduling twice with a tag leaves only the latest alert.
func TestFacade_SameTagKeepsLatest(t *testing.T) {
	t.Parallel()

	alarms := newFakeAlarms()
	f := New(Options{Alarms: alarms})

	require.NoError(t, f.ScheduleAlert(context.Background(), "first", "t", 10, 5))
	require.NoError(t, f.ScheduleAlert(context.Background(), "second", "t", 20, 5))

	require.Len(t, alarms.alerts, 1)
	require.Equal(t, "second", alarms.alerts[5].Message)
}

// TestFacade_CancelAlert checks cancel removes the alert and repeating it is a no-op.
func TestFacade_CancelAlert(t *testing.T) {
	t.Parallel()

	alarms := newFakeAlarms()
	f := New(Options{Alarms: alarms})

	require.NoError(t, f.ScheduleAlert(context.Background(), "hi", "t", 10, 5))
	require.NoError(t, f.CancelAlert(context.Background(), 5))
	require.NoError(t, f.CancelAlert(context.Background(), 5))
	require.Empty(t, alarms.alerts)
}

// TestFacade_InfrastructureErrors verifies alarm subsystem failures are wrapped and returned.
func TestFacade_InfrastructureErrors(t *testing.T) {
	t.Parallel()

	alarms := newFakeAlarms()
	alarms.err = errTestAlarm
	f := New(Options{Alarms: alarms})

	require.ErrorIs(t, f.ScheduleAlert(context.Background(), "hi", "t", 10, 5), errTestAlarm)
	require.ErrorIs(t, f.CancelAlert(context.Background(), 5), errTestAlarm)
}

// TestFacade_Stubs covers the fixed answers of the unimplemented surface.
func TestFacade_Stubs(t *testing.T) {
	t.Parallel()

	alarms := newFakeAlarms()
	f := New(Options{Alarms: alarms})

	require.NoError(t, f.ScheduleAlert(context.Background(), "hi", "t", 10, 5))

	f.CancelAllAlerts(context.Background())
	f.RegisterRemoteNotification(context.Background())

	require.Len(t, alarms.alerts, 1)
	require.True(t, f.IsInited())
	require.Empty(t, f.DeviceToken())
	require.True(t, f.IsEnabled(context.Background()))
}

// TestFacade_LaunchContext reads the launch intent and exposes all fields.
func TestFacade_LaunchContext(t *testing.T) {
	t.Parallel()

	src := &fakeSource{intent: &launch.Intent{
		Extras: []launch.Extra{{Key: "promo", Value: "X"}},
		Action: "OPEN",
		URI:    "app://deal/1",
	}}
	f := New(Options{Launch: src})

	require.Equal(t, map[string]any{"promo": "X"}, f.LaunchExtras(context.Background()))

	action, ok := f.DeepLinkAction(context.Background())
	require.True(t, ok)
	require.Equal(t, "OPEN", action)

	uri, ok := f.DeepLinkURI(context.Background())
	require.True(t, ok)
	require.Equal(t, "app://deal/1", uri)

	require.Equal(t, 1, src.reads)
}

// TestFacade_LaunchContextCachedUntilResume verifies the cache survives source changes until OnResume.
func TestFacade_LaunchContextCachedUntilResume(t *testing.T) {
	t.Parallel()

	src := &fakeSource{intent: &launch.Intent{Action: "OPEN"}}
	f := New(Options{Launch: src})

	action, _ := f.DeepLinkAction(context.Background())
	require.Equal(t, "OPEN", action)

	src.intent = &launch.Intent{Action: "SHARE", URI: "app://share"}

	for range 3 {
		action, _ = f.DeepLinkAction(context.Background())
		require.Equal(t, "OPEN", action)

		_, ok := f.DeepLinkURI(context.Background())
		require.False(t, ok)
	}

	require.Equal(t, 1, src.reads)

	f.OnResume(context.Background())

	action, _ = f.DeepLinkAction(context.Background())
	require.Equal(t, "SHARE", action)

	uri, ok := f.DeepLinkURI(context.Background())
	require.True(t, ok)
	require.Equal(t, "app://share", uri)
	require.Equal(t, 2, src.reads)
}

// TestFacade_LaunchExtrasSkipBadKeys ensures one undecodable extra does not block the rest.
func TestFacade_LaunchExtrasSkipBadKeys(t *testing.T) {
	t.Parallel()

	src := &fakeSource{intent: &launch.Intent{Extras: []launch.Extra{
		{Key: "level", Value: "int:abc"},
		{Key: "coins", Value: "int:30"},
		{Key: "promo", Value: "X"},
	}}}
	f := New(Options{Launch: src})

	extras := f.LaunchExtras(context.Background())
	require.Equal(t, map[string]any{"coins": int64(30), "promo": "X"}, extras)

	// Callers get a copy.
	extras["promo"] = "Y"
	require.Equal(t, "X", f.LaunchExtras(context.Background())["promo"])
}

// TestFacade_NoIntentStaysUnchecked verifies a missing or unreadable intent is retried on the next query.
func TestFacade_NoIntentStaysUnchecked(t *testing.T) {
	t.Parallel()

	src := &fakeSource{err: errTestIntent}
	f := New(Options{Launch: src})

	require.Empty(t, f.LaunchExtras(context.Background()))

	src.err = nil

	_, ok := f.DeepLinkAction(context.Background())
	require.False(t, ok)

	src.intent = &launch.Intent{Action: "OPEN"}

	action, ok := f.DeepLinkAction(context.Background())
	require.True(t, ok)
	require.Equal(t, "OPEN", action)
	require.Equal(t, 3, src.reads)
}

// TestFacade_InitializeWithoutConsent verifies no event is emitted when no consent is needed.
func TestFacade_InitializeWithoutConsent(t *testing.T) {
	t.Parallel()

	f := New(Options{})

	events, unsubscribe := f.Subscribe(1)
	defer unsubscribe()

	f.Initialize(context.Background())
	require.Empty(t, events)
}

// TestFacade_InitializeEmitsPermissionResult checks one permission_result event per Initialize.
func TestFacade_InitializeEmitsPermissionResult(t *testing.T) {
	t.Parallel()

	gate := &fakeGate{grant: true}
	f := New(Options{Gate: gate})

	events, unsubscribe := f.Subscribe(4)
	defer unsubscribe()

	f.Initialize(context.Background())
	f.Initialize(context.Background())

	require.Equal(t, 2, gate.requests)
	require.Len(t, events, 2)

	for range 2 {
		e := <-events
		require.Equal(t, eventbus.EventPermissionResult, e.Type)
		require.Equal(t, true, e.Data)
	}

	require.True(t, f.IsEnabled(context.Background()))
}

// TestFacade_OnPermissionResultIgnoresForeignRequests ensures only our request code is forwarded.
func TestFacade_OnPermissionResultIgnoresForeignRequests(t *testing.T) {
	t.Parallel()

	f := New(Options{})

	events, unsubscribe := f.Subscribe(1)
	defer unsubscribe()

	f.OnPermissionResult(42, true)
	require.Empty(t, events)

	f.OnPermissionResult(PermissionRequestCode, false)
	require.Equal(t, false, (<-events).Data)
}

// presented is a concurrency-safe presenter counting notifications.
type presented struct {
	mu sync.Mutex
	n  int
}

// Present counts the notification.
func (p *presented) Present(context.Context, domain.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.n++

	return nil
}

// count returns the number of presented notifications.
func (p *presented) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.n
}

// TestFacade_ScheduleThenCancelNeverFires runs the facade on the real alarm manager.
func TestFacade_ScheduleThenCancelNeverFires(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		p := new(presented)
		m := alarm.NewManager(context.Background(), nil, p)
		require.NoError(t, m.Start(context.Background()))

		f := New(Options{Alarms: m})

		require.NoError(t, f.ScheduleAlert(context.Background(), "hi", "t", 10, 5))
		require.NoError(t, f.CancelAlert(context.Background(), 5))

		require.NoError(t, f.ScheduleAlert(context.Background(), "other", "t", 10, 6))

		time.Sleep(11 * time.Second)
		synctest.Wait()
		require.Equal(t, 1, p.count())

		require.NoError(t, m.Close(context.Background()))
	})
}
