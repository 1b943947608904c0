package presenter

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/local-notification/internal/domain/notification"
)

var errTestNotify = errors.New("test notify error")

// recorder collects presented notifications.
type recorder struct {
	got []domain.Notification
}

// Present appends the notification.
func (r *recorder) Present(_ context.Context, n domain.Notification) error {
	r.got = append(r.got, n)

	return nil
}

// TestDesktop_Present verifies title and message are forwarded and errors wrapped.
func TestDesktop_Present(t *testing.T) {
	t.Parallel()

	var gotTitle, gotMessage string

	d := &Desktop{
		notify: func(title, message string, _ any) error {
			gotTitle, gotMessage = title, message

			return nil
		},
	}

	require.NoError(t, d.Present(context.Background(), domain.Notification{Tag: 1, Title: "t", Message: "hi"}))
	require.Equal(t, "t", gotTitle)
	require.Equal(t, "hi", gotMessage)

	d.notify = func(string, string, any) error { return errTestNotify }
	require.ErrorIs(t, d.Present(context.Background(), domain.Notification{Tag: 1}), errTestNotify)
}

// TestThrottled_SpacesNotifications checks that a burst beyond the limit is delayed.
func TestThrottled_SpacesNotifications(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		rec := new(recorder)
		p := NewThrottled(rec, 1)
		start := time.Now()

		for tag := range 3 {
			require.NoError(t, p.Present(context.Background(), domain.Notification{Tag: tag}))
		}

		require.Len(t, rec.got, 3)
		require.GreaterOrEqual(t, time.Since(start), 2*time.Second)
	})
}

// TestThrottled_CanceledContext ensures a canceled wait does not reach the presenter.
func TestThrottled_CanceledContext(t *testing.T) {
	t.Parallel()

	rec := new(recorder)
	p := NewThrottled(rec, 1)

	require.NoError(t, p.Present(context.Background(), domain.Notification{Tag: 1}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, p.Present(ctx, domain.Notification{Tag: 2}))
	require.Len(t, rec.got, 1)
}

// TestLog_Present verifies the log presenter never fails.
func TestLog_Present(t *testing.T) {
	t.Parallel()

	require.NoError(t, Log{}.Present(context.Background(), domain.Notification{Tag: 1, Title: "t", Message: "m"}))
}
