// Package presenter shows fired alerts to the user.
package presenter

import (
	"context"
	"fmt"

	"github.com/gen2brain/beeep"
	"golang.org/x/time/rate"

	domain "github.com/oshokin/local-notification/internal/domain/notification"
	"github.com/oshokin/local-notification/internal/logger"
)

// Presenter displays a notification.
type Presenter interface {
	Present(ctx context.Context, n domain.Notification) error
}

// notifyFunc matches beeep.Notify.
type notifyFunc func(title, message string, icon any) error

// Desktop shows notifications through the OS notification center.
type Desktop struct {
	notify notifyFunc
	// icon is passed to the notifier as is; empty means no icon.
	icon string
}

// NewDesktop returns a presenter backed by beeep.
func NewDesktop(icon string) *Desktop {
	return &Desktop{
		notify: beeep.Notify,
		icon:   icon,
	}
}

// Present shows the notification on the desktop.
func (d *Desktop) Present(ctx context.Context, n domain.Notification) error {
	if err := d.notify(n.Title, n.Message, d.icon); err != nil {
		return fmt.Errorf("desktop notify %d: %w", n.Tag, err)
	}

	logger.DebugKV(ctx, "Notification presented", "tag", n.Tag)

	return nil
}

// Log writes notifications to the logger instead of showing them.
type Log struct{}

// Present logs the notification.
func (Log) Present(ctx context.Context, n domain.Notification) error {
	logger.InfoKV(ctx, "Notification", "tag", n.Tag, "title", n.Title, "message", n.Message)

	return nil
}

// Throttled limits how often the wrapped presenter is called.
// Callers block until the limiter admits them or ctx is done.
type Throttled struct {
	next    Presenter
	limiter *rate.Limiter
}

// NewThrottled wraps next with a limiter of perSecond notifications and an equal burst.
func NewThrottled(next Presenter, perSecond float64) *Throttled {
	burst := max(int(perSecond), 1)

	return &Throttled{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Present waits for the limiter and forwards to the wrapped presenter.
func (t *Throttled) Present(ctx context.Context, n domain.Notification) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("throttle notification %d: %w", n.Tag, err)
	}

	return t.next.Present(ctx, n)
}
