package notification

import "time"

// Alert is a scheduled local notification.
type Alert struct {
	// Tag identifies the alert. At most one alert per tag is pending.
	Tag int
	// Title is the notification title.
	Title string
	// Message is the notification body.
	Message string
	// FireAt is the absolute time of the first firing.
	FireAt time.Time
	// RepeatInterval is the period between firings. Zero means one-shot.
	RepeatInterval time.Duration
}

// Repeating reports whether the alert re-fires after FireAt.
func (a *Alert) Repeating() bool {
	return a.RepeatInterval > 0
}

// Clone returns a copy of the alert.
func (a *Alert) Clone() *Alert {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// Notification is what gets presented to the user when an alert fires.
type Notification struct {
	Tag     int
	Title   string
	Message string
}

// NotificationOf builds the presented notification for an alert.
func NotificationOf(a *Alert) Notification {
	return Notification{
		Tag:     a.Tag,
		Title:   a.Title,
		Message: a.Message,
	}
}
