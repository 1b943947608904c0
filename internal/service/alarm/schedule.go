package alarm

import (
	"time"

	domain "github.com/oshokin/local-notification/internal/domain/notification"
)

// alertSchedule is a cron.Schedule that starts at fireAt and, for repeating
// alerts, continues every interval aligned to fireAt.
//
// Next is only called from the cron run goroutine.
type alertSchedule struct {
	fireAt time.Time
	every  time.Duration
	armed  bool
}

// newSchedule builds the schedule for an alert.
func newSchedule(alert *domain.Alert) *alertSchedule {
	return &alertSchedule{
		fireAt: alert.FireAt,
		every:  alert.RepeatInterval,
	}
}

// Next returns the next activation after t. A zero time means never.
func (s *alertSchedule) Next(t time.Time) time.Time {
	if !s.armed {
		s.armed = true

		// An overdue one-shot still fires once, right away.
		if s.every <= 0 || !t.After(s.fireAt) {
			return s.fireAt
		}
	}

	if s.every <= 0 {
		return time.Time{}
	}

	if t.Before(s.fireAt) {
		return s.fireAt
	}

	periods := t.Sub(s.fireAt)/s.every + 1

	return s.fireAt.Add(periods * s.every)
}
