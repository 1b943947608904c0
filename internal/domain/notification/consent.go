package notification

import "time"

// Actor identifies who answered a permission prompt.
type Actor struct {
	// Hostname is the machine name where the answer was given.
	Hostname string
	// Username is the system user who answered.
	Username string
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// Consent is the persisted answer to the notification permission prompt.
type Consent struct {
	// Timestamp is when the answer was recorded.
	Timestamp time.Time
	// Actor is who answered, nil when unknown.
	Actor *Actor
	// Granted reports whether notifications are allowed.
	Granted bool
}

// Clone returns a copy of the consent to avoid leaking internal references.
func (c *Consent) Clone() *Consent {
	return &Consent{
		Timestamp: c.Timestamp,
		Actor:     c.Actor.Clone(),
		Granted:   c.Granted,
	}
}
