package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestAlertClone verifies that Clone copies fields and handles nil safely.
func TestAlertClone(t *testing.T) {
	t.Parallel()
	require.Nil(t, (*Alert)(nil).Clone())

	a := &Alert{
		Tag:            5,
		Title:          "t",
		Message:        "hi",
		FireAt:         time.Unix(100, 0),
		RepeatInterval: time.Minute,
	}

	b := a.Clone()
	require.Equal(t, a, b)
	require.NotSame(t, a, b)
	require.True(t, b.Repeating())

	b.RepeatInterval = 0
	require.False(t, b.Repeating())
	require.Equal(t, Notification{Tag: 5, Title: "t", Message: "hi"}, NotificationOf(a))
}

// TestLaunchContextClone ensures extras and optional strings are not shared with the copy.
func TestLaunchContextClone(t *testing.T) {
	t.Parallel()

	action := "OPEN"
	c := &LaunchContext{
		Extras:  map[string]any{"promo": "X"},
		Action:  &action,
		Checked: true,
	}

	cloned := c.Clone()
	require.Equal(t, c, cloned)
	require.NotSame(t, c.Action, cloned.Action)
	require.Nil(t, cloned.URI)

	cloned.Extras["promo"] = "Y"
	require.Equal(t, "X", c.Extras["promo"])
}

// TestConsentClone verifies that Consent.Clone deep-copies the actor.
func TestConsentClone(t *testing.T) {
	t.Parallel()

	c := &Consent{
		Timestamp: time.Now().UTC().Truncate(time.Second),
		Actor: &Actor{
			Hostname: "workstation",
			Username: "player",
		},
		Granted: true,
	}

	cloned := c.Clone()
	require.Equal(t, c, cloned)
	require.NotSame(t, c.Actor, cloned.Actor)
	require.Nil(t, (&Consent{}).Clone().Actor)
}
