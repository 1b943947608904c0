package notification

import "maps"

// LaunchContext is the cached view of the parameters the process was launched with.
type LaunchContext struct {
	// Extras holds decoded key-value launch data.
	Extras map[string]any
	// Action is the deep-link action, nil when absent.
	Action *string
	// URI is the deep-link URI, nil when absent.
	URI *string
	// Checked is false until launch parameters were read in the current resume cycle.
	Checked bool
}

// Clone returns a copy of the context. The extras map is copied shallowly.
func (c *LaunchContext) Clone() *LaunchContext {
	cloned := &LaunchContext{
		Extras:  maps.Clone(c.Extras),
		Checked: c.Checked,
	}

	if c.Action != nil {
		action := *c.Action
		cloned.Action = &action
	}

	if c.URI != nil {
		uri := *c.URI
		cloned.URI = &uri
	}

	return cloned
}
