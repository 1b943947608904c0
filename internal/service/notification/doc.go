// Package notification implements the notification facade: the small set of
// calls a host application uses to schedule and cancel local alerts, query
// the permission state and inspect the launch intent.
//
// Degenerate input is accepted silently. A non-positive delay schedules
// nothing, cancelling an unknown tag does nothing, and launch extras that
// fail to decode are skipped one by one. Only infrastructure failures, such
// as a store that cannot persist an alert, are returned as errors.
package notification
