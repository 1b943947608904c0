// Package alarm implements the alarm subsystem that owns scheduled alerts.
//
// Manager registers one cron entry per tag. Registering a tag again replaces
// the pending alert, one-shot alerts remove themselves after firing, and
// repeating alerts fire until cancelled. Alerts are persisted through an
// alarms.Repository and restored by Start.
package alarm
