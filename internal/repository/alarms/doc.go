// Package alarms persists pending alerts in SQLite so they survive daemon
// restarts. Rows are keyed by tag; saving an existing tag overwrites it.
package alarms
