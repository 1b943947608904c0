// Package server runs notifyd.
//
// Run loads settings, opens the SQLite alert store, restores pending alerts
// into the alarm manager and serves the notification facade over gRPC until
// the context is canceled. Launch parameters come from command-line flags or,
// when none are given, from the intent file re-read on every resume.
package server
