// Package common holds helpers shared by notifyd and notifyctl.
//
// It provides the gRPC client of the notification service, with per-call
// timeouts and a permission-result stream, and detects the current system
// actor recorded with consent answers.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
