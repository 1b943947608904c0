// Package permission implements the notification permission gate.
//
// Open models platforms without a consent requirement. ConsentGate asks a
// Prompter asynchronously, persists the answer and reports it through the
// supplied callback exactly once per request.
package permission
