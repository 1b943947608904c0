// Package consent persists the answer to the notification permission prompt.
//
// FileRepository stores the Consent as protobuf JSON on disk and exposes the
// Repository interface the permission gate depends on.
package consent
