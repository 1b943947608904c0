// Package notification contains the core domain types of the local
// notification service.
//
// Alert describes a scheduled notification keyed by a caller-assigned tag,
// LaunchContext holds the cached launch parameters of the current resume
// cycle, and Consent records the user's answer to the permission prompt.
package notification
