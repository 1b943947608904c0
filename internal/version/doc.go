// Package version reports build metadata of notifyd and notifyctl.
//
// Version, Commit and BuildTime may be set through -ldflags; when Commit or
// BuildTime are left empty the VCS stamp embedded by the go command is used.
package version
