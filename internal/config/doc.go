// Package config defines the YAML settings shared by notifyd and notifyctl
// and provides helpers to load, validate and save them.
//
// Validate fills defaults for every optional field, so a loaded Config is
// always ready to use.
package config
