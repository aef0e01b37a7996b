// Package file provides a TOML file-backed implementation of the
// ConfigStore interface.
package file
