// Package platform holds the host-facing helpers: playlist expansion
// through the ytdlp library and filesystem conveniences used by the CLI.
package platform
