// Package snag exposes build metadata embedded into the binary.
package snag

import _ "embed"

//go:embed CHANGELOG.md
var Changelog string

// Version is overridden at build time via -ldflags "-X snag.Version=...".
var Version = "1.2.0"
