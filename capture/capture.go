// Package capture produces a PNG of a user-selected screen region. The
// strategy depends on the platform: Wayland and macOS shell out to the
// native compositor selection tool, X11 and Windows capture the whole
// virtual desktop and run the interactive overlay.
package capture

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"snag/platform"
	"snag/screenshot"
)

var (
	// ErrCancelled means the user backed out of the selection. Not an
	// error to report; the run exits silently with status 0.
	ErrCancelled = errors.New("selection cancelled")

	// ErrMissingTool means the external selection utility the platform
	// needs is not installed.
	ErrMissingTool = errors.New("missing external tool")

	// ErrUnsupportedPlatform means no capture strategy exists for the
	// detected environment.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

// Capturer turns one interactive selection into PNG bytes plus the
// absolute region they came from. All resources (overlay windows,
// helper processes) are released before Capture returns, on success,
// cancellation and failure alike.
type Capturer interface {
	Capture(ctx context.Context) ([]byte, screenshot.Region, error)
}

// New selects the capture strategy for the platform.
func New(p platform.Platform, logger *zap.Logger) (Capturer, error) {
	switch p {
	case platform.Wayland:
		return &toolCapturer{tool: waylandTool{}, logger: logger}, nil
	case platform.MacOS:
		return &toolCapturer{tool: macosTool{}, logger: logger}, nil
	case platform.X11, platform.Windows:
		return &overlayCapturer{logger: logger}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, p)
	}
}
