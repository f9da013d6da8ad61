//go:build !linux && !windows

package overlay

import (
	"context"
	"fmt"
	"image"

	"go.uber.org/zap"

	"snag/screenshot"
)

// Platforms without an overlay implementation select regions through
// their native compositor tool instead; reaching this selector is a
// wiring bug, not a user error.
type unsupportedSelector struct{}

func newPlatformSelector(_ *zap.Logger) Selector {
	return unsupportedSelector{}
}

func (unsupportedSelector) Select(context.Context, *image.RGBA, image.Rectangle) (screenshot.Region, bool, error) {
	return screenshot.Region{}, false, fmt.Errorf("interactive overlay is not available on this platform")
}
