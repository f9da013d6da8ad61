// Package overlay implements the interactive region selector used on
// platforms without a native compositor selection tool. The selector
// paints a darkened copy of the full virtual desktop, tracks a
// click-drag rubber band, and reports the chosen rectangle in absolute
// screen coordinates.
package overlay

import (
	"context"
	"image"

	"go.uber.org/zap"

	"snag/screenshot"
)

// Selector blocks until the user commits or cancels a selection.
// The backdrop is the full virtual-desktop bitmap and bounds the
// absolute rectangle it covers. The bool result is true when the user
// cancelled (escape, right click, or a zero-area drag); the overlay
// window is gone by the time Select returns, on every path.
type Selector interface {
	Select(ctx context.Context, backdrop *image.RGBA, bounds image.Rectangle) (screenshot.Region, bool, error)
}

// New returns the selector for the build platform.
func New(logger *zap.Logger) Selector {
	return newPlatformSelector(logger)
}
