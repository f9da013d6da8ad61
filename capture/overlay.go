package capture

import (
	"context"
	"fmt"
	"image"

	"go.uber.org/zap"

	"snag/overlay"
	"snag/screenshot"
)

// overlayCapturer grabs the full virtual desktop, runs the interactive
// overlay over it and crops the committed rectangle. Because the grab
// spans every monitor, negative display offsets are already baked into
// the bitmap addressing.
type overlayCapturer struct {
	logger *zap.Logger

	// Seams for tests; nil means the real implementation.
	grabVirtual func() (*image.RGBA, image.Rectangle, error)
	selector    overlay.Selector
}

func (c *overlayCapturer) Capture(ctx context.Context) ([]byte, screenshot.Region, error) {
	grab := c.grabVirtual
	if grab == nil {
		grab = screenshot.CaptureVirtual
	}
	sel := c.selector
	if sel == nil {
		sel = overlay.New(c.logger)
	}

	full, bounds, err := grab()
	if err != nil {
		return nil, screenshot.Region{}, fmt.Errorf("cannot capture virtual desktop: %w", err)
	}
	c.logger.Debug("virtual desktop captured",
		zap.Int("width", bounds.Dx()), zap.Int("height", bounds.Dy()),
		zap.Int("origin_x", bounds.Min.X), zap.Int("origin_y", bounds.Min.Y))

	region, cancelled, err := sel.Select(ctx, full, bounds)
	if err != nil {
		return nil, screenshot.Region{}, err
	}
	if cancelled || !region.Valid() {
		return nil, screenshot.Region{}, ErrCancelled
	}

	cropped, err := screenshot.CropAbsolute(full, bounds, region)
	if err != nil {
		return nil, screenshot.Region{}, err
	}
	data, err := screenshot.EncodePNG(cropped)
	if err != nil {
		return nil, screenshot.Region{}, err
	}
	return data, region, nil
}
