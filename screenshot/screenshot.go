package screenshot

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/kbinani/screenshot"
)

// Region is a rectangular sub-area of the virtual desktop in absolute
// pixel coordinates. X and Y may be negative on multi-monitor layouts
// where a display sits left of or above the primary.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Valid reports whether the region has positive area. A zero-area
// region is treated as a cancelled selection, never as an error.
func (r Region) Valid() bool {
	return r.Width > 0 && r.Height > 0
}

// Rect returns the region as an image.Rectangle in absolute coordinates.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// VirtualBounds returns the union of all attached display bounds.
// The origin can be negative when a secondary display is positioned
// left of or above the primary.
func VirtualBounds() (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return image.Rectangle{}, fmt.Errorf("no active displays found")
	}
	bounds := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		bounds = bounds.Union(screenshot.GetDisplayBounds(i))
	}
	return bounds, nil
}

// CaptureVirtual grabs the entire virtual desktop as a single bitmap.
// The returned rectangle is the absolute bounds the bitmap covers; the
// bitmap itself is zero-based, so absolute coordinates map into it by
// subtracting bounds.Min.
func CaptureVirtual() (*image.RGBA, image.Rectangle, error) {
	bounds, err := VirtualBounds()
	if err != nil {
		return nil, image.Rectangle{}, err
	}
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, image.Rectangle{}, fmt.Errorf("failed to capture virtual desktop: %w", err)
	}
	return img, bounds, nil
}

// CropAbsolute cuts region out of a virtual-desktop bitmap captured over
// bounds. The region is expressed in absolute screen coordinates and is
// translated into the bitmap's zero-based space before cropping.
func CropAbsolute(img image.Image, bounds image.Rectangle, region Region) (image.Image, error) {
	if !region.Valid() {
		return nil, fmt.Errorf("invalid region dimensions: width=%d, height=%d", region.Width, region.Height)
	}
	abs := region.Rect()
	if !abs.In(bounds) {
		return nil, fmt.Errorf("region %v outside virtual desktop %v", abs, bounds)
	}
	local := abs.Sub(bounds.Min)
	return imaging.Crop(img, local), nil
}

// EncodePNG serializes an image to PNG bytes, the wire format every
// provider backend accepts.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return buf.Bytes(), nil
}
