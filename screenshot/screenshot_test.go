package screenshot

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestRegionValid(t *testing.T) {
	tests := []struct {
		name   string
		region Region
		want   bool
	}{
		{"positive area", Region{X: 10, Y: 10, Width: 100, Height: 50}, true},
		{"negative origin is fine", Region{X: -500, Y: 10, Width: 200, Height: 100}, true},
		{"zero width", Region{Width: 0, Height: 50}, false},
		{"zero height", Region{Width: 50, Height: 0}, false},
		{"negative width", Region{Width: -10, Height: 50}, false},
		{"negative height", Region{Width: 50, Height: -10}, false},
		{"zero everything", Region{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.region.Valid(); got != tt.want {
				t.Errorf("%+v Valid() = %v, want %v", tt.region, got, tt.want)
			}
		})
	}
}

// markerBitmap builds a zero-based bitmap standing in for a virtual
// desktop captured over bounds, where every pixel encodes its absolute
// coordinates: R = absX%256, G = absY%256.
func markerBitmap(bounds image.Rectangle) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			absX := bounds.Min.X + x
			absY := bounds.Min.Y + y
			img.SetRGBA(x, y, color.RGBA{R: uint8(absX & 0xff), G: uint8(absY & 0xff), A: 0xff})
		}
	}
	return img
}

func TestCropAbsoluteNegativeOffset(t *testing.T) {
	// Secondary display at (-1920, 0), primary at (0, 0): virtual
	// desktop spans -1920..1920 horizontally.
	bounds := image.Rect(-1920, 0, 1920, 1080)
	full := markerBitmap(bounds)

	region := Region{X: -500, Y: 10, Width: 200, Height: 100}
	cropped, err := CropAbsolute(full, bounds, region)
	if err != nil {
		t.Fatalf("CropAbsolute failed: %v", err)
	}

	if cropped.Bounds().Dx() != 200 || cropped.Bounds().Dy() != 100 {
		t.Fatalf("cropped size = %dx%d, want 200x100", cropped.Bounds().Dx(), cropped.Bounds().Dy())
	}

	// Top-left pixel of the crop must come from absolute (-500, 10),
	// not from a (0,0)-clamped position.
	r, g, _, _ := cropped.At(cropped.Bounds().Min.X, cropped.Bounds().Min.Y).RGBA()
	wantR := uint32(uint8(-500&0xff)) * 0x101
	wantG := uint32(uint8(10&0xff)) * 0x101
	if r != wantR || g != wantG {
		t.Errorf("top-left pixel = (%d,%d), want (%d,%d): crop clamped to wrong origin", r, g, wantR, wantG)
	}

	// Bottom-right pixel must come from absolute (-301, 109).
	r, g, _, _ = cropped.At(cropped.Bounds().Max.X-1, cropped.Bounds().Max.Y-1).RGBA()
	wantR = uint32(uint8(-301&0xff)) * 0x101
	wantG = uint32(uint8(109&0xff)) * 0x101
	if r != wantR || g != wantG {
		t.Errorf("bottom-right pixel = (%d,%d), want (%d,%d)", r, g, wantR, wantG)
	}
}

func TestCropAbsoluteRejectsInvalidRegion(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 100)
	full := markerBitmap(bounds)

	for _, region := range []Region{
		{X: 0, Y: 0, Width: 0, Height: 50},
		{X: 0, Y: 0, Width: 50, Height: -1},
	} {
		if _, err := CropAbsolute(full, bounds, region); err == nil {
			t.Errorf("expected error for region %+v", region)
		}
	}
}

func TestCropAbsoluteRejectsOutOfBounds(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 100)
	full := markerBitmap(bounds)

	if _, err := CropAbsolute(full, bounds, Region{X: 50, Y: 50, Width: 100, Height: 100}); err == nil {
		t.Error("expected error for region extending past the virtual desktop")
	}
}

func TestEncodePNG(t *testing.T) {
	img := markerBitmap(image.Rect(0, 0, 8, 8))
	data, err := EncodePNG(img)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not decodable PNG: %v", err)
	}
	if decoded.Bounds().Dx() != 8 || decoded.Bounds().Dy() != 8 {
		t.Errorf("decoded size = %v, want 8x8", decoded.Bounds())
	}
}
