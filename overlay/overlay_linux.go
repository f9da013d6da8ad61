//go:build linux

package overlay

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders
	. "modernc.org/tk9.0"

	"snag/screenshot"
)

// tkSelector renders the selection overlay with Tk: a fullscreen
// topmost window showing the darkened backdrop, with the rubber band
// composited into the displayed image and the label photo swapped on
// every pointer move.
type tkSelector struct {
	logger *zap.Logger
}

func newPlatformSelector(logger *zap.Logger) Selector {
	return &tkSelector{logger: logger}
}

const bandThickness = 2

var bandColor = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

func (s *tkSelector) Select(ctx context.Context, backdrop *image.RGBA, bounds image.Rectangle) (screenshot.Region, bool, error) {
	darkened := imaging.AdjustBrightness(backdrop, -55)
	work := imaging.Clone(darkened)
	backdropPNG, err := screenshot.EncodePNG(work)
	if err != nil {
		return screenshot.Region{}, false, fmt.Errorf("cannot prepare overlay backdrop: %w", err)
	}

	var (
		dragging  bool
		committed bool
		cancelled = true
		startX    int
		startY    int
		selection screenshot.Region
	)

	// One window spanning every monitor; event coordinates are window
	// local, so absolute = bounds.Min + (x, y).
	WmGeometry(App, fmt.Sprintf("%dx%d%+d%+d", bounds.Dx(), bounds.Dy(), bounds.Min.X, bounds.Min.Y))
	WmAttributes(App, "-fullscreen", 1)
	WmAttributes(App, "-topmost", 1)

	photo := NewPhoto(Data(backdropPNG))
	surface := App.Label(Image(photo), Borderwidth(0), Cursor("cross"))
	Pack(surface)

	// The band is drawn into the backdrop copy and erased again from
	// the pristine darkened image, so each frame only touches the band
	// pixels before the photo swap.
	var prev image.Rectangle
	redraw := func(r image.Rectangle) {
		for _, e := range bandEdges(prev, work.Rect) {
			restoreRect(work, darkened, e)
		}
		for _, e := range bandEdges(r, work.Rect) {
			fillRect(work, e, bandColor)
		}
		prev = r
		frame, err := screenshot.EncodePNG(work)
		if err != nil {
			return
		}
		next := NewPhoto(Data(frame))
		surface.Configure(Image(next))
		photo.Delete()
		photo = next
	}

	cancel := func() {
		cancelled = true
		committed = false
		Destroy(App)
	}

	Bind(surface, "<ButtonPress-1>", Command(func(e *Event) {
		dragging = true
		startX, startY = e.X, e.Y
		redraw(image.Rect(startX, startY, startX, startY))
	}))
	Bind(surface, "<B1-Motion>", Command(func(e *Event) {
		if dragging {
			redraw(image.Rect(startX, startY, e.X, e.Y))
		}
	}))
	Bind(surface, "<ButtonRelease-1>", Command(func(e *Event) {
		if !dragging {
			return
		}
		dragging = false
		r := image.Rect(startX, startY, e.X, e.Y)
		selection = screenshot.Region{
			X:      bounds.Min.X + r.Min.X,
			Y:      bounds.Min.Y + r.Min.Y,
			Width:  r.Dx(),
			Height: r.Dy(),
		}
		committed = selection.Valid()
		cancelled = !committed
		Destroy(App)
	}))
	Bind(surface, "<ButtonPress-3>", Command(func(e *Event) { cancel() }))
	Bind(App, "<Escape>", Command(func() { cancel() }))
	Bind(App, "<q>", Command(func() { cancel() }))

	s.logger.Debug("overlay shown",
		zap.Int("width", bounds.Dx()), zap.Int("height", bounds.Dy()),
		zap.Int("origin_x", bounds.Min.X), zap.Int("origin_y", bounds.Min.Y))

	App.Wait()

	if ctx.Err() != nil {
		return screenshot.Region{}, false, ctx.Err()
	}
	if !committed || cancelled {
		return screenshot.Region{}, true, nil
	}
	s.logger.Debug("region selected",
		zap.Int("x", selection.X), zap.Int("y", selection.Y),
		zap.Int("width", selection.Width), zap.Int("height", selection.Height))
	return selection, false, nil
}

// bandEdges returns the four strips outlining r, clamped to bounds.
// A degenerate rectangle yields empty strips.
func bandEdges(r, bounds image.Rectangle) [4]image.Rectangle {
	return [4]image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+bandThickness).Intersect(bounds),
		image.Rect(r.Min.X, r.Max.Y-bandThickness, r.Max.X, r.Max.Y).Intersect(bounds),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+bandThickness, r.Max.Y).Intersect(bounds),
		image.Rect(r.Max.X-bandThickness, r.Min.Y, r.Max.X, r.Max.Y).Intersect(bounds),
	}
}

func fillRect(dst *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			dst.SetNRGBA(x, y, c)
		}
	}
}

func restoreRect(dst, src *image.NRGBA, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			dst.SetNRGBA(x, y, src.NRGBAAt(x, y))
		}
	}
}
