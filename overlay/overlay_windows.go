//go:build windows

package overlay

import (
	"context"
	"fmt"
	"image"
	"syscall"
	"time"
	"unsafe"

	"github.com/disintegration/imaging"
	"github.com/lxn/win"
	"go.uber.org/zap"

	"snag/screenshot"
)

// winSelector paints the darkened backdrop into a borderless topmost
// window spanning the virtual screen and tracks the rubber band with
// raw window messages.
type winSelector struct {
	logger *zap.Logger
}

func newPlatformSelector(logger *zap.Logger) Selector {
	return &winSelector{logger: logger}
}

// Win32 window procedures cannot carry a closure, so the active
// selection session lives in a package variable for the duration of
// one Select call. Select is only ever invoked once per process run.
var activeSession *winSession

type winSession struct {
	hwnd      win.HWND
	bounds    image.Rectangle
	backdrop  []byte // BGRA, top-down, bounds.Dx()*bounds.Dy()*4
	selecting bool
	startX    int32
	startY    int32
	endX      int32
	endY      int32
	result    chan screenshot.Region
}

func (s *winSelector) Select(ctx context.Context, backdrop *image.RGBA, bounds image.Rectangle) (screenshot.Region, bool, error) {
	darkened := imaging.AdjustBrightness(backdrop, -55)

	session := &winSession{
		bounds:   bounds,
		backdrop: toBGRA(darkened),
		result:   make(chan screenshot.Region, 1),
	}
	activeSession = session
	defer func() { activeSession = nil }()

	classNameStr := fmt.Sprintf("SnagOverlay_%d", time.Now().UnixNano())
	className, _ := syscall.UTF16PtrFromString(classNameStr)
	wndClass := win.WNDCLASSEX{
		CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
		Style:         win.CS_HREDRAW | win.CS_VREDRAW,
		LpfnWndProc:   syscall.NewCallback(overlayWndProc),
		HInstance:     win.GetModuleHandle(nil),
		HCursor:       win.LoadCursor(0, win.MAKEINTRESOURCE(win.IDC_CROSS)),
		LpszClassName: className,
	}
	if win.RegisterClassEx(&wndClass) == 0 {
		return screenshot.Region{}, false, fmt.Errorf("failed to register overlay window class")
	}
	defer win.UnregisterClass(className)

	title, _ := syscall.UTF16PtrFromString("Select region - drag, Esc cancels")
	session.hwnd = win.CreateWindowEx(
		win.WS_EX_TOPMOST,
		className,
		title,
		win.WS_POPUP|win.WS_VISIBLE,
		int32(bounds.Min.X), int32(bounds.Min.Y), int32(bounds.Dx()), int32(bounds.Dy()),
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if session.hwnd == 0 {
		return screenshot.Region{}, false, fmt.Errorf("failed to create overlay window")
	}
	defer win.DestroyWindow(session.hwnd)

	win.ShowWindow(session.hwnd, win.SW_SHOW)
	win.SetForegroundWindow(session.hwnd)
	win.SetFocus(session.hwnd)
	win.UpdateWindow(session.hwnd)

	s.logger.Debug("overlay shown",
		zap.Int("width", bounds.Dx()), zap.Int("height", bounds.Dy()),
		zap.Int("origin_x", bounds.Min.X), zap.Int("origin_y", bounds.Min.Y))

	var msg win.MSG
	for {
		switch win.GetMessage(&msg, 0, 0, 0) {
		case 0: // WM_QUIT: cancelled
			return screenshot.Region{}, true, nil
		case -1:
			return screenshot.Region{}, false, fmt.Errorf("overlay message loop failed")
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)

		select {
		case region := <-session.result:
			if !region.Valid() {
				return screenshot.Region{}, true, nil
			}
			return region, false, nil
		default:
		}
	}
}

func overlayWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	s := activeSession
	if s == nil {
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	}

	switch msg {
	case win.WM_LBUTTONDOWN:
		win.SetCapture(hwnd)
		s.selecting = true
		s.startX = int32(win.GET_X_LPARAM(lParam))
		s.startY = int32(win.GET_Y_LPARAM(lParam))
		s.endX, s.endY = s.startX, s.startY
		win.InvalidateRect(hwnd, nil, false)
		return 0

	case win.WM_MOUSEMOVE:
		if s.selecting {
			s.endX = int32(win.GET_X_LPARAM(lParam))
			s.endY = int32(win.GET_Y_LPARAM(lParam))
			win.InvalidateRect(hwnd, nil, false)
		}
		return 0

	case win.WM_LBUTTONUP:
		if s.selecting {
			win.ReleaseCapture()
			s.selecting = false
			s.endX = int32(win.GET_X_LPARAM(lParam))
			s.endY = int32(win.GET_Y_LPARAM(lParam))

			left := min32(s.startX, s.endX)
			top := min32(s.startY, s.endY)
			// Client coordinates are virtual-screen relative; shift by
			// the virtual origin to get absolute coordinates.
			s.result <- screenshot.Region{
				X:      s.bounds.Min.X + int(left),
				Y:      s.bounds.Min.Y + int(top),
				Width:  int(abs32(s.endX - s.startX)),
				Height: int(abs32(s.endY - s.startY)),
			}
			win.PostQuitMessage(0)
		}
		return 0

	case win.WM_RBUTTONDOWN:
		win.PostQuitMessage(0)
		return 0

	case win.WM_KEYDOWN:
		if wParam == win.VK_ESCAPE || wParam == 'Q' {
			win.PostQuitMessage(0)
		}
		return 0

	case win.WM_PAINT:
		var ps win.PAINTSTRUCT
		hdc := win.BeginPaint(hwnd, &ps)
		s.paint(hdc)
		win.EndPaint(hwnd, &ps)
		return 0

	case win.WM_NCHITTEST:
		// Treat the whole surface as client area so every pointer event
		// lands in this window procedure.
		return uintptr(win.HTCLIENT)

	case win.WM_DESTROY:
		win.PostQuitMessage(0)
		return 0
	}

	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

// paint draws the darkened backdrop and, mid-drag, the rubber band.
func (s *winSession) paint(hdc win.HDC) {
	width := int32(s.bounds.Dx())
	height := int32(s.bounds.Dy())

	memDC := win.CreateCompatibleDC(hdc)
	defer win.DeleteDC(memDC)

	bitmapInfo := win.BITMAPINFO{
		BmiHeader: win.BITMAPINFOHEADER{
			BiSize:        uint32(unsafe.Sizeof(win.BITMAPINFOHEADER{})),
			BiWidth:       width,
			BiHeight:      -height, // top-down
			BiPlanes:      1,
			BiBitCount:    32,
			BiCompression: win.BI_RGB,
		},
	}
	var pBits unsafe.Pointer
	hBitmap := win.CreateDIBSection(memDC, &bitmapInfo.BmiHeader, win.DIB_RGB_COLORS, &pBits, 0, 0)
	if hBitmap == 0 {
		return
	}
	defer win.DeleteObject(win.HGDIOBJ(hBitmap))

	oldBitmap := win.SelectObject(memDC, win.HGDIOBJ(hBitmap))
	defer win.SelectObject(memDC, oldBitmap)

	dst := unsafe.Slice((*byte)(pBits), len(s.backdrop))
	copy(dst, s.backdrop)
	win.BitBlt(hdc, 0, 0, width, height, memDC, 0, 0, win.SRCCOPY)

	if !s.selecting {
		return
	}

	gdi32 := syscall.NewLazyDLL("gdi32.dll")
	createPen := gdi32.NewProc("CreatePen")
	rectangle := gdi32.NewProc("Rectangle")

	pen, _, _ := createPen.Call(0 /* PS_SOLID */, 2, 0x00ffffff)
	oldPen := win.SelectObject(hdc, win.HGDIOBJ(pen))
	oldBrush := win.SelectObject(hdc, win.GetStockObject(win.NULL_BRUSH))

	rectangle.Call(uintptr(hdc),
		uintptr(min32(s.startX, s.endX)), uintptr(min32(s.startY, s.endY)),
		uintptr(max32(s.startX, s.endX)), uintptr(max32(s.startY, s.endY)))

	win.SelectObject(hdc, oldPen)
	win.SelectObject(hdc, oldBrush)
	win.DeleteObject(win.HGDIOBJ(pen))
}

// toBGRA flattens an NRGBA image into the top-down BGRA layout GDI
// DIB sections expect.
func toBGRA(img *image.NRGBA) []byte {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	out := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+width*4]
		dst := out[y*width*4 : (y+1)*width*4]
		for x := 0; x < width; x++ {
			dst[x*4+0] = src[x*4+2] // B
			dst[x*4+1] = src[x*4+1] // G
			dst[x*4+2] = src[x*4+0] // R
			dst[x*4+3] = src[x*4+3] // A
		}
	}
	return out
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func abs32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}
