package platform

import (
	"os"
	"runtime"
)

// Platform identifies the OS / display-server combination the tool is
// running under. It decides which capture strategy is used.
type Platform int

const (
	Unknown Platform = iota
	X11
	Wayland
	MacOS
	Windows
)

func (p Platform) String() string {
	switch p {
	case X11:
		return "x11"
	case Wayland:
		return "wayland"
	case MacOS:
		return "macos"
	case Windows:
		return "windows"
	}
	return "unknown"
}

// Detect identifies the current platform from the process environment.
// It never fails; ambiguity resolves to Unknown and the capture layer
// reports the actual error.
func Detect() Platform {
	return DetectEnv(runtime.GOOS, os.Getenv)
}

// DetectEnv is Detect with the OS identity and environment injected.
func DetectEnv(goos string, getenv func(string) string) Platform {
	switch goos {
	case "windows":
		return Windows
	case "darwin":
		return MacOS
	case "linux":
		if getenv("WAYLAND_DISPLAY") != "" || getenv("XDG_SESSION_TYPE") == "wayland" {
			return Wayland
		}
		if getenv("DISPLAY") != "" || getenv("XDG_SESSION_TYPE") == "x11" {
			return X11
		}
		// Headless or exotic sessions: assume X11 and let capture fail
		// with a concrete error instead of guessing here.
		return X11
	}
	return Unknown
}
