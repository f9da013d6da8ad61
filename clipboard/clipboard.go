// Package clipboard places recognised text on the system clipboard.
package clipboard

import (
	"fmt"

	xclipboard "golang.design/x/clipboard"
)

// Clipboard is the delivery target for the recognised text.
type Clipboard interface {
	Write(text string) error
}

type system struct{}

// New initialises the system clipboard. On Linux this needs a running
// X server (or XWayland); initialisation fails when none is reachable.
func New() (Clipboard, error) {
	if err := xclipboard.Init(); err != nil {
		return nil, fmt.Errorf("clipboard unavailable: %w", err)
	}
	return system{}, nil
}

func (system) Write(text string) error {
	xclipboard.Write(xclipboard.FmtText, []byte(text))
	return nil
}
