package capture

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"snag/screenshot"
)

// regionTool is one native selection utility: it lets the user pick a
// region, performs the crop itself and hands back PNG bytes.
type regionTool interface {
	// name labels the strategy in logs.
	name() string
	// check verifies the required binaries exist.
	check() error
	// grab runs the interactive selection. A cancelled selection is
	// reported via ErrCancelled.
	grab(ctx context.Context) ([]byte, screenshot.Region, error)
}

type toolCapturer struct {
	tool   regionTool
	logger *zap.Logger
}

func (c *toolCapturer) Capture(ctx context.Context) ([]byte, screenshot.Region, error) {
	if err := c.tool.check(); err != nil {
		return nil, screenshot.Region{}, err
	}
	c.logger.Debug("capturing via external tool", zap.String("tool", c.tool.name()))
	return c.tool.grab(ctx)
}

// waylandTool drives slurp (selection) and grim (capture). slurp exits
// non-zero or prints nothing when the user cancels.
type waylandTool struct{}

func (waylandTool) name() string { return "slurp+grim" }

func (waylandTool) check() error {
	for _, bin := range []string{"slurp", "grim"} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("%w: %s (install slurp and grim from your distribution)", ErrMissingTool, bin)
		}
	}
	return nil
}

func (waylandTool) grab(ctx context.Context) ([]byte, screenshot.Region, error) {
	out, err := exec.CommandContext(ctx, "slurp").Output()
	if err != nil {
		return nil, screenshot.Region{}, ErrCancelled
	}
	geometry := strings.TrimSpace(string(out))
	if geometry == "" {
		return nil, screenshot.Region{}, ErrCancelled
	}
	region, err := parseSlurpGeometry(geometry)
	if err != nil {
		return nil, screenshot.Region{}, fmt.Errorf("unexpected slurp output %q: %w", geometry, err)
	}
	if !region.Valid() {
		return nil, screenshot.Region{}, ErrCancelled
	}

	data, err := exec.CommandContext(ctx, "grim", "-g", geometry, "-").Output()
	if err != nil {
		return nil, screenshot.Region{}, fmt.Errorf("grim capture failed: %w", err)
	}
	return data, region, nil
}

// parseSlurpGeometry parses slurp's "X,Y WIDTHxHEIGHT" form. X and Y
// may be negative on multi-monitor layouts.
func parseSlurpGeometry(s string) (screenshot.Region, error) {
	var r screenshot.Region
	if _, err := fmt.Sscanf(s, "%d,%d %dx%d", &r.X, &r.Y, &r.Width, &r.Height); err != nil {
		return screenshot.Region{}, err
	}
	return r, nil
}

// macosTool drives the interactive mode of the system screencapture
// utility. A cancelled selection leaves the output file empty.
type macosTool struct{}

func (macosTool) name() string { return "screencapture" }

func (macosTool) check() error {
	if _, err := exec.LookPath("screencapture"); err != nil {
		return fmt.Errorf("%w: screencapture", ErrMissingTool)
	}
	return nil
}

func (macosTool) grab(ctx context.Context) ([]byte, screenshot.Region, error) {
	tmp, err := os.CreateTemp("", "snag-*.png")
	if err != nil {
		return nil, screenshot.Region{}, fmt.Errorf("cannot create temp file: %w", err)
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	// -i interactive, -s selection only, -x no shutter sound.
	cmd := exec.CommandContext(ctx, "screencapture", "-i", "-s", "-x", "-t", "png", path)
	if err := cmd.Run(); err != nil {
		return nil, screenshot.Region{}, ErrCancelled
	}

	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		// Escape during selection: screencapture exits zero but writes
		// nothing.
		return nil, screenshot.Region{}, ErrCancelled
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, screenshot.Region{}, fmt.Errorf("screencapture produced unreadable output: %w", err)
	}
	// The utility does not report where on screen the region was; only
	// its size is known.
	return data, screenshot.Region{Width: cfg.Width, Height: cfg.Height}, nil
}
