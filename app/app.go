// Package app drives one capture-recognise-deliver run.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"snag/capture"
	"snag/clipboard"
	"snag/llm"
	"snag/notification"
	"snag/platform"
	"snag/screenshot"
)

// State names the phase the run is in. Transitions are strictly
// forward; a run never revisits a phase.
type State int

const (
	StateIdle State = iota
	StateDetecting
	StateCapturing
	StateDispatching
	StateDelivering
	StateDone
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDetecting:
		return "detecting"
	case StateCapturing:
		return "capturing"
	case StateDispatching:
		return "dispatching"
	case StateDelivering:
		return "delivering"
	case StateDone:
		return "done"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options carries the wired collaborators for one run. Capturer is
// optional; when nil the run detects the platform and builds the
// matching capture strategy itself.
type Options struct {
	Capturer  capture.Capturer
	Provider  llm.Provider
	Clipboard clipboard.Clipboard
	Notifier  notification.Notifier
	Logger    *zap.Logger
}

// Result reports how the run ended. Err is set only for StateFailed.
type Result struct {
	State  State
	Region screenshot.Region
	Text   string
	Err    error
}

// Run executes the pipeline. Cancellation by the user is silent; every
// failure produces exactly one notification before returning.
func Run(ctx context.Context, opts Options) Result {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	capturer := opts.Capturer
	if capturer == nil {
		p := platform.Detect()
		logger.Debug("platform detected", zap.Stringer("platform", p))
		c, err := capture.New(p, logger)
		if err != nil {
			return fail(opts, logger, StateCapturing, err)
		}
		capturer = c
	}

	png, region, err := capturer.Capture(ctx)
	if err != nil {
		if errors.Is(err, capture.ErrCancelled) {
			logger.Debug("selection cancelled")
			return Result{State: StateCancelled}
		}
		return fail(opts, logger, StateCapturing, err)
	}
	logger.Info("region captured",
		zap.Int("x", region.X), zap.Int("y", region.Y),
		zap.Int("width", region.Width), zap.Int("height", region.Height),
		zap.Int("png_bytes", len(png)))

	opts.Notifier.Processing()
	text, err := opts.Provider.Describe(ctx, png)
	if err != nil {
		return fail(opts, logger, StateDispatching, err)
	}
	text = strings.TrimSpace(text)
	logger.Info("text recognised",
		zap.String("provider", opts.Provider.Name()), zap.Int("chars", len(text)))

	if err := opts.Clipboard.Write(text); err != nil {
		return fail(opts, logger, StateDelivering, err)
	}

	opts.Notifier.Success(text)
	return Result{State: StateDone, Region: region, Text: text}
}

func fail(opts Options, logger *zap.Logger, at State, err error) Result {
	logger.Error("run failed", zap.Stringer("phase", at), zap.Error(err))
	opts.Notifier.Failure(failureMessage(at, err))
	return Result{State: StateFailed, Err: err}
}

// failureMessage turns an internal error into something a notification
// balloon can show.
func failureMessage(at State, err error) string {
	var lerr *llm.Error
	if errors.As(err, &lerr) {
		switch lerr.Kind {
		case llm.KindAuth:
			return fmt.Sprintf("%s rejected the API key. Run `snag setup` to fix it.", lerr.Provider)
		case llm.KindRateLimited:
			return fmt.Sprintf("%s is rate limiting requests. Try again shortly.", lerr.Provider)
		case llm.KindTimeout:
			return fmt.Sprintf("%s did not answer in time.", lerr.Provider)
		}
		return fmt.Sprintf("%s request failed: %s", lerr.Provider, lerr.Message)
	}
	switch at {
	case StateCapturing:
		return "Screen capture failed: " + err.Error()
	case StateDelivering:
		return "Could not write to the clipboard: " + err.Error()
	default:
		return "Recognition failed: " + err.Error()
	}
}
