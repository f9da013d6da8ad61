// Package logging builds the process logger. Console output goes to
// stderr so the terminal stays usable for piping; with --verbose a
// debug-level file log is kept next to the config with basic size-based
// rotation (10MB, max 3 archives).
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logFileName  = "snag.log"
	maxSizeBytes = 10 * 1024 * 1024
	maxArchives  = 3
)

// New returns the logger. dir is where the file log lives when verbose
// is set; with verbose off only warnings and errors reach stderr.
func New(verbose bool, dir string) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	consoleLevel := zapcore.WarnLevel
	if verbose {
		consoleLevel = zapcore.DebugLevel
	}
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), consoleLevel),
	}

	if verbose {
		if w, err := newRotatingWriter(filepath.Join(dir, logFileName)); err == nil {
			cores = append(cores, zapcore.NewCore(
				zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), zapcore.DebugLevel))
		} else {
			fmt.Fprintf(os.Stderr, "cannot open log file: %v\n", err)
		}
	}

	return zap.New(zapcore.NewTee(cores...))
}

// rotatingWriter rotates the file to .1..3 once it crosses the size
// limit, checking per write.
type rotatingWriter struct {
	path string
	f    *os.File
}

func newRotatingWriter(path string) (*rotatingWriter, error) {
	rotateIfNeeded(path)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &rotatingWriter{path: path, f: f}, nil
}

func (w *rotatingWriter) Write(p []byte) (int, error) {
	if st, err := w.f.Stat(); err == nil && st.Size()+int64(len(p)) > maxSizeBytes {
		_ = w.f.Close()
		rotateIfNeeded(w.path)
		nf, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return 0, err
		}
		w.f = nf
	}
	return w.f.Write(p)
}

func rotateIfNeeded(path string) {
	if st, err := os.Stat(path); err == nil && st.Size() > maxSizeBytes {
		_ = os.Remove(archiveName(path, maxArchives))
		for i := maxArchives - 1; i >= 1; i-- {
			_ = os.Rename(archiveName(path, i), archiveName(path, i+1))
		}
		_ = os.Rename(path, archiveName(path, 1))
	}
}

func archiveName(path string, n int) string { return fmt.Sprintf("%s.%d", path, n) }

// RedactKey masks an API key for log output, leaving the first and
// last 4 characters.
func RedactKey(k string) string {
	if len(k) <= 8 {
		return "********"
	}
	return fmt.Sprintf("%s...%s", k[:4], k[len(k)-4:])
}
