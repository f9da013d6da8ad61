// Package update reinstalls the binary from the latest release.
package update

import (
	"fmt"
	"io"
	"os/exec"

	"go.uber.org/zap"
)

const modulePath = "snag"

// Run installs the latest release over the current binary using the Go
// toolchain. The configuration on disk is untouched either way.
func Run(out io.Writer, logger *zap.Logger) error {
	return run(out, logger, func() ([]byte, error) {
		return exec.Command("go", "install", modulePath+"@latest").CombinedOutput()
	})
}

func run(out io.Writer, logger *zap.Logger, install func() ([]byte, error)) error {
	fmt.Fprintln(out, "Updating snag...")
	output, err := install()
	if err != nil {
		logger.Error("update failed", zap.Error(err), zap.ByteString("output", output))
		return fmt.Errorf("update failed: %w (is the Go toolchain installed?)", err)
	}
	fmt.Fprintln(out, "snag is up to date.")
	return nil
}
