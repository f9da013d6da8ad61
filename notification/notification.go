// Package notification shows transient desktop notifications. Delivery
// is strictly best-effort: a desktop without a notification daemon must
// never fail the run, so nothing here returns an error.
package notification

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

// previewLimit caps how much of the recognised text the success
// notification shows.
const previewLimit = 100

// Notifier posts desktop notifications.
type Notifier interface {
	Processing()
	Success(text string)
	Failure(message string)
}

type desktop struct {
	logger *zap.Logger
	goos   string
	run    func(name string, args ...string) error
}

// New returns a Notifier for the current desktop. Notification
// commands are fired and forgotten: post must never stall the
// pipeline waiting on a notification daemon.
func New(logger *zap.Logger) Notifier {
	return &desktop{
		logger: logger,
		goos:   runtime.GOOS,
		run: func(name string, args ...string) error {
			cmd := exec.Command(name, args...)
			if err := cmd.Start(); err != nil {
				return err
			}
			go func() { _ = cmd.Wait() }()
			return nil
		},
	}
}

func (d *desktop) Processing() {
	d.post("snag", "Recognising text...")
}

func (d *desktop) Success(text string) {
	d.post("snag", "Copied to clipboard: "+Preview(text))
}

func (d *desktop) Failure(message string) {
	d.post("snag", message)
}

func (d *desktop) post(title, body string) {
	var err error
	switch d.goos {
	case "linux":
		err = d.run("notify-send", "-a", "snag", title, body)
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", body, title)
		err = d.run("osascript", "-e", script)
	case "windows":
		err = d.run("powershell", "-NoProfile", "-Command", toastScript(title, body))
	default:
		d.logger.Debug("no notification backend", zap.String("goos", d.goos))
		return
	}
	if err != nil {
		d.logger.Debug("notification failed", zap.Error(err))
	}
}

// toastScript builds a Windows.UI.Notifications toast. Toasts appear
// and fade on their own; unlike a message box there is no dialog to
// dismiss.
func toastScript(title, body string) string {
	return fmt.Sprintf(
		"[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType=WindowsRuntime] | Out-Null;"+
			"$xml = [Windows.UI.Notifications.ToastNotificationManager]::GetTemplateContent([Windows.UI.Notifications.ToastTemplateType]::ToastText02);"+
			"$texts = $xml.GetElementsByTagName('text');"+
			"$texts.Item(0).AppendChild($xml.CreateTextNode(%s)) | Out-Null;"+
			"$texts.Item(1).AppendChild($xml.CreateTextNode(%s)) | Out-Null;"+
			"[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier('snag').Show([Windows.UI.Notifications.ToastNotification]::new($xml))",
		psQuote(title), psQuote(body))
}

// psQuote single-quotes a string for PowerShell, doubling embedded
// quotes.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Preview shortens text to a single notification-sized line.
func Preview(text string) string {
	flat := strings.Join(strings.Fields(text), " ")
	if len(flat) <= previewLimit {
		return flat
	}
	return flat[:previewLimit] + "..."
}
