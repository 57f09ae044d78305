// Package notify raises the terminal bell and, optionally, a
// best-effort OS desktop notification when a watch-mode run completes
// (spec §6). Grounded on cmd/tako/internal/run.go's "shell out to a
// platform tool" idiom (bash/mvn invocation via os/exec) in the teacher
// repository; no pack library raises desktop notifications.
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"runtime"
)

// Bell writes the terminal bell character to w. Spec §6 says this
// always fires on watch-mode completion, independent of --notify.
func Bell(w io.Writer) {
	_, _ = fmt.Fprint(w, "\a")
}

// Desktop raises a best-effort OS notification with title and message.
// Failure is silent (logged at Debug) since notification is advisory
// and must never fail a run (spec §6 "failure is silent").
func Desktop(title, message string, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	cmd := platformCommand(title, message)
	if cmd == nil {
		logger.Debug("no notification mechanism available for this platform", "os", runtime.GOOS)
		return
	}
	if err := cmd.Run(); err != nil {
		logger.Debug("desktop notification failed", "error", err)
	}
}

func platformCommand(title, message string) *exec.Cmd {
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf(`display notification %q with title %q`, message, title)
		return exec.Command("osascript", "-e", script)
	case "linux":
		return exec.Command("notify-send", title, message)
	case "windows":
		script := fmt.Sprintf(`msg * %s: %s`, title, message)
		return exec.Command("cmd", "/c", script)
	default:
		return nil
	}
}
