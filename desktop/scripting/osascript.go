package scripting

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single osascript invocation. Scripted apps can
// hang indefinitely on modal dialogs; the engine prefers a skipped item.
const DefaultTimeout = 30 * time.Second

// Runner executes a script in an out-of-process scripting host and returns
// its textual result. Errors carry the host's error message verbatim.
type Runner interface {
	Run(script string) (string, error)
}

// OsascriptRunner runs AppleScript through /usr/bin/osascript.
type OsascriptRunner struct {
	Timeout time.Duration
}

// NewRunner returns a runner with the default timeout.
func NewRunner() *OsascriptRunner {
	return &OsascriptRunner{Timeout: DefaultTimeout}
}

func (r *OsascriptRunner) Run(script string) (string, error) {
	timeout := r.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "osascript", "-e", script)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := strings.TrimSpace(stderr.String())
		if message == "" {
			message = err.Error()
		}
		return "", fmt.Errorf("osascript: %s", message)
	}

	return trimResult(stdout.String()), nil
}

// trimResult removes the single linefeed osascript appends to the script
// result. Any further trailing linefeeds are script data (empty trailing
// rows), not terminator noise.
func trimResult(s string) string {
	return strings.TrimSuffix(s, "\n")
}

// IsAssistiveAccessError reports whether a scripting error is the
// accessibility-disabled condition rather than an ordinary script failure.
func IsAssistiveAccessError(err error) bool {
	if err == nil {
		return false
	}
	message := err.Error()
	return strings.Contains(message, "assistive access") ||
		strings.Contains(message, "-25211") ||
		strings.Contains(message, "-1719")
}

// Escape quotes a string for embedding in a double-quoted AppleScript
// literal.
func Escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}
