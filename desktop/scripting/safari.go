package scripting

import (
	"fmt"
	"strings"
)

// SafariClient drives Safari through the scripting host. One window maps to
// one tab set; window order follows Safari's live enumeration order.
type SafariClient struct {
	runner Runner
}

func NewSafariClient(runner Runner) *SafariClient {
	return &SafariClient{runner: runner}
}

// TabSets returns the URLs of every tab, grouped per window. A window with
// no usable URLs still contributes an empty slot so window count is
// preserved.
func (c *SafariClient) TabSets() ([][]string, error) {
	script := `set out to ""
tell application "Safari"
	repeat with w in windows
		set rowText to ""
		repeat with t in tabs of w
			set u to ""
			try
				set u to URL of t
			end try
			if u is missing value then set u to ""
			set rowText to rowText & u & tab
		end repeat
		set out to out & rowText & linefeed
	end repeat
end tell
return out`

	output, err := c.runner.Run(script)
	if err != nil {
		return nil, fmt.Errorf("failed to read Safari tabs: %w", err)
	}

	var sets [][]string
	for _, line := range splitWindows(output) {
		var urls []string
		for _, url := range strings.Split(line, "\t") {
			url = strings.TrimSpace(url)
			if url != "" {
				urls = append(urls, url)
			}
		}
		sets = append(sets, urls)
	}

	return sets, nil
}

// CloseBlankWindows closes windows that have no tabs with a usable URL,
// so a restore can replace them without destroying anything the user cares
// about. Windows are closed back to front so indices stay valid.
func (c *SafariClient) CloseBlankWindows() error {
	sets, err := c.TabSets()
	if err != nil {
		return err
	}

	for i := len(sets) - 1; i >= 0; i-- {
		if len(sets[i]) > 0 {
			continue
		}
		script := fmt.Sprintf(`tell application "Safari" to close window %d`, i+1)
		if _, err := c.runner.Run(script); err != nil {
			return fmt.Errorf("failed to close Safari window %d: %w", i+1, err)
		}
	}

	return nil
}

// OpenWindow creates a new Safari window seeded with the first URL and one
// additional tab per remaining URL.
func (c *SafariClient) OpenWindow(urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	script := fmt.Sprintf(`tell application "Safari" to make new document with properties {URL:"%s"}`, Escape(urls[0]))
	if _, err := c.runner.Run(script); err != nil {
		return fmt.Errorf("failed to open Safari window for %s: %w", urls[0], err)
	}

	for _, url := range urls[1:] {
		script := fmt.Sprintf(`tell application "Safari" to tell window 1 to make new tab with properties {URL:"%s"}`, Escape(url))
		if _, err := c.runner.Run(script); err != nil {
			return fmt.Errorf("failed to open Safari tab for %s: %w", url, err)
		}
	}

	return nil
}

// splitWindows splits per-window script output. Every window row ends with
// a linefeed, so the split leaves one empty artifact element after the last
// row; only that exact-empty element is dropped. A whitespace-only row is a
// window with no usable URLs and keeps its slot, even in last position.
func splitWindows(output string) []string {
	if output == "" {
		return nil
	}
	lines := strings.Split(output, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
