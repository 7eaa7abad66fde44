package workspace

import (
	"time"

	"github.com/desktop-next/deskcli/utils"
)

// SafariBundleID is the browser's stable identity key; the Safari extractor
// matches it exactly.
const SafariBundleID = "com.apple.Safari"

// SafariTabs is the scripting surface the Safari extractor needs.
type SafariTabs interface {
	// TabSets returns the tab URLs of every window, one slot per window.
	TabSets() ([][]string, error)

	// CloseBlankWindows closes windows with no usable tab URLs.
	CloseBlankWindows() error

	// OpenWindow creates a window seeded with the first URL plus one tab
	// per remaining URL.
	OpenWindow(urls []string) error
}

// SafariExtractor captures tab URL sets per window and recreates missing
// windows on restore, skipping tab sets that are already open.
type SafariExtractor struct {
	client SafariTabs
	settle time.Duration
	sleep  func(time.Duration)
}

func NewSafariExtractor(client SafariTabs, settle time.Duration) *SafariExtractor {
	return &SafariExtractor{
		client: client,
		settle: settle,
		sleep:  time.Sleep,
	}
}

func (e *SafariExtractor) Name() string {
	return "safari-tabs"
}

func (e *SafariExtractor) Matches(bundleID string) bool {
	return bundleID == SafariBundleID
}

func (e *SafariExtractor) Capture(entry *AppEntry) error {
	sets, err := e.client.TabSets()
	if err != nil {
		return err
	}
	entry.SafariTabs = sets
	return nil
}

// Restore recreates saved tab sets as new windows. Blank live windows are
// closed first; a saved set that already exists as an open window (compared
// as an unordered set) is skipped so repeated restores do not pile up
// duplicates.
func (e *SafariExtractor) Restore(entry AppEntry) error {
	var saved [][]string
	for _, set := range entry.SafariTabs {
		if len(set) > 0 {
			saved = append(saved, set)
		}
	}
	if len(saved) == 0 {
		return nil
	}

	if err := e.client.CloseBlankWindows(); err != nil {
		utils.Verbose("failed to close blank Safari windows: %v", err)
	}

	open, err := e.client.TabSets()
	if err != nil {
		utils.Verbose("failed to read open Safari tabs, assuming none: %v", err)
		open = nil
	}

	for _, set := range saved {
		if hasEqualTabSet(open, set) {
			utils.Verbose("Safari window with %d tabs already open, skipping", len(set))
			continue
		}

		if err := e.client.OpenWindow(set); err != nil {
			utils.Verbose("failed to restore Safari window: %v", err)
			continue
		}

		// let the scripting host settle before creating the next window
		e.sleep(e.settle)
	}

	return nil
}

func hasEqualTabSet(open [][]string, want []string) bool {
	for _, set := range open {
		if sameURLSet(set, want) {
			return true
		}
	}
	return false
}

// sameURLSet compares two tab lists as unordered sets.
func sameURLSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, url := range a {
		counts[url]++
	}
	for _, url := range b {
		counts[url]--
		if counts[url] < 0 {
			return false
		}
	}
	return true
}
