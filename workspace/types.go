package workspace

import (
	"fmt"
	"strings"
	"time"
)

// WindowFrame is one captured window rectangle in screen coordinates.
type WindowFrame struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns width*height, the ranking key for window matching.
func (f WindowFrame) Area() float64 {
	return f.Width * f.Height
}

// AppEntry is one application's captured state: identity, window geometry,
// and optional app-specific extras.
type AppEntry struct {
	Name     string        `json:"name"`
	BundleID string        `json:"bundleID"`
	Windows  []WindowFrame `json:"windows"`

	// SafariTabs holds one ordered URL list per captured browser window.
	SafariTabs [][]string `json:"safariTabs,omitempty"`

	// WordDocs holds "name:::fullPath" references to saved documents.
	WordDocs []string `json:"wordDocs,omitempty"`
}

// Workspace is a named, immutable snapshot of the desktop at save time.
type Workspace struct {
	Name    string     `json:"name"`
	Created time.Time  `json:"created"`
	Apps    []AppEntry `json:"apps"`
}

// BundleIDs returns the set of bundle identifiers present in the workspace.
func (w *Workspace) BundleIDs() map[string]bool {
	ids := make(map[string]bool, len(w.Apps))
	for _, app := range w.Apps {
		if app.BundleID != "" {
			ids[app.BundleID] = true
		}
	}
	return ids
}

// ValidateName rejects names that cannot serve as a snapshot file stem.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("workspace name is empty")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid workspace name: %q", name)
	}
	return nil
}
