package workspace

import (
	"errors"
	"time"

	"github.com/desktop-next/deskcli/config"
	"github.com/desktop-next/deskcli/desktop"
	"github.com/desktop-next/deskcli/utils"
)

// FinderBundleID is the file manager; it is desktop-integral and never
// captured.
const FinderBundleID = "com.apple.finder"

// Inspector builds workspace snapshots from the live desktop.
type Inspector struct {
	desktop    desktop.Desktop
	settings   config.Settings
	extractors *Registry
}

func NewInspector(d desktop.Desktop, settings config.Settings, extractors *Registry) *Inspector {
	return &Inspector{
		desktop:    d,
		settings:   settings,
		extractors: extractors,
	}
}

// Capture snapshots the current desktop into a named workspace. When the
// accessibility grant is absent the result has no apps; prompt controls
// whether the OS consent UI may be shown first.
func (i *Inspector) Capture(name string, prompt bool) (*Workspace, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	return &Workspace{
		Name:    name,
		Created: time.Now(),
		Apps:    i.CaptureRunningApps(prompt),
	}, nil
}

// CaptureRunningApps enumerates regular-activation-policy applications and
// their filtered window geometry plus extractor extras. A revoked
// accessibility grant mid-scan stops the scan and returns what was gathered;
// any other per-app failure contributes an entry with zero windows.
func (i *Inspector) CaptureRunningApps(prompt bool) []AppEntry {
	if !i.desktop.EnsureTrusted(prompt) {
		return nil
	}

	apps, err := i.desktop.RunningApps()
	if err != nil {
		utils.Verbose("failed to enumerate running apps: %v", err)
		return nil
	}

	visible, haveVisible := i.visibleFrame()

	var entries []AppEntry
	for _, app := range apps {
		if app.BundleID == FinderBundleID {
			continue
		}
		if app.BundleID == "" {
			utils.Verbose("skipping %q: no bundle identifier", app.Name)
			continue
		}

		entry := AppEntry{
			Name:     app.Name,
			BundleID: app.BundleID,
		}

		windows, err := i.desktop.Windows(app.PID)
		if err != nil {
			if errors.Is(err, desktop.ErrAPIDisabled) {
				// the grant was revoked mid-scan; querying further
				// apps would fail the same way
				utils.Info("accessibility access revoked during capture, stopping scan")
				return entries
			}
			utils.Verbose("failed to query windows of %s: %v", app.Name, err)
			windows = nil
		}

		for _, window := range windows {
			if !i.keepWindow(window.Frame, visible, haveVisible) {
				continue
			}
			entry.Windows = append(entry.Windows, WindowFrame{
				X:      window.Frame.X,
				Y:      window.Frame.Y,
				Width:  window.Frame.Width,
				Height: window.Frame.Height,
			})
		}

		if i.isSingleWindowApp(app.Name) {
			entry.Windows = largestWindowOnly(entry.Windows)
		}

		for _, extractor := range i.extractors.Matching(app.BundleID) {
			if err := extractor.Capture(&entry); err != nil {
				utils.Verbose("%s capture failed for %s: %v", extractor.Name(), app.Name, err)
			}
		}

		entries = append(entries, entry)
	}

	return entries
}

func (i *Inspector) visibleFrame() (desktop.Rect, bool) {
	frame, err := i.desktop.VisibleFrame()
	if err != nil {
		utils.Verbose("failed to query primary screen frame, skipping offscreen filter: %v", err)
		return desktop.Rect{}, false
	}
	return frame, true
}

// keepWindow applies the noise filter: minimum size, and intersection with
// the primary screen's visible frame.
func (i *Inspector) keepWindow(frame desktop.Rect, visible desktop.Rect, haveVisible bool) bool {
	if frame.Width < i.settings.MinWindowWidth || frame.Height < i.settings.MinWindowHeight {
		return false
	}
	if haveVisible && !frame.Intersects(visible) {
		return false
	}
	return true
}

func (i *Inspector) isSingleWindowApp(name string) bool {
	for _, candidate := range i.settings.SingleWindowApps {
		if candidate == name {
			return true
		}
	}
	return false
}

// largestWindowOnly collapses a window list to the single largest window by
// area.
func largestWindowOnly(windows []WindowFrame) []WindowFrame {
	if len(windows) <= 1 {
		return windows
	}
	largest := windows[0]
	for _, window := range windows[1:] {
		if window.Area() > largest.Area() {
			largest = window
		}
	}
	return []WindowFrame{largest}
}
