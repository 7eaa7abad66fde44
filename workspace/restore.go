package workspace

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/desktop-next/deskcli/config"
	"github.com/desktop-next/deskcli/desktop"
	"github.com/desktop-next/deskcli/utils"
)

// protectedBundleIDs are never terminated by a close-others restore: the
// file manager and system UI processes the desktop cannot live without.
var protectedBundleIDs = map[string]bool{
	FinderBundleID:             true,
	"com.apple.dock":           true,
	"com.apple.systemuiserver": true,
	"com.apple.controlcenter":  true,
}

// RestoreOptions controls a single restore run.
type RestoreOptions struct {
	// CloseOthers terminates running apps that are not workspace members
	// before restoring.
	CloseOthers bool

	// Prompt allows the OS accessibility consent UI to be shown when the
	// trust grant is absent.
	Prompt bool
}

// Orchestrator replays a workspace snapshot against the live desktop,
// strictly sequentially, one application at a time. Every per-app and
// per-window failure is contained; only a missing accessibility grant stops
// a restore before it starts.
type Orchestrator struct {
	desktop    desktop.Desktop
	settings   config.Settings
	extractors *Registry
	sleep      func(time.Duration)
}

func NewOrchestrator(d desktop.Desktop, settings config.Settings, extractors *Registry) *Orchestrator {
	return &Orchestrator{
		desktop:    d,
		settings:   settings,
		extractors: extractors,
		sleep:      time.Sleep,
	}
}

// Restore runs the full restore state machine for a workspace.
func (o *Orchestrator) Restore(ws *Workspace, opts RestoreOptions) error {
	if !o.desktop.EnsureTrusted(opts.Prompt) {
		return fmt.Errorf("accessibility access is required to restore windows")
	}

	if opts.CloseOthers {
		o.closeOthers(ws)
		o.sleep(o.settings.SettleDelay)
	}

	for _, entry := range ws.Apps {
		o.restoreApp(entry)
	}

	return nil
}

// closeOthers terminates every regular running app that is neither a
// workspace member nor protected. Graceful termination first; apps still
// alive after the grace window are killed.
func (o *Orchestrator) closeOthers(ws *Workspace) {
	apps, err := o.desktop.RunningApps()
	if err != nil {
		utils.Verbose("failed to enumerate running apps for close-others: %v", err)
		return
	}

	members := ws.BundleIDs()
	self := os.Getpid()

	var closing []desktop.AppProcess
	for _, app := range apps {
		if app.PID == self || members[app.BundleID] || o.isProtected(app.BundleID) {
			continue
		}
		utils.Verbose("closing %s (%s)", app.Name, app.BundleID)
		if err := o.desktop.QuitApp(app.PID); err != nil {
			utils.Verbose("failed to quit %s: %v", app.Name, err)
			continue
		}
		closing = append(closing, app)
	}

	if len(closing) == 0 {
		return
	}

	deadline := time.Now().Add(o.settings.TerminateGrace)
	for time.Now().Before(deadline) {
		alive := false
		for _, app := range closing {
			if o.desktop.IsRunning(app.PID) {
				alive = true
				break
			}
		}
		if !alive {
			return
		}
		o.sleep(o.settings.PollInterval)
	}

	for _, app := range closing {
		if !o.desktop.IsRunning(app.PID) {
			continue
		}
		utils.Verbose("%s did not quit within grace period, killing", app.Name)
		if err := o.desktop.KillApp(app.PID); err != nil {
			utils.Verbose("failed to kill %s: %v", app.Name, err)
		}
	}
}

func (o *Orchestrator) isProtected(bundleID string) bool {
	if protectedBundleIDs[bundleID] {
		return true
	}
	for _, protected := range o.settings.ProtectedApps {
		if protected == bundleID {
			return true
		}
	}
	return false
}

// restoreApp resolves, launches, and reconstructs one workspace entry.
// Failures log and return; the next entry proceeds regardless.
func (o *Orchestrator) restoreApp(entry AppEntry) {
	info, err := o.desktop.ResolveApp(entry.BundleID)
	if err != nil {
		utils.Info("skipping %s: %v", entry.BundleID, err)
		return
	}

	utils.Verbose("restoring %s", info)
	if err := o.desktop.LaunchApp(entry.BundleID); err != nil {
		utils.Info("skipping %s: %v", entry.BundleID, err)
		return
	}
	o.sleep(o.settings.LaunchDelay)

	if len(entry.Windows) == 0 {
		// launch-only app, nothing else to reconstruct
		return
	}

	pid, live := o.waitForWindows(entry)
	if pid == 0 {
		utils.Verbose("%s never appeared in the process list, skipping window restore", entry.BundleID)
		return
	}

	o.applyGeometry(pid, live, entry.Windows)

	for _, extractor := range o.extractors.Matching(entry.BundleID) {
		if err := extractor.Restore(entry); err != nil {
			utils.Verbose("%s restore failed for %s: %v", extractor.Name(), entry.Name, err)
		}
	}
}

// waitForWindows polls the live window list until at least as many windows
// exist as were saved, or the poll ceiling passes. On timeout it returns a
// final best-effort read, possibly with fewer windows than saved.
func (o *Orchestrator) waitForWindows(entry AppEntry) (int, []desktop.Window) {
	deadline := time.Now().Add(o.settings.PollTimeout)

	pid := 0
	for {
		if pid == 0 {
			pid = o.findPID(entry.BundleID)
		}
		if pid != 0 {
			windows, err := o.desktop.Windows(pid)
			if err == nil && len(windows) >= len(entry.Windows) {
				return pid, windows
			}
		}
		if !time.Now().Before(deadline) {
			break
		}
		o.sleep(o.settings.PollInterval)
	}

	if pid == 0 {
		pid = o.findPID(entry.BundleID)
	}
	if pid == 0 {
		return 0, nil
	}

	windows, err := o.desktop.Windows(pid)
	if err != nil {
		utils.Verbose("final window read for %s failed: %v", entry.BundleID, err)
		return pid, nil
	}
	return pid, windows
}

func (o *Orchestrator) findPID(bundleID string) int {
	apps, err := o.desktop.RunningApps()
	if err != nil {
		return 0
	}
	for _, app := range apps {
		if app.BundleID == bundleID {
			return app.PID
		}
	}
	return 0
}

// applyGeometry pairs live and saved windows by descending area rank and
// applies each saved frame to its match. The pairing is a best-effort
// correspondence: window creation order is nondeterministic, but relative
// size usually survives a relaunch. Ties keep enumeration order.
func (o *Orchestrator) applyGeometry(pid int, live []desktop.Window, saved []WindowFrame) {
	rankedLive := make([]desktop.Window, len(live))
	copy(rankedLive, live)
	sort.SliceStable(rankedLive, func(a, b int) bool {
		return rankedLive[a].Frame.Area() > rankedLive[b].Frame.Area()
	})

	rankedSaved := make([]WindowFrame, len(saved))
	copy(rankedSaved, saved)
	sort.SliceStable(rankedSaved, func(a, b int) bool {
		return rankedSaved[a].Area() > rankedSaved[b].Area()
	})

	n := len(rankedLive)
	if len(rankedSaved) < n {
		n = len(rankedSaved)
	}

	for i := 0; i < n; i++ {
		frame := desktop.Rect{
			X:      rankedSaved[i].X,
			Y:      rankedSaved[i].Y,
			Width:  rankedSaved[i].Width,
			Height: rankedSaved[i].Height,
		}
		if err := o.desktop.SetWindowFrame(pid, rankedLive[i].Index, frame); err != nil {
			utils.Verbose("failed to apply frame %d/%d to pid %d: %v", i+1, n, pid, err)
		}
	}
}
