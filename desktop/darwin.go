package desktop

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	lru "github.com/hashicorp/golang-lru/v2"
	"howett.net/plist"

	"github.com/desktop-next/deskcli/desktop/scripting"
	"github.com/desktop-next/deskcli/utils"
)

const accessibilityPane = "x-apple.systempreferences:com.apple.preference.security?Privacy_Accessibility"

// resolveCacheSize bounds the bundle-ID resolution cache. Workspaces rarely
// reference more than a couple dozen distinct apps.
const resolveCacheSize = 64

// DarwinDesktop implements Desktop for macOS by driving the System Events
// accessibility interface through osascript, and the application registry
// through Spotlight metadata and Info.plist files.
type DarwinDesktop struct {
	runner       scripting.Runner
	resolveCache *lru.Cache[string, *AppInfo]
}

// NewDarwinDesktop creates the macOS backend.
func NewDarwinDesktop() *DarwinDesktop {
	cache, _ := lru.New[string, *AppInfo](resolveCacheSize)
	return &DarwinDesktop{
		runner:       scripting.NewRunner(),
		resolveCache: cache,
	}
}

// NewDarwinDesktopWithRunner creates the backend with a custom script
// runner.
func NewDarwinDesktopWithRunner(runner scripting.Runner) *DarwinDesktop {
	cache, _ := lru.New[string, *AppInfo](resolveCacheSize)
	return &DarwinDesktop{
		runner:       runner,
		resolveCache: cache,
	}
}

// EnsureTrusted probes the accessibility API with a window query against the
// frontmost process. When untrusted and prompt is set, it opens the Privacy &
// Security accessibility pane so the user can add this binary.
func (d *DarwinDesktop) EnsureTrusted(prompt bool) bool {
	if d.trusted() {
		return true
	}

	executable, _ := os.Executable()
	utils.Info("accessibility access is not granted for %s; enable it under System Settings > Privacy & Security > Accessibility", executable)

	if !prompt {
		return false
	}

	if err := exec.Command("open", accessibilityPane).Run(); err != nil {
		utils.Verbose("failed to open accessibility settings pane: %v", err)
	}

	return d.trusted()
}

func (d *DarwinDesktop) trusted() bool {
	script := `tell application "System Events" to get position of windows of (first application process whose frontmost is true)`
	_, err := d.runner.Run(script)
	if err == nil {
		return true
	}
	if scripting.IsAssistiveAccessError(err) {
		return false
	}
	// ordinary script errors (the frontmost process has no windows) still
	// prove the API answered, but an unreachable scripting host lands here
	// too; surface the cause instead of failing silently later
	utils.Warn("accessibility probe did not complete cleanly: %v", err)
	return true
}

// RunningApps enumerates regular-activation-policy applications through
// System Events, one tab-separated line per process.
func (d *DarwinDesktop) RunningApps() ([]AppProcess, error) {
	script := `set out to ""
tell application "System Events"
	repeat with p in (every application process whose background only is false)
		set bid to ""
		try
			set bid to bundle identifier of p
		end try
		set out to out & (unix id of p) & tab & bid & tab & (name of p) & linefeed
	end repeat
end tell
return out`

	output, err := d.runner.Run(script)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate running apps: %w", err)
	}

	var apps []AppProcess
	for _, line := range strings.Split(output, "\n") {
		fields := strings.SplitN(line, "\t", 3)
		if len(fields) != 3 {
			continue
		}
		pid, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			continue
		}
		bundleID := strings.TrimSpace(fields[1])
		if bundleID == "missing value" {
			bundleID = ""
		}
		apps = append(apps, AppProcess{
			PID:      pid,
			BundleID: bundleID,
			Name:     strings.TrimSpace(fields[2]),
		})
	}

	return apps, nil
}

// VisibleFrame returns the primary desktop bounds as reported by the Finder.
func (d *DarwinDesktop) VisibleFrame() (Rect, error) {
	script := `tell application "Finder" to get bounds of window of desktop`
	output, err := d.runner.Run(script)
	if err != nil {
		return Rect{}, fmt.Errorf("failed to query desktop bounds: %w", err)
	}

	parts := strings.Split(output, ",")
	if len(parts) != 4 {
		return Rect{}, fmt.Errorf("unexpected desktop bounds format: %q", output)
	}

	values := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return Rect{}, fmt.Errorf("unexpected desktop bounds format: %q", output)
		}
		values[i] = v
	}

	// Finder reports {left, top, right, bottom}
	return Rect{
		X:      values[0],
		Y:      values[1],
		Width:  values[2] - values[0],
		Height: values[3] - values[1],
	}, nil
}

// Windows queries position and size of every window of one process.
// A window whose geometry cannot be read is dropped silently.
func (d *DarwinDesktop) Windows(pid int) ([]Window, error) {
	script := fmt.Sprintf(`set out to ""
tell application "System Events"
	set p to first application process whose unix id is %d
	repeat with w in windows of p
		try
			set {xPos, yPos} to position of w
			set {wd, ht} to size of w
			set out to out & xPos & tab & yPos & tab & wd & tab & ht & linefeed
		on error
			set out to out & "-" & linefeed
		end try
	end repeat
end tell
return out`, pid)

	output, err := d.runner.Run(script)
	if err != nil {
		if scripting.IsAssistiveAccessError(err) {
			return nil, ErrAPIDisabled
		}
		return nil, fmt.Errorf("failed to query windows of pid %d: %w", pid, err)
	}

	var windows []Window
	index := 0
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		index++
		if line == "-" {
			// geometry read failed for this window
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 4 {
			continue
		}
		values := make([]float64, 4)
		ok := true
		for i, field := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				ok = false
				break
			}
			values[i] = v
		}
		if !ok {
			continue
		}
		windows = append(windows, Window{
			Index: index,
			Frame: Rect{X: values[0], Y: values[1], Width: values[2], Height: values[3]},
		})
	}

	return windows, nil
}

// SetWindowFrame applies position and size independently so that one failed
// attribute does not prevent the other.
func (d *DarwinDesktop) SetWindowFrame(pid int, index int, frame Rect) error {
	position := fmt.Sprintf(`tell application "System Events" to set position of window %d of (first application process whose unix id is %d) to {%d, %d}`,
		index, pid, int(frame.X), int(frame.Y))
	size := fmt.Sprintf(`tell application "System Events" to set size of window %d of (first application process whose unix id is %d) to {%d, %d}`,
		index, pid, int(frame.Width), int(frame.Height))

	var firstErr error
	if _, err := d.runner.Run(position); err != nil {
		utils.Verbose("failed to set position of window %d of pid %d: %v", index, pid, err)
		firstErr = err
	}
	if _, err := d.runner.Run(size); err != nil {
		utils.Verbose("failed to set size of window %d of pid %d: %v", index, pid, err)
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return fmt.Errorf("failed to apply frame to window %d of pid %d: %w", index, pid, firstErr)
	}
	return nil
}

// bundleInfo is the subset of Info.plist keys used for app resolution.
type bundleInfo struct {
	BundleID    string `plist:"CFBundleIdentifier"`
	Name        string `plist:"CFBundleName"`
	DisplayName string `plist:"CFBundleDisplayName"`
}

// ResolveApp maps a bundle identifier to an installed application bundle,
// via Spotlight metadata, and reads its display name from Info.plist.
// Results are cached.
func (d *DarwinDesktop) ResolveApp(bundleID string) (*AppInfo, error) {
	if bundleID == "" {
		return nil, fmt.Errorf("bundle identifier is empty")
	}

	if info, ok := d.resolveCache.Get(bundleID); ok {
		return info, nil
	}

	output, err := exec.Command("mdfind", fmt.Sprintf("kMDItemCFBundleIdentifier == '%s'", bundleID)).Output()
	if err != nil {
		return nil, fmt.Errorf("failed to query application registry for %s: %w", bundleID, err)
	}

	path := ""
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasSuffix(line, ".app") {
			path = line
			break
		}
	}
	if path == "" {
		return nil, fmt.Errorf("no installed application found for %s", bundleID)
	}

	info := &AppInfo{
		BundleID: bundleID,
		Name:     strings.TrimSuffix(filepath.Base(path), ".app"),
		Path:     path,
	}

	if parsed, err := readBundleInfo(filepath.Join(path, "Contents", "Info.plist")); err == nil {
		if parsed.DisplayName != "" {
			info.Name = parsed.DisplayName
		} else if parsed.Name != "" {
			info.Name = parsed.Name
		}
	} else {
		utils.Verbose("failed to read Info.plist of %s: %v", path, err)
	}

	d.resolveCache.Add(bundleID, info)
	return info, nil
}

func readBundleInfo(path string) (*bundleInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var info bundleInfo
	if err := plist.NewDecoder(file).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

// LaunchApp launches asynchronously via the system open command; it returns
// once the launch request is submitted, not when the app is ready.
func (d *DarwinDesktop) LaunchApp(bundleID string) error {
	if err := exec.Command("open", "-b", bundleID).Run(); err != nil {
		return fmt.Errorf("failed to launch %s: %w", bundleID, err)
	}
	return nil
}

func (d *DarwinDesktop) QuitApp(pid int) error {
	process, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return process.Signal(syscall.SIGTERM)
}

func (d *DarwinDesktop) KillApp(pid int) error {
	process, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return process.Signal(syscall.SIGKILL)
}

func (d *DarwinDesktop) IsRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
