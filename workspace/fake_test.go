package workspace

import (
	"fmt"
	"sync"

	"github.com/desktop-next/deskcli/desktop"
)

// fakeDesktop is an in-memory Desktop for engine tests.
type fakeDesktop struct {
	mu sync.Mutex

	trusted      bool
	promptCalled bool

	apps    []desktop.AppProcess
	appsErr error

	windows    map[int][]desktop.Window
	windowsErr map[int]error

	visible    desktop.Rect
	visibleErr error

	installed map[string]*desktop.AppInfo

	launched []string
	onLaunch func(bundleID string)

	quit   []int
	killed []int
	dead   map[int]bool

	applied map[int][]appliedFrame
}

type appliedFrame struct {
	index int
	frame desktop.Rect
}

func newFakeDesktop() *fakeDesktop {
	return &fakeDesktop{
		trusted:    true,
		windows:    make(map[int][]desktop.Window),
		windowsErr: make(map[int]error),
		installed:  make(map[string]*desktop.AppInfo),
		dead:       make(map[int]bool),
		applied:    make(map[int][]appliedFrame),
		visible:    desktop.Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
	}
}

func (f *fakeDesktop) EnsureTrusted(prompt bool) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if prompt {
		f.promptCalled = true
	}
	return f.trusted
}

func (f *fakeDesktop) RunningApps() ([]desktop.AppProcess, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appsErr != nil {
		return nil, f.appsErr
	}
	out := make([]desktop.AppProcess, 0, len(f.apps))
	for _, app := range f.apps {
		if !f.dead[app.PID] {
			out = append(out, app)
		}
	}
	return out, nil
}

func (f *fakeDesktop) VisibleFrame() (desktop.Rect, error) {
	if f.visibleErr != nil {
		return desktop.Rect{}, f.visibleErr
	}
	return f.visible, nil
}

func (f *fakeDesktop) Windows(pid int) ([]desktop.Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.windowsErr[pid]; ok {
		return nil, err
	}
	return f.windows[pid], nil
}

func (f *fakeDesktop) SetWindowFrame(pid int, index int, frame desktop.Rect) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied[pid] = append(f.applied[pid], appliedFrame{index: index, frame: frame})
	return nil
}

func (f *fakeDesktop) ResolveApp(bundleID string) (*desktop.AppInfo, error) {
	if info, ok := f.installed[bundleID]; ok {
		return info, nil
	}
	return nil, fmt.Errorf("no installed application found for %s", bundleID)
}

func (f *fakeDesktop) LaunchApp(bundleID string) error {
	f.mu.Lock()
	f.launched = append(f.launched, bundleID)
	hook := f.onLaunch
	f.mu.Unlock()
	if hook != nil {
		hook(bundleID)
	}
	return nil
}

func (f *fakeDesktop) QuitApp(pid int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quit = append(f.quit, pid)
	f.dead[pid] = true
	return nil
}

func (f *fakeDesktop) KillApp(pid int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.killed = append(f.killed, pid)
	f.dead[pid] = true
	return nil
}

func (f *fakeDesktop) IsRunning(pid int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.dead[pid]
}

// addApp registers a running app with the given windows.
func (f *fakeDesktop) addApp(pid int, name, bundleID string, windows ...desktop.Window) {
	f.apps = append(f.apps, desktop.AppProcess{PID: pid, Name: name, BundleID: bundleID})
	f.windows[pid] = windows
}

// install registers an installed app so ResolveApp succeeds.
func (f *fakeDesktop) install(bundleID, name string) {
	f.installed[bundleID] = &desktop.AppInfo{
		BundleID: bundleID,
		Name:     name,
		Path:     "/Applications/" + name + ".app",
	}
}
