package workspace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desktop-next/deskcli/desktop"
)

func newOrchestrator(fake *fakeDesktop, extractors ...Extractor) *Orchestrator {
	o := NewOrchestrator(fake, testSettings(), NewRegistry(extractors...))
	o.sleep = func(time.Duration) {}
	return o
}

func TestRestore_UntrustedIsHardStop(t *testing.T) {
	fake := newFakeDesktop()
	fake.trusted = false
	fake.install("com.example.app", "App")

	ws := &Workspace{Name: "w", Apps: []AppEntry{{Name: "App", BundleID: "com.example.app"}}}

	err := newOrchestrator(fake).Restore(ws, RestoreOptions{})
	require.Error(t, err)
	assert.Empty(t, fake.launched)
}

func TestRestore_UnresolvableAppIsSkipped(t *testing.T) {
	fake := newFakeDesktop()
	fake.install("com.real.app", "Real")
	fake.install("com.real.app2", "Real2")

	ws := &Workspace{Name: "w", Apps: []AppEntry{
		{Name: "Real", BundleID: "com.real.app"},
		{Name: "Missing", BundleID: "com.missing.app"},
		{Name: "Real2", BundleID: "com.real.app2"},
	}}

	err := newOrchestrator(fake).Restore(ws, RestoreOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"com.real.app", "com.real.app2"}, fake.launched)
}

func TestRestore_LaunchOnlyAppSkipsWindowRestore(t *testing.T) {
	fake := newFakeDesktop()
	fake.install("com.example.bg", "Background")

	ws := &Workspace{Name: "w", Apps: []AppEntry{
		{Name: "Background", BundleID: "com.example.bg"},
	}}

	err := newOrchestrator(fake).Restore(ws, RestoreOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"com.example.bg"}, fake.launched)
	assert.Empty(t, fake.applied)
}

func TestRestore_AppliesGeometryByAreaRank(t *testing.T) {
	fake := newFakeDesktop()
	fake.install("com.example.editor", "Editor")
	fake.onLaunch = func(bundleID string) {
		// windows materialize in a different order than they were saved
		fake.mu.Lock()
		defer fake.mu.Unlock()
		fake.apps = append(fake.apps, desktop.AppProcess{PID: 42, Name: "Editor", BundleID: "com.example.editor"})
		fake.windows[42] = []desktop.Window{
			{Index: 1, Frame: desktop.Rect{X: 0, Y: 0, Width: 400, Height: 300}},   // small
			{Index: 2, Frame: desktop.Rect{X: 0, Y: 0, Width: 1200, Height: 900}}, // large
		}
	}

	ws := &Workspace{Name: "w", Apps: []AppEntry{{
		Name:     "Editor",
		BundleID: "com.example.editor",
		Windows: []WindowFrame{
			{X: 10, Y: 10, Width: 500, Height: 400},    // smaller saved
			{X: 100, Y: 100, Width: 1400, Height: 1000}, // larger saved
		},
	}}}

	err := newOrchestrator(fake).Restore(ws, RestoreOptions{})
	require.NoError(t, err)

	applied := fake.applied[42]
	require.Len(t, applied, 2)

	// largest live (index 2) gets largest saved frame
	assert.Equal(t, 2, applied[0].index)
	assert.Equal(t, 1400.0, applied[0].frame.Width)
	assert.Equal(t, 1, applied[1].index)
	assert.Equal(t, 500.0, applied[1].frame.Width)
}

func TestRestore_TimeoutAppliesToFewerWindows(t *testing.T) {
	fake := newFakeDesktop()
	fake.install("com.example.editor", "Editor")
	fake.onLaunch = func(bundleID string) {
		fake.mu.Lock()
		defer fake.mu.Unlock()
		fake.apps = append(fake.apps, desktop.AppProcess{PID: 7, Name: "Editor", BundleID: "com.example.editor"})
		// only one of two saved windows ever materializes
		fake.windows[7] = []desktop.Window{
			{Index: 1, Frame: desktop.Rect{Width: 800, Height: 600}},
		}
	}

	ws := &Workspace{Name: "w", Apps: []AppEntry{{
		Name:     "Editor",
		BundleID: "com.example.editor",
		Windows: []WindowFrame{
			{Width: 800, Height: 600},
			{Width: 900, Height: 700},
		},
	}}}

	err := newOrchestrator(fake).Restore(ws, RestoreOptions{})
	require.NoError(t, err)

	// best-effort: the single live window still gets the largest saved frame
	applied := fake.applied[7]
	require.Len(t, applied, 1)
	assert.Equal(t, 900.0, applied[0].frame.Width)
}

func TestRestore_CloseOthersProtection(t *testing.T) {
	fake := newFakeDesktop()
	fake.install("com.example.keep", "Keep")
	fake.addApp(1, "Finder", FinderBundleID)
	fake.addApp(2, "Keep", "com.example.keep")
	fake.addApp(3, "Stray", "com.example.stray")
	fake.addApp(4, "Guarded", "com.example.guard")

	settings := testSettings()
	settings.ProtectedApps = []string{"com.example.guard"}
	o := NewOrchestrator(fake, settings, NewRegistry())
	o.sleep = func(time.Duration) {}

	ws := &Workspace{Name: "w", Apps: []AppEntry{{Name: "Keep", BundleID: "com.example.keep"}}}

	err := o.Restore(ws, RestoreOptions{CloseOthers: true})
	require.NoError(t, err)

	assert.Equal(t, []int{3}, fake.quit)
	assert.True(t, fake.IsRunning(1), "file manager must survive close-others")
	assert.True(t, fake.IsRunning(2))
	assert.True(t, fake.IsRunning(4))
}

func TestRestore_CloseOthersEscalatesToKill(t *testing.T) {
	fake := newFakeDesktop()
	fake.addApp(9, "Stubborn", "com.example.stubborn")

	// QuitApp marks apps dead in the fake; make this one ignore SIGTERM
	stubborn := &stubbornDesktop{fakeDesktop: fake, ignore: 9}

	o := NewOrchestrator(stubborn, testSettings(), NewRegistry())
	o.sleep = func(time.Duration) {}

	ws := &Workspace{Name: "w", Apps: nil}
	err := o.Restore(ws, RestoreOptions{CloseOthers: true})
	require.NoError(t, err)

	assert.Equal(t, []int{9}, fake.killed)
}

// stubbornDesktop wraps fakeDesktop so one pid survives graceful quit.
type stubbornDesktop struct {
	*fakeDesktop
	ignore int
}

func (s *stubbornDesktop) QuitApp(pid int) error {
	if pid == s.ignore {
		s.mu.Lock()
		s.quit = append(s.quit, pid)
		s.mu.Unlock()
		return nil
	}
	return s.fakeDesktop.QuitApp(pid)
}

func TestRestore_ExtrasReplayed(t *testing.T) {
	fake := newFakeDesktop()
	fake.install(SafariBundleID, "Safari")
	fake.onLaunch = func(bundleID string) {
		fake.mu.Lock()
		defer fake.mu.Unlock()
		fake.apps = append(fake.apps, desktop.AppProcess{PID: 5, Name: "Safari", BundleID: SafariBundleID})
		fake.windows[5] = []desktop.Window{{Index: 1, Frame: desktop.Rect{Width: 1200, Height: 800}}}
	}

	stub := &stubExtractor{name: "tabs", bundle: SafariBundleID}

	ws := &Workspace{Name: "w", Apps: []AppEntry{{
		Name:       "Safari",
		BundleID:   SafariBundleID,
		Windows:    []WindowFrame{{Width: 1200, Height: 800}},
		SafariTabs: [][]string{{"https://example.com"}},
	}}}

	err := newOrchestrator(fake, stub).Restore(ws, RestoreOptions{})
	require.NoError(t, err)

	require.Len(t, stub.restored, 1)
	assert.Equal(t, SafariBundleID, stub.restored[0].BundleID)
}
