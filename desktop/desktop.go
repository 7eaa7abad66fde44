package desktop

import (
	"errors"
	"fmt"
)

// ErrAPIDisabled reports that the accessibility API rejected a query because
// the process does not hold (or lost) the user's accessibility trust grant.
// It is the only error that aborts a whole capture scan; everything else is
// contained per app or per window.
var ErrAPIDisabled = errors.New("accessibility API is disabled for this process")

// Rect describes a window rectangle in screen coordinates, top-left origin.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns width*height, the ranking key for window matching.
func (r Rect) Area() float64 {
	return r.Width * r.Height
}

// Intersects reports whether two rectangles overlap.
func (r Rect) Intersects(other Rect) bool {
	return r.X < other.X+other.Width &&
		other.X < r.X+r.Width &&
		r.Y < other.Y+other.Height &&
		other.Y < r.Y+r.Height
}

// Window is one on-screen window of a running application. Index is the
// window's position in the application's live window list (1-based, the
// accessibility enumeration order) and is how geometry mutations address it.
type Window struct {
	Index int
	Frame Rect
}

// AppProcess is one running application with regular (dock-visible)
// activation policy.
type AppProcess struct {
	PID      int    `json:"pid"`
	Name     string `json:"name"`
	BundleID string `json:"bundleID"`
}

// AppInfo describes an installed application resolved from a bundle ID.
type AppInfo struct {
	BundleID string `json:"bundleID"`
	Name     string `json:"name"`
	Path     string `json:"path"`
}

func (a *AppInfo) String() string {
	return fmt.Sprintf("%s (%s)", a.Name, a.BundleID)
}

// Desktop abstracts the platform calls the capture/restore engine needs.
// All implementations degrade per item: a failed query for one app or one
// window never poisons the next, with the single exception of
// ErrAPIDisabled from Windows().
type Desktop interface {
	// EnsureTrusted reports whether the process holds the accessibility
	// trust grant. When prompt is true and the grant is absent, it opens
	// the system consent UI before returning the (likely still false)
	// post-prompt state.
	EnsureTrusted(prompt bool) bool

	// RunningApps enumerates applications with regular activation policy,
	// in the OS's live enumeration order.
	RunningApps() ([]AppProcess, error)

	// VisibleFrame returns the primary screen's visible area.
	VisibleFrame() (Rect, error)

	// Windows returns the on-screen windows of one application.
	// Returns ErrAPIDisabled when the accessibility API reports the
	// disabled condition.
	Windows(pid int) ([]Window, error)

	// SetWindowFrame moves and resizes one window. Position and size are
	// applied independently; a failure to set one attribute does not
	// prevent the other.
	SetWindowFrame(pid int, index int, frame Rect) error

	// ResolveApp maps a bundle identifier to an installed application.
	ResolveApp(bundleID string) (*AppInfo, error)

	// LaunchApp asynchronously launches the application with the given
	// bundle identifier.
	LaunchApp(bundleID string) error

	// QuitApp asks a process to terminate gracefully.
	QuitApp(pid int) error

	// KillApp forcibly terminates a process.
	KillApp(pid int) error

	// IsRunning reports whether the process is still alive.
	IsRunning(pid int) bool
}
