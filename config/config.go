package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

// Settings holds all tunable behavior for capture and restore.
// Every field has a default, so a missing config file is not an error.
type Settings struct {
	// StorageDir is where workspace snapshots are written, one JSON file
	// per workspace.
	StorageDir string

	// Windows smaller than this are treated as noise and not captured.
	MinWindowWidth  float64
	MinWindowHeight float64

	// SingleWindowApps lists display names of apps for which only the
	// largest window is kept at capture time.
	SingleWindowApps []string

	// ProtectedApps are bundle IDs that are never terminated by a
	// close-others restore, in addition to the built-in protect list.
	ProtectedApps []string

	// Window materialization polling during restore.
	PollInterval time.Duration
	PollTimeout  time.Duration

	// LaunchDelay is how long to wait after launching an app before
	// querying its windows.
	LaunchDelay time.Duration

	// TerminateGrace is how long a graceful quit may take before the
	// close-others pre-step escalates to a forced kill.
	TerminateGrace time.Duration

	// SettleDelay is the pause after the close-others pre-step, and
	// between scripted Safari window creations.
	SettleDelay time.Duration
}

// Default returns the built-in settings, with the storage dir under the
// user's Application Support directory.
func Default() Settings {
	return Settings{
		StorageDir:       defaultStorageDir(),
		MinWindowWidth:   300,
		MinWindowHeight:  200,
		SingleWindowApps: []string{"Safari"},
		PollInterval:     200 * time.Millisecond,
		PollTimeout:      5 * time.Second,
		LaunchDelay:      1 * time.Second,
		TerminateGrace:   2 * time.Second,
		SettleDelay:      1500 * time.Millisecond,
	}
}

// Load reads settings from the default config file location
// (~/.config/deskcli/config.ini). A missing file yields Default().
func Load() (Settings, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Default(), nil
	}
	return LoadFromPath(filepath.Join(home, ".config", "deskcli", "config.ini"))
}

// LoadFromPath reads settings from an ini file. A missing file yields
// Default(); a malformed file is an error.
func LoadFromPath(path string) (Settings, error) {
	settings := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return settings, nil
	}

	cfg, err := ini.Load(path)
	if err != nil {
		return settings, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	section := cfg.Section("")

	if key := section.Key("storage_dir"); key.String() != "" {
		settings.StorageDir = expandHome(key.String())
	}
	if key := section.Key("min_window_width"); key.String() != "" {
		if v, err := key.Float64(); err == nil && v > 0 {
			settings.MinWindowWidth = v
		}
	}
	if key := section.Key("min_window_height"); key.String() != "" {
		if v, err := key.Float64(); err == nil && v > 0 {
			settings.MinWindowHeight = v
		}
	}
	if key := section.Key("single_window_apps"); key.String() != "" {
		settings.SingleWindowApps = splitList(key.String())
	}
	if key := section.Key("protected_apps"); key.String() != "" {
		settings.ProtectedApps = splitList(key.String())
	}

	readDuration(section, "poll_interval_ms", &settings.PollInterval)
	readDuration(section, "poll_timeout_ms", &settings.PollTimeout)
	readDuration(section, "launch_delay_ms", &settings.LaunchDelay)
	readDuration(section, "terminate_grace_ms", &settings.TerminateGrace)
	readDuration(section, "settle_delay_ms", &settings.SettleDelay)

	return settings, nil
}

func readDuration(section *ini.Section, name string, out *time.Duration) {
	key := section.Key(name)
	if key.String() == "" {
		return
	}
	if ms, err := key.Int64(); err == nil && ms > 0 {
		*out = time.Duration(ms) * time.Millisecond
	}
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

func defaultStorageDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "Workspaces"
	}
	return filepath.Join(home, "Library", "Application Support", "deskcli", "Workspaces")
}
