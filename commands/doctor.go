package commands

import (
	"os"
	"os/exec"
	"runtime"
	"strings"
)

type DoctorInfo struct {
	DeskCLIVersion       string `json:"deskcli_version"`
	OS                   string `json:"os"`
	OSVersion            string `json:"os_version"`
	AccessibilityTrusted bool   `json:"accessibility_trusted"`
	OsascriptPath        string `json:"osascript_path"`
	StorageDir           string `json:"storage_dir"`
	StorageDirExists     bool   `json:"storage_dir_exists"`
	SafariInstalled      bool   `json:"safari_installed"`
	WordInstalled        bool   `json:"word_installed"`
}

func getOsascriptPath() string {
	path, err := exec.LookPath("osascript")
	if err != nil {
		return ""
	}
	return path
}

func getOSVersion() string {
	switch runtime.GOOS {
	case "darwin":
		output, err := exec.Command("sw_vers", "-productVersion").CombinedOutput()
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(output))
	case "linux":
		data, err := os.ReadFile("/etc/os-release")
		if err != nil {
			return ""
		}
		for _, line := range strings.Split(string(data), "\n") {
			if strings.HasPrefix(line, "PRETTY_NAME=") {
				return strings.Trim(strings.TrimPrefix(line, "PRETTY_NAME="), "\"")
			}
		}
		return ""
	default:
		return ""
	}
}

func isAppInstalled(eng *Engine, bundleID string) bool {
	info, err := eng.Desktop.ResolveApp(bundleID)
	return err == nil && info != nil
}

// DoctorCommand performs environment diagnostics: accessibility trust,
// scripting host availability, storage location, and the presence of the
// apps that get special capture treatment.
func DoctorCommand(version string) *CommandResponse {
	eng, err := getEngine()
	if err != nil {
		return NewErrorResponse(err)
	}

	info := DoctorInfo{
		DeskCLIVersion:       version,
		OS:                   runtime.GOOS,
		OSVersion:            getOSVersion(),
		AccessibilityTrusted: eng.Desktop.EnsureTrusted(false),
		OsascriptPath:        getOsascriptPath(),
		StorageDir:           eng.Store.Root(),
		SafariInstalled:      isAppInstalled(eng, "com.apple.Safari"),
		WordInstalled:        isAppInstalled(eng, "com.microsoft.Word"),
	}

	if _, err := os.Stat(info.StorageDir); err == nil {
		info.StorageDirExists = true
	}

	return NewSuccessResponse(info)
}
