package commands

import (
	"fmt"
)

// RunningApp is one entry in the running_apps listing
type RunningApp struct {
	PID      int    `json:"pid"`
	Name     string `json:"name"`
	BundleID string `json:"bundleId,omitempty"`
}

// RunningAppsCommand lists the regular applications currently running
func RunningAppsCommand() *CommandResponse {
	eng, err := getEngine()
	if err != nil {
		return NewErrorResponse(err)
	}

	procs, err := eng.Desktop.RunningApps()
	if err != nil {
		return NewErrorResponse(fmt.Errorf("failed to list running apps: %v", err))
	}

	apps := make([]RunningApp, 0, len(procs))
	for _, proc := range procs {
		apps = append(apps, RunningApp{
			PID:      proc.PID,
			Name:     proc.Name,
			BundleID: proc.BundleID,
		})
	}

	return NewSuccessResponse(apps)
}
