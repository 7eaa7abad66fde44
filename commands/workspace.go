package commands

import (
	"fmt"

	"github.com/desktop-next/deskcli/workspace"
)

// SaveWorkspaceRequest represents the parameters for saving a workspace
type SaveWorkspaceRequest struct {
	Name string `json:"name"`

	// Prompt allows the OS consent dialog when accessibility is not yet
	// granted. The RPC server leaves this false.
	Prompt bool `json:"-"`
}

// RestoreWorkspaceRequest represents the parameters for restoring a workspace
type RestoreWorkspaceRequest struct {
	Name        string `json:"name"`
	CloseOthers bool   `json:"closeOthers"`
	Prompt      bool   `json:"-"`
}

// WorkspaceRequest represents the parameters for commands that address one
// saved workspace by name
type WorkspaceRequest struct {
	Name string `json:"name"`
}

// WorkspaceSummary is the list entry returned by ListWorkspacesCommand
type WorkspaceSummary struct {
	Name string `json:"name"`
}

// SaveWorkspaceCommand captures the current desktop state under the given name
func SaveWorkspaceCommand(req SaveWorkspaceRequest) *CommandResponse {
	if req.Name == "" {
		return NewErrorResponse(fmt.Errorf("workspace name is required"))
	}

	eng, err := getEngine()
	if err != nil {
		return NewErrorResponse(err)
	}

	ws, err := eng.Inspector.Capture(req.Name, req.Prompt)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("failed to capture workspace: %v", err))
	}

	if err := eng.Store.Save(ws); err != nil {
		return NewErrorResponse(fmt.Errorf("failed to save workspace: %v", err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"message": fmt.Sprintf("Saved workspace '%s' with %d apps", ws.Name, len(ws.Apps)),
		"name":    ws.Name,
		"apps":    len(ws.Apps),
	})
}

// RestoreWorkspaceCommand replays a saved workspace against the live desktop
func RestoreWorkspaceCommand(req RestoreWorkspaceRequest) *CommandResponse {
	if req.Name == "" {
		return NewErrorResponse(fmt.Errorf("workspace name is required"))
	}

	eng, err := getEngine()
	if err != nil {
		return NewErrorResponse(err)
	}

	ws, err := eng.Store.Load(req.Name)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("failed to load workspace: %v", err))
	}

	opts := workspace.RestoreOptions{
		CloseOthers: req.CloseOthers,
		Prompt:      req.Prompt,
	}
	if err := eng.Orchestrator.Restore(ws, opts); err != nil {
		return NewErrorResponse(fmt.Errorf("failed to restore workspace: %v", err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"message": fmt.Sprintf("Restored workspace '%s' (%d apps)", ws.Name, len(ws.Apps)),
		"name":    ws.Name,
		"apps":    len(ws.Apps),
	})
}

// ListWorkspacesCommand returns the names of all saved workspaces
func ListWorkspacesCommand() *CommandResponse {
	eng, err := getEngine()
	if err != nil {
		return NewErrorResponse(err)
	}

	names, err := eng.Store.List()
	if err != nil {
		return NewErrorResponse(fmt.Errorf("failed to list workspaces: %v", err))
	}

	summaries := make([]WorkspaceSummary, 0, len(names))
	for _, name := range names {
		summaries = append(summaries, WorkspaceSummary{Name: name})
	}

	return NewSuccessResponse(summaries)
}

// DeleteWorkspaceCommand removes a saved workspace by name
func DeleteWorkspaceCommand(req WorkspaceRequest) *CommandResponse {
	if req.Name == "" {
		return NewErrorResponse(fmt.Errorf("workspace name is required"))
	}

	eng, err := getEngine()
	if err != nil {
		return NewErrorResponse(err)
	}

	if err := eng.Store.Delete(req.Name); err != nil {
		return NewErrorResponse(fmt.Errorf("failed to delete workspace: %v", err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"message": fmt.Sprintf("Deleted workspace '%s'", req.Name),
	})
}
