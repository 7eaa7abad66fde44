package server

import (
	"encoding/json"
	"fmt"

	"github.com/desktop-next/deskcli/commands"
)

// HandlerFunc is the signature for non-streaming JSON-RPC method handlers
type HandlerFunc func(params json.RawMessage) (interface{}, error)

// GetMethodRegistry returns a map of method names to handler functions
// This is used by both the HTTP server and the WebSocket endpoint
func GetMethodRegistry() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		"workspaces_list":   handleWorkspacesList,
		"workspace_save":    handleWorkspaceSave,
		"workspace_restore": handleWorkspaceRestore,
		"workspace_delete":  handleWorkspaceDelete,
		"running_apps":      handleRunningApps,
		"doctor":            handleDoctor,
	}
}

// Execute dispatches a method call using the registry
func Execute(method string, params json.RawMessage) (interface{}, error) {
	registry := GetMethodRegistry()

	handler, exists := registry[method]
	if !exists {
		return nil, fmt.Errorf("method not found: %s", method)
	}

	return handler(params)
}

func commandResult(response *commands.CommandResponse) (interface{}, error) {
	if response.Status == "error" {
		return nil, fmt.Errorf("%s", response.Error)
	}
	return response.Data, nil
}

type WorkspaceSaveParams struct {
	Name string `json:"name"`
}

type WorkspaceRestoreParams struct {
	Name        string `json:"name"`
	CloseOthers bool   `json:"closeOthers"`
}

type WorkspaceDeleteParams struct {
	Name string `json:"name"`
}

func handleWorkspacesList(params json.RawMessage) (interface{}, error) {
	return commandResult(commands.ListWorkspacesCommand())
}

func handleWorkspaceSave(params json.RawMessage) (interface{}, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("'params' is required with fields: name")
	}

	var saveParams WorkspaceSaveParams
	if err := json.Unmarshal(params, &saveParams); err != nil {
		return nil, fmt.Errorf("invalid parameters: %v. Expected fields: name", err)
	}

	// the server never triggers the OS consent dialog; a headless daemon has
	// no UI to answer it
	req := commands.SaveWorkspaceRequest{
		Name:   saveParams.Name,
		Prompt: false,
	}

	return commandResult(commands.SaveWorkspaceCommand(req))
}

func handleWorkspaceRestore(params json.RawMessage) (interface{}, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("'params' is required with fields: name, closeOthers")
	}

	var restoreParams WorkspaceRestoreParams
	if err := json.Unmarshal(params, &restoreParams); err != nil {
		return nil, fmt.Errorf("invalid parameters: %v. Expected fields: name, closeOthers", err)
	}

	req := commands.RestoreWorkspaceRequest{
		Name:        restoreParams.Name,
		CloseOthers: restoreParams.CloseOthers,
		Prompt:      false,
	}

	return commandResult(commands.RestoreWorkspaceCommand(req))
}

func handleWorkspaceDelete(params json.RawMessage) (interface{}, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("'params' is required with fields: name")
	}

	var deleteParams WorkspaceDeleteParams
	if err := json.Unmarshal(params, &deleteParams); err != nil {
		return nil, fmt.Errorf("invalid parameters: %v. Expected fields: name", err)
	}

	return commandResult(commands.DeleteWorkspaceCommand(commands.WorkspaceRequest{Name: deleteParams.Name}))
}

func handleRunningApps(params json.RawMessage) (interface{}, error) {
	return commandResult(commands.RunningAppsCommand())
}

func handleDoctor(params json.RawMessage) (interface{}, error) {
	return commandResult(commands.DoctorCommand(Version))
}
