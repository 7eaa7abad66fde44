package commands

import (
	"fmt"
	"sync"

	"github.com/desktop-next/deskcli/config"
	"github.com/desktop-next/deskcli/desktop"
	"github.com/desktop-next/deskcli/desktop/scripting"
	"github.com/desktop-next/deskcli/utils"
	"github.com/desktop-next/deskcli/workspace"
)

// CommandResponse represents a standardized response format for all commands
type CommandResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) *CommandResponse {
	return &CommandResponse{
		Status: "ok",
		Data:   data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(err error) *CommandResponse {
	return &CommandResponse{
		Status: "error",
		Error:  err.Error(),
	}
}

// Engine bundles the desktop, store, and restore machinery every command
// needs. Commands obtain the shared instance through getEngine.
type Engine struct {
	Settings     config.Settings
	Desktop      desktop.Desktop
	Store        *workspace.Store
	Inspector    *workspace.Inspector
	Orchestrator *workspace.Orchestrator
}

var (
	engine     *Engine
	engineErr  error
	engineOnce sync.Once
)

// SetEngine replaces the shared engine. Intended for tests; production code
// relies on the lazy default built from the user's configuration.
func SetEngine(e *Engine) {
	engineOnce.Do(func() {})
	engine = e
	engineErr = nil
}

func getEngine() (*Engine, error) {
	engineOnce.Do(func() {
		if engine != nil {
			return
		}
		engine, engineErr = newDefaultEngine()
	})
	return engine, engineErr
}

func newDefaultEngine() (*Engine, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	d := desktop.NewDarwinDesktop()

	runner := scripting.NewRunner()
	extractors := workspace.NewRegistry(
		workspace.NewSafariExtractor(scripting.NewSafariClient(runner), settings.SettleDelay),
		workspace.NewWordExtractor(scripting.NewWordClient(runner)),
	)

	utils.Verbose("workspace storage: %s", settings.StorageDir)

	return &Engine{
		Settings:     settings,
		Desktop:      d,
		Store:        workspace.NewStore(settings.StorageDir),
		Inspector:    workspace.NewInspector(d, settings, extractors),
		Orchestrator: workspace.NewOrchestrator(d, settings, extractors),
	}, nil
}
