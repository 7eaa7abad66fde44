package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desktop-next/deskcli/utils"
)

// Store persists workspaces as one pretty-printed JSON file per name under
// an injected root directory. The root is created on first write.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

// Root returns the storage directory.
func (s *Store) Root() string {
	return s.root
}

// Path returns the snapshot file for a workspace name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.root, name+".json")
}

// Save serializes the workspace, overwriting any snapshot with the same
// name.
func (s *Store) Save(ws *Workspace) error {
	if err := ValidateName(ws.Name); err != nil {
		return err
	}

	if err := os.MkdirAll(s.root, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory %s: %w", s.root, err)
	}

	data, err := json.MarshalIndent(ws, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize workspace %q: %w", ws.Name, err)
	}

	if err := os.WriteFile(s.Path(ws.Name), data, 0644); err != nil {
		return fmt.Errorf("failed to write workspace %q: %w", ws.Name, err)
	}

	utils.Verbose("saved workspace %q with %d apps to %s", ws.Name, len(ws.Apps), s.Path(ws.Name))
	return nil
}

// Load reads a snapshot by name. Entries missing a bundle identifier are
// skipped rather than failing the whole load.
func (s *Store) Load(name string) (*Workspace, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("workspace %q not found", name)
		}
		return nil, fmt.Errorf("failed to read workspace %q: %w", name, err)
	}

	var ws Workspace
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("workspace %q is malformed: %w", name, err)
	}

	valid := ws.Apps[:0]
	for _, app := range ws.Apps {
		if app.BundleID == "" {
			utils.Verbose("workspace %q: skipping entry %q with no bundle identifier", name, app.Name)
			continue
		}
		valid = append(valid, app)
	}
	ws.Apps = valid

	return &ws, nil
}

// List returns every snapshot name in the storage root, unordered.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read storage directory %s: %w", s.root, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}

	return names, nil
}

// Delete removes a snapshot. A missing file is logged and ignored.
func (s *Store) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	if err := os.Remove(s.Path(name)); err != nil {
		if os.IsNotExist(err) {
			utils.Verbose("workspace %q not found, nothing to delete", name)
			return nil
		}
		return fmt.Errorf("failed to delete workspace %q: %w", name, err)
	}

	return nil
}
