package scripting

import (
	"fmt"
	"net/url"
	"strings"
)

// RefSeparator joins a document's display name and its full path in a saved
// document reference.
const RefSeparator = ":::"

// WordClient drives Microsoft Word through the scripting host.
type WordClient struct {
	runner Runner
}

func NewWordClient(runner Runner) *WordClient {
	return &WordClient{runner: runner}
}

// SavedDocumentRefs returns one "name:::fullPath" reference per open
// document that has been saved to disk. Unsaved documents have no path to
// reopen and are skipped.
func (c *WordClient) SavedDocumentRefs() ([]string, error) {
	script := `set out to ""
tell application "Microsoft Word"
	repeat with d in documents
		set docPath to ""
		try
			set docPath to path of d
		end try
		if docPath is not missing value and docPath is not "" then
			set out to out & (name of d) & ":::" & (full name of d) & linefeed
		end if
	end repeat
end tell
return out`

	output, err := c.runner.Run(script)
	if err != nil {
		return nil, fmt.Errorf("failed to read Word documents: %w", err)
	}

	var refs []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			refs = append(refs, line)
		}
	}

	return refs, nil
}

// OpenDocumentPaths returns the full paths of the currently open saved
// documents.
func (c *WordClient) OpenDocumentPaths() ([]string, error) {
	refs, err := c.SavedDocumentRefs()
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(refs))
	for _, ref := range refs {
		paths = append(paths, RefPath(ref))
	}
	return paths, nil
}

// OpenFile asks Word to open one document; callers batch these so a failure
// to open one file does not abort the rest.
func (c *WordClient) OpenFile(path string) error {
	script := fmt.Sprintf(`tell application "Microsoft Word" to open (POSIX file "%s")`, Escape(path))
	if _, err := c.runner.Run(script); err != nil {
		return fmt.Errorf("failed to open document %s: %w", path, err)
	}
	return nil
}

// ResolvePath converts a saved path form to an absolute POSIX path.
// Absolute paths pass through; file URLs are unescaped; anything else (an
// HFS-style colon path from older Word versions) is converted by the
// scripting host, falling back to the original string.
func (c *WordClient) ResolvePath(raw string) (string, error) {
	if strings.HasPrefix(raw, "/") {
		return raw, nil
	}

	if strings.HasPrefix(raw, "file://") {
		if parsed, err := url.Parse(raw); err == nil && parsed.Path != "" {
			return parsed.Path, nil
		}
		return raw, nil
	}

	script := fmt.Sprintf(`return POSIX path of "%s"`, Escape(raw))
	output, err := c.runner.Run(script)
	if err != nil || strings.TrimSpace(output) == "" {
		return raw, err
	}
	return strings.TrimSpace(output), nil
}

// RefPath extracts the path portion of a "name:::fullPath" reference, or
// the whole string when the separator is absent.
func RefPath(ref string) string {
	if idx := strings.Index(ref, RefSeparator); idx >= 0 {
		return ref[idx+len(RefSeparator):]
	}
	return ref
}
