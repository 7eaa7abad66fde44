package workspace

import (
	"os"
	"strings"

	"github.com/desktop-next/deskcli/utils"
)

// docRefSeparator joins a document's display name and full path in a saved
// WordDocs reference.
const docRefSeparator = ":::"

// WordDocs is the scripting surface the document extractor needs.
type WordDocs interface {
	// SavedDocumentRefs returns "name:::fullPath" references for every
	// open document that exists on disk.
	SavedDocumentRefs() ([]string, error)

	// OpenDocumentPaths returns the full paths of the open documents.
	OpenDocumentPaths() ([]string, error)

	// OpenFile opens one document by absolute path.
	OpenFile(path string) error

	// ResolvePath converts a non-POSIX path form to an absolute path.
	ResolvePath(raw string) (string, error)
}

// WordExtractor captures references to saved documents and reopens them on
// restore. It matches any bundle identifier containing "word",
// case-insensitively.
type WordExtractor struct {
	client WordDocs

	// statFile is swappable for tests; defaults to os.Stat.
	statFile func(string) (os.FileInfo, error)
}

func NewWordExtractor(client WordDocs) *WordExtractor {
	return &WordExtractor{
		client:   client,
		statFile: os.Stat,
	}
}

func (e *WordExtractor) Name() string {
	return "word-documents"
}

func (e *WordExtractor) Matches(bundleID string) bool {
	return strings.Contains(strings.ToLower(bundleID), "word")
}

func (e *WordExtractor) Capture(entry *AppEntry) error {
	refs, err := e.client.SavedDocumentRefs()
	if err != nil {
		return err
	}
	entry.WordDocs = refs
	return nil
}

// Restore reopens each saved document reference, skipping documents that
// are already open, have no path, or no longer exist on disk. One failed
// open is logged and does not stop the rest.
func (e *WordExtractor) Restore(entry AppEntry) error {
	if len(entry.WordDocs) == 0 {
		return nil
	}

	open := make(map[string]bool)
	if paths, err := e.client.OpenDocumentPaths(); err != nil {
		utils.Verbose("failed to read open Word documents, assuming none: %v", err)
	} else {
		for _, path := range paths {
			open[path] = true
		}
	}

	for _, ref := range entry.WordDocs {
		path := docRefPath(ref)
		if path == "" {
			utils.Verbose("skipping document reference with empty path: %q", ref)
			continue
		}
		if open[path] {
			utils.Verbose("document already open, skipping: %s", path)
			continue
		}

		resolved := path
		if !strings.HasPrefix(path, "/") {
			converted, err := e.client.ResolvePath(path)
			if err != nil || converted == "" {
				utils.Verbose("failed to resolve document path %q, using as-is: %v", path, err)
			} else {
				resolved = converted
			}
		}

		if _, err := e.statFile(resolved); err != nil {
			utils.Verbose("document no longer readable, skipping: %s", resolved)
			continue
		}

		if err := e.client.OpenFile(resolved); err != nil {
			utils.Verbose("failed to open document %s: %v", resolved, err)
		}
	}

	return nil
}

// docRefPath extracts the path portion of a "name:::fullPath" reference, or
// the whole string when the separator is absent.
func docRefPath(ref string) string {
	if idx := strings.Index(ref, docRefSeparator); idx >= 0 {
		return ref[idx+len(docRefSeparator):]
	}
	return ref
}
