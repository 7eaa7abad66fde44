package workspace

// Extractor captures and restores app-specific state beyond window geometry
// for the applications it recognizes. Implementations are registered by
// bundle-identifier predicate; adding an app integration means registering a
// new implementation, not branching on bundle strings elsewhere.
type Extractor interface {
	Name() string

	// Matches reports whether this extractor handles the given bundle
	// identifier.
	Matches(bundleID string) bool

	// Capture fills the entry's extra state. A scripting failure leaves
	// the entry without extras; it never aborts capture of other apps.
	Capture(entry *AppEntry) error

	// Restore replays the entry's extra state against the live app.
	Restore(entry AppEntry) error
}

// Registry maps bundle identifiers to the extractors that handle them.
type Registry struct {
	extractors []Extractor
}

func NewRegistry(extractors ...Extractor) *Registry {
	return &Registry{extractors: extractors}
}

func (r *Registry) Register(e Extractor) {
	r.extractors = append(r.extractors, e)
}

// Matching returns the extractors whose predicate accepts the bundle ID, in
// registration order.
func (r *Registry) Matching(bundleID string) []Extractor {
	if bundleID == "" {
		return nil
	}
	var matched []Extractor
	for _, e := range r.extractors {
		if e.Matches(bundleID) {
			matched = append(matched, e)
		}
	}
	return matched
}
