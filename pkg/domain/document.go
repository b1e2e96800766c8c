package domain

// RawDocument is one content document as parsed from its source, before
// validation. Fields holds the front-matter or structured data; Body is the
// free-form text after the front-matter (empty for pure data files).
type RawDocument struct {
	Collection string         `json:"collection"`
	ID         string         `json:"id"`
	Path       string         `json:"path,omitempty"`
	Fields     map[string]any `json:"fields"`
	Body       string         `json:"body,omitempty"`
}

// SlugKey is the front-matter key that overrides the path-derived document ID.
const SlugKey = "slug"
