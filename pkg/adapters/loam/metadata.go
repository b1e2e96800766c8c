package loam

// EntryMetadata is the front matter (or whole structured body for JSON and
// YAML files) of a content document stored in Loam. Keys are kept verbatim;
// the schema layer decides what they mean.
type EntryMetadata map[string]any
