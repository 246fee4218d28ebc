// Package ingest implements the deterministic document-processing pipeline
// (spec §4.6): an ordered list of pure Document -> Document transforms
// applied before indexing.
package ingest

// Document is the core's client-facing document shape (spec §3): a unique
// id plus an open field map. Processors mutate the Fields map of their
// owned input in place; nothing aliases a caller's map across pipeline
// stages.
type Document struct {
	ID     string
	Fields map[string]any
}

// Clone returns a shallow copy of d with its own Fields map, so a pipeline
// stage can mutate safely without aliasing the caller's document.
func (d Document) Clone() Document {
	fields := make(map[string]any, len(d.Fields))
	for k, v := range d.Fields {
		fields[k] = v
	}
	return Document{ID: d.ID, Fields: fields}
}
