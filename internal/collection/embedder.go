package collection

import "context"

// Embedder turns text into vectors for the auto-embedding indexing path
// (spec §6): when a document's embedding field holds a string instead of a
// []float32, the collection calls an Embedder and caches the result under
// the model+text embedcache.Key. A document without the embedding field is
// not embedded.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	ModelName() string
}
