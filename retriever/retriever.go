package retriever

import "context"

// Retriever runs match_documents against a vector-search backend. An empty
// result is not an error.
type Retriever interface {
	Match(ctx context.Context, vector []float32, opts ...MatchOption) ([]Document, error)
}
