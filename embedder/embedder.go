package embedder

import "context"

type Embedder interface {
	Embed(ctx context.Context, text string) (Embedding, error)
}
