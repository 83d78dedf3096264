package qdrant

import (
	"context"

	"github.com/w-h-a/ragchat/retriever"
)

type collectionKey struct{}

func WithCollection(name string) retriever.Option {
	return func(o *retriever.Options) {
		o.Context = context.WithValue(o.Context, collectionKey{}, name)
	}
}

func CollectionFrom(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(collectionKey{}).(string)
	return name, ok
}
