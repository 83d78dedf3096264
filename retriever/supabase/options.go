package supabase

import (
	"context"

	"github.com/w-h-a/ragchat/retriever"
)

type functionKey struct{}

// WithFunction overrides the name of the RPC function to call.
func WithFunction(name string) retriever.Option {
	return func(o *retriever.Options) {
		o.Context = context.WithValue(o.Context, functionKey{}, name)
	}
}

func FunctionFrom(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(functionKey{}).(string)
	return name, ok
}
