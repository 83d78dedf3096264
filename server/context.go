package server

import "context"

type requestIdKey struct{}

func ContextWithRequestId(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIdKey{}, id)
}

func RequestIdFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIdKey{}).(string)
	return id, ok && len(id) > 0
}
