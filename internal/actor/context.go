package actor

import "context"

type ctxKey string

const contextKey ctxKey = "actor"

// NewContext stores the authenticated actor for downstream handlers.
func NewContext(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, contextKey, a)
}

// FromContext returns the actor stored by the auth middleware.
func FromContext(ctx context.Context) (*Actor, bool) {
	a, ok := ctx.Value(contextKey).(*Actor)
	return a, ok
}
