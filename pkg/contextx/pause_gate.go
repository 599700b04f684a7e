package contextx

import (
	"context"

	"automarket/pkg/pausex"
)

type contextKeyPauseGate struct{}

func WithPauseGate(ctx context.Context, gate *pausex.Gate) context.Context {
	return context.WithValue(ctx, contextKeyPauseGate{}, gate)
}

// PauseGateFromContext returns the gate stored in ctx or nil. A nil gate
// never blocks.
func PauseGateFromContext(ctx context.Context) *pausex.Gate {
	gate, _ := ctx.Value(contextKeyPauseGate{}).(*pausex.Gate)
	return gate
}
