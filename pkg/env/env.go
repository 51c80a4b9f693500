// Package env carries runtime endpoint values, such as the WebSocket URL, from application
// start to the components that need them. Values are passed explicitly or through a
// context.Context; nothing is stored in package-level state.
package env

import (
	"context"
	"strings"
)

// DefaultWebSocketURL is used when no WebSocket URL is configured.
const DefaultWebSocketURL = "ws://localhost:8080/ws"

// Env is the read-only runtime environment published at startup.
type Env struct {
	WebSocket string `json:"web_socket"`
}

// Publish builds the runtime environment, falling back to DefaultWebSocketURL
// when wsURL is empty.
func Publish(wsURL string) Env {
	wsURL = strings.TrimSpace(wsURL)
	if wsURL == "" {
		wsURL = DefaultWebSocketURL
	}
	return Env{WebSocket: wsURL}
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying e.
func NewContext(ctx context.Context, e Env) context.Context {
	return context.WithValue(ctx, ctxKey{}, e)
}

// FromContext returns the Env stored in ctx, if any.
func FromContext(ctx context.Context) (Env, bool) {
	if ctx == nil {
		return Env{}, false
	}
	e, ok := ctx.Value(ctxKey{}).(Env)
	return e, ok
}
