package env

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishFallsBackToDefault(t *testing.T) {
	assert.Equal(t, "ws://localhost:8080/ws", Publish("").WebSocket)
	assert.Equal(t, DefaultWebSocketURL, Publish("   ").WebSocket)
}

func TestPublishUsesConfiguredURL(t *testing.T) {
	assert.Equal(t, "wss://bu.example.com/ws", Publish("wss://bu.example.com/ws").WebSocket)
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := NewContext(context.Background(), Publish("ws://example/ws"))
	got, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "ws://example/ws", got.WebSocket)
}
