// Package wsclient connects to the backend WebSocket endpoint published in env.Env and
// streams the broadcast messages it sends (such as meal availability updates).
package wsclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/univalle-bu/bu-client/pkg/apiclient"
	"github.com/univalle-bu/bu-client/pkg/env"
)

const defaultHandshakeTimeout = 10 * time.Second

// Handler consumes a single message. A non-nil error stops Listen and is returned from it.
type Handler func(msg []byte) error

// Option customizes Dial.
type Option func(*dialOptions)

type dialOptions struct {
	dialer   *websocket.Dialer
	tokenKey string
	header   http.Header
}

// WithDialer replaces the default gorilla dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(o *dialOptions) {
		if d != nil {
			o.dialer = d
		}
	}
}

// WithTokenKey overrides the storage key the bearer token is read from.
func WithTokenKey(key string) Option {
	return func(o *dialOptions) {
		if key = strings.TrimSpace(key); key != "" {
			o.tokenKey = key
		}
	}
}

// WithHeader adds a handshake header.
func WithHeader(name, value string) Option {
	return func(o *dialOptions) {
		o.header.Set(name, value)
	}
}

// Conn is an open WebSocket connection.
type Conn struct {
	ws        *websocket.Conn
	closeOnce sync.Once
	closeErr  error
}

// Dial opens a connection to e.WebSocket. When tokens holds a non-empty access token the
// handshake carries "Authorization: Bearer <token>"; storage errors abort the dial unchanged.
func Dial(ctx context.Context, e env.Env, tokens apiclient.TokenReader, opts ...Option) (*Conn, error) {
	o := dialOptions{
		dialer:   &websocket.Dialer{Proxy: http.ProxyFromEnvironment, HandshakeTimeout: defaultHandshakeTimeout},
		tokenKey: apiclient.AccessTokenKey,
		header:   http.Header{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	target := strings.TrimSpace(e.WebSocket)
	if target == "" {
		target = env.DefaultWebSocketURL
	}

	if tokens != nil {
		token, ok, err := tokens.Get(o.tokenKey)
		if err != nil {
			return nil, err
		}
		if ok && token != "" {
			o.header.Set("Authorization", "Bearer "+token)
		}
	}

	ws, resp, err := o.dialer.DialContext(ctx, target, o.header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket dial %s: status %d: %w", target, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket dial %s: %w", target, err)
	}
	return &Conn{ws: ws}, nil
}

// Listen delivers text and binary messages to h until ctx is done, the peer closes
// normally, or h returns an error. A normal close returns nil; a cancelled ctx returns ctx.Err().
func (c *Conn) Listen(ctx context.Context, h Handler) error {
	if c == nil || c.ws == nil {
		return errors.New("websocket connection is not open")
	}
	if h == nil {
		return errors.New("handler must not be nil")
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = c.Close()
		case <-stop:
		}
	}()

	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("websocket read: %w", err)
		}
		if err := h(msg); err != nil {
			return err
		}
	}
}

// Send writes a text message.
func (c *Conn) Send(msg []byte) error {
	if c == nil || c.ws == nil {
		return errors.New("websocket connection is not open")
	}
	return c.ws.WriteMessage(websocket.TextMessage, msg)
}

// Close sends a normal close frame and releases the connection. Safe to call more than once.
func (c *Conn) Close() error {
	if c == nil || c.ws == nil {
		return nil
	}
	c.closeOnce.Do(func() {
		deadline := time.Now().Add(time.Second)
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}
