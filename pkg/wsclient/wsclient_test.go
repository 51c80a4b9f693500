package wsclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univalle-bu/bu-client/internal/storage"
	"github.com/univalle-bu/bu-client/pkg/apiclient"
	"github.com/univalle-bu/bu-client/pkg/env"
)

func newWSServer(t *testing.T, onConn func(auth string, ws *websocket.Conn)) env.Env {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		onConn(auth, ws)
	}))
	t.Cleanup(srv.Close)
	return env.Publish("ws" + strings.TrimPrefix(srv.URL, "http") + "/ws")
}

func TestDialAttachesBearerTokenAndStreamsMessages(t *testing.T) {
	authCh := make(chan string, 1)
	e := newWSServer(t, func(auth string, ws *websocket.Conn) {
		authCh <- auth
		_ = ws.WriteMessage(websocket.TextMessage, []byte(`{"remainingSlotsLunch":10}`))
		_ = ws.WriteMessage(websocket.TextMessage, []byte(`{"remainingSlotsLunch":9}`))
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
		// Wait for the client to acknowledge the close.
		_, _, _ = ws.ReadMessage()
	})

	tokens := storage.NewMemoryStore()
	require.NoError(t, tokens.Set(apiclient.AccessTokenKey, "ws-token"))

	conn, err := Dial(context.Background(), e, tokens)
	require.NoError(t, err)
	defer conn.Close()

	var got []string
	err = conn.Listen(context.Background(), func(msg []byte) error {
		got = append(got, string(msg))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{`{"remainingSlotsLunch":10}`, `{"remainingSlotsLunch":9}`}, got)
	assert.Equal(t, "Bearer ws-token", <-authCh)
}

func TestDialWithoutTokenSendsNoAuthorization(t *testing.T) {
	authCh := make(chan string, 1)
	e := newWSServer(t, func(auth string, ws *websocket.Conn) {
		authCh <- auth
		_, _, _ = ws.ReadMessage()
	})

	conn, err := Dial(context.Background(), e, storage.NewMemoryStore())
	require.NoError(t, err)
	assert.Empty(t, <-authCh)
	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())
}

func TestListenStopsOnContextCancel(t *testing.T) {
	e := newWSServer(t, func(_ string, ws *websocket.Conn) {
		_, _, _ = ws.ReadMessage()
	})

	conn, err := Dial(context.Background(), e, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- conn.Listen(ctx, func([]byte) error { return nil })
	}()
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Listen did not return after cancel")
	}
}

func TestListenReturnsHandlerError(t *testing.T) {
	e := newWSServer(t, func(_ string, ws *websocket.Conn) {
		_ = ws.WriteMessage(websocket.TextMessage, []byte("x"))
		_, _, _ = ws.ReadMessage()
	})

	conn, err := Dial(context.Background(), e, nil)
	require.NoError(t, err)
	defer conn.Close()

	errStop := errors.New("stop")
	err = conn.Listen(context.Background(), func([]byte) error { return errStop })
	require.ErrorIs(t, err, errStop)
}

type brokenTokens struct{ err error }

func (b brokenTokens) Get(string) (string, bool, error) { return "", false, b.err }

func TestDialPropagatesStorageError(t *testing.T) {
	errStorage := errors.New("storage unavailable")
	_, err := Dial(context.Background(), env.Publish("ws://127.0.0.1:1/ws"), brokenTokens{err: errStorage})
	assert.True(t, err == errStorage, "expected identical error value, got %v", err)
}

func TestDialFailureIsWrapped(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := Dial(context.Background(), env.Publish("ws"+strings.TrimPrefix(srv.URL, "http")), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.ErrorIs(t, err, websocket.ErrBadHandshake)
}

func TestSendWithCustomTokenKeyAndHeader(t *testing.T) {
	type handshake struct{ auth, campus string }
	hsCh := make(chan handshake, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hsCh <- handshake{auth: r.Header.Get("Authorization"), campus: r.Header.Get("X-Campus")}
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		typ, msg, err := ws.ReadMessage()
		if err != nil {
			return
		}
		_ = ws.WriteMessage(typ, append([]byte("echo:"), msg...))
		_, _, _ = ws.ReadMessage()
	}))
	defer srv.Close()

	tokens := storage.NewMemoryStore()
	require.NoError(t, tokens.Set("WS_TOKEN", "custom"))

	conn, err := Dial(context.Background(), env.Publish("ws"+strings.TrimPrefix(srv.URL, "http")), tokens,
		WithTokenKey("WS_TOKEN"),
		WithHeader("X-Campus", "melendez"),
		WithDialer(&websocket.Dialer{HandshakeTimeout: time.Second}),
	)
	require.NoError(t, err)
	defer conn.Close()

	hs := <-hsCh
	assert.Equal(t, "Bearer custom", hs.auth)
	assert.Equal(t, "melendez", hs.campus)

	require.NoError(t, conn.Send([]byte("ping")))

	errDone := errors.New("done")
	var got string
	err = conn.Listen(context.Background(), func(msg []byte) error {
		got = string(msg)
		return errDone
	})
	require.ErrorIs(t, err, errDone)
	assert.Equal(t, "echo:ping", got)
}
