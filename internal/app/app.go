package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/univalle-bu/bu-client/internal/config"
	"github.com/univalle-bu/bu-client/internal/logger"
	"github.com/univalle-bu/bu-client/internal/storage"
	"github.com/univalle-bu/bu-client/pkg/apiclient"
	"github.com/univalle-bu/bu-client/pkg/env"
	"github.com/univalle-bu/bu-client/pkg/session"
	"github.com/univalle-bu/bu-client/pkg/wsclient"
)

// App represents the client runtime. It owns the local token storage, the shared API client
// built on top of it, and the runtime environment published at startup.
type App struct {
	cfg     *config.Config
	log     logger.Logger
	store   storage.Store
	client  *apiclient.Client
	session *session.Manager
	env     env.Env
}

// New builds the client runtime from config.
func New(cfg *config.Config, log logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type": cfg.StorageType,
		"path": cfg.BBoltPath,
	})

	headers, err := apiclient.LoadHeaders(cfg.HeadersFile)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("load headers: %w", err)
	}

	client, err := apiclient.New(cfg.ClientConfig(headers), store,
		apiclient.WithErrorObserver(func(method, url string, err error) {
			log.DebugObj("api request failed", "request_error", map[string]any{
				"method": method,
				"url":    url,
				"error":  err.Error(),
			})
		}),
	)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("build api client: %w", err)
	}

	sess, err := session.NewManager(client, store, apiclient.AccessTokenKey)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("build session manager: %w", err)
	}

	runtimeEnv := cfg.RuntimeEnv()
	log.InfoObj("api client ready", "client_meta", map[string]any{
		"base_url":        client.BaseURL(),
		"web_socket":      runtimeEnv.WebSocket,
		"timeout_seconds": int(cfg.HTTPTimeout.Seconds()),
		"extra_headers":   len(headers),
	})

	return &App{
		cfg:     cfg,
		log:     log,
		store:   store,
		client:  client,
		session: sess,
		env:     runtimeEnv,
	}, nil
}

// Client returns the shared API client.
func (a *App) Client() *apiclient.Client { return a.client }

// Session returns the session manager bound to the shared client.
func (a *App) Session() *session.Manager { return a.session }

// Env returns the runtime environment published at startup.
func (a *App) Env() env.Env { return a.env }

// Context returns a copy of ctx carrying the runtime environment.
func (a *App) Context(ctx context.Context) context.Context {
	return env.NewContext(ctx, a.env)
}

// Request issues a call through the shared client and returns the raw response body.
// Non-2xx responses are reported as *apiclient.StatusError.
func (a *App) Request(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var payload any
	if len(body) > 0 {
		if !json.Valid(body) {
			return nil, errors.New("request body must be valid JSON")
		}
		payload = json.RawMessage(body)
	}

	resp, err := a.client.Do(ctx, method, path, payload, nil)
	if err != nil {
		return nil, err
	}
	if err := apiclient.CheckStatus(method, path, resp); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// Watch streams WebSocket messages to h until ctx is done or the server closes the connection.
// The endpoint comes from the Env carried by ctx, falling back to the App's own.
func (a *App) Watch(ctx context.Context, h wsclient.Handler) error {
	target, ok := env.FromContext(ctx)
	if !ok {
		target = a.env
	}

	conn, err := wsclient.Dial(ctx, target, a.store)
	if err != nil {
		return err
	}
	defer conn.Close()
	a.log.InfoObj("websocket connected", "web_socket", target.WebSocket)

	err = conn.Listen(ctx, h)
	a.log.InfoObj("websocket closed", "web_socket", target.WebSocket)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close releases the storage backend.
func (a *App) Close() error {
	if a == nil || a.store == nil {
		return nil
	}
	if err := a.store.Close(); err != nil {
		a.log.ErrorObj("storage close failed", "error", err)
		return err
	}
	return nil
}
