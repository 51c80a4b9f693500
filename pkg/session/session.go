// Package session manages the access token kept in local storage: obtaining it from the
// backend, verifying it, inspecting it, and discarding it.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/univalle-bu/bu-client/pkg/apiclient"
)

const (
	loginPath  = "/auth/login"
	verifyPath = "/auth/verify-token"
)

// TokenStore is the local storage surface the session writes the token to.
type TokenStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// Manager performs session operations against the API.
type Manager struct {
	api    apiclient.Doer
	tokens TokenStore
	key    string
}

// NewManager wires a session manager. key defaults to apiclient.AccessTokenKey.
func NewManager(api apiclient.Doer, tokens TokenStore, key string) (*Manager, error) {
	if api == nil {
		return nil, errors.New("api client must not be nil")
	}
	if tokens == nil {
		return nil, errors.New("token store must not be nil")
	}
	if key = strings.TrimSpace(key); key == "" {
		key = apiclient.AccessTokenKey
	}
	return &Manager{api: api, tokens: tokens, key: key}, nil
}

// Login exchanges credentials for an access token and stores it.
func (m *Manager) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errors.New("username and password are required")
	}

	var out LoginResult
	if err := m.postJSON(ctx, loginPath, Credentials{Username: username, Password: password}, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, errors.New("login response carried no token")
	}
	if err := m.tokens.Set(m.key, out.Token); err != nil {
		return nil, fmt.Errorf("store access token: %w", err)
	}
	return &out, nil
}

// Verify asks the backend to validate the stored token.
func (m *Manager) Verify(ctx context.Context) (*VerifyResult, error) {
	token, err := m.Token()
	if err != nil {
		return nil, err
	}

	var out VerifyResult
	if err := m.postJSON(ctx, verifyPath, verifyRequest{Token: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout removes the stored token. Subsequent requests carry no Authorization header.
func (m *Manager) Logout() error {
	if err := m.tokens.Remove(m.key); err != nil {
		return fmt.Errorf("remove access token: %w", err)
	}
	return nil
}

// Token returns the stored token or ErrNoToken.
func (m *Manager) Token() (string, error) {
	token, ok, err := m.tokens.Get(m.key)
	if err != nil {
		return "", fmt.Errorf("read access token: %w", err)
	}
	if !ok || token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Current decodes the stored token for display.
func (m *Manager) Current() (Claims, error) {
	token, err := m.Token()
	if err != nil {
		return Claims{}, err
	}
	return DecodeClaims(token)
}

func (m *Manager) postJSON(ctx context.Context, path string, body, out any) error {
	resp, err := m.api.Do(ctx, http.MethodPost, path, body, nil)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	if err := apiclient.CheckStatus(http.MethodPost, path, resp); err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
