package apiclient

import "context"

// AccessTokenKey is the storage key the bearer token is saved under.
const AccessTokenKey = "ACCESS_TOKEN"

// TokenReader is the read side of the local key-value storage holding the access token.
// A missing key is reported as ok=false with a nil error.
type TokenReader interface {
	Get(key string) (value string, ok bool, err error)
}

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header(name string) string
}

// Doer abstracts HTTP calls so callers can inject mocks or different transports.
type Doer interface {
	Do(ctx context.Context, method, path string, body any, headers map[string]string) (Response, error)
}
