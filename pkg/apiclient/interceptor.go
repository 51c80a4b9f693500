package apiclient

import (
	"github.com/go-resty/resty/v2"
)

const bearerScheme = "Bearer "

// RequestInterceptor runs before a request is dispatched and may modify it.
// A non-nil error rejects the request; the client returns that error to the caller as is.
type RequestInterceptor func(req *resty.Request) error

// BearerAuth reads the token stored under key at dispatch time and, when it is non-empty,
// sets Authorization to "Bearer <token>". Storage errors are returned unchanged.
func BearerAuth(tokens TokenReader, key string) RequestInterceptor {
	if key == "" {
		key = AccessTokenKey
	}
	return func(req *resty.Request) error {
		if tokens == nil {
			return nil
		}
		token, ok, err := tokens.Get(key)
		if err != nil {
			return err
		}
		if ok && token != "" {
			req.SetHeader(headerAuthorization, bearerScheme+token)
		}
		return nil
	}
}

