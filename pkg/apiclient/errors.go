package apiclient

import (
	"fmt"
	"strings"
)

const maxErrorBodyBytes = 512

// StatusError reports a non-2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: http response status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: http response status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// CheckStatus returns a *StatusError for non-2xx responses and nil otherwise.
func CheckStatus(method, url string, resp Response) error {
	if resp == nil {
		return nil
	}
	code := resp.StatusCode()
	if code >= 200 && code < 300 {
		return nil
	}
	return &StatusError{
		Method:     method,
		URL:        url,
		StatusCode: code,
		Body:       readBodySnippet(resp.Body()),
	}
}

func readBodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > maxErrorBodyBytes {
		body = body[:maxErrorBodyBytes]
	}
	return strings.TrimSpace(string(body))
}
