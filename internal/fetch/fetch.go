// Package fetch defines the injected HTTP strategy the resolver and element
// cache depend on, plus the default client used outside tests.
package fetch

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxBodyBytes caps response reads so a misbehaving server cannot consume
// unbounded memory. Full-disk imagery tops out well under this.
const maxBodyBytes = 50 * 1024 * 1024

// Doer issues a single HTTP request. *http.Client satisfies it; tests inject
// stubs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewClient returns the default HTTP client: sane timeout, redirects
// followed (the final URL after redirects carries timestamp information).
func NewClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
	}
}

// ReadBody drains and closes a response body, enforcing the byte limit.
func ReadBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("response exceeds %d byte limit", maxBodyBytes)
	}
	return body, nil
}

// ErrorDoer always fails with the given error. It backs offline mode, where
// every component exercises its cached/degraded path deterministically.
type ErrorDoer struct {
	Err error
}

func (d ErrorDoer) Do(req *http.Request) (*http.Response, error) {
	return nil, fmt.Errorf("offline: %w", d.Err)
}
