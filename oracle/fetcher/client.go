package fetcher

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// newHTTPClient returns a client for a single gateway. A zero timeout leaves
// requests bounded only by the transport defaults and the caller's context.
func newHTTPClient(timeout time.Duration) (*http.Client, error) {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          100,              // Maximum number of idle connections
		MaxIdleConnsPerHost:   10,               // Maximum idle connections per host
		IdleConnTimeout:       90 * time.Second, // How long idle connections stay open
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
		WriteBufferSize:       32 * 1024,
		ReadBufferSize:        32 * 1024,
	}

	// A hand built transport does not negotiate h2 on its own.
	if err := http2.ConfigureTransport(transport); err != nil {
		return nil, fmt.Errorf("failed to configure http2 transport: %w", err)
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, nil
}
