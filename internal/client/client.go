package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrRequest wraps failures that happen before the request could be sent, such as a malformed url.
var ErrRequest = errors.New("unable to build request")

const maxResponseBody = 64 * 1024

type Options struct {
	// ConnectTimeout bounds establishing the connection, TLS handshake included.
	ConnectTimeout time.Duration
	// RequestTimeout bounds the whole exchange, reading the response included. Zero means no limit.
	RequestTimeout time.Duration
}

// HttpClient delivers JSON documents to remote servers that authenticate clients with HTTP Basic credentials.
type HttpClient struct {
	client *http.Client
}

// New builds a client that only speaks HTTP/1.1.
func New(opts Options) *HttpClient {
	dialer := &net.Dialer{
		Timeout:   opts.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: opts.ConnectTimeout,
		ForceAttemptHTTP2:   false,
		// A non-nil empty map disables the HTTP/2 upgrade.
		TLSNextProto: map[string]func(string, *tls.Conn) http.RoundTripper{},
	}

	return &HttpClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.RequestTimeout,
		},
	}
}

// Wrap uses an existing http.Client, for instance the one of an httptest.Server.
func Wrap(c *http.Client) *HttpClient {
	return &HttpClient{client: c}
}

// PostJSON sends body to url with Basic credentials and returns the response status code. err is only set when
// no response was received.
func (c *HttpClient) PostJSON(ctx context.Context, url string, body []byte, user, password string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(user, password)

	res, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()

	content, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBody))
	if res.StatusCode >= http.StatusBadRequest {
		event := log.Error().Int("code", res.StatusCode).Str("url", url)
		if err != nil {
			event.Err(err)
		}
		event.Bytes("response body", content).Msg("delivery error")
	}

	return res.StatusCode, nil
}
