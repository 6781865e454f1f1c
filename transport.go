package apiweave

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultUserAgent = "apiweave/0.1"
	defaultTimeout   = 30 * time.Second

	requestIDHeader = "X-Request-Id"
)

// Transport sends a wire request and reports the raw outcome. A non-nil
// error means the request never produced an HTTP status (connection, DNS,
// or TLS failure); HTTP-level errors are returned as a WireResponse and
// classified by the Executor.
type Transport interface {
	Send(ctx context.Context, req *WireRequest) (*WireResponse, error)
}

// WireResponse is the raw outcome of a transport call.
type WireResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// HTTPTransport is the net/http-backed Transport. Peer certificates are
// always verified; there is no insecure option.
type HTTPTransport struct {
	cfg    *Config
	client *http.Client
	logger *slog.Logger
}

// NewHTTPTransport creates an HTTPTransport with the given per-request
// timeout. A non-positive timeout selects the default of 30 seconds.
func NewHTTPTransport(cfg *Config, timeout time.Duration, logger *slog.Logger) *HTTPTransport {
	if logger == nil {
		logger = slog.Default()
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
		},
	}

	return &HTTPTransport{cfg: cfg, client: client, logger: logger}
}

// Send serializes the body, attaches headers, the configured User-Agent, and
// a fresh request id, then performs the HTTP call and drains the response.
func (t *HTTPTransport) Send(ctx context.Context, wr *WireRequest) (*WireResponse, error) {
	u, err := url.Parse(wr.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing request URL: %w", err)
	}

	u.RawQuery = wr.Query.Encode()

	var body io.Reader

	switch {
	case wr.JSONBody != nil:
		raw, marshalErr := json.Marshal(wr.JSONBody)
		if marshalErr != nil {
			return nil, fmt.Errorf("encoding JSON body: %w", marshalErr)
		}

		body = bytes.NewReader(raw)
	case wr.FormBody != nil:
		body = strings.NewReader(wr.FormBody.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, wr.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for k, v := range wr.Headers {
		req.Header.Set(k, v)
	}

	req.Header.Set("User-Agent", t.cfg.UserAgent())
	req.Header.Set(requestIDHeader, uuid.NewString())

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	t.logger.Debug("request sent",
		slog.String("method", wr.Method),
		slog.String("url", u.String()),
		slog.Int("status", resp.StatusCode),
	)

	return &WireResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}, nil
}
