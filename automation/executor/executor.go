package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/marcelsud/automation-connect/automation"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultTimeout bounds every vendor call that does not set its own
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of a vendor response is read
const maxResponseBytes = 4 << 20

// Executor performs outbound vendor requests on behalf of drivers
type Executor struct {
	client  *http.Client
	timeout time.Duration
	logger  zerolog.Logger
}

// New creates an executor with an instrumented transport
func New(timeout time.Duration, logger zerolog.Logger) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		timeout: timeout,
		logger:  logger.With().Str("component", "executor").Logger(),
	}
}

// NewWithClient wraps an existing client, used by tests pointing at httptest servers
func NewWithClient(client *http.Client, logger zerolog.Logger) *Executor {
	timeout := client.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{client: client, timeout: timeout, logger: logger}
}

// Client exposes the underlying client for SDKs that take an *http.Client
func (e *Executor) Client() *http.Client {
	return e.client
}

// Do runs the call and decodes the response. A non-2xx status is an *automation.ServiceRequestError.
func (e *Executor) Do(ctx context.Context, call automation.HTTPCall) (any, error) {
	timeout := e.timeout
	if call.Timeout > 0 && call.Timeout < timeout {
		timeout = call.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := e.build(ctx, call)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Warn().Err(err).Str("method", req.Method).Str("host", req.URL.Host).Msg("vendor request failed")
		return nil, fmt.Errorf("calling %s: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	e.logger.Debug().
		Str("method", req.Method).
		Str("host", req.URL.Host).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("vendor request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &automation.ServiceRequestError{
			Status: resp.StatusCode,
			Body:   string(body),
			URL:    req.URL.Redacted(),
		}
	}
	return decode(body), nil
}

func (e *Executor) build(ctx context.Context, call automation.HTTPCall) (*http.Request, error) {
	method := call.Method
	if method == "" {
		method = http.MethodPost
	}

	target, err := url.Parse(call.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing url: %w", err)
	}
	if len(call.Query) > 0 {
		q := target.Query()
		for k, v := range call.Query {
			q.Set(k, v)
		}
		target.RawQuery = q.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case call.JSON != nil:
		data, err := json.Marshal(call.JSON)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	case call.Form != nil:
		form := url.Values{}
		for k, v := range call.Form {
			form.Set(k, v)
		}
		body = strings.NewReader(form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case call.Body != nil:
		body = bytes.NewReader(call.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, values := range call.Header {
		req.Header.Del(k)
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	if call.User != "" || call.Pass != "" {
		req.SetBasicAuth(call.User, call.Pass)
	}
	return req, nil
}

func decode(body []byte) any {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err == nil {
		return v
	}
	return string(body)
}
