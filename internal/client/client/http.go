package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/passclient/internal/common"
	"github.com/dmitrijs2005/passclient/internal/logging"
	"github.com/google/uuid"
)

const maxResponseBytes = 1 << 20

var _ Client = (*HTTPClient)(nil)

// HTTPClient implements Client over net/http. It is safe for concurrent use.
type HTTPClient struct {
	authURL string
	apiURL  string
	timeout time.Duration
	http    *http.Client
	log     logging.Logger
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithTimeout bounds every request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.timeout = d }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// NewHTTPClient returns a client for the auth service at authURL and the
// record/user services at apiURL.
func NewHTTPClient(authURL, apiURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		authURL: strings.TrimRight(authURL, "/"),
		apiURL:  strings.TrimRight(apiURL, "/"),
		http:    &http.Client{},
		log:     logging.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// do performs one round-trip. A non-empty token is sent as a bearer token
// and turns a 401 into ErrSessionExpired. When out is non-nil the response
// body must decode into it.
func (c *HTTPClient) do(ctx context.Context, method, url, token string, in, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", common.ContentTypeJSON)
	if in != nil {
		req.Header.Set("Content-Type", common.ContentTypeJSON)
	}
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	log := c.log.With("method", method, "path", req.URL.Path, "request_id", requestID)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug(ctx, "request failed", "error", err)
		return &Error{Kind: KindNetwork, Message: "could not reach the server", Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	log.Debug(ctx, "request done", "status", resp.StatusCode, "duration", time.Since(start))
	if err != nil {
		return &Error{Kind: KindNetwork, Status: resp.StatusCode, Message: "could not read the response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mapError(resp.StatusCode, payload, token != "")
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return &Error{Kind: KindServer, Status: resp.StatusCode, Message: "empty response"}
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &Error{Kind: KindServer, Status: resp.StatusCode, Message: "malformed response", Err: err}
	}
	return nil
}

type errorBody struct {
	Message string `json:"message"`
}

func serverMessage(payload []byte) string {
	var eb errorBody
	if err := json.Unmarshal(payload, &eb); err != nil {
		return ""
	}
	return strings.TrimSpace(eb.Message)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// mapError turns a non-2xx response into an *Error. authenticated tells
// whether the request carried a token.
func mapError(status int, payload []byte, authenticated bool) error {
	msg := serverMessage(payload)

	var kind Kind
	switch {
	case status == http.StatusUnauthorized && authenticated:
		kind = KindSessionExpired
		msg = orDefault(msg, "Your session has expired, please log in again")
	case status == http.StatusUnauthorized:
		kind = KindAuthenticationFailed
		msg = orDefault(msg, "Authentication failed")
	case status == http.StatusBadRequest:
		kind = KindInvalidRequest
		msg = orDefault(msg, "Invalid request")
	case status == http.StatusForbidden:
		kind = KindForbidden
		msg = orDefault(msg, "Access denied")
	case status == http.StatusNotFound:
		kind = KindNotFound
		msg = orDefault(msg, "Not found")
	default:
		kind = KindServer
		msg = orDefault(msg, "An unexpected error occurred")
	}

	return &Error{Kind: kind, Status: status, Message: msg}
}

// IsTimeout reports whether err was caused by a deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
