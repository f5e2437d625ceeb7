// Package client speaks the receipt HTTP API.
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

	"github.com/google/uuid"

	"github.com/aretw0/receipt/pkg/core"
	"github.com/aretw0/receipt/pkg/httpapi"
)

const defaultTimeout = 10 * time.Second

// Client calls a receipt server.
type Client struct {
	base string
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client, which times out after 10s.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a client for the server at baseURL, e.g. http://localhost:8080.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches the whole log, newest first.
func (c *Client) List(ctx context.Context) ([]core.Entry, error) {
	var entries []core.Entry
	if err := c.do(ctx, http.MethodGet, "/api/receipts", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Append writes one candidate and returns the stored entry.
func (c *Client) Append(ctx context.Context, candidate core.Entry) (core.Entry, error) {
	var resp httpapi.WriteResponse
	if err := c.do(ctx, http.MethodPost, "/api/receipts", candidate, &resp); err != nil {
		return core.Entry{}, err
	}
	return resp.Entry, nil
}

// Submit asks the server to compose and append entries for text.
func (c *Client) Submit(ctx context.Context, text string) ([]core.Entry, error) {
	var resp httpapi.SubmitResponse
	if err := c.do(ctx, http.MethodPost, "/api/submit", httpapi.SubmitRequest{Text: text}, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(httpapi.RequestIDHeader, uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// StatusError is a non-200 answer. It unwraps to the core sentinel matching
// its code, so errors.Is(err, core.ErrStoreCorrupt) works across the wire.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

func (e *StatusError) Unwrap() error {
	switch e.Code {
	case httpapi.CodeInvalidEntry:
		return core.ErrInvalidEntry
	case httpapi.CodeUnsupported:
		return core.ErrUnsupportedOperation
	case httpapi.CodeStoreUnavailable:
		return core.ErrStoreUnavailable
	case httpapi.CodeStoreCorrupt:
		return core.ErrStoreCorrupt
	}
	return nil
}

func decodeError(resp *http.Response) error {
	se := &StatusError{Status: resp.StatusCode}
	var body httpapi.ErrorBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &body); err == nil {
		se.Code, se.Message = body.Code, body.Error
	} else {
		se.Message = strings.TrimSpace(string(data))
	}
	return se
}

// IsStatus reports whether err is a StatusError with the given status.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}
