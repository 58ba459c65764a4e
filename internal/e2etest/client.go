package e2etest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/huntdesk/internal/errors"
)

// Client talks to the JSON API of a running server.
type Client struct {
	client *http.Client
	url    string
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return errors.Wrap(err, "decode response body", slog.String("body", string(r.Body)))
	}
	return nil
}

// NewClient creates a client for the server at url.
func NewClient(url string) *Client {
	return &Client{
		client: &http.Client{Timeout: 5 * time.Minute}, //nolint:mnd // hunts wait for the completion
		url:    url,
	}
}

// WaitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func (c *Client) WaitForReady(ctx context.Context, urlPath string) error {
	timeout := 1 * time.Second
	startTime := time.Now()
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	for {
		if req, err = c.newRequestWithContext(ctx, http.MethodGet, urlPath, nil); err != nil {
			return errors.Wrap(err, "create request")
		}

		if resp, err = c.client.Do(req); err == nil {
			if err = resp.Body.Close(); err != nil {
				return errors.Wrap(err, "close response body")
			}
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "context cancelled")
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(100 * time.Millisecond) //nolint:mnd // 100ms
		}
	}
}

// Do sends body encoded as JSON, or no body when it is nil, and reads the whole response.
func (c *Client) Do(ctx context.Context, method, urlPath string, body any) (*Response, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "encode request body")
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := c.newRequestWithContext(ctx, method, urlPath, reader)
	if err != nil {
		return nil, errors.Wrap(err, "create request with context")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request", slog.String("method", method), slog.String("path", urlPath))
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	var respBody []byte
	if respBody, err = io.ReadAll(resp.Body); err != nil {
		return nil, errors.Wrap(err, "read response body")
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: respBody}, nil
}

// DoJSON is like Do but requires the wantStatus status code and decodes the response body into out.
func (c *Client) DoJSON(ctx context.Context, method, urlPath string, body any, wantStatus int, out any) error {
	resp, err := c.Do(ctx, method, urlPath, body)
	if err != nil {
		return err
	}
	if resp.StatusCode != wantStatus {
		return errors.New("unexpected status code",
			slog.Int("status", resp.StatusCode),
			slog.Int("want", wantStatus),
			slog.String("body", string(resp.Body)))
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}

// GetDoc fetches an HTML endpoint and returns a goquery document.
func (c *Client) GetDoc(ctx context.Context, urlPath string) (*goquery.Document, error) {
	resp, err := c.Do(ctx, http.MethodGet, urlPath, nil)
	if err != nil {
		return nil, errors.Wrap(err, "client get")
	}
	if http.StatusOK != resp.StatusCode {
		return nil, errors.New("unexpected status code", slog.Int("status", resp.StatusCode))
	}
	var doc *goquery.Document
	if doc, err = goquery.NewDocumentFromReader(bytes.NewReader(resp.Body)); err != nil {
		return nil, errors.Wrap(err, "create document from reader")
	}
	return doc, nil
}

// newRequestWithContext creates a new HTTP request to the server that respects the given context.
func (c *Client) newRequestWithContext(
	ctx context.Context,
	method, urlPath string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url+urlPath, body)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	return req, nil
}
