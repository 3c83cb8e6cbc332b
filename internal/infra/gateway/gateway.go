package gateway

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
)

const DefaultTimeout = 30 * time.Second

// ErrUnavailable the provider could not be reached or answered with a server error; safe to retry.
var ErrUnavailable = errors.New("payment gateway unavailable")

// ProviderError the provider answered but refused the request, Body is its raw response.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       json.RawMessage
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s responded %d: %s", e.Provider, e.StatusCode, string(e.Body))
}

func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// Response is a fully read provider reply.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

func (r *Response) IsJSON() bool {
	return strings.HasPrefix(r.ContentType, "application/json")
}

// RawJSON returns the body when it is valid json, "{}" otherwise.
func (r *Response) RawJSON() json.RawMessage {
	if json.Valid(r.Body) {
		return json.RawMessage(r.Body)
	}
	return json.RawMessage(`{}`)
}

// Do sends req and reads the whole body. Transport failures and 5xx map to ErrUnavailable.
func Do(ctx context.Context, client *http.Client, method, url string, header http.Header, body any) (*Response, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	return &Response{StatusCode: resp.StatusCode, ContentType: resp.Header.Get("Content-Type"), Body: b}, nil
}
