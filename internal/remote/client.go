// Package remote is the stateless client for the authoritative shop service.
// Every call returns an explicit error the sync layer can classify: transport
// trouble and 5xx are recoverable locally, 4xx is a business rejection.
package remote

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"context"
)

type Client struct {
	base string
	http *http.Client
	log  *zap.Logger
}

func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

// Error is a non-2xx response. A nil *Error never occurs: transport failures
// are returned as *Error with Status 0 wrapping the underlying error.
type Error struct {
	Status int
	Body   string
	err    error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("remote unreachable: %v", e.err)
	}
	return fmt.Sprintf("remote status %d: %s", e.Status, e.Body)
}

func (e *Error) Unwrap() error { return e.err }

// IsUnavailable reports a transient failure: the request never completed or
// the service answered 5xx. These are swallowed by the sync layer.
func IsUnavailable(err error) bool {
	var re *Error
	if !errors.As(err, &re) {
		return err != nil
	}
	return re.Status == 0 || re.Status >= 500
}

// IsRejection reports a 4xx business rejection, surfaced to the caller.
func IsRejection(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.Status >= 400 && re.Status < 500
}

func IsNotFound(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.Status == http.StatusNotFound
}

func IsConflict(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.Status == http.StatusConflict
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("remote: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("remote: build %s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		c.log.Debug("remote rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return &Error{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// A malformed body from a 2xx is treated like any other remote failure.
		return &Error{err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func pathEscape(s string) string { return url.PathEscape(s) }
