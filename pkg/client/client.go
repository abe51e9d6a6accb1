// Package client is a Go consumer of the Streamia HTTP API. It keeps an
// explicit Session for authentication state, transparently refreshes expired
// access tokens (collapsing concurrent refreshes into a single request), and
// retries transient failures of idempotent calls with exponential backoff.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrNotAuthenticated is returned when a call requires a session and none is
// active, or when the server rejected the session and a refresh could not
// restore it.
var ErrNotAuthenticated = errors.New("client: not authenticated")

// APIError is a non-success response envelope.
type APIError struct {
	Status  int
	Message string
	Details map[string][]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Result is the decoded form of a response envelope: either Data is valid or
// Err describes the failure, discriminated by OK.
type Result[T any] struct {
	OK   bool
	Data T
	Err  *APIError
}

// Unwrap converts a Result into Go's (value, error) convention.
func Unwrap[T any](res Result[T]) (T, error) {
	if !res.OK {
		var zero T
		return zero, res.Err
	}
	return res.Data, nil
}

// RetryPolicy bounds retries of transient failures: network errors and 5xx
// responses to idempotent requests.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy retries twice after the initial attempt, backing off
// from 200ms.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	BaseDelay:   200 * time.Millisecond,
	MaxDelay:    5 * time.Second,
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	delay := p.BaseDelay << attempt
	if delay > p.MaxDelay || delay <= 0 {
		delay = p.MaxDelay
	}
	return delay
}

// Client talks to a Streamia backend.
type Client struct {
	baseURL string
	httpc   *http.Client
	session *Session
	retry   RetryPolicy

	refreshGroup singleflight.Group
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client. A cookie jar is installed
// if the provided client has none, since refresh tokens travel by cookie.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithRetryPolicy overrides the transient-failure retry policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *Client) { c.retry = policy }
}

// New constructs a Client for the API at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("client: base URL must not be empty")
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: &Session{},
		retry:   DefaultRetryPolicy,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpc == nil {
		c.httpc = &http.Client{Timeout: 30 * time.Second}
	}
	if c.httpc.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("client: create cookie jar: %w", err)
		}
		c.httpc.Jar = jar
	}

	return c, nil
}

// Session exposes the client's authentication state.
func (c *Client) Session() *Session {
	return c.session
}

type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   string              `json:"error"`
	Details map[string][]string `json:"details"`
}

// call performs one API operation end to end: transient retry, bearer
// attachment, one transparent refresh-and-replay on 401, and envelope
// decoding into T.
func call[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var zero T

	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return zero, err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.session.Active() {
		drain(resp)
		if err := c.refreshToken(ctx); err != nil {
			return zero, err
		}
		resp, err = c.send(ctx, method, path, body)
		if err != nil {
			return zero, err
		}
	}

	res, err := decode[T](resp)
	if err != nil {
		return zero, err
	}
	return Unwrap(res)
}

// send issues the request, retrying network errors and 5xx responses for
// idempotent methods per the retry policy.
func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("client: encode request body: %w", err)
		}
		payload = encoded
	}

	idempotent := method == http.MethodGet || method == http.MethodHead || method == http.MethodDelete || method == http.MethodPut

	var lastErr error
	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(c.retry.backoff(attempt - 1))
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		req, err := c.newRequest(ctx, method, path, payload)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpc.Do(req)
		if err != nil {
			lastErr = err
			if !idempotent {
				break
			}
			continue
		}

		if resp.StatusCode >= http.StatusInternalServerError && idempotent && attempt+1 < c.retry.MaxAttempts {
			drain(resp)
			lastErr = fmt.Errorf("client: server error %d", resp.StatusCode)
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("client: %s %s failed: %w", method, path, lastErr)
}

func (c *Client) newRequest(ctx context.Context, method, path string, payload []byte) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// refreshToken obtains a fresh access token using the refresh cookie.
// Concurrent callers collapse into a single refresh request; a terminal
// rejection clears the session so callers stop presenting dead credentials.
func (c *Client) refreshToken(ctx context.Context) error {
	_, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/refresh", nil)
		if err != nil {
			return nil, fmt.Errorf("client: build refresh request: %w", err)
		}

		resp, err := c.httpc.Do(req)
		if err != nil {
			return nil, fmt.Errorf("client: refresh request failed: %w", err)
		}

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			drain(resp)
			c.session.clear()
			return nil, ErrNotAuthenticated
		}

		res, err := decode[struct {
			Token string `json:"token"`
		}](resp)
		if err != nil {
			return nil, err
		}
		data, err := Unwrap(res)
		if err != nil {
			return nil, err
		}

		c.session.setToken(data.Token)
		return nil, nil
	})
	return err
}

// decode reads a response envelope into a tagged Result.
func decode[T any](resp *http.Response) (Result[T], error) {
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return Result[T]{OK: true}, nil
	}

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<20)).Decode(&env); err != nil {
		return Result[T]{}, fmt.Errorf("client: decode response envelope: %w", err)
	}

	if !env.Success {
		return Result[T]{
			OK:  false,
			Err: &APIError{Status: resp.StatusCode, Message: env.Error, Details: env.Details},
		}, nil
	}

	var data T
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return Result[T]{}, fmt.Errorf("client: decode response data: %w", err)
		}
	}
	return Result[T]{OK: true, Data: data}, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	_ = resp.Body.Close()
}
