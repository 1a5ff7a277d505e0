package brain

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
)

const (
	// DefaultTimeout is the default timeout for Brain API calls
	DefaultTimeout = 30 * time.Second
)

// Client is an HTTP client for the Aserras Brain backend. It performs a
// single outbound call per operation and never retries; retry policy, if
// any, belongs to the caller.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// New creates a Brain client for the given base URL. A trailing slash on
// the base URL is stripped.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type requestOptions struct {
	token string
	body  any
	query url.Values
}

// do issues one request against the backend and normalizes the outcome:
// a decoded JSON payload (or raw bytes for non-JSON responses), an
// ErrUnavailable for transport failures and 5xx statuses, or a
// RejectedError for 4xx statuses.
func (c *Client) do(ctx context.Context, method, path string, opts requestOptions) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + path
	if len(opts.query) > 0 {
		endpoint += "?" + opts.query.Encode()
	}

	var reqBody io.Reader
	if opts.body != nil {
		encoded, err := json.Marshal(opts.body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if opts.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if opts.token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: upstream returned status %d", ErrUnavailable, resp.StatusCode)
	}

	isJSON := strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json")

	if resp.StatusCode >= http.StatusBadRequest {
		detail := ""
		if isJSON {
			var payload struct {
				Detail string `json:"detail"`
			}
			if err := json.Unmarshal(body, &payload); err == nil {
				detail = payload.Detail
			}
		}
		if detail == "" {
			detail = strings.TrimSpace(string(body))
		}
		return nil, &RejectedError{StatusCode: resp.StatusCode, Detail: detail}
	}

	if isJSON && !json.Valid(body) {
		return nil, &RejectedError{StatusCode: resp.StatusCode, Detail: "brain response was not valid JSON"}
	}
	return body, nil
}

// AuthResult is the backend's answer to login and register calls.
type AuthResult struct {
	AccessToken string `json:"access_token"`
	Token       string `json:"token"`
}

// SessionToken returns whichever token field the backend populated, or "".
func (a AuthResult) SessionToken() string {
	if a.AccessToken != "" {
		return a.AccessToken
	}
	return a.Token
}

// Login authenticates a user against the backend.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	var result AuthResult
	body, err := c.do(ctx, http.MethodPost, "/auth/login", requestOptions{
		body: map[string]string{"email": email, "password": password},
	})
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return result, &RejectedError{StatusCode: http.StatusOK, Detail: "unexpected login response shape"}
	}
	return result, nil
}

// Register creates a new account on the backend.
func (c *Client) Register(ctx context.Context, name, email, password string) (AuthResult, error) {
	var result AuthResult
	body, err := c.do(ctx, http.MethodPost, "/auth/register", requestOptions{
		body: map[string]string{"name": name, "email": email, "password": password},
	})
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return result, &RejectedError{StatusCode: http.StatusOK, Detail: "unexpected register response shape"}
	}
	return result, nil
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context, token string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/auth/me", requestOptions{token: token})
}

// UpdateProfile patches the authenticated user's profile.
func (c *Client) UpdateProfile(ctx context.Context, token string, payload any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPatch, "/auth/me", requestOptions{token: token, body: payload})
}

// ListModels returns the available models. The backend answers either
// with a bare array or a {"models": [...]} envelope; both are accepted.
func (c *Client) ListModels(ctx context.Context, token string) ([]json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodGet, "/models/list", requestOptions{token: token})
	if err != nil {
		return nil, err
	}
	return decodeList(body, "models")
}

// GenerateText submits a text generation prompt.
func (c *Client) GenerateText(ctx context.Context, token, prompt, model string) (json.RawMessage, error) {
	payload := map[string]string{"prompt": prompt}
	if model != "" {
		payload["model"] = model
	}
	return c.do(ctx, http.MethodPost, "/ai/text", requestOptions{token: token, body: payload})
}

// GenerateImage submits an image generation prompt.
func (c *Client) GenerateImage(ctx context.Context, token, prompt, size string) (json.RawMessage, error) {
	payload := map[string]string{"prompt": prompt}
	if size != "" {
		payload["size"] = size
	}
	return c.do(ctx, http.MethodPost, "/ai/image", requestOptions{token: token, body: payload})
}

// GenerateCode submits a code generation request.
func (c *Client) GenerateCode(ctx context.Context, token, instructions, language, model string) (json.RawMessage, error) {
	payload := map[string]string{"instructions": instructions}
	if language != "" {
		payload["language"] = language
	}
	if model != "" {
		payload["model"] = model
	}
	return c.do(ctx, http.MethodPost, "/ai/code", requestOptions{token: token, body: payload})
}

// History returns the user's generation history. Accepts a bare array or
// an {"items": [...]} envelope.
func (c *Client) History(ctx context.Context, token string) ([]json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodGet, "/history", requestOptions{token: token})
	if err != nil {
		return nil, err
	}
	return decodeList(body, "items")
}

// Health probes the backend liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", requestOptions{})
	return err
}

func decodeList(body []byte, envelopeField string) ([]json.RawMessage, error) {
	var list []json.RawMessage
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err == nil {
		if raw, ok := envelope[envelopeField]; ok {
			if err := json.Unmarshal(raw, &list); err == nil {
				return list, nil
			}
		}
		return nil, nil
	}
	return nil, &RejectedError{StatusCode: http.StatusOK, Detail: "unexpected list response shape"}
}
