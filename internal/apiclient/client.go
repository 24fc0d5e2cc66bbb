// Package apiclient talks to the Zuvomo REST API on behalf of a browser
// session and normalizes its responses into typed errors.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	apperrors "zuvomo/internal/errors"
)

var (
	// ErrNetwork is returned when the API cannot be reached.
	ErrNetwork = errors.New("could not reach the server, please try again")
	// ErrInvalidCredentials is returned when login is refused.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrDuplicateEmail is returned when signup hits an existing account.
	ErrDuplicateEmail = errors.New("an account with this email already exists")
	// ErrUnauthorized is returned when the access token is missing, invalid or expired.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError carries field-level problems, keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// APIError is any non-2xx response the caller did not map to a sentinel.
type APIError struct {
	Status  int
	Code    string
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned %d", e.Status)
	}
	return e.Message
}

// Unwrap lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// Client is a thin JSON client for the API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client. baseURL includes the /api prefix.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// do sends in as JSON (when non-nil) and decodes a 2xx body into out
// (when non-nil). Transport failures wrap ErrNetwork; non-2xx responses
// are returned as *APIError.
func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var er apperrors.ErrorResponse
		if json.Unmarshal(raw, &er) == nil {
			apiErr.Code, apiErr.Message, apiErr.Fields = er.Code, er.Error, er.Fields
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// asValidation turns a 400 with field errors into a *ValidationError.
func asValidation(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest && len(apiErr.Fields) > 0 {
		return &ValidationError{Fields: apiErr.Fields}
	}
	return err
}
