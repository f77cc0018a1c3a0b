package permclient

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

	"github.com/platinummonkey/cadmdt/pkg/navigation"
	"github.com/platinummonkey/cadmdt/pkg/observability"
	"github.com/platinummonkey/cadmdt/pkg/permissions"
)

// DefaultTimeout bounds one check round trip
const DefaultTimeout = 10 * time.Second

// Client calls the check-permission endpoints of a CAD/MDT server
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *observability.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for failed checks
func WithLogger(logger *observability.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the server at baseURL, authenticating with token
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type checkRequest struct {
	Permissions []permissions.Permission `json:"permissions"`
	Mode        permissions.Mode         `json:"mode"`
}

type checkResponse struct {
	Granted bool                            `json:"granted"`
	Results map[permissions.Permission]bool `json:"results"`
}

// UserPermissions is the sidebar feed for the calling user
type UserPermissions struct {
	Permissions []permissions.Permission `json:"permissions"`
	IsPowerUser bool                     `json:"isPowerUser"`
	Navigation  []navigation.Group       `json:"navigation"`
}

// StatusError is returned for any non-2xx response
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("check-permission returned %d: %s", e.StatusCode, e.Body)
}

func (c *Client) endpoint(slug, suffix string) string {
	return c.baseURL + "/api/servers/" + url.PathEscape(slug) + "/check-permission" + suffix
}

// Check asks whether the caller satisfies perms under mode (AND or OR)
func (c *Client) Check(ctx context.Context, slug string, perms []permissions.Permission, mode permissions.Mode) (bool, error) {
	var resp checkResponse
	if err := c.do(ctx, http.MethodPost, c.endpoint(slug, ""), checkRequest{Permissions: perms, Mode: mode}, &resp); err != nil {
		return false, err
	}
	return resp.Granted, nil
}

// CheckBulk asks for one result per permission. Permissions missing from the
// response are reported as false.
func (c *Client) CheckBulk(ctx context.Context, slug string, perms []permissions.Permission) (map[permissions.Permission]bool, error) {
	var resp checkResponse
	if err := c.do(ctx, http.MethodPost, c.endpoint(slug, ""), checkRequest{Permissions: perms, Mode: permissions.ModeBulk}, &resp); err != nil {
		return nil, err
	}
	results := make(map[permissions.Permission]bool, len(perms))
	for _, p := range perms {
		results[p] = resp.Results[p]
	}
	return results, nil
}

// UserPermissions fetches the caller's permission list and filtered navigation
func (c *Client) UserPermissions(ctx context.Context, slug string) (*UserPermissions, error) {
	var resp UserPermissions
	if err := c.do(ctx, http.MethodGet, c.endpoint(slug, "/user-permissions"), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("check-permission request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode check-permission response: %w", err)
	}
	return nil
}

func (c *Client) log(ctx context.Context) *observability.Logger {
	if c.logger != nil {
		return c.logger
	}
	return observability.FromContext(ctx)
}
