package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// activitiesPerPage is the page size requested from the provider.
	activitiesPerPage = 200

	// DefaultTimeout bounds every provider request; a hanging provider
	// must not block the caller indefinitely.
	DefaultTimeout = 30 * time.Second
)

// UpstreamError reports a non-2xx or malformed response from the provider.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream http %d: %s", e.Status, e.Body)
}

// Config holds the provider endpoints and application credentials.
type Config struct {
	BaseURL      string
	AuthorizeURL string
	ClientID     string
	ClientSecret string
	Scope        string
	Timeout      time.Duration
}

// Client talks to the fitness provider's HTTP API. It performs exactly one
// request per call with no retries; retry policy belongs to the caller.
type Client struct {
	cfg    Config
	client *http.Client
}

// New creates a provider client.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// AuthorizeURL builds the browser URL that starts the authorization-code
// grant, redirecting back to redirectURI with ?code= on approval.
func (c *Client) AuthorizeURL(redirectURI string) string {
	q := url.Values{}
	q.Set("client_id", c.cfg.ClientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("response_type", "code")
	q.Set("scope", c.cfg.Scope)
	return c.cfg.AuthorizeURL + "?" + q.Encode()
}

// ExchangeToken performs the authorization-code grant.
func (c *Client) ExchangeToken(ctx context.Context, code string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("code", code)
	form.Set("grant_type", "authorization_code")

	return c.tokenRequest(ctx, form)
}

// RefreshToken performs the refresh-token grant.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("refresh_token", refreshToken)
	form.Set("grant_type", "refresh_token")

	return c.tokenRequest(ctx, form)
}

func (c *Client) tokenRequest(ctx context.Context, form url.Values) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.cfg.BaseURL+"/oauth/token",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, readUpstreamError(resp)
	}

	var token TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: fmt.Sprintf("malformed token response: %v", err)}
	}

	return &token, nil
}

// ListActivities returns up to one page of activities starting at or after
// afterEpoch (seconds).
func (c *Client) ListActivities(ctx context.Context, accessToken string, afterEpoch int64) ([]Activity, error) {
	q := url.Values{}
	q.Set("after", strconv.FormatInt(afterEpoch, 10))
	q.Set("per_page", strconv.Itoa(activitiesPerPage))

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.cfg.BaseURL+"/api/v3/athlete/activities?"+q.Encode(),
		nil,
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, readUpstreamError(resp)
	}

	var activities []Activity
	if err := json.NewDecoder(resp.Body).Decode(&activities); err != nil {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: fmt.Sprintf("malformed activity list: %v", err)}
	}

	return activities, nil
}

func readUpstreamError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &UpstreamError{Status: resp.StatusCode, Body: string(raw)}
}
