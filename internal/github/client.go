// Package github fetches public user profiles from the GitHub REST API.
//
// STATUS MAPPING:
// Every call issues exactly one GET {BaseURL}/users/{handle}. The outcome is
// either a decoded *model.Profile or an *apperror.AppError:
//
//	403           → apperror.RateLimited     (not a network error)
//	404           → apperror.NotFoundRemote  (not a network error)
//	other 400-599 → apperror.Transport       (network error, message = status text)
//	round trip    → apperror.Transport       (network error, message = cause)
//	bad body      → apperror.Transport       (network error, message = decode error)
//	no profile    → apperror.NotFoundRemote  (2xx body is null or has no login)
//
// The client does no de-duplication and no retries. Callers decide whether
// a second request may start.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/sakif/profile-lookup/internal/apperror"
	"github.com/sakif/profile-lookup/internal/model"
)

// DefaultBaseURL is the public GitHub API.
const DefaultBaseURL = "https://api.github.com"

const userAgent = "profile-lookup"

// Config configures a Client.
type Config struct {
	// BaseURL is the API root; the user endpoint is BaseURL + "/users/{handle}".
	BaseURL string
	// Token is an optional personal access token. Anonymous requests are
	// limited to 60 per hour; authenticated ones to 5000.
	Token string
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration
	// Transport overrides the HTTP transport (tests).
	Transport http.RoundTripper
}

// Client is the Fetcher: it turns a handle into a profile or a typed error.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a Client.
//
// AUTHENTICATION:
// With a token, requests go through an oauth2 client built from a static
// token source, which adds "Authorization: Bearer <token>" to each request.
// The base transport is handed to oauth2 through the oauth2.HTTPClient
// context key.
func New(cfg Config, logger *slog.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	base := &http.Client{Transport: cfg.Transport}

	httpClient := base
	if cfg.Token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.Token,
		}))
	}
	httpClient.Timeout = cfg.Timeout

	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		logger:  logger,
	}
}

// FetchUser retrieves the profile for handle. handle must already be
// validated and normalized.
func (c *Client) FetchUser(ctx context.Context, handle string) (*model.Profile, error) {
	endpoint := c.baseURL + "/users/" + url.PathEscape(handle)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("github: building request for %s: %w", handle, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("github request failed",
			slog.String("handle", handle),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Transport(err.Error(), err)
	}
	defer resp.Body.Close()

	c.logger.Debug("github responded",
		slog.String("handle", handle),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
		slog.String("ratelimitRemaining", resp.Header.Get("X-RateLimit-Remaining")),
	)

	if resp.StatusCode >= 400 && resp.StatusCode < 600 {
		return nil, statusError(resp)
	}

	var p *model.Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, apperror.Transport(err.Error(), err)
	}
	if p == nil || p.Login == "" {
		c.logger.Warn("github returned no usable profile",
			slog.String("handle", handle),
			slog.Int("status", resp.StatusCode),
		)
		return nil, apperror.NotFoundRemote()
	}
	// The API never sends this field; a hostile or broken upstream must not
	// be able to plant a marker.
	p.NotFound = false

	return p, nil
}

// statusError maps a 4xx/5xx response to the error taxonomy.
func statusError(resp *http.Response) *apperror.AppError {
	switch resp.StatusCode {
	case http.StatusForbidden:
		return apperror.RateLimited()
	case http.StatusNotFound:
		return apperror.NotFoundRemote()
	default:
		return apperror.Transport(statusText(resp), nil)
	}
}

// statusText returns the reason phrase of resp ("Bad Gateway" for
// "502 Bad Gateway"), falling back to the standard text for the code.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
