package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/entitydiagram/pkg/cache"
	"github.com/matzehuels/entitydiagram/pkg/errors"
	"github.com/matzehuels/entitydiagram/pkg/observability"
)

const httpTimeout = 10 * time.Second

// Client provides authenticated access to the platform API of one project.
// It handles caching, retry logic, and common request headers.
type Client struct {
	http    *http.Client
	baseURL string
	project string
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	headers map[string]string
}

// NewClient creates a Client for project at baseURL.
// Headers are applied to all requests made through this client; pass nil if
// no default headers are needed. A nil cache disables caching.
func NewClient(baseURL, project string, c cache.Cache, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	baseURL = strings.TrimRight(baseURL, "/")
	scope := baseURL
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		scope = u.Host
	}
	return &Client{
		http:    NewHTTPClient(),
		baseURL: baseURL,
		project: project,
		cache:   c,
		keyer:   cache.NewScopedKeyer(cache.NewDefaultKeyer(), scope+":"),
		ttl:     ttl,
		headers: headers,
	}
}

// NewHTTPClient creates an HTTP client with a standard timeout for API requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// BearerToken returns the Authorization header map for token.
func BearerToken(token string) map[string]string {
	if token == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// Project returns the project key requests are scoped to.
func (c *Client) Project() string { return c.project }

// Get performs a GET on the project-relative path and JSON-decodes the
// response into v. Responses are served from the cache unless refresh is set;
// transient failures are retried.
func (c *Client) Get(ctx context.Context, path string, query url.Values, refresh bool, v any) error {
	rel := c.projectPath(path)
	if len(query) > 0 {
		rel += "?" + query.Encode()
	}
	key := c.keyer.HTTPKey(c.project, rel)

	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok {
			if err := json.Unmarshal(data, v); err == nil {
				observability.Cache().OnCacheHit(ctx, "http")
				return nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "http")
	}

	var body []byte
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		body, err = c.do(ctx, http.MethodGet, rel, nil)
		return err
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", rel)
	}
	if err := c.cache.Set(ctx, key, body, c.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, "http", len(body))
	}
	return nil
}

// Post sends payload as JSON to the project-relative path and decodes the
// response into v, which may be nil.
//
// Unlike Get, Post makes a single attempt. Writers own their retry policy.
func (c *Client) Post(ctx context.Context, path string, payload, v any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	body, err := c.do(ctx, http.MethodPost, c.projectPath(path), data)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	return json.Unmarshal(body, v)
}

func (c *Client) projectPath(path string) string {
	return "/" + url.PathEscape(c.project) + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) do(ctx context.Context, method, rel string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+rel, reader)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, host, path, err)
		return nil, cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return cache.ErrNotFound
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", cache.ErrUnauthorized, code)
	case code == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return cache.Retryable(&errors.RateLimitedError{RetryAfter: retryAfter})
	case code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", cache.ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", cache.ErrNetwork, code)
	}
}
