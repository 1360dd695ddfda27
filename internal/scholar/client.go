// Package scholar is a rate-limited client for a Semantic Scholar style
// paper metadata API, producing candidate records for the merge engine.
package scholar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const (
	// BaseURL is the default API base URL.
	BaseURL = "https://api.semanticscholar.org/graph/v1"

	// RateLimit is 1 request per second, the unauthenticated API limit.
	RateLimit = 1.0

	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// cacheTTL is how long paper responses are served from memory before
	// a fresh fetch.
	cacheTTL = 15 * time.Minute

	// paperFields are the fields requested for paper lookups.
	paperFields = "paperId,externalIds,title,abstract,venue,year,publicationDate,citationCount,fieldsOfStudy,authors.name,authors.authorId,authors.affiliations"
)

// Client fetches paper metadata with rate limiting and an in-memory TTL
// response cache.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *gocache.Cache
	apiKey     string
	baseURL    string
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the API key for authenticated requests.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// NewClient creates a paper metadata API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		cache:      gocache.New(cacheTTL, 2*cacheTTL),
		baseURL:    BaseURL,
	}
	if key := os.Getenv("SCHOLAR_API_KEY"); key != "" {
		c.apiKey = key
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("scholar API error %d: %s", e.StatusCode, e.Message)
}

// Paper fetches metadata for a paper by identifier (DOI:..., ARXIV:...,
// or a raw paper id). Responses are cached for a short TTL.
func (c *Client) Paper(ctx context.Context, id string) (*PaperResponse, error) {
	if cached, ok := c.cache.Get(id); ok {
		return cached.(*PaperResponse), nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/paper/%s?fields=%s", c.baseURL, url.PathEscape(id), url.QueryEscape(paperFields))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching paper %s: %w", id, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	var pr PaperResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, fmt.Errorf("parsing paper response: %w", err)
	}

	c.cache.Set(id, &pr, gocache.DefaultExpiration)
	return &pr, nil
}
