package yelp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/reviewproof/review-verification-service/internal/domain"
	"github.com/reviewproof/review-verification-service/internal/reviewfeeds"
)

const (
	// DefaultBaseURL is the default base URL for the Yelp Fusion API.
	DefaultBaseURL = "https://api.yelp.com/v3"

	// DefaultRateLimit is the default rate limit in requests per second.
	// Fusion enforces a daily quota; 5 req/s keeps bursts polite.
	DefaultRateLimit = 5.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 5

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResults is the default maximum number of reviews collected
	// per fetch across pagination.
	DefaultMaxResults = 100

	// pageLimit is the number of reviews requested per page.
	// Fusion caps the limit parameter at 50.
	pageLimit = 50

	// timeCreatedLayout is the timestamp format Fusion uses for reviews.
	timeCreatedLayout = "2006-01-02 15:04:05"

	// feedName is the human-readable name for this feed.
	feedName = "Yelp"
)

// Config contains configuration options for the Yelp Fusion client.
type Config struct {
	// BaseURL is the base URL for the API.
	// Defaults to DefaultBaseURL if empty.
	BaseURL string

	// APIKey is the Fusion API key, sent as a bearer token.
	APIKey string

	// Timeout is the HTTP request timeout.
	// Defaults to DefaultTimeout if zero.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	// Defaults to DefaultRateLimit if zero.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	// Defaults to DefaultBurstSize if zero.
	BurstSize int

	// MaxResults is the maximum number of reviews collected per fetch.
	// Defaults to DefaultMaxResults if zero.
	MaxResults int

	// Enabled indicates whether this feed is enabled.
	Enabled bool
}

// Client implements the reviewfeeds.ReviewFeed interface for Yelp Fusion.
type Client struct {
	httpClient *reviewfeeds.HTTPClient
	config     Config
}

// Compile-time check that Client implements reviewfeeds.ReviewFeed.
var _ reviewfeeds.ReviewFeed = (*Client)(nil)

// NewClient creates a new Yelp Fusion client with the given configuration.
// If httpClient is nil, a new one will be created with the configuration settings.
func NewClient(cfg Config, httpClient *reviewfeeds.HTTPClient) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.BurstSize == 0 {
		cfg.BurstSize = DefaultBurstSize
	}
	if cfg.MaxResults == 0 {
		cfg.MaxResults = DefaultMaxResults
	}

	if httpClient == nil {
		var bearer string
		if cfg.APIKey != "" {
			bearer = "Bearer " + cfg.APIKey
		}
		httpClient = reviewfeeds.NewHTTPClient(reviewfeeds.HTTPClientConfig{
			Timeout:      cfg.Timeout,
			RateLimit:    cfg.RateLimit,
			BurstSize:    cfg.BurstSize,
			APIKey:       bearer,
			APIKeyHeader: "Authorization",
		})
	}

	return &Client{
		httpClient: httpClient,
		config:     cfg,
	}
}

// FetchReviews collects a snapshot of published reviews for the given Yelp
// business ID, paging through the API with limit/offset until MaxResults
// reviews are collected or the listing's reviews are exhausted.
func (c *Client) FetchReviews(ctx context.Context, params reviewfeeds.FetchParams) (*reviewfeeds.FetchResult, error) {
	if params.BusinessRef == "" {
		return nil, domain.NewValidationError("business_ref", "Yelp business ID is required")
	}

	start := time.Now()

	maxResults := params.MaxResults
	if maxResults <= 0 || maxResults > c.config.MaxResults {
		maxResults = c.config.MaxResults
	}

	var (
		reviews []domain.ExternalReview
		total   int
		offset  int
	)

	for len(reviews) < maxResults {
		page, err := c.fetchPage(ctx, params.BusinessRef, offset)
		if err != nil {
			return nil, err
		}

		total = page.Total
		if len(page.Reviews) == 0 {
			break
		}

		for _, r := range page.Reviews {
			if len(reviews) >= maxResults {
				break
			}
			review := convertReview(r)
			if params.PostedAfter != nil && review.PostedAt.Before(*params.PostedAfter) {
				continue
			}
			reviews = append(reviews, review)
		}

		offset += len(page.Reviews)
		// A short page is the last page regardless of the advertised total;
		// Fusion's total can exceed what the endpoint will actually serve.
		if len(page.Reviews) < pageLimit || offset >= page.Total {
			break
		}
	}

	return &reviewfeeds.FetchResult{
		Reviews:        reviews,
		TotalAvailable: total,
		Feed:           domain.FeedTypeYelp,
		FetchDuration:  time.Since(start),
	}, nil
}

// FeedType returns the feed type identifier.
func (c *Client) FeedType() domain.FeedType {
	return domain.FeedTypeYelp
}

// Name returns the human-readable name for this feed.
func (c *Client) Name() string {
	return feedName
}

// IsEnabled returns whether this feed is currently enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// fetchPage retrieves a single page of reviews for a business.
func (c *Client) fetchPage(ctx context.Context, businessID string, offset int) (*ReviewsResponse, error) {
	reviewsURL, err := c.buildReviewsURL(businessID, offset)
	if err != nil {
		return nil, fmt.Errorf("building reviews URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reviewsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.NewNotFoundError("business", businessID)
	}

	if err := c.handleErrorResponse(resp); err != nil {
		return nil, err
	}

	// Limit body to 10MB to prevent resource exhaustion.
	var page ReviewsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&page); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &page, nil
}

// buildReviewsURL constructs the reviews endpoint URL with query parameters.
func (c *Client) buildReviewsURL(businessID string, offset int) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	reviewsURL := baseURL.JoinPath("businesses", businessID, "reviews")

	q := reviewsURL.Query()
	q.Set("limit", strconv.Itoa(pageLimit))
	q.Set("sort_by", "newest")
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}

	reviewsURL.RawQuery = q.Encode()
	return reviewsURL.String(), nil
}

// handleErrorResponse checks for API errors and returns appropriate error types.
func (c *Client) handleErrorResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	// Read the error body (limit to 1MB to prevent resource exhaustion).
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.NewExternalAPIError(feedName, resp.StatusCode, "failed to read error response", err)
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Description != "" {
		return domain.NewExternalAPIError(feedName, resp.StatusCode, errResp.Error.Description, nil)
	}

	return domain.NewExternalAPIError(feedName, resp.StatusCode, string(body), nil)
}

// convertReview converts a single Fusion review to a domain candidate review.
func convertReview(r Review) domain.ExternalReview {
	review := domain.ExternalReview{
		ID:                  r.ID,
		Feed:                domain.FeedTypeYelp,
		ReviewerDisplayName: r.User.Name,
		CommentText:         r.Text,
		Rating:              r.Rating,
	}

	if r.TimeCreated != "" {
		if postedAt, err := time.Parse(timeCreatedLayout, r.TimeCreated); err == nil {
			review.PostedAt = postedAt
		}
	}

	return review
}
