package googleplaces

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
	// DefaultBaseURL is the default base URL for the Business Profile API.
	DefaultBaseURL = "https://mybusiness.googleapis.com/v4"

	// DefaultRateLimit is the default rate limit in requests per second.
	DefaultRateLimit = 10.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 10

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxResults is the default maximum number of reviews collected
	// per fetch across pagination.
	DefaultMaxResults = 100

	// pageSize is the number of reviews requested per page.
	// The API caps pages at 50 reviews.
	pageSize = 50

	// apiKeyHeader is the header name for the Google API key.
	apiKeyHeader = "X-Goog-Api-Key"

	// feedName is the human-readable name for this feed.
	feedName = "Google Places"
)

// starRatings maps the API's star rating enum to numeric ratings.
var starRatings = map[string]int{
	"ONE":   1,
	"TWO":   2,
	"THREE": 3,
	"FOUR":  4,
	"FIVE":  5,
}

// Config contains configuration options for the Google Places client.
type Config struct {
	// BaseURL is the base URL for the API.
	// Defaults to DefaultBaseURL if empty.
	BaseURL string

	// APIKey is the API key for authenticated requests.
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

// Client implements the reviewfeeds.ReviewFeed interface for Google Places.
type Client struct {
	httpClient *reviewfeeds.HTTPClient
	config     Config
}

// Compile-time check that Client implements reviewfeeds.ReviewFeed.
var _ reviewfeeds.ReviewFeed = (*Client)(nil)

// NewClient creates a new Google Places client with the given configuration.
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
		httpClient = reviewfeeds.NewHTTPClient(reviewfeeds.HTTPClientConfig{
			Timeout:      cfg.Timeout,
			RateLimit:    cfg.RateLimit,
			BurstSize:    cfg.BurstSize,
			APIKey:       cfg.APIKey,
			APIKeyHeader: apiKeyHeader,
		})
	}

	return &Client{
		httpClient: httpClient,
		config:     cfg,
	}
}

// FetchReviews collects a snapshot of published reviews for the given place ID,
// paging through the API until MaxResults reviews are collected or no more
// pages remain.
func (c *Client) FetchReviews(ctx context.Context, params reviewfeeds.FetchParams) (*reviewfeeds.FetchResult, error) {
	if params.BusinessRef == "" {
		return nil, domain.NewValidationError("business_ref", "place ID is required")
	}

	start := time.Now()

	maxResults := params.MaxResults
	if maxResults <= 0 || maxResults > c.config.MaxResults {
		maxResults = c.config.MaxResults
	}

	var (
		reviews   []domain.ExternalReview
		total     int
		pageToken string
	)

	for len(reviews) < maxResults {
		page, err := c.fetchPage(ctx, params.BusinessRef, pageToken)
		if err != nil {
			return nil, err
		}

		total = page.TotalReviewCount
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

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	return &reviewfeeds.FetchResult{
		Reviews:        reviews,
		TotalAvailable: total,
		Feed:           domain.FeedTypeGooglePlaces,
		FetchDuration:  time.Since(start),
	}, nil
}

// FeedType returns the feed type identifier.
func (c *Client) FeedType() domain.FeedType {
	return domain.FeedTypeGooglePlaces
}

// Name returns the human-readable name for this feed.
func (c *Client) Name() string {
	return feedName
}

// IsEnabled returns whether this feed is currently enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// fetchPage retrieves a single page of reviews for a place.
func (c *Client) fetchPage(ctx context.Context, placeID, pageToken string) (*ReviewsResponse, error) {
	reviewsURL, err := c.buildReviewsURL(placeID, pageToken)
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
		return nil, domain.NewNotFoundError("place", placeID)
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

// buildReviewsURL constructs the reviews list URL with query parameters.
func (c *Client) buildReviewsURL(placeID, pageToken string) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	reviewsURL := baseURL.JoinPath("places", placeID, "reviews")

	q := reviewsURL.Query()
	q.Set("pageSize", strconv.Itoa(pageSize))
	if pageToken != "" {
		q.Set("pageToken", pageToken)
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
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		return domain.NewExternalAPIError(feedName, resp.StatusCode, errResp.Error.Message, nil)
	}

	return domain.NewExternalAPIError(feedName, resp.StatusCode, string(body), nil)
}

// convertReview converts a single API review to a domain candidate review.
func convertReview(r Review) domain.ExternalReview {
	review := domain.ExternalReview{
		ID:                  r.ReviewID,
		Feed:                domain.FeedTypeGooglePlaces,
		ReviewerDisplayName: r.Reviewer.DisplayName,
		CommentText:         r.Comment,
		Rating:              starRatings[r.StarRating],
	}

	if r.CreateTime != "" {
		if postedAt, err := time.Parse(time.RFC3339, r.CreateTime); err == nil {
			review.PostedAt = postedAt
		}
	}

	return review
}
