// Package reviewfeeds provides interfaces and types for external review feed clients.
//
// This package defines the foundational abstractions that all review feed
// implementations must follow. Each listing platform (Google Places, Yelp)
// implements the ReviewFeed interface, allowing the verification service to
// collect candidate reviews from multiple feeds concurrently with a unified API.
//
// Example usage:
//
//	feed := googleplaces.NewClient(cfg, httpClient)
//	params := reviewfeeds.FetchParams{
//		BusinessRef: "ChIJN1t_tDeuEmsRUsoyG83frY4",
//		MaxResults:  100,
//	}
//	result, err := feed.FetchReviews(ctx, params)
package reviewfeeds

import (
	"context"
	"time"

	"github.com/reviewproof/review-verification-service/internal/domain"
)

// FetchParams defines the parameters for fetching candidate reviews from a feed.
type FetchParams struct {
	// BusinessRef is the feed-specific listing identifier (required).
	// For Google Places this is the place ID; for Yelp the business ID.
	BusinessRef string

	// MaxResults caps the total number of reviews collected across
	// pagination. A value of 0 uses the feed's configured default.
	MaxResults int

	// PostedAfter filters out reviews posted before this time.
	// If nil, no lower bound is applied.
	PostedAfter *time.Time
}

// FetchResult contains a point-in-time snapshot of candidate reviews from one feed.
// Pagination is handled inside the client; the snapshot holds every page
// collected up to MaxResults.
type FetchResult struct {
	// Reviews contains the candidate reviews, newest first as returned by
	// the feed. May be empty for listings with no reviews.
	Reviews []domain.ExternalReview

	// TotalAvailable is the total number of reviews the feed reports for
	// the listing, regardless of how many were collected. May be an
	// estimate on some feeds.
	TotalAvailable int

	// Feed identifies which review feed produced this snapshot.
	Feed domain.FeedType

	// FetchDuration is the time taken to collect the snapshot, including
	// network latency across all pages.
	FetchDuration time.Duration
}

// ReviewFeed defines the interface that all review feed clients must implement.
// Each listing platform provides its own implementation of this interface.
type ReviewFeed interface {
	// FetchReviews collects a snapshot of candidate reviews for the listing
	// identified by params.BusinessRef. The context should be used for
	// cancellation and deadline propagation.
	//
	// Implementations should:
	//   - Respect context cancellation
	//   - Apply rate limiting as needed
	//   - Page through the feed's API up to params.MaxResults
	//   - Transform feed-specific responses to domain.ExternalReview
	//   - Include appropriate error wrapping with feed context
	FetchReviews(ctx context.Context, params FetchParams) (*FetchResult, error)

	// FeedType returns the type identifier for this feed.
	// Used for attribution, routing, and metrics labels.
	FeedType() domain.FeedType

	// Name returns a human-readable name for this feed.
	// Used for logging, metrics, and display purposes.
	Name() string

	// IsEnabled returns whether this feed is currently enabled and
	// available for fetches. A feed may be disabled due to configuration
	// or a missing API key.
	IsEnabled() bool
}
