package reviewfeeds

import (
	"context"
	"sync"

	"github.com/reviewproof/review-verification-service/internal/domain"
)

// FeedResult holds the outcome of a candidate fetch from one feed.
type FeedResult struct {
	// Feed identifies which review feed produced the result.
	Feed domain.FeedType

	// Result contains the candidate snapshot if the fetch succeeded.
	// Will be nil if Error is non-nil.
	Result *FetchResult

	// Error contains the error if the fetch failed.
	// Will be nil if Result is non-nil.
	Error error
}

// Registry manages review feeds and coordinates concurrent candidate fetches.
// It provides thread-safe registration and retrieval of feeds, as well as
// concurrent fetch operations across the feeds a business is connected to.
type Registry struct {
	mu    sync.RWMutex
	feeds map[domain.FeedType]ReviewFeed
}

// NewRegistry creates a new feed registry with an empty feed map.
func NewRegistry() *Registry {
	return &Registry{
		feeds: make(map[domain.FeedType]ReviewFeed),
	}
}

// Register adds a feed to the registry.
// If a feed with the same type already exists, it will be replaced.
// This method is thread-safe.
func (r *Registry) Register(feed ReviewFeed) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feeds[feed.FeedType()] = feed
}

// Get returns a feed by type, or nil if not found.
// This method is thread-safe.
func (r *Registry) Get(feedType domain.FeedType) ReviewFeed {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.feeds[feedType]
}

// AllFeeds returns all registered feeds.
// The returned slice is a snapshot and is safe to iterate even if feeds
// are added or removed concurrently.
// This method is thread-safe.
func (r *Registry) AllFeeds() []ReviewFeed {
	r.mu.RLock()
	defer r.mu.RUnlock()

	feeds := make([]ReviewFeed, 0, len(r.feeds))
	for _, feed := range r.feeds {
		feeds = append(feeds, feed)
	}
	return feeds
}

// EnabledFeeds returns only enabled feeds.
// Feeds are considered enabled if their IsEnabled() method returns true.
// This method is thread-safe.
func (r *Registry) EnabledFeeds() []ReviewFeed {
	r.mu.RLock()
	defer r.mu.RUnlock()

	feeds := make([]ReviewFeed, 0, len(r.feeds))
	for _, feed := range r.feeds {
		if feed.IsEnabled() {
			feeds = append(feeds, feed)
		}
	}
	return feeds
}

// FetchAll collects candidate snapshots for a business from every enabled
// feed the business is connected to, concurrently. Feeds the business has no
// listing identifier for are skipped. Returns results for each feed fetched
// (including errors); per-feed errors are reported per result, not merged,
// so a failure on one feed never discards the snapshot from another.
// The fetch respects context cancellation - if the context is canceled,
// in-flight fetches are interrupted and their errors returned.
// This method is thread-safe.
func (r *Registry) FetchAll(ctx context.Context, business *domain.Business, maxResults int) []FeedResult {
	var connected []ReviewFeed
	for _, feed := range r.EnabledFeeds() {
		if business.HasFeed(feed.FeedType()) {
			connected = append(connected, feed)
		}
	}

	if len(connected) == 0 {
		return nil
	}

	resultChan := make(chan FeedResult, len(connected))
	var wg sync.WaitGroup

	for _, feed := range connected {
		wg.Add(1)
		go func(f ReviewFeed) {
			defer wg.Done()

			result, err := f.FetchReviews(ctx, FetchParams{
				BusinessRef: business.FeedRef(f.FeedType()),
				MaxResults:  maxResults,
			})
			resultChan <- FeedResult{
				Feed:   f.FeedType(),
				Result: result,
				Error:  err,
			}
		}(feed)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]FeedResult, 0, len(connected))
	for result := range resultChan {
		results = append(results, result)
	}

	return results
}
