package activities

import (
	"context"
	"fmt"
	"strings"

	"go.temporal.io/sdk/activity"

	"github.com/reviewproof/review-verification-service/internal/domain"
	"github.com/reviewproof/review-verification-service/internal/observability"
	"github.com/reviewproof/review-verification-service/internal/repository"
	"github.com/reviewproof/review-verification-service/internal/reviewfeeds"
)

// CandidateFetcher defines the interface for fetching external candidate
// reviews. This decouples the activity from the concrete reviewfeeds.Registry,
// enabling straightforward testing with mock implementations.
type CandidateFetcher interface {
	FetchAll(ctx context.Context, business *domain.Business, maxResults int) []reviewfeeds.FeedResult
}

// FetchActivities provides Temporal activities that load sweep work: the
// businesses to sweep, the reviews to evaluate, and the external candidate
// snapshots to match against.
// Methods on this struct are registered as Temporal activities via the worker.
type FetchActivities struct {
	businessRepo repository.BusinessRepository
	reviewRepo   repository.ReviewRepository
	fetcher      CandidateFetcher
	metrics      *observability.Metrics
}

// NewFetchActivities creates a new FetchActivities instance with the given dependencies.
// The metrics parameter may be nil (metrics recording will be skipped).
func NewFetchActivities(
	businessRepo repository.BusinessRepository,
	reviewRepo repository.ReviewRepository,
	fetcher CandidateFetcher,
	metrics *observability.Metrics,
) *FetchActivities {
	return &FetchActivities{
		businessRepo: businessRepo,
		reviewRepo:   reviewRepo,
		fetcher:      fetcher,
		metrics:      metrics,
	}
}

// ListSweepBusinesses returns one page of businesses eligible for sweeping.
//
// HasMore is a page-full heuristic: a short page means the listing is
// exhausted, a full page means the caller should request the next offset.
func (a *FetchActivities) ListSweepBusinesses(ctx context.Context, input ListSweepBusinessesInput) (*ListSweepBusinessesOutput, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("listing sweep-enabled businesses",
		"pageSize", input.PageSize,
		"offset", input.Offset,
	)

	businesses, err := a.businessRepo.ListSweepEnabled(ctx, input.PageSize, input.Offset)
	if err != nil {
		return nil, fmt.Errorf("list sweep-enabled businesses: %w", err)
	}

	logger.Info("businesses listed",
		"count", len(businesses),
		"offset", input.Offset,
	)

	return &ListSweepBusinessesOutput{
		Businesses: businesses,
		HasMore:    len(businesses) == input.PageSize,
	}, nil
}

// GetBusiness loads a single business for an on-demand sweep.
func (a *FetchActivities) GetBusiness(ctx context.Context, input GetBusinessInput) (*GetBusinessOutput, error) {
	business, err := a.businessRepo.Get(ctx, input.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("get business %s: %w", input.BusinessID, err)
	}
	return &GetBusinessOutput{Business: business}, nil
}

// ListUnverifiedReviews returns the unverified reviews a sweep must evaluate
// for one business, oldest first.
func (a *FetchActivities) ListUnverifiedReviews(ctx context.Context, input ListUnverifiedReviewsInput) (*ListUnverifiedReviewsOutput, error) {
	logger := activity.GetLogger(ctx)

	reviews, err := a.reviewRepo.ListUnverified(ctx, input.BusinessID, input.Limit)
	if err != nil {
		return nil, fmt.Errorf("list unverified reviews for business %s: %w", input.BusinessID, err)
	}

	logger.Info("unverified reviews listed",
		"businessID", input.BusinessID,
		"count", len(reviews),
	)

	return &ListUnverifiedReviewsOutput{Reviews: reviews}, nil
}

// FetchCandidates collects the external candidate snapshot for a business
// across every feed it is connected to.
//
// Per-feed failures are reported in the output, not returned as errors: a
// partial snapshot from the surviving feeds is still usable. The activity
// fails only when every feed fails and no candidates were fetched, which
// tells the workflow to skip this business for the run.
func (a *FetchActivities) FetchCandidates(ctx context.Context, input FetchCandidatesInput) (*FetchCandidatesOutput, error) {
	logger := activity.GetLogger(ctx)

	if input.Business == nil {
		return nil, domain.NewValidationError("business", "business is required")
	}

	logger.Info("fetching candidate reviews",
		"businessID", input.Business.ID,
		"businessName", input.Business.Name,
		"maxResults", input.MaxResults,
	)

	results := a.fetcher.FetchAll(ctx, input.Business, input.MaxResults)
	if results == nil {
		return nil, fmt.Errorf("business %s: %w", input.Business.ID, domain.ErrFeedNotConnected)
	}

	var candidates []domain.ExternalReview
	var feedErrors []FeedError
	for _, fr := range results {
		feedName := string(fr.Feed)
		if fr.Error != nil {
			feedErrors = append(feedErrors, FeedError{
				Feed:  fr.Feed,
				Error: fr.Error.Error(),
			})
			logger.Warn("feed fetch failed",
				"feed", feedName,
				"businessID", input.Business.ID,
				"error", fr.Error,
			)
			continue
		}

		if fr.Result != nil {
			candidates = append(candidates, fr.Result.Reviews...)
			if a.metrics != nil {
				a.metrics.RecordCandidatesFetched(feedName, len(fr.Result.Reviews))
			}
			logger.Info("feed fetch completed",
				"feed", feedName,
				"businessID", input.Business.ID,
				"candidateCount", len(fr.Result.Reviews),
				"fetchDuration", fr.Result.FetchDuration.Seconds(),
			)
		}
	}

	// Every connected feed failed: no snapshot to match against.
	if len(candidates) == 0 && len(feedErrors) > 0 {
		errMsgs := make([]string, 0, len(feedErrors))
		for _, fe := range feedErrors {
			errMsgs = append(errMsgs, fmt.Sprintf("%s: %s", fe.Feed, fe.Error))
		}
		return nil, fmt.Errorf("all feeds failed for business %s: %s", input.Business.ID, strings.Join(errMsgs, "; "))
	}

	return &FetchCandidatesOutput{
		Candidates:   candidates,
		TotalFetched: len(candidates),
		FeedErrors:   feedErrors,
	}, nil
}
