// Package activities implements the Temporal activities that make up the
// verification sweep pipeline: listing work, fetching external candidate
// reviews, scoring them against submissions, persisting outcomes, and
// publishing events.
//
// Activity inputs and outputs are defined as serializable structs that cross
// the Temporal serialization boundary. Each activity receives an input struct
// and returns an output struct (or error). All fields must be exported for
// JSON serialization by the Temporal SDK's default data converter.
package activities

import (
	"time"

	"github.com/google/uuid"

	"github.com/reviewproof/review-verification-service/internal/domain"
)

// Decision outcomes produced by the matching activity.
const (
	// DecisionVerify means a candidate qualified and the review should be
	// auto-verified against it.
	DecisionVerify = "verify"

	// DecisionQueue means no candidate qualified but the best score fell in
	// the ambiguous band, so the review goes to the manual queue.
	DecisionQueue = "queue"

	// DecisionNone means no candidate came close; the review stays unverified.
	DecisionNone = "none"
)

// ListSweepBusinessesInput contains parameters for listing sweep-enabled businesses.
type ListSweepBusinessesInput struct {
	// PageSize is the number of businesses to return per page.
	PageSize int

	// Offset is the starting position for pagination.
	Offset int
}

// ListSweepBusinessesOutput contains one page of sweep-enabled businesses.
type ListSweepBusinessesOutput struct {
	// Businesses is the page of businesses with sweeps enabled and at least
	// one connected feed.
	Businesses []*domain.Business

	// HasMore indicates whether another page may exist.
	HasMore bool
}

// GetBusinessInput contains parameters for fetching a single business.
type GetBusinessInput struct {
	// BusinessID is the business to fetch.
	BusinessID uuid.UUID
}

// GetBusinessOutput contains the fetched business.
type GetBusinessOutput struct {
	Business *domain.Business
}

// ListUnverifiedReviewsInput contains parameters for listing the reviews a
// sweep must evaluate.
type ListUnverifiedReviewsInput struct {
	// BusinessID is the business whose reviews are listed.
	BusinessID uuid.UUID

	// Limit is the maximum number of reviews to return, oldest first.
	Limit int
}

// ListUnverifiedReviewsOutput contains the unverified reviews for a business.
type ListUnverifiedReviewsOutput struct {
	Reviews []*domain.SubmittedReview
}

// FetchCandidatesInput contains parameters for fetching external candidate
// reviews from all feeds a business is connected to.
type FetchCandidatesInput struct {
	// Business is the business whose feeds are queried. The full entity is
	// passed so the activity does not need a second repository round-trip.
	Business *domain.Business

	// MaxResults caps candidates per feed (0 = feed default).
	MaxResults int
}

// FeedError reports a failure from a single feed during candidate fetching.
type FeedError struct {
	// Feed identifies the feed that failed.
	Feed domain.FeedType

	// Error is the string representation of the failure.
	Error string
}

// FetchCandidatesOutput contains the aggregated candidate snapshot.
type FetchCandidatesOutput struct {
	// Candidates holds every external review fetched across feeds.
	Candidates []domain.ExternalReview

	// TotalFetched is the number of candidates fetched.
	TotalFetched int

	// FeedErrors lists feeds that failed. A non-empty list alongside a
	// non-empty candidate set is a partial snapshot, not a failure.
	FeedErrors []FeedError
}

// MatchReviewsInput contains the reviews and candidate snapshot to score.
type MatchReviewsInput struct {
	Reviews    []*domain.SubmittedReview
	Candidates []domain.ExternalReview
}

// MatchDecision is the scored outcome for one submitted review.
type MatchDecision struct {
	// ReviewID is the submitted review this decision applies to.
	ReviewID uuid.UUID

	// Outcome is one of DecisionVerify, DecisionQueue, DecisionNone.
	Outcome string

	// ExternalID is the matched (verify) or nearest-miss (queue) candidate.
	ExternalID string

	// Feed is the feed the candidate came from.
	Feed domain.FeedType

	// Score is the overall match score, rounded to two decimals.
	Score float64

	// Confidence is the confidence band for the score.
	Confidence string
}

// MatchReviewsOutput contains a decision for every input review, in input order.
type MatchReviewsOutput struct {
	Decisions []MatchDecision
}

// CreateSweepInput contains parameters for recording the start of a
// per-business sweep run.
type CreateSweepInput struct {
	// BusinessID is the business being swept.
	BusinessID uuid.UUID
}

// CreateSweepOutput contains the identifier of the created sweep record.
type CreateSweepOutput struct {
	SweepID uuid.UUID
}

// ApplyDecisionsInput contains the match decisions to persist.
type ApplyDecisionsInput struct {
	Decisions []MatchDecision
}

// ApplyDecisionsOutput reports the persisted outcome counts.
type ApplyDecisionsOutput struct {
	// Verified is the number of reviews transitioned to verified.
	Verified int

	// Queued is the number of reviews routed to the manual queue.
	Queued int

	// Skipped is the number of decisions dropped because the review had
	// already left the unverified state (lost a race with another writer).
	Skipped int
}

// CompleteSweepInput contains the terminal counters for a sweep record.
type CompleteSweepInput struct {
	SweepID           uuid.UUID
	Status            domain.SweepStatus
	ReviewsChecked    int
	ReviewsVerified   int
	ReviewsQueued     int
	CandidatesFetched int
}

// FailSweepInput marks a sweep record as failed.
type FailSweepInput struct {
	SweepID      uuid.UUID
	ErrorMessage string
}

// PublishReviewOutcomeInput identifies a review whose verification outcome
// should be published as a domain event.
type PublishReviewOutcomeInput struct {
	ReviewID uuid.UUID
}

// PublishSweepCompletedInput identifies a finished sweep record to publish.
type PublishSweepCompletedInput struct {
	SweepID uuid.UUID
}

// RecordSweepRunInput carries the fleet-level outcome of a whole sweep
// workflow run for metrics recording.
type RecordSweepRunInput struct {
	// BusinessCount is the number of businesses processed this run.
	BusinessCount int

	// Duration is the total run duration.
	Duration time.Duration

	// Failed indicates the run failed before completing.
	Failed bool
}
