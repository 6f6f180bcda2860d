package domain

import (
	"time"

	"github.com/google/uuid"
)

// Business represents a customer business whose reviews are verified against
// external listing feeds.
type Business struct {
	ID uuid.UUID `json:"id"`

	// AccountID identifies the owning customer account.
	AccountID string `json:"account_id"`

	// Name is the business display name (required).
	Name string `json:"name"`

	// GooglePlaceID is the Google Places listing identifier, if connected.
	GooglePlaceID string `json:"google_place_id,omitempty"`

	// YelpBusinessID is the Yelp business identifier, if connected.
	YelpBusinessID string `json:"yelp_business_id,omitempty"`

	// SweepEnabled indicates whether scheduled verification sweeps cover
	// this business.
	SweepEnabled bool `json:"sweep_enabled"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasFeed returns true if the business has a listing identifier for the
// given feed.
func (b *Business) HasFeed(feed FeedType) bool {
	return b.FeedRef(feed) != ""
}

// FeedRef returns the listing identifier this business carries for the given
// feed, or the empty string when the feed is not connected.
func (b *Business) FeedRef(feed FeedType) string {
	switch feed {
	case FeedTypeGooglePlaces:
		return b.GooglePlaceID
	case FeedTypeYelp:
		return b.YelpBusinessID
	default:
		return ""
	}
}

// SubmittedReview represents a review collected through the product's own
// submission flow. The matching engine reads ReviewerName, ReviewText and
// SubmittedAt; the remaining fields track the verification lifecycle.
type SubmittedReview struct {
	ID         uuid.UUID `json:"id"`
	BusinessID uuid.UUID `json:"business_id"`

	// ReviewerName is the name the customer entered when submitting.
	ReviewerName string `json:"reviewer_name"`

	// ReviewText is the review body as submitted.
	ReviewText string `json:"review_text"`

	// Rating is the 1-5 star rating, 0 if not provided.
	Rating int `json:"rating,omitempty"`

	// SubmittedAt records when the customer submitted the review.
	SubmittedAt time.Time `json:"submitted_at"`

	// Status is the current verification lifecycle state.
	Status VerificationStatus `json:"status"`

	// MatchedExternalID is the external feed review this review was verified
	// against. Empty unless Status is verified.
	MatchedExternalID string `json:"matched_external_id,omitempty"`

	// MatchedFeed identifies which feed supplied the matched review.
	MatchedFeed FeedType `json:"matched_feed,omitempty"`

	// MatchScore is the overall match score recorded at verification or
	// manual-queue time. Nil if the review has never been scored.
	MatchScore *float64 `json:"match_score,omitempty"`

	// MatchConfidence is the confidence tier ("high", "medium", "low")
	// recorded alongside MatchScore.
	MatchConfidence string `json:"match_confidence,omitempty"`

	// CandidateExternalID is the nearest-miss candidate recorded when the
	// review is queued for manual verification.
	CandidateExternalID string `json:"candidate_external_id,omitempty"`

	// ResolvedBy identifies the human adjudicator for manually resolved
	// reviews.
	ResolvedBy string `json:"resolved_by,omitempty"`

	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// IsResolved returns true if the review has reached a terminal verification state.
func (r *SubmittedReview) IsResolved() bool {
	return r.Status.IsTerminal()
}

// ExternalReview represents one review observed on a third-party listing
// feed. Candidate lists are point-in-time snapshots taken by the feed
// client; external reviews are never persisted by this service.
type ExternalReview struct {
	// ID is the feed-assigned review identifier.
	ID string `json:"id"`

	// Feed identifies which listing feed supplied this review.
	Feed FeedType `json:"feed"`

	// ReviewerDisplayName is the reviewer name as the feed displays it,
	// frequently abbreviated (e.g. "John S.").
	ReviewerDisplayName string `json:"reviewer_display_name"`

	// CommentText is the review body as published on the feed.
	CommentText string `json:"comment_text"`

	// Rating is the 1-5 star rating, 0 if the feed omits it.
	Rating int `json:"rating,omitempty"`

	// PostedAt records when the review appeared on the feed.
	PostedAt time.Time `json:"posted_at"`
}

// SweepRecord represents one verification sweep run over a single business.
type SweepRecord struct {
	ID         uuid.UUID   `json:"id"`
	BusinessID uuid.UUID   `json:"business_id"`
	Status     SweepStatus `json:"status"`

	// ReviewsChecked is the number of unverified reviews the sweep scored.
	ReviewsChecked int `json:"reviews_checked"`

	// ReviewsVerified is the number of reviews auto-verified by the sweep.
	ReviewsVerified int `json:"reviews_verified"`

	// ReviewsQueued is the number of reviews queued for manual verification.
	ReviewsQueued int `json:"reviews_queued"`

	// CandidatesFetched is the number of external candidates retrieved
	// across all connected feeds.
	CandidatesFetched int `json:"candidates_fetched"`

	ErrorMessage string     `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// Duration returns the duration of the sweep run.
// Returns elapsed time from start if still running.
func (s *SweepRecord) Duration() time.Duration {
	if s.CompletedAt != nil {
		return s.CompletedAt.Sub(s.StartedAt)
	}
	return time.Since(s.StartedAt)
}
