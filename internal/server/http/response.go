package httpserver

import (
	"time"

	"github.com/reviewproof/review-verification-service/internal/domain"
)

// Response types for JSON serialization.

type businessResponse struct {
	ID             string    `json:"id"`
	AccountID      string    `json:"account_id"`
	Name           string    `json:"name"`
	GooglePlaceID  string    `json:"google_place_id,omitempty"`
	YelpBusinessID string    `json:"yelp_business_id,omitempty"`
	SweepEnabled   bool      `json:"sweep_enabled"`
	FeedConnected  bool      `json:"feed_connected"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// businessDetailResponse extends the business payload with per-status review
// counts for the detail endpoint.
type businessDetailResponse struct {
	businessResponse
	ReviewCounts map[string]int64 `json:"review_counts,omitempty"`
}

type listBusinessesResponse struct {
	Businesses    []businessResponse `json:"businesses"`
	NextPageToken string             `json:"next_page_token,omitempty"`
	TotalCount    int                `json:"total_count"`
}

type reviewResponse struct {
	ID                  string     `json:"id"`
	BusinessID          string     `json:"business_id"`
	ReviewerName        string     `json:"reviewer_name"`
	ReviewText          string     `json:"review_text"`
	Rating              int        `json:"rating"`
	Status              string     `json:"status"`
	SubmittedAt         time.Time  `json:"submitted_at"`
	MatchedExternalID   string     `json:"matched_external_id,omitempty"`
	MatchedFeed         string     `json:"matched_feed,omitempty"`
	MatchScore          *float64   `json:"match_score,omitempty"`
	MatchConfidence     string     `json:"match_confidence,omitempty"`
	CandidateExternalID string     `json:"candidate_external_id,omitempty"`
	ResolvedBy          string     `json:"resolved_by,omitempty"`
	VerifiedAt          *time.Time `json:"verified_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

type listReviewsResponse struct {
	Reviews       []reviewResponse `json:"reviews"`
	NextPageToken string           `json:"next_page_token,omitempty"`
	TotalCount    int              `json:"total_count"`
}

type startSweepResponse struct {
	WorkflowID string    `json:"workflow_id"`
	RunID      string    `json:"run_id"`
	BusinessID string    `json:"business_id"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	Message    string    `json:"message"`
}

type sweepResponse struct {
	ID                string     `json:"id"`
	BusinessID        string     `json:"business_id"`
	Status            string     `json:"status"`
	ReviewsChecked    int        `json:"reviews_checked"`
	ReviewsVerified   int        `json:"reviews_verified"`
	ReviewsQueued     int        `json:"reviews_queued"`
	CandidatesFetched int        `json:"candidates_fetched"`
	ErrorMessage      string     `json:"error_message,omitempty"`
	StartedAt         time.Time  `json:"started_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	Duration          string     `json:"duration,omitempty"`
}

type listSweepsResponse struct {
	Sweeps        []sweepResponse `json:"sweeps"`
	NextPageToken string          `json:"next_page_token,omitempty"`
}

// Converter functions

func domainBusinessToResponse(b *domain.Business) businessResponse {
	return businessResponse{
		ID:             b.ID.String(),
		AccountID:      b.AccountID,
		Name:           b.Name,
		GooglePlaceID:  b.GooglePlaceID,
		YelpBusinessID: b.YelpBusinessID,
		SweepEnabled:   b.SweepEnabled,
		FeedConnected:  b.HasFeed(domain.FeedTypeGooglePlaces) || b.HasFeed(domain.FeedTypeYelp),
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

func domainReviewToResponse(r *domain.SubmittedReview) reviewResponse {
	return reviewResponse{
		ID:                  r.ID.String(),
		BusinessID:          r.BusinessID.String(),
		ReviewerName:        r.ReviewerName,
		ReviewText:          r.ReviewText,
		Rating:              r.Rating,
		Status:              string(r.Status),
		SubmittedAt:         r.SubmittedAt,
		MatchedExternalID:   r.MatchedExternalID,
		MatchedFeed:         string(r.MatchedFeed),
		MatchScore:          r.MatchScore,
		MatchConfidence:     r.MatchConfidence,
		CandidateExternalID: r.CandidateExternalID,
		ResolvedBy:          r.ResolvedBy,
		VerifiedAt:          r.VerifiedAt,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

func domainSweepToResponse(s *domain.SweepRecord) sweepResponse {
	resp := sweepResponse{
		ID:                s.ID.String(),
		BusinessID:        s.BusinessID.String(),
		Status:            string(s.Status),
		ReviewsChecked:    s.ReviewsChecked,
		ReviewsVerified:   s.ReviewsVerified,
		ReviewsQueued:     s.ReviewsQueued,
		CandidatesFetched: s.CandidatesFetched,
		ErrorMessage:      s.ErrorMessage,
		StartedAt:         s.StartedAt,
		CompletedAt:       s.CompletedAt,
	}
	if s.CompletedAt != nil {
		resp.Duration = s.Duration().String()
	}
	return resp
}
