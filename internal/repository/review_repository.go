package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/reviewproof/review-verification-service/internal/domain"
)

// ReviewRepository handles submitted review persistence and verification
// lifecycle management. Status-changing writes are conditional on the
// review's current status so that concurrent sweeps and manual resolutions
// can never overwrite a terminal state.
type ReviewRepository interface {
	// Create inserts a new submitted review with status unverified.
	// The review must have a valid ID, BusinessID, ReviewerName, and ReviewText.
	// Returns domain.ErrAlreadyExists if a review with the same ID already exists.
	Create(ctx context.Context, review *domain.SubmittedReview) error

	// Get retrieves a submitted review by its ID.
	// Returns domain.ErrNotFound if no matching review exists.
	Get(ctx context.Context, id uuid.UUID) (*domain.SubmittedReview, error)

	// List retrieves submitted reviews matching the filter criteria.
	// Returns the matching reviews and total count for pagination.
	List(ctx context.Context, filter ReviewFilter) ([]*domain.SubmittedReview, int64, error)

	// ListUnverified retrieves up to limit unverified reviews for a business,
	// oldest first. Used by sweeps to batch the reviews needing evaluation.
	ListUnverified(ctx context.Context, businessID uuid.UUID, limit int) ([]*domain.SubmittedReview, error)

	// MarkVerified transitions a review from unverified to verified, recording
	// the matched external review, feed, score, and confidence.
	// The write is conditional on status = unverified; if the review has
	// already left that state, domain.ErrInvalidTransition is returned.
	// Returns domain.ErrNotFound if the review does not exist.
	MarkVerified(ctx context.Context, id uuid.UUID, externalID string, feed domain.FeedType, score float64, confidence string) error

	// QueueManualReview transitions a review from unverified to pending_manual,
	// recording the nearest-miss candidate, score, and confidence.
	// The write is conditional on status = unverified; if the review has
	// already left that state, domain.ErrInvalidTransition is returned.
	// Returns domain.ErrNotFound if the review does not exist.
	QueueManualReview(ctx context.Context, id uuid.UUID, candidateExternalID string, score float64, confidence string) error

	// ResolveManual applies a human adjudicator's decision to a review in the
	// manual queue: approve transitions to verified, reject to rejected.
	// The write is conditional on status = pending_manual; if the review is
	// not in the queue, domain.ErrInvalidTransition is returned.
	// Returns domain.ErrNotFound if the review does not exist.
	ResolveManual(ctx context.Context, id uuid.UUID, action domain.ResolutionAction, resolvedBy string) error

	// CountByStatus returns the number of a business's reviews in each
	// verification status. Statuses with no reviews are omitted.
	CountByStatus(ctx context.Context, businessID uuid.UUID) (map[domain.VerificationStatus]int64, error)
}

// ReviewFilter specifies criteria for listing submitted reviews.
type ReviewFilter struct {
	// BusinessID filters by business (required).
	BusinessID uuid.UUID

	// Status filters by one or more verification statuses (optional).
	// When multiple statuses are provided, reviews matching any status are returned.
	Status []domain.VerificationStatus

	// SubmittedAfter filters to reviews submitted after this timestamp (optional).
	SubmittedAfter *time.Time

	// SubmittedBefore filters to reviews submitted before this timestamp (optional).
	SubmittedBefore *time.Time

	// Limit specifies maximum number of results (default: 100, max: 1000).
	Limit int

	// Offset specifies the starting position for pagination.
	Offset int
}

// Validate checks if the filter has valid values and sets defaults.
// Returns domain.ErrInvalidInput if BusinessID is empty.
func (f *ReviewFilter) Validate() error {
	if f.BusinessID == uuid.Nil {
		return domain.NewValidationError("business_id", "business ID is required")
	}

	applyPaginationDefaults(&f.Limit, &f.Offset)

	return nil
}
