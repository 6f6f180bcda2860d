package activities

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"

	"github.com/reviewproof/review-verification-service/internal/domain"
	"github.com/reviewproof/review-verification-service/internal/events"
	"github.com/reviewproof/review-verification-service/internal/repository"
)

// EventActivities provides Temporal activities for publishing verification
// events. The workflow invokes these fire-and-forget: a lost event never
// fails a sweep.
// Methods on this struct are registered as Temporal activities via the worker.
type EventActivities struct {
	reviewRepo repository.ReviewRepository
	sweepRepo  repository.SweepRepository
	publisher  events.Publisher
}

// NewEventActivities creates a new EventActivities instance with the given dependencies.
func NewEventActivities(
	reviewRepo repository.ReviewRepository,
	sweepRepo repository.SweepRepository,
	publisher events.Publisher,
) *EventActivities {
	return &EventActivities{
		reviewRepo: reviewRepo,
		sweepRepo:  sweepRepo,
		publisher:  publisher,
	}
}

// PublishReviewOutcome loads a review and publishes the event matching its
// current verification status. The review is re-read rather than passed in
// so the published payload reflects what was actually persisted, including
// any concurrent resolution that beat the sweep's write.
func (a *EventActivities) PublishReviewOutcome(ctx context.Context, input PublishReviewOutcomeInput) error {
	logger := activity.GetLogger(ctx)

	review, err := a.reviewRepo.Get(ctx, input.ReviewID)
	if err != nil {
		return fmt.Errorf("get review %s for event publishing: %w", input.ReviewID, err)
	}

	switch review.Status {
	case domain.VerificationStatusVerified:
		err = a.publisher.PublishReviewVerified(ctx, review)
	case domain.VerificationStatusPendingManual:
		err = a.publisher.PublishReviewMatchPending(ctx, review)
	case domain.VerificationStatusRejected:
		err = a.publisher.PublishReviewRejected(ctx, review)
	default:
		// Unverified reviews have no outcome to publish.
		return nil
	}

	if err != nil {
		return fmt.Errorf("publish outcome for review %s: %w", input.ReviewID, err)
	}

	logger.Info("review outcome published",
		"reviewID", input.ReviewID,
		"status", review.Status,
	)

	return nil
}

// PublishSweepCompleted loads a finished sweep record and publishes its
// counters.
func (a *EventActivities) PublishSweepCompleted(ctx context.Context, input PublishSweepCompletedInput) error {
	sweep, err := a.sweepRepo.Get(ctx, input.SweepID)
	if err != nil {
		return fmt.Errorf("get sweep %s for event publishing: %w", input.SweepID, err)
	}

	if err := a.publisher.PublishSweepCompleted(ctx, sweep); err != nil {
		return fmt.Errorf("publish sweep %s completed: %w", input.SweepID, err)
	}

	return nil
}
