package activities

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"

	"github.com/reviewproof/review-verification-service/internal/domain"
	"github.com/reviewproof/review-verification-service/internal/observability"
	"github.com/reviewproof/review-verification-service/internal/repository"
)

// StatusActivities provides Temporal activities for persisting sweep records
// and applying match decisions to submitted reviews.
// Methods on this struct are registered as Temporal activities via the worker.
type StatusActivities struct {
	reviewRepo repository.ReviewRepository
	sweepRepo  repository.SweepRepository
	metrics    *observability.Metrics
}

// NewStatusActivities creates a new StatusActivities instance with the given dependencies.
// The metrics parameter may be nil (metrics recording will be skipped).
func NewStatusActivities(
	reviewRepo repository.ReviewRepository,
	sweepRepo repository.SweepRepository,
	metrics *observability.Metrics,
) *StatusActivities {
	return &StatusActivities{
		reviewRepo: reviewRepo,
		sweepRepo:  sweepRepo,
		metrics:    metrics,
	}
}

// CreateSweep records the start of a per-business sweep run.
//
// The sweep record ID is minted here, not in the workflow: UUID generation is
// non-deterministic and must stay on the activity side of the boundary.
func (a *StatusActivities) CreateSweep(ctx context.Context, input CreateSweepInput) (*CreateSweepOutput, error) {
	logger := activity.GetLogger(ctx)

	sweep := &domain.SweepRecord{
		ID:         uuid.New(),
		BusinessID: input.BusinessID,
		Status:     domain.SweepStatusRunning,
		StartedAt:  time.Now().UTC(),
	}

	if err := a.sweepRepo.Create(ctx, sweep); err != nil {
		return nil, fmt.Errorf("create sweep record for business %s: %w", input.BusinessID, err)
	}

	logger.Info("sweep record created",
		"sweepID", sweep.ID,
		"businessID", input.BusinessID,
	)

	return &CreateSweepOutput{SweepID: sweep.ID}, nil
}

// ApplyMatchDecisions persists the matching outcomes through the conditional
// status transitions.
//
// A decision that loses its conditional write - the review already left the
// unverified state, typically to a concurrent sweep or a manual resolution -
// is counted as skipped and does not fail the activity. Terminal states are
// never overwritten. DecisionNone entries are counted as checked only.
func (a *StatusActivities) ApplyMatchDecisions(ctx context.Context, input ApplyDecisionsInput) (*ApplyDecisionsOutput, error) {
	logger := activity.GetLogger(ctx)

	output := &ApplyDecisionsOutput{}

	for _, decision := range input.Decisions {
		switch decision.Outcome {
		case DecisionVerify:
			err := a.reviewRepo.MarkVerified(ctx, decision.ReviewID, decision.ExternalID, decision.Feed, decision.Score, decision.Confidence)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidTransition) {
					output.Skipped++
					logger.Warn("verify decision skipped, review already transitioned",
						"reviewID", decision.ReviewID,
					)
					continue
				}
				return nil, fmt.Errorf("mark review %s verified: %w", decision.ReviewID, err)
			}
			output.Verified++
			if a.metrics != nil {
				a.metrics.RecordReviewVerified(string(decision.Feed), decision.Score)
			}

		case DecisionQueue:
			err := a.reviewRepo.QueueManualReview(ctx, decision.ReviewID, decision.ExternalID, decision.Score, decision.Confidence)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidTransition) {
					output.Skipped++
					logger.Warn("queue decision skipped, review already transitioned",
						"reviewID", decision.ReviewID,
					)
					continue
				}
				return nil, fmt.Errorf("queue review %s for manual review: %w", decision.ReviewID, err)
			}
			output.Queued++
			if a.metrics != nil {
				a.metrics.RecordReviewQueued(decision.Score)
			}
		}
	}

	if a.metrics != nil {
		a.metrics.RecordReviewsChecked(len(input.Decisions))
	}

	logger.Info("match decisions applied",
		"decisionCount", len(input.Decisions),
		"verified", output.Verified,
		"queued", output.Queued,
		"skipped", output.Skipped,
	)

	return output, nil
}

// CompleteSweep marks a sweep record as finished with its result counters.
func (a *StatusActivities) CompleteSweep(ctx context.Context, input CompleteSweepInput) error {
	logger := activity.GetLogger(ctx)

	err := a.sweepRepo.Complete(ctx, input.SweepID, input.Status,
		input.ReviewsChecked, input.ReviewsVerified, input.ReviewsQueued, input.CandidatesFetched)
	if err != nil {
		return fmt.Errorf("complete sweep %s: %w", input.SweepID, err)
	}

	logger.Info("sweep completed",
		"sweepID", input.SweepID,
		"status", input.Status,
		"reviewsChecked", input.ReviewsChecked,
		"reviewsVerified", input.ReviewsVerified,
		"reviewsQueued", input.ReviewsQueued,
		"candidatesFetched", input.CandidatesFetched,
	)

	return nil
}

// FailSweep marks a sweep record as failed with the error message.
func (a *StatusActivities) FailSweep(ctx context.Context, input FailSweepInput) error {
	logger := activity.GetLogger(ctx)

	if err := a.sweepRepo.Fail(ctx, input.SweepID, input.ErrorMessage); err != nil {
		return fmt.Errorf("fail sweep %s: %w", input.SweepID, err)
	}

	logger.Warn("sweep failed",
		"sweepID", input.SweepID,
		"error", input.ErrorMessage,
	)

	return nil
}

// RecordSweepRunStarted records that a sweep workflow run has begun.
func (a *StatusActivities) RecordSweepRunStarted(ctx context.Context) error {
	if a.metrics != nil {
		a.metrics.RecordSweepStarted()
	}
	return nil
}

// RecordSweepRun records the fleet-level metrics for a whole sweep workflow
// run. Metrics live on the activity side of the determinism boundary, so the
// workflow reports its outcome through this activity rather than touching
// Prometheus directly.
func (a *StatusActivities) RecordSweepRun(ctx context.Context, input RecordSweepRunInput) error {
	if a.metrics == nil {
		return nil
	}

	if input.Failed {
		a.metrics.RecordSweepFailed(input.Duration.Seconds())
		return nil
	}

	a.metrics.RecordSweepCompleted(input.BusinessCount, input.Duration.Seconds())
	return nil
}
