package activities

import (
	"context"

	"go.temporal.io/sdk/activity"

	"github.com/reviewproof/review-verification-service/internal/matching"
	"github.com/reviewproof/review-verification-service/internal/observability"
)

// heartbeatInterval is the number of reviews scored between activity
// heartbeats. Candidate snapshots can run to hundreds of reviews per feed,
// so long-running scoring loops report liveness to the Temporal server.
const heartbeatInterval = 25

// MatchActivities provides the Temporal activity wrapping the matching
// engine. The engine itself is pure; this layer only adds heartbeating,
// logging, and metrics around it.
// Methods on this struct are registered as Temporal activities via the worker.
type MatchActivities struct {
	scorer  *matching.Scorer
	metrics *observability.Metrics
}

// NewMatchActivities creates a new MatchActivities instance with the given scorer.
// The metrics parameter may be nil (metrics recording will be skipped).
func NewMatchActivities(scorer *matching.Scorer, metrics *observability.Metrics) *MatchActivities {
	return &MatchActivities{
		scorer:  scorer,
		metrics: metrics,
	}
}

// MatchReviews scores every unverified review against the candidate snapshot
// and produces one decision per review, in input order.
//
// A review with a qualifying best match gets DecisionVerify. A review whose
// best candidate scored in the ambiguous band below the match threshold gets
// DecisionQueue with the nearest miss recorded for the human adjudicator.
// Everything else gets DecisionNone and stays unverified - an expected
// outcome, not an error.
func (a *MatchActivities) MatchReviews(ctx context.Context, input MatchReviewsInput) (*MatchReviewsOutput, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("matching reviews against candidates",
		"reviewCount", len(input.Reviews),
		"candidateCount", len(input.Candidates),
	)

	decisions := make([]MatchDecision, 0, len(input.Reviews))

	for i, review := range input.Reviews {
		if review == nil {
			continue
		}
		if i > 0 && i%heartbeatInterval == 0 {
			activity.RecordHeartbeat(ctx, i)
		}

		decision := MatchDecision{
			ReviewID: review.ID,
			Outcome:  DecisionNone,
		}

		if best := a.scorer.FindBestMatch(*review, input.Candidates); best != nil {
			decision.Outcome = DecisionVerify
			decision.ExternalID = best.ExternalReviewID
			decision.Feed = best.Feed
			decision.Score = best.Result.Score
			decision.Confidence = string(best.Result.Confidence)
		} else {
			scores := a.scorer.ScoreAll(*review, input.Candidates)
			if nearest := matching.BestCandidate(scores); nearest != nil && nearest.Result.Score >= matching.AmbiguousThreshold {
				decision.Outcome = DecisionQueue
				decision.ExternalID = nearest.ExternalReviewID
				decision.Feed = nearest.Feed
				decision.Score = nearest.Result.Score
				decision.Confidence = string(nearest.Result.Confidence)
			}
		}

		if a.metrics != nil {
			a.metrics.RecordCandidatesScored(len(input.Candidates))
			if decision.Outcome != DecisionNone {
				a.metrics.RecordMatchConfidence(decision.Confidence)
			}
		}

		decisions = append(decisions, decision)
	}

	verified, queued := 0, 0
	for _, d := range decisions {
		switch d.Outcome {
		case DecisionVerify:
			verified++
		case DecisionQueue:
			queued++
		}
	}

	logger.Info("matching completed",
		"reviewCount", len(input.Reviews),
		"verifyDecisions", verified,
		"queueDecisions", queued,
	)

	return &MatchReviewsOutput{Decisions: decisions}, nil
}
