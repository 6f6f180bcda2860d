// Package chaos provides fault injection tests for the VerificationSweepWorkflow.
//
// These tests verify that the workflow handles various failure scenarios
// correctly, including transient feed outages, total feed unavailability,
// persistence failures, and event broker failures. All tests use the Temporal
// test environment with mocked activities (no external services required).
package chaos

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/reviewproof/review-verification-service/internal/domain"
	"github.com/reviewproof/review-verification-service/internal/temporal/activities"
	"github.com/reviewproof/review-verification-service/internal/temporal/workflows"
)

// newChaosBusiness returns a feed-connected business for chaos tests.
func newChaosBusiness() *domain.Business {
	return &domain.Business{
		ID:            uuid.New(),
		AccountID:     "acct-chaos",
		Name:          "Chaos Coffee",
		GooglePlaceID: "ChIJchaos",
		SweepEnabled:  true,
	}
}

// newChaosReviews returns n unverified reviews for the given business.
func newChaosReviews(businessID uuid.UUID, n int) []*domain.SubmittedReview {
	reviews := make([]*domain.SubmittedReview, n)
	for i := range reviews {
		reviews[i] = &domain.SubmittedReview{
			ID:           uuid.New(),
			BusinessID:   businessID,
			ReviewerName: "Casey Morgan",
			ReviewText:   "Great pour-over, would come back.",
			Rating:       5,
			Status:       domain.VerificationStatusUnverified,
		}
	}
	return reviews
}

// TestChaos_FeedFetchFailsThenRecovers verifies that the workflow completes
// successfully when candidate fetching fails on the first two invocations with
// retryable errors, then succeeds.
//
// The Temporal test environment invokes the activity mock once per attempt,
// so a closure with an atomic counter can simulate transient failures followed
// by recovery. The first two calls return a retryable ApplicationError; the
// third call returns a valid candidate snapshot.
func TestChaos_FeedFetchFailsThenRecovers(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()

	business := newChaosBusiness()
	reviews := newChaosReviews(business.ID, 1)
	sweepID := uuid.New()

	var fetchAct *activities.FetchActivities
	var matchAct *activities.MatchActivities
	var statusAct *activities.StatusActivities
	var eventAct *activities.EventActivities

	env.OnActivity(statusAct.RecordSweepRunStarted, mock.Anything).Return(nil)
	env.OnActivity(statusAct.RecordSweepRun, mock.Anything, mock.Anything).Return(nil)
	env.OnActivity(fetchAct.GetBusiness, mock.Anything, mock.Anything).Return(
		&activities.GetBusinessOutput{Business: business}, nil,
	)
	env.OnActivity(statusAct.CreateSweep, mock.Anything, mock.Anything).Return(
		&activities.CreateSweepOutput{SweepID: sweepID}, nil,
	)
	env.OnActivity(fetchAct.ListUnverifiedReviews, mock.Anything, mock.Anything).Return(
		&activities.ListUnverifiedReviewsOutput{Reviews: reviews}, nil,
	)

	var fetchCallCount int32
	env.OnActivity(fetchAct.FetchCandidates, mock.Anything, mock.Anything).Return(
		func(_ context.Context, _ activities.FetchCandidatesInput) (*activities.FetchCandidatesOutput, error) {
			n := atomic.AddInt32(&fetchCallCount, 1)
			if n <= 2 {
				return nil, temporal.NewApplicationError(
					"feed temporarily unavailable",
					"FEED_TRANSIENT",
				)
			}
			return &activities.FetchCandidatesOutput{
				Candidates: []domain.ExternalReview{
					{ID: "g-1", Feed: domain.FeedTypeGooglePlaces, ReviewerDisplayName: "Casey M.", CommentText: "Great pour-over, would come back.", Rating: 5},
				},
				TotalFetched: 1,
			}, nil
		},
	)

	env.OnActivity(matchAct.MatchReviews, mock.Anything, mock.Anything).Return(
		&activities.MatchReviewsOutput{
			Decisions: []activities.MatchDecision{
				{ReviewID: reviews[0].ID, Outcome: activities.DecisionVerify, ExternalID: "g-1", Feed: domain.FeedTypeGooglePlaces, Score: 0.95, Confidence: "high"},
			},
		}, nil,
	)
	env.OnActivity(statusAct.ApplyMatchDecisions, mock.Anything, mock.Anything).Return(
		&activities.ApplyDecisionsOutput{Verified: 1}, nil,
	)
	env.OnActivity(statusAct.CompleteSweep, mock.Anything, mock.Anything).Return(nil)
	env.OnActivity(eventAct.PublishReviewOutcome, mock.Anything, mock.Anything).Return(nil)
	env.OnActivity(eventAct.PublishSweepCompleted, mock.Anything, mock.Anything).Return(nil)

	env.ExecuteWorkflow(workflows.VerificationSweepWorkflow, workflows.SweepWorkflowInput{BusinessID: &business.ID})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var result workflows.SweepWorkflowResult
	require.NoError(t, env.GetWorkflowResult(&result))

	assert.Equal(t, 1, result.BusinessesSwept)
	assert.Equal(t, 0, result.BusinessesFailed)
	assert.Equal(t, 1, result.ReviewsVerified, "review should verify after the feed recovers")
	assert.GreaterOrEqual(t, atomic.LoadInt32(&fetchCallCount), int32(3), "fetch should have been retried past the transient failures")

	env.AssertExpectations(t)
}

// TestChaos_AllFeedsFail verifies that a permanent feed outage fails the
// business's sweep without failing the workflow run.
//
// Candidate fetching degrades rather than fails: the workflow marks the sweep
// record failed, counts the business as failed, and keeps going. The run-level
// result still reports the business as swept because a record was created.
func TestChaos_AllFeedsFail(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()

	business := newChaosBusiness()
	reviews := newChaosReviews(business.ID, 2)
	sweepID := uuid.New()

	var fetchAct *activities.FetchActivities
	var statusAct *activities.StatusActivities

	env.OnActivity(statusAct.RecordSweepRunStarted, mock.Anything).Return(nil)
	env.OnActivity(statusAct.RecordSweepRun, mock.Anything, mock.Anything).Return(nil)
	env.OnActivity(fetchAct.GetBusiness, mock.Anything, mock.Anything).Return(
		&activities.GetBusinessOutput{Business: business}, nil,
	)
	env.OnActivity(statusAct.CreateSweep, mock.Anything, mock.Anything).Return(
		&activities.CreateSweepOutput{SweepID: sweepID}, nil,
	)
	env.OnActivity(fetchAct.ListUnverifiedReviews, mock.Anything, mock.Anything).Return(
		&activities.ListUnverifiedReviewsOutput{Reviews: reviews}, nil,
	)

	env.OnActivity(fetchAct.FetchCandidates, mock.Anything, mock.Anything).Return(
		nil, temporal.NewNonRetryableApplicationError(
			"all feeds failed",
			"FEED_OUTAGE",
			domain.ErrServiceUnavailable,
		),
	)

	var failInput activities.FailSweepInput
	env.OnActivity(statusAct.FailSweep, mock.Anything, mock.Anything).Return(
		func(_ context.Context, input activities.FailSweepInput) error {
			failInput = input
			return nil
		},
	)

	env.ExecuteWorkflow(workflows.VerificationSweepWorkflow, workflows.SweepWorkflowInput{BusinessID: &business.ID})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var result workflows.SweepWorkflowResult
	require.NoError(t, env.GetWorkflowResult(&result))

	assert.Equal(t, 1, result.BusinessesSwept)
	assert.Equal(t, 1, result.BusinessesFailed)
	assert.Equal(t, 0, result.ReviewsChecked, "no reviews were evaluated without a snapshot")

	assert.Equal(t, sweepID, failInput.SweepID)
	assert.Contains(t, failInput.ErrorMessage, "fetching candidates")

	env.AssertExpectations(t)
}

// TestChaos_PersistenceFailsSweepFailed verifies that a permanent persistence
// failure marks the sweep failed rather than leaving decisions half-applied
// and the record open.
func TestChaos_PersistenceFailsSweepFailed(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()

	business := newChaosBusiness()
	reviews := newChaosReviews(business.ID, 1)
	sweepID := uuid.New()

	var fetchAct *activities.FetchActivities
	var matchAct *activities.MatchActivities
	var statusAct *activities.StatusActivities

	env.OnActivity(statusAct.RecordSweepRunStarted, mock.Anything).Return(nil)
	env.OnActivity(statusAct.RecordSweepRun, mock.Anything, mock.Anything).Return(nil)
	env.OnActivity(fetchAct.GetBusiness, mock.Anything, mock.Anything).Return(
		&activities.GetBusinessOutput{Business: business}, nil,
	)
	env.OnActivity(statusAct.CreateSweep, mock.Anything, mock.Anything).Return(
		&activities.CreateSweepOutput{SweepID: sweepID}, nil,
	)
	env.OnActivity(fetchAct.ListUnverifiedReviews, mock.Anything, mock.Anything).Return(
		&activities.ListUnverifiedReviewsOutput{Reviews: reviews}, nil,
	)
	env.OnActivity(fetchAct.FetchCandidates, mock.Anything, mock.Anything).Return(
		&activities.FetchCandidatesOutput{
			Candidates: []domain.ExternalReview{
				{ID: "g-1", Feed: domain.FeedTypeGooglePlaces, ReviewerDisplayName: "Casey M.", CommentText: "Great pour-over."},
			},
			TotalFetched: 1,
		}, nil,
	)
	env.OnActivity(matchAct.MatchReviews, mock.Anything, mock.Anything).Return(
		&activities.MatchReviewsOutput{
			Decisions: []activities.MatchDecision{
				{ReviewID: reviews[0].ID, Outcome: activities.DecisionVerify, ExternalID: "g-1", Feed: domain.FeedTypeGooglePlaces, Score: 0.92, Confidence: "high"},
			},
		}, nil,
	)

	env.OnActivity(statusAct.ApplyMatchDecisions, mock.Anything, mock.Anything).Return(
		nil, temporal.NewNonRetryableApplicationError(
			"database connection lost",
			"DB_UNAVAILABLE",
			nil,
		),
	)
	env.OnActivity(statusAct.FailSweep, mock.Anything, mock.Anything).Return(nil)

	env.ExecuteWorkflow(workflows.VerificationSweepWorkflow, workflows.SweepWorkflowInput{BusinessID: &business.ID})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var result workflows.SweepWorkflowResult
	require.NoError(t, env.GetWorkflowResult(&result))

	assert.Equal(t, 1, result.BusinessesFailed)
	assert.Equal(t, 0, result.ReviewsVerified, "nothing counts as verified when persistence failed")

	env.AssertExpectations(t)
}

// TestChaos_EventBrokerDownNonFatal verifies that the workflow completes with
// intact counters when every event publish fails permanently.
//
// Event publishing is a non-critical phase: exhausted retries log a warning
// and the workflow proceeds. Verification decisions were already persisted, so
// a broker outage must never fail a sweep.
func TestChaos_EventBrokerDownNonFatal(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()

	business := newChaosBusiness()
	reviews := newChaosReviews(business.ID, 1)
	sweepID := uuid.New()

	var fetchAct *activities.FetchActivities
	var matchAct *activities.MatchActivities
	var statusAct *activities.StatusActivities
	var eventAct *activities.EventActivities

	env.OnActivity(statusAct.RecordSweepRunStarted, mock.Anything).Return(nil)
	env.OnActivity(statusAct.RecordSweepRun, mock.Anything, mock.Anything).Return(nil)
	env.OnActivity(fetchAct.GetBusiness, mock.Anything, mock.Anything).Return(
		&activities.GetBusinessOutput{Business: business}, nil,
	)
	env.OnActivity(statusAct.CreateSweep, mock.Anything, mock.Anything).Return(
		&activities.CreateSweepOutput{SweepID: sweepID}, nil,
	)
	env.OnActivity(fetchAct.ListUnverifiedReviews, mock.Anything, mock.Anything).Return(
		&activities.ListUnverifiedReviewsOutput{Reviews: reviews}, nil,
	)
	env.OnActivity(fetchAct.FetchCandidates, mock.Anything, mock.Anything).Return(
		&activities.FetchCandidatesOutput{
			Candidates: []domain.ExternalReview{
				{ID: "g-1", Feed: domain.FeedTypeGooglePlaces, ReviewerDisplayName: "Casey M.", CommentText: "Great pour-over, would come back.", Rating: 5},
			},
			TotalFetched: 1,
		}, nil,
	)
	env.OnActivity(matchAct.MatchReviews, mock.Anything, mock.Anything).Return(
		&activities.MatchReviewsOutput{
			Decisions: []activities.MatchDecision{
				{ReviewID: reviews[0].ID, Outcome: activities.DecisionVerify, ExternalID: "g-1", Feed: domain.FeedTypeGooglePlaces, Score: 0.95, Confidence: "high"},
			},
		}, nil,
	)
	env.OnActivity(statusAct.ApplyMatchDecisions, mock.Anything, mock.Anything).Return(
		&activities.ApplyDecisionsOutput{Verified: 1}, nil,
	)
	env.OnActivity(statusAct.CompleteSweep, mock.Anything, mock.Anything).Return(nil)

	// The broker is completely down: every publish fails permanently.
	env.OnActivity(eventAct.PublishReviewOutcome, mock.Anything, mock.Anything).Return(
		temporal.NewNonRetryableApplicationError("broker unreachable", "KAFKA_DOWN", nil),
	)
	env.OnActivity(eventAct.PublishSweepCompleted, mock.Anything, mock.Anything).Return(
		temporal.NewNonRetryableApplicationError("broker unreachable", "KAFKA_DOWN", nil),
	)

	env.ExecuteWorkflow(workflows.VerificationSweepWorkflow, workflows.SweepWorkflowInput{BusinessID: &business.ID})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var result workflows.SweepWorkflowResult
	require.NoError(t, env.GetWorkflowResult(&result))

	assert.Equal(t, 1, result.BusinessesSwept)
	assert.Equal(t, 0, result.BusinessesFailed)
	assert.Equal(t, 1, result.ReviewsVerified, "persisted decisions survive a broker outage")

	env.AssertExpectations(t)
}

// TestChaos_CreateSweepFailsRunErrors verifies that the workflow fails when
// the sweep record cannot be created.
//
// Sweep record creation is on the critical path: without a record there is
// nowhere to attribute the outcome, so sweepBusiness propagates the error and
// the run terminates.
func TestChaos_CreateSweepFailsRunErrors(t *testing.T) {
	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()

	business := newChaosBusiness()

	var fetchAct *activities.FetchActivities
	var statusAct *activities.StatusActivities

	env.OnActivity(statusAct.RecordSweepRunStarted, mock.Anything).Return(nil)
	env.OnActivity(statusAct.RecordSweepRun, mock.Anything, mock.Anything).Return(nil)
	env.OnActivity(fetchAct.GetBusiness, mock.Anything, mock.Anything).Return(
		&activities.GetBusinessOutput{Business: business}, nil,
	)
	env.OnActivity(statusAct.CreateSweep, mock.Anything, mock.Anything).Return(
		nil, temporal.NewNonRetryableApplicationError(
			"database connection lost",
			"DB_UNAVAILABLE",
			nil,
		),
	)

	env.ExecuteWorkflow(workflows.VerificationSweepWorkflow, workflows.SweepWorkflowInput{BusinessID: &business.ID})

	require.True(t, env.IsWorkflowCompleted())

	err := env.GetWorkflowError()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create sweep",
		"error should indicate the sweep record could not be created")
}
