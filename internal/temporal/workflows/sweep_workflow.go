// Package workflows defines Temporal workflow implementations for the
// review verification sweep pipeline.
package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/reviewproof/review-verification-service/internal/domain"
	rvtemporal "github.com/reviewproof/review-verification-service/internal/temporal"
	"github.com/reviewproof/review-verification-service/internal/temporal/activities"
	"github.com/reviewproof/review-verification-service/internal/temporal/resilience"
)

// Re-export signal/query name constants from the parent temporal package for
// convenience. These are defined in the parent package so the server layer can
// reference them without depending on the workflows package.
const (
	SignalCancel  = rvtemporal.SignalCancel
	QueryProgress = rvtemporal.QueryProgress
)

// Activity timeout constants.
const (
	repositoryActivityTimeout = 30 * time.Second
	fetchActivityTimeout      = 2 * time.Minute
	matchActivityTimeout      = 5 * time.Minute
	eventActivityTimeout      = 15 * time.Second
)

// Workflow defaults applied when the input leaves a knob at zero.
const (
	// defaultReviewBatchSize caps the unverified reviews evaluated per
	// business in a single sweep run.
	defaultReviewBatchSize = 200

	// defaultBusinessPageSize is the page size used when walking the set of
	// sweep-enabled businesses.
	defaultBusinessPageSize = 50
)

// SweepWorkflowInput is an alias for the shared input type defined in the
// parent temporal package. This allows the workflow function signature to
// remain unchanged while the type is importable from either location.
type SweepWorkflowInput = rvtemporal.SweepWorkflowInput

// SweepWorkflowResult contains the aggregate outcome of a verification sweep
// workflow run across every business it processed.
type SweepWorkflowResult struct {
	// BusinessesSwept is the number of businesses a sweep record was
	// created for.
	BusinessesSwept int

	// BusinessesFailed is the number of businesses whose sweep ended in
	// the failed state.
	BusinessesFailed int

	// ReviewsChecked is the total number of unverified reviews evaluated.
	ReviewsChecked int

	// ReviewsVerified is the total number of reviews auto-verified.
	ReviewsVerified int

	// ReviewsQueued is the total number of reviews sent to the manual
	// review queue.
	ReviewsQueued int

	// CandidatesFetched is the total number of external candidate reviews
	// retrieved across all feeds.
	CandidatesFetched int

	// Duration is the total workflow execution time in seconds.
	Duration float64
}

// sweepProgress tracks the internal progress state of the workflow, exposed
// via the QueryProgress query handler.
type sweepProgress struct {
	Phase             string
	CurrentBusinessID string
	BusinessesSwept   int
	BusinessesFailed  int
	ReviewsChecked    int
	ReviewsVerified   int
	ReviewsQueued     int
	CandidatesFetched int

	Retry resilience.Progress
}

// VerificationSweepWorkflow walks the set of sweep-enabled businesses and, for
// each one, fetches a candidate snapshot from every connected feed, scores the
// business's unverified reviews against it, and persists the resulting
// verify/queue decisions together with a per-business sweep record.
//
// A non-nil input.BusinessID restricts the run to that single business; the
// business does not need sweeps enabled in that case, only a connected feed.
//
// Feed failures degrade rather than fail: when at least one feed produced
// candidates the sweep completes as partial, and only a business whose every
// feed failed has its sweep marked failed. A failed business never aborts the
// run; the workflow moves on to the next page.
//
// The workflow supports cancellation via the "cancel" signal and progress
// queries via the "progress" query type.
func VerificationSweepWorkflow(ctx workflow.Context, input SweepWorkflowInput) (*SweepWorkflowResult, error) {
	logger := workflow.GetLogger(ctx)
	startTime := workflow.Now(ctx)

	progress := &sweepProgress{Phase: "initializing"}

	// Register query handler for progress reporting.
	err := workflow.SetQueryHandler(ctx, QueryProgress, func() (*sweepProgress, error) {
		return progress, nil
	})
	if err != nil {
		logger.Error("failed to register progress query handler", "error", err)
		return nil, fmt.Errorf("register query handler: %w", err)
	}

	// Set up cancellation signal handling.
	cancelCtx, cancelFunc := workflow.WithCancel(ctx)
	signalCh := workflow.GetSignalChannel(ctx, SignalCancel)
	workflow.Go(ctx, func(gCtx workflow.Context) {
		signalCh.Receive(gCtx, nil)
		logger.Info("received cancel signal")
		cancelFunc()
	})

	// Activity nil-pointer variables for method references.
	var fetchAct *activities.FetchActivities
	var matchAct *activities.MatchActivities
	var statusAct *activities.StatusActivities
	var eventAct *activities.EventActivities

	// Build activity option contexts with retry policies. Phase-level retry
	// is handled by resilience.ExecutePhase, so activity-level retry stays
	// short and covers worker crashes rather than dependency outages.
	repoCtx := workflow.WithActivityOptions(cancelCtx, workflow.ActivityOptions{
		StartToCloseTimeout: repositoryActivityTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    500 * time.Millisecond,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	})

	fetchCtx := workflow.WithActivityOptions(cancelCtx, workflow.ActivityOptions{
		StartToCloseTimeout: fetchActivityTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    1 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    30 * time.Second,
			MaximumAttempts:    2,
		},
	})

	matchCtx := workflow.WithActivityOptions(cancelCtx, workflow.ActivityOptions{
		StartToCloseTimeout: matchActivityTimeout,
		HeartbeatTimeout:    30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    1 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    3,
		},
	})

	eventCtx := workflow.WithActivityOptions(cancelCtx, workflow.ActivityOptions{
		StartToCloseTimeout: eventActivityTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    500 * time.Millisecond,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    3,
		},
	})

	phases := resilience.DefaultPhaseConfigs()

	reviewBatchSize := input.ReviewBatchSize
	if reviewBatchSize == 0 {
		reviewBatchSize = defaultReviewBatchSize
	}
	pageSize := input.BusinessPageSize
	if pageSize == 0 {
		pageSize = defaultBusinessPageSize
	}

	// Fire-and-forget: record that a sweep run started.
	_ = workflow.ExecuteActivity(repoCtx, statusAct.RecordSweepRunStarted).Get(cancelCtx, nil)

	result := &SweepWorkflowResult{}

	// finish records run-level metrics and stamps the duration. Metrics use
	// the root context so a cancelled run is still counted.
	finish := func(failed bool) {
		result.Duration = workflow.Now(ctx).Sub(startTime).Seconds()
		metricsCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
			StartToCloseTimeout: repositoryActivityTimeout,
			RetryPolicy: &temporal.RetryPolicy{
				InitialInterval:    500 * time.Millisecond,
				BackoffCoefficient: 2.0,
				MaximumInterval:    10 * time.Second,
				MaximumAttempts:    3,
			},
		})
		_ = workflow.ExecuteActivity(metricsCtx, statusAct.RecordSweepRun, activities.RecordSweepRunInput{
			BusinessCount: result.BusinessesSwept,
			Duration:      workflow.Now(ctx).Sub(startTime),
			Failed:        failed,
		}).Get(ctx, nil)
	}

	// sweepBusiness runs the full pipeline for one business. It returns an
	// error only for run-level failures (persistence exhausting retries or
	// cancellation); feed failures are absorbed into the sweep record.
	sweepBusiness := func(business *domain.Business) error {
		progress.CurrentBusinessID = business.ID.String()
		blog := workflow.GetLogger(ctx)

		// Record the sweep start so a crash mid-business leaves a visible
		// running record rather than nothing.
		progress.Phase = "creating_sweep"
		var sweepOut activities.CreateSweepOutput
		err := workflow.ExecuteActivity(repoCtx, statusAct.CreateSweep, activities.CreateSweepInput{
			BusinessID: business.ID,
		}).Get(cancelCtx, &sweepOut)
		if err != nil {
			return fmt.Errorf("create sweep for business %s: %w", business.ID, err)
		}
		result.BusinessesSwept++
		progress.BusinessesSwept++

		// failSweep marks this business's sweep failed using the root
		// context so the record is written even mid-cancellation.
		failSweep := func(cause error) {
			blog.Error("sweep failed for business", "businessID", business.ID, "error", cause)
			failCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
				StartToCloseTimeout: repositoryActivityTimeout,
				RetryPolicy: &temporal.RetryPolicy{
					InitialInterval:    500 * time.Millisecond,
					BackoffCoefficient: 2.0,
					MaximumInterval:    10 * time.Second,
					MaximumAttempts:    5,
				},
			})
			_ = workflow.ExecuteActivity(failCtx, statusAct.FailSweep, activities.FailSweepInput{
				SweepID:      sweepOut.SweepID,
				ErrorMessage: cause.Error(),
			}).Get(ctx, nil)
			result.BusinessesFailed++
			progress.BusinessesFailed++
		}

		// List the reviews this sweep must evaluate.
		progress.Phase = "listing_reviews"
		var reviewsOut activities.ListUnverifiedReviewsOutput
		phaseResult := resilience.ExecutePhase(cancelCtx, phases["listing_reviews"], &progress.Retry, func() error {
			return workflow.ExecuteActivity(repoCtx, fetchAct.ListUnverifiedReviews, activities.ListUnverifiedReviewsInput{
				BusinessID: business.ID,
				Limit:      reviewBatchSize,
			}).Get(cancelCtx, &reviewsOut)
		})
		if phaseResult.Failed {
			failSweep(fmt.Errorf("listing reviews: %w", phaseResult.Err))
			return nil
		}

		// Nothing to verify: close the sweep out with zero counters rather
		// than hitting the feeds for no reason.
		if len(reviewsOut.Reviews) == 0 {
			blog.Info("no unverified reviews, completing sweep", "businessID", business.ID)
			return workflow.ExecuteActivity(repoCtx, statusAct.CompleteSweep, activities.CompleteSweepInput{
				SweepID: sweepOut.SweepID,
				Status:  domain.SweepStatusCompleted,
			}).Get(cancelCtx, nil)
		}

		// Fetch the candidate snapshot from every connected feed.
		progress.Phase = "fetching_candidates"
		var fetchOut activities.FetchCandidatesOutput
		phaseResult = resilience.ExecutePhase(cancelCtx, phases["fetching_candidates"], &progress.Retry, func() error {
			return workflow.ExecuteActivity(fetchCtx, fetchAct.FetchCandidates, activities.FetchCandidatesInput{
				Business:   business,
				MaxResults: input.MaxCandidates,
			}).Get(cancelCtx, &fetchOut)
		})
		if phaseResult.Failed || phaseResult.Degraded {
			failSweep(fmt.Errorf("fetching candidates: %w", phaseResult.Err))
			return nil
		}
		result.CandidatesFetched += fetchOut.TotalFetched
		progress.CandidatesFetched += fetchOut.TotalFetched

		// Score every review against the snapshot.
		progress.Phase = "matching"
		var matchOut activities.MatchReviewsOutput
		phaseResult = resilience.ExecutePhase(cancelCtx, phases["matching"], &progress.Retry, func() error {
			return workflow.ExecuteActivity(matchCtx, matchAct.MatchReviews, activities.MatchReviewsInput{
				Reviews:    reviewsOut.Reviews,
				Candidates: fetchOut.Candidates,
			}).Get(cancelCtx, &matchOut)
		})
		if phaseResult.Failed {
			failSweep(fmt.Errorf("matching reviews: %w", phaseResult.Err))
			return nil
		}

		// Persist the decisions.
		progress.Phase = "persisting"
		var applyOut activities.ApplyDecisionsOutput
		phaseResult = resilience.ExecutePhase(cancelCtx, phases["persisting"], &progress.Retry, func() error {
			return workflow.ExecuteActivity(repoCtx, statusAct.ApplyMatchDecisions, activities.ApplyDecisionsInput{
				Decisions: matchOut.Decisions,
			}).Get(cancelCtx, &applyOut)
		})
		if phaseResult.Failed {
			failSweep(fmt.Errorf("persisting decisions: %w", phaseResult.Err))
			return nil
		}

		checked := len(reviewsOut.Reviews)
		result.ReviewsChecked += checked
		result.ReviewsVerified += applyOut.Verified
		result.ReviewsQueued += applyOut.Queued
		progress.ReviewsChecked += checked
		progress.ReviewsVerified += applyOut.Verified
		progress.ReviewsQueued += applyOut.Queued

		// A snapshot with feed errors is a partial sweep: some candidates
		// were never seen, so an unmatched review proves nothing this run.
		sweepStatus := domain.SweepStatusCompleted
		if len(fetchOut.FeedErrors) > 0 {
			sweepStatus = domain.SweepStatusPartial
		}

		err = workflow.ExecuteActivity(repoCtx, statusAct.CompleteSweep, activities.CompleteSweepInput{
			SweepID:           sweepOut.SweepID,
			Status:            sweepStatus,
			ReviewsChecked:    checked,
			ReviewsVerified:   applyOut.Verified,
			ReviewsQueued:     applyOut.Queued,
			CandidatesFetched: fetchOut.TotalFetched,
		}).Get(cancelCtx, nil)
		if err != nil {
			failSweep(fmt.Errorf("completing sweep: %w", err))
			return nil
		}

		blog.Info("sweep completed for business",
			"businessID", business.ID,
			"status", sweepStatus,
			"checked", checked,
			"verified", applyOut.Verified,
			"queued", applyOut.Queued,
			"skipped", applyOut.Skipped,
			"candidates", fetchOut.TotalFetched,
			"feedErrors", len(fetchOut.FeedErrors),
		)

		// Fire-and-forget: publish outcome events. The activity re-reads
		// each review so the payload reflects persisted state.
		progress.Phase = "publishing_events"
		for _, decision := range matchOut.Decisions {
			if decision.Outcome == activities.DecisionNone {
				continue
			}
			phaseResult = resilience.ExecutePhase(cancelCtx, phases["publishing_events"], &progress.Retry, func() error {
				return workflow.ExecuteActivity(eventCtx, eventAct.PublishReviewOutcome, activities.PublishReviewOutcomeInput{
					ReviewID: decision.ReviewID,
				}).Get(cancelCtx, nil)
			})
			if phaseResult.Skipped {
				blog.Warn("skipped review outcome event", "reviewID", decision.ReviewID, "error", phaseResult.Err)
			}
		}
		phaseResult = resilience.ExecutePhase(cancelCtx, phases["publishing_events"], &progress.Retry, func() error {
			return workflow.ExecuteActivity(eventCtx, eventAct.PublishSweepCompleted, activities.PublishSweepCompletedInput{
				SweepID: sweepOut.SweepID,
			}).Get(cancelCtx, nil)
		})
		if phaseResult.Skipped {
			blog.Warn("skipped sweep completed event", "sweepID", sweepOut.SweepID, "error", phaseResult.Err)
		}

		return nil
	}

	// Single-business mode: resolve and sweep exactly one business.
	if input.BusinessID != nil {
		progress.Phase = "loading_business"
		var businessOut activities.GetBusinessOutput
		err := workflow.ExecuteActivity(repoCtx, fetchAct.GetBusiness, activities.GetBusinessInput{
			BusinessID: *input.BusinessID,
		}).Get(cancelCtx, &businessOut)
		if err != nil {
			finish(true)
			return nil, fmt.Errorf("get business %s: %w", input.BusinessID, err)
		}

		if err := sweepBusiness(businessOut.Business); err != nil {
			finish(true)
			return nil, err
		}

		progress.Phase = "done"
		finish(false)
		return result, nil
	}

	// Fleet mode: walk every sweep-enabled business page by page.
	offset := 0
	for {
		progress.Phase = "listing_businesses"
		var pageOut activities.ListSweepBusinessesOutput
		err := workflow.ExecuteActivity(repoCtx, fetchAct.ListSweepBusinesses, activities.ListSweepBusinessesInput{
			PageSize: pageSize,
			Offset:   offset,
		}).Get(cancelCtx, &pageOut)
		if err != nil {
			finish(true)
			return nil, fmt.Errorf("list sweep businesses at offset %d: %w", offset, err)
		}

		for _, business := range pageOut.Businesses {
			if business == nil {
				continue
			}
			if err := sweepBusiness(business); err != nil {
				finish(true)
				return nil, err
			}
		}

		if !pageOut.HasMore {
			break
		}
		offset += pageSize
	}

	logger.Info("verification sweep run finished",
		"businessesSwept", result.BusinessesSwept,
		"businessesFailed", result.BusinessesFailed,
		"reviewsChecked", result.ReviewsChecked,
		"reviewsVerified", result.ReviewsVerified,
		"reviewsQueued", result.ReviewsQueued,
		"candidatesFetched", result.CandidatesFetched,
	)

	progress.Phase = "done"
	finish(false)
	return result, nil
}
