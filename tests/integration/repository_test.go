//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewproof/review-verification-service/internal/domain"
	"github.com/reviewproof/review-verification-service/internal/repository"
)

// newBusiness returns a feed-connected business fixture owned by the given account.
func newBusiness(accountID string) *domain.Business {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Business{
		ID:            uuid.New(),
		AccountID:     accountID,
		Name:          "Harbor Coffee Roasters",
		GooglePlaceID: "ChIJharbor-" + uuid.NewString()[:8],
		SweepEnabled:  true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func newReview(businessID uuid.UUID) *domain.SubmittedReview {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.SubmittedReview{
		ID:           uuid.New(),
		BusinessID:   businessID,
		ReviewerName: "Jordan P.",
		ReviewText:   "Fantastic espresso and friendly staff.",
		Rating:       5,
		SubmittedAt:  now,
		Status:       domain.VerificationStatusUnverified,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestPgBusinessRepository_Integration(t *testing.T) {
	cleanTable(t, "businesses")
	repo := repository.NewPgBusinessRepository(testPool)
	ctx := context.Background()

	t.Run("Create and Get roundtrip", func(t *testing.T) {
		business := newBusiness("acct-integration")

		require.NoError(t, repo.Create(ctx, business))

		got, err := repo.Get(ctx, business.ID)
		require.NoError(t, err)
		assert.Equal(t, business.ID, got.ID)
		assert.Equal(t, "acct-integration", got.AccountID)
		assert.Equal(t, business.Name, got.Name)
		assert.Equal(t, business.GooglePlaceID, got.GooglePlaceID)
		assert.Empty(t, got.YelpBusinessID)
		assert.True(t, got.SweepEnabled)
	})

	t.Run("Create duplicate returns already exists", func(t *testing.T) {
		business := newBusiness("acct-integration")
		require.NoError(t, repo.Create(ctx, business))

		err := repo.Create(ctx, business)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	})

	t.Run("Update mutable fields", func(t *testing.T) {
		business := newBusiness("acct-integration")
		require.NoError(t, repo.Create(ctx, business))

		business.Name = "Harbor Coffee (Downtown)"
		business.YelpBusinessID = "harbor-coffee-downtown"
		business.SweepEnabled = false
		require.NoError(t, repo.Update(ctx, business))

		got, err := repo.Get(ctx, business.ID)
		require.NoError(t, err)
		assert.Equal(t, "Harbor Coffee (Downtown)", got.Name)
		assert.Equal(t, "harbor-coffee-downtown", got.YelpBusinessID)
		assert.False(t, got.SweepEnabled)
		assert.True(t, got.UpdatedAt.After(got.CreatedAt))
	})

	t.Run("Update nonexistent returns not found", func(t *testing.T) {
		business := newBusiness("acct-integration")
		err := repo.Update(ctx, business)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("List scoped to account", func(t *testing.T) {
		other := newBusiness("acct-other")
		require.NoError(t, repo.Create(ctx, other))

		businesses, total, err := repo.List(ctx, repository.BusinessFilter{
			AccountID: "acct-other",
			Limit:     10,
		})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, businesses, 1)
		assert.Equal(t, other.ID, businesses[0].ID)
	})

	t.Run("List with sweep_enabled filter", func(t *testing.T) {
		enabled := true
		businesses, _, err := repo.List(ctx, repository.BusinessFilter{
			AccountID:    "acct-integration",
			SweepEnabled: &enabled,
			Limit:        10,
		})
		require.NoError(t, err)
		for _, b := range businesses {
			assert.True(t, b.SweepEnabled)
		}
	})

	t.Run("ListSweepEnabled skips businesses without a feed", func(t *testing.T) {
		cleanTable(t, "businesses")

		connected := newBusiness("acct-sweep")
		require.NoError(t, repo.Create(ctx, connected))

		noFeed := newBusiness("acct-sweep")
		noFeed.GooglePlaceID = ""
		require.NoError(t, repo.Create(ctx, noFeed))

		disabled := newBusiness("acct-sweep")
		disabled.SweepEnabled = false
		require.NoError(t, repo.Create(ctx, disabled))

		businesses, err := repo.ListSweepEnabled(ctx, 10, 0)
		require.NoError(t, err)
		require.Len(t, businesses, 1)
		assert.Equal(t, connected.ID, businesses[0].ID)
	})
}

func TestPgReviewRepository_Integration(t *testing.T) {
	cleanTable(t, "businesses", "submitted_reviews")
	businessRepo := repository.NewPgBusinessRepository(testPool)
	repo := repository.NewPgReviewRepository(testPool)
	ctx := context.Background()

	business := newBusiness("acct-reviews")
	require.NoError(t, businessRepo.Create(ctx, business))

	t.Run("Create and Get roundtrip", func(t *testing.T) {
		review := newReview(business.ID)
		require.NoError(t, repo.Create(ctx, review))

		got, err := repo.Get(ctx, review.ID)
		require.NoError(t, err)
		assert.Equal(t, review.ID, got.ID)
		assert.Equal(t, business.ID, got.BusinessID)
		assert.Equal(t, "Jordan P.", got.ReviewerName)
		assert.Equal(t, domain.VerificationStatusUnverified, got.Status)
		assert.Nil(t, got.MatchScore)
		assert.Nil(t, got.VerifiedAt)
	})

	t.Run("Create with unknown business returns not found", func(t *testing.T) {
		review := newReview(uuid.New())
		err := repo.Create(ctx, review)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("MarkVerified sets match fields", func(t *testing.T) {
		review := newReview(business.ID)
		require.NoError(t, repo.Create(ctx, review))

		err := repo.MarkVerified(ctx, review.ID, "g-ext-42", domain.FeedTypeGooglePlaces, 0.94, "high")
		require.NoError(t, err)

		got, err := repo.Get(ctx, review.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.VerificationStatusVerified, got.Status)
		assert.Equal(t, "g-ext-42", got.MatchedExternalID)
		assert.Equal(t, domain.FeedTypeGooglePlaces, got.MatchedFeed)
		require.NotNil(t, got.MatchScore)
		assert.InDelta(t, 0.94, *got.MatchScore, 0.0001)
		assert.Equal(t, "high", got.MatchConfidence)
		require.NotNil(t, got.VerifiedAt)
	})

	t.Run("MarkVerified on resolved review returns invalid transition", func(t *testing.T) {
		review := newReview(business.ID)
		require.NoError(t, repo.Create(ctx, review))
		require.NoError(t, repo.MarkVerified(ctx, review.ID, "g-ext-1", domain.FeedTypeGooglePlaces, 0.91, "high"))

		// A second sweep run must never overwrite the first outcome.
		err := repo.MarkVerified(ctx, review.ID, "g-ext-2", domain.FeedTypeGooglePlaces, 0.99, "high")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("QueueManualReview and ResolveManual approve", func(t *testing.T) {
		review := newReview(business.ID)
		require.NoError(t, repo.Create(ctx, review))

		require.NoError(t, repo.QueueManualReview(ctx, review.ID, "y-ext-7", 0.72, "medium"))

		got, err := repo.Get(ctx, review.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.VerificationStatusPendingManual, got.Status)
		assert.Equal(t, "y-ext-7", got.CandidateExternalID)

		require.NoError(t, repo.ResolveManual(ctx, review.ID, domain.ResolutionApprove, "ops@reviewproof.io"))

		got, err = repo.Get(ctx, review.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.VerificationStatusVerified, got.Status)
		assert.Equal(t, "ops@reviewproof.io", got.ResolvedBy)
		require.NotNil(t, got.VerifiedAt)
	})

	t.Run("ResolveManual reject", func(t *testing.T) {
		review := newReview(business.ID)
		require.NoError(t, repo.Create(ctx, review))
		require.NoError(t, repo.QueueManualReview(ctx, review.ID, "", 0.55, "medium"))

		require.NoError(t, repo.ResolveManual(ctx, review.ID, domain.ResolutionReject, "ops@reviewproof.io"))

		got, err := repo.Get(ctx, review.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.VerificationStatusRejected, got.Status)
		assert.Nil(t, got.VerifiedAt)
	})

	t.Run("ResolveManual outside queue returns invalid transition", func(t *testing.T) {
		review := newReview(business.ID)
		require.NoError(t, repo.Create(ctx, review))

		err := repo.ResolveManual(ctx, review.ID, domain.ResolutionApprove, "ops@reviewproof.io")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("ListUnverified returns oldest first", func(t *testing.T) {
		cleanTable(t, "submitted_reviews")

		older := newReview(business.ID)
		older.SubmittedAt = time.Now().UTC().Add(-48 * time.Hour).Truncate(time.Microsecond)
		require.NoError(t, repo.Create(ctx, older))

		newer := newReview(business.ID)
		require.NoError(t, repo.Create(ctx, newer))

		verified := newReview(business.ID)
		require.NoError(t, repo.Create(ctx, verified))
		require.NoError(t, repo.MarkVerified(ctx, verified.ID, "g-ext-9", domain.FeedTypeGooglePlaces, 0.9, "high"))

		reviews, err := repo.ListUnverified(ctx, business.ID, 10)
		require.NoError(t, err)
		require.Len(t, reviews, 2)
		assert.Equal(t, older.ID, reviews[0].ID)
		assert.Equal(t, newer.ID, reviews[1].ID)
	})

	t.Run("List with status filter", func(t *testing.T) {
		reviews, total, err := repo.List(ctx, repository.ReviewFilter{
			BusinessID: business.ID,
			Status:     []domain.VerificationStatus{domain.VerificationStatusVerified},
			Limit:      10,
		})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, int(total), 1)
		for _, r := range reviews {
			assert.Equal(t, domain.VerificationStatusVerified, r.Status)
		}
	})

	t.Run("CountByStatus groups the business's reviews", func(t *testing.T) {
		cleanTable(t, "submitted_reviews")

		for i := 0; i < 3; i++ {
			require.NoError(t, repo.Create(ctx, newReview(business.ID)))
		}
		verified := newReview(business.ID)
		require.NoError(t, repo.Create(ctx, verified))
		require.NoError(t, repo.MarkVerified(ctx, verified.ID, "g-ext-11", domain.FeedTypeGooglePlaces, 0.92, "high"))

		counts, err := repo.CountByStatus(ctx, business.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), counts[domain.VerificationStatusUnverified])
		assert.Equal(t, int64(1), counts[domain.VerificationStatusVerified])
		assert.NotContains(t, counts, domain.VerificationStatusPendingManual)
	})
}

func TestPgSweepRepository_Integration(t *testing.T) {
	cleanTable(t, "businesses", "sweep_records")
	businessRepo := repository.NewPgBusinessRepository(testPool)
	repo := repository.NewPgSweepRepository(testPool)
	ctx := context.Background()

	business := newBusiness("acct-sweeps")
	require.NoError(t, businessRepo.Create(ctx, business))

	newSweep := func() *domain.SweepRecord {
		return &domain.SweepRecord{
			ID:         uuid.New(),
			BusinessID: business.ID,
			Status:     domain.SweepStatusRunning,
			StartedAt:  time.Now().UTC().Truncate(time.Microsecond),
		}
	}

	t.Run("Create and Get roundtrip", func(t *testing.T) {
		sweep := newSweep()
		require.NoError(t, repo.Create(ctx, sweep))

		got, err := repo.Get(ctx, sweep.ID)
		require.NoError(t, err)
		assert.Equal(t, sweep.ID, got.ID)
		assert.Equal(t, domain.SweepStatusRunning, got.Status)
		assert.Nil(t, got.CompletedAt)
	})

	t.Run("Complete records counters and completion time", func(t *testing.T) {
		sweep := newSweep()
		require.NoError(t, repo.Create(ctx, sweep))

		err := repo.Complete(ctx, sweep.ID, domain.SweepStatusCompleted, 12, 8, 3, 40)
		require.NoError(t, err)

		got, err := repo.Get(ctx, sweep.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.SweepStatusCompleted, got.Status)
		assert.Equal(t, 12, got.ReviewsChecked)
		assert.Equal(t, 8, got.ReviewsVerified)
		assert.Equal(t, 3, got.ReviewsQueued)
		assert.Equal(t, 40, got.CandidatesFetched)
		require.NotNil(t, got.CompletedAt)
		assert.Positive(t, got.Duration())
	})

	t.Run("Fail records error message", func(t *testing.T) {
		sweep := newSweep()
		require.NoError(t, repo.Create(ctx, sweep))

		err := repo.Fail(ctx, sweep.ID, "google_places: rate limited")
		require.NoError(t, err)

		got, err := repo.Get(ctx, sweep.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.SweepStatusFailed, got.Status)
		assert.Equal(t, "google_places: rate limited", got.ErrorMessage)
		require.NotNil(t, got.CompletedAt)
	})

	t.Run("ListByBusiness returns newest first", func(t *testing.T) {
		cleanTable(t, "sweep_records")

		first := newSweep()
		first.StartedAt = time.Now().UTC().Add(-2 * time.Hour).Truncate(time.Microsecond)
		require.NoError(t, repo.Create(ctx, first))

		second := newSweep()
		require.NoError(t, repo.Create(ctx, second))

		sweeps, err := repo.ListByBusiness(ctx, business.ID, 10, 0)
		require.NoError(t, err)
		require.Len(t, sweeps, 2)
		assert.Equal(t, second.ID, sweeps[0].ID)
		assert.Equal(t, first.ID, sweeps[1].ID)
	})
}
