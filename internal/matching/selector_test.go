package matching

import (
	"testing"
	"time"

	"github.com/reviewproof/review-verification-service/internal/domain"
)

func TestFindBestMatch_EmptyCandidates(t *testing.T) {
	t.Parallel()

	scorer := NewScorer(DefaultConfig())
	submitted := submittedReview("Sarah Johnson", "Exceptional service!", time.Now())

	if got := scorer.FindBestMatch(submitted, nil); got != nil {
		t.Errorf("FindBestMatch with no candidates = %+v, want nil", got)
	}
	if got := scorer.FindBestMatch(submitted, []domain.ExternalReview{}); got != nil {
		t.Errorf("FindBestMatch with empty slice = %+v, want nil", got)
	}
}

func TestFindBestMatch_NoQualifyingCandidate(t *testing.T) {
	t.Parallel()

	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	scorer := NewScorer(DefaultConfig())

	submitted := submittedReview("Sarah Johnson", "Exceptional service! The team went above and beyond our expectations.", date)
	candidates := []domain.ExternalReview{
		externalReview("ext-1", "Bob Lee", "Great place.", date),
		externalReview("ext-2", "Chen Wei", "Decent coffee, slow service on weekends.", date.AddDate(0, 0, 45)),
	}

	if got := scorer.FindBestMatch(submitted, candidates); got != nil {
		t.Errorf("FindBestMatch = %+v, want nil when nothing scores above the match bar", got)
	}
}

func TestFindBestMatch_SelectsHighestScore(t *testing.T) {
	t.Parallel()

	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	text := "Exceptional service! The team went above and beyond our expectations."
	scorer := NewScorer(DefaultConfig())

	submitted := submittedReview("Sarah Johnson", text, date)
	candidates := []domain.ExternalReview{
		externalReview("weaker", "Sarah J.", text+" Highly recommend.", date.AddDate(0, 0, 2)),
		externalReview("exact", "Sarah Johnson", text, date.AddDate(0, 0, 1)),
	}

	got := scorer.FindBestMatch(submitted, candidates)
	if got == nil {
		t.Fatal("expected a best match")
	}
	if got.ExternalReviewID != "exact" {
		t.Errorf("best match = %s, want the exact candidate", got.ExternalReviewID)
	}
	if got.Result.Confidence != ConfidenceHigh {
		t.Errorf("confidence = %s, want high", got.Result.Confidence)
	}
}

func TestFindBestMatch_TieBreakFirstInInputOrder(t *testing.T) {
	t.Parallel()

	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	text := "Exceptional service! The team went above and beyond."
	scorer := NewScorer(DefaultConfig())

	submitted := submittedReview("Sarah Johnson", text, date)

	// Two candidates identical in every scored field, differing only in id.
	candidates := []domain.ExternalReview{
		externalReview("first", "Sarah Johnson", text, date.AddDate(0, 0, 2)),
		externalReview("second", "Sarah Johnson", text, date.AddDate(0, 0, 2)),
	}

	got := scorer.FindBestMatch(submitted, candidates)
	if got == nil {
		t.Fatal("expected a best match")
	}
	if got.ExternalReviewID != "first" {
		t.Errorf("tie broke to %s, want first in input order", got.ExternalReviewID)
	}

	// Reversing the input must flip the winner.
	reversed := []domain.ExternalReview{candidates[1], candidates[0]}
	got = scorer.FindBestMatch(submitted, reversed)
	if got == nil {
		t.Fatal("expected a best match")
	}
	if got.ExternalReviewID != "second" {
		t.Errorf("tie broke to %s, want second (now first in input order)", got.ExternalReviewID)
	}
}

func TestFindBestMatch_EndToEnd(t *testing.T) {
	t.Parallel()

	scorer := NewScorer(DefaultConfig())

	submitted := submittedReview(
		"Sarah Johnson",
		"Exceptional service! The team went above and beyond our expectations.",
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
	)
	candidates := []domain.ExternalReview{
		externalReview(
			"gp-1001",
			"Sarah J.",
			"Exceptional service! The team went above and beyond our expectations. Highly recommend.",
			time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC),
		),
		externalReview(
			"gp-1002",
			"Bob Lee",
			"Great place.",
			time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		),
	}

	got := scorer.FindBestMatch(submitted, candidates)
	if got == nil {
		t.Fatal("expected a best match")
	}
	if got.ExternalReviewID != "gp-1001" {
		t.Errorf("best match = %s, want gp-1001", got.ExternalReviewID)
	}
	if got.Result.Confidence != ConfidenceHigh {
		t.Errorf("confidence = %s, want high", got.Result.Confidence)
	}
	if !got.Result.Details.DateInRange {
		t.Error("expected date in range")
	}
	if !got.Result.IsMatch {
		t.Error("expected IsMatch true")
	}
}

func TestScoreAll_PreservesInputOrder(t *testing.T) {
	t.Parallel()

	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	scorer := NewScorer(DefaultConfig())

	submitted := submittedReview("Sarah Johnson", "Exceptional service!", date)
	candidates := []domain.ExternalReview{
		externalReview("a", "Bob Lee", "Great place.", date),
		externalReview("b", "Sarah Johnson", "Exceptional service!", date),
		externalReview("c", "Chen Wei", "Fine.", date),
	}

	scores := scorer.ScoreAll(submitted, candidates)
	if len(scores) != 3 {
		t.Fatalf("got %d scores, want 3", len(scores))
	}
	for i, id := range []string{"a", "b", "c"} {
		if scores[i].ExternalReviewID != id {
			t.Errorf("scores[%d] = %s, want %s", i, scores[i].ExternalReviewID, id)
		}
	}
	if !scores[1].Result.IsMatch {
		t.Error("expected the identical candidate to qualify")
	}
}

func TestBestCandidate(t *testing.T) {
	t.Parallel()

	if got := BestCandidate(nil); got != nil {
		t.Errorf("BestCandidate(nil) = %+v, want nil", got)
	}

	scores := []CandidateScore{
		{ExternalReviewID: "a", Result: MatchResult{Score: 0.44}},
		{ExternalReviewID: "b", Result: MatchResult{Score: 0.66}},
		{ExternalReviewID: "c", Result: MatchResult{Score: 0.66}},
		{ExternalReviewID: "d", Result: MatchResult{Score: 0.12}},
	}

	got := BestCandidate(scores)
	if got == nil {
		t.Fatal("expected a candidate")
	}
	if got.ExternalReviewID != "b" {
		t.Errorf("BestCandidate = %s, want b (earliest at the max score)", got.ExternalReviewID)
	}
}
