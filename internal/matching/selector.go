package matching

import "github.com/reviewproof/review-verification-service/internal/domain"

// BestMatch pairs a qualifying MatchResult with the external review that
// produced it.
type BestMatch struct {
	ExternalReviewID string          `json:"external_review_id"`
	Feed             domain.FeedType `json:"feed"`
	Result           MatchResult     `json:"result"`
}

// CandidateScore is the scored outcome for a single candidate, qualifying
// or not. Callers use the full list to surface ambiguous near-misses for
// manual review.
type CandidateScore struct {
	ExternalReviewID string          `json:"external_review_id"`
	Feed             domain.FeedType `json:"feed"`
	Result           MatchResult     `json:"result"`
}

// FindBestMatch scores every candidate against the submitted review and
// returns the qualifying candidate with the strictly highest score.
//
// Only candidates with IsMatch true are retained. When several qualifying
// candidates share the maximum score, the first one in input order wins;
// the tie-break is deliberate and deterministic. Returns nil when no
// candidate qualifies, which is a normal outcome, not a fault: the caller
// leaves the review unverified and may surface near-misses for manual
// review using ScoreAll.
func (s *Scorer) FindBestMatch(submitted domain.SubmittedReview, candidates []domain.ExternalReview) *BestMatch {
	var best *BestMatch

	for _, candidate := range candidates {
		result := s.Score(submitted, candidate)
		if !result.IsMatch {
			continue
		}

		// Strict inequality keeps the earliest candidate on ties.
		if best == nil || result.Score > best.Result.Score {
			best = &BestMatch{
				ExternalReviewID: candidate.ID,
				Feed:             candidate.Feed,
				Result:           result,
			}
		}
	}

	return best
}

// ScoreAll scores every candidate and returns the results in input order.
// Unlike FindBestMatch it does not filter: non-matching and ambiguous
// candidates are included so callers can inspect raw scores.
func (s *Scorer) ScoreAll(submitted domain.SubmittedReview, candidates []domain.ExternalReview) []CandidateScore {
	scores := make([]CandidateScore, 0, len(candidates))

	for _, candidate := range candidates {
		scores = append(scores, CandidateScore{
			ExternalReviewID: candidate.ID,
			Feed:             candidate.Feed,
			Result:           s.Score(submitted, candidate),
		})
	}

	return scores
}

// BestCandidate returns the highest-scoring entry of scores regardless of
// match status, preferring earlier entries on ties. Returns nil for an
// empty list. It backs the manual-review queue, which records the nearest
// miss even when nothing qualified.
func BestCandidate(scores []CandidateScore) *CandidateScore {
	var best *CandidateScore

	for i := range scores {
		if best == nil || scores[i].Result.Score > best.Result.Score {
			best = &scores[i]
		}
	}

	return best
}
