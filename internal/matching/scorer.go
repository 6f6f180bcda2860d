package matching

import (
	"math"

	"github.com/reviewproof/review-verification-service/internal/domain"
)

// Confidence classifies an overall match score into the tier downstream
// policy uses to route between automatic verification and manual review.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Details holds the individual signal scores that produced a MatchResult.
type Details struct {
	NameScore   float64 `json:"name_score"`
	TextScore   float64 `json:"text_score"`
	DateInRange bool    `json:"date_in_range"`
}

// MatchResult is the outcome of scoring one submitted review against one
// external candidate. It is a pure computed value; the engine never
// persists it.
type MatchResult struct {
	// IsMatch is true iff Confidence is high or medium.
	IsMatch bool `json:"is_match"`

	// Score is the overall weighted score, rounded to two decimals.
	Score float64 `json:"score"`

	// Confidence is the tier derived from Score.
	Confidence Confidence `json:"confidence"`

	// Details carries the per-signal scores, rounded to two decimals.
	Details Details `json:"details"`
}

// Scorer combines the name, text and date signals into a single weighted
// match score. A Scorer is immutable and safe for concurrent use.
type Scorer struct {
	cfg Config
}

// NewScorer creates a Scorer with the given configuration, substituting
// defaults for unset fields.
func NewScorer(cfg Config) *Scorer {
	if cfg.MaxDaysApart <= 0 {
		cfg.MaxDaysApart = DefaultMaxDaysApart
	}
	return &Scorer{cfg: cfg}
}

// Score computes the match result for one submitted review against one
// external candidate.
//
// The overall score is 0.3*name + 0.5*text + 0.2*(date in range ? 1 : 0).
// All three reported scores are rounded to two decimal places, and the
// confidence thresholds compare against the rounded overall score. The
// rounding is defined behavior: downstream threshold comparisons operate
// on the rounded value.
func (s *Scorer) Score(submitted domain.SubmittedReview, candidate domain.ExternalReview) MatchResult {
	nameScore := NameSimilarity(submitted.ReviewerName, candidate.ReviewerDisplayName)
	textScore := TextSimilarity(submitted.ReviewText, candidate.CommentText)
	dateInRange := DateWithinRange(submitted.SubmittedAt, candidate.PostedAt, s.cfg.MaxDaysApart)

	dateComponent := 0.0
	if dateInRange {
		dateComponent = 1.0
	}

	overall := round2(NameWeight*nameScore + TextWeight*textScore + DateWeight*dateComponent)

	confidence := classify(overall)

	return MatchResult{
		IsMatch:    confidence == ConfidenceHigh || confidence == ConfidenceMedium,
		Score:      overall,
		Confidence: confidence,
		Details: Details{
			NameScore:   round2(nameScore),
			TextScore:   round2(textScore),
			DateInRange: dateInRange,
		},
	}
}

// classify maps a rounded overall score to a confidence tier. Scores in
// [AmbiguousThreshold, MediumConfidenceThreshold) are plausible candidates
// but still classify as low; callers that want to surface them must inspect
// the score, not IsMatch.
func classify(score float64) Confidence {
	switch {
	case score >= HighConfidenceThreshold:
		return ConfidenceHigh
	case score >= MediumConfidenceThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// round2 rounds v to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
