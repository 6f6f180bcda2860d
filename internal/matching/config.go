package matching

// Scoring thresholds and weights. These are product behavior, not tuning
// knobs: changing any of them changes which reviews auto-verify.
const (
	// TokenMatchThreshold is the similarity a name token pair must exceed
	// to count as matching.
	TokenMatchThreshold = 0.8

	// HighConfidenceThreshold is the overall score at or above which a
	// match is classified high confidence.
	HighConfidenceThreshold = 0.85

	// MediumConfidenceThreshold is the overall score at or above which a
	// match is classified medium confidence. Below it the result is low
	// confidence and not a match.
	MediumConfidenceThreshold = 0.70

	// AmbiguousThreshold is the floor of the "plausible candidate" band.
	// Scores in [AmbiguousThreshold, MediumConfidenceThreshold) are not
	// matches but are worth surfacing for human adjudication.
	AmbiguousThreshold = 0.60

	// DefaultMaxDaysApart is the default date-proximity window in days.
	DefaultMaxDaysApart = 7

	// NameWeight, TextWeight and DateWeight combine the three signals
	// into the overall score. Text content is the strongest identity
	// signal; name is a noisier corroborating one; date proximity is a
	// weak filter for stale or unrelated reviews.
	NameWeight = 0.3
	TextWeight = 0.5
	DateWeight = 0.2

	// WholeTextWeight and PrefixTextWeight combine whole-body similarity
	// with opening-prefix similarity. The opening sentence is the least
	// likely part of a review to be edited by the hosting platform.
	WholeTextWeight  = 0.7
	PrefixTextWeight = 0.3

	// TextPrefixLength is the number of characters of normalized text
	// compared by the prefix term.
	TextPrefixLength = 50

	// BothNamesScore is returned when first and last name tokens both match.
	BothNamesScore = 0.95

	// FirstNameOnlyScore is returned when only the first name tokens match.
	FirstNameOnlyScore = 0.7
)

// Config holds the tunable parameters of the scorer. The zero value is
// usable: NewScorer substitutes defaults for unset fields.
type Config struct {
	// MaxDaysApart is the widest allowed gap, in days, between submission
	// and external posting for the date signal to count. Callers override
	// it only for audit and backfill scenarios.
	MaxDaysApart int
}

// DefaultConfig returns a Config with the standard 7-day date window.
func DefaultConfig() Config {
	return Config{MaxDaysApart: DefaultMaxDaysApart}
}
