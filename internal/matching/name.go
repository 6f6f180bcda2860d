package matching

import (
	"strings"
	"unicode/utf8"
)

// NameSimilarity compares two reviewer display names using token-aware
// heuristics and returns a similarity score between 0.0 and 1.0.
//
// Review platforms frequently display abbreviated names ("John S."); naive
// whole-string similarity under-scores these as non-matches, so first and
// last name tokens are compared separately:
//   - normalized-equal names score 1.0
//   - matching first and last tokens score 0.95
//   - a matching first token alone scores 0.7
//   - otherwise the score falls back to whole-string similarity
//
// Last tokens match when their similarity exceeds the token threshold, when
// one is a string prefix of the other, or when their first characters are
// equal. The first-character rule tolerates single-letter initials such as
// "Smith" vs "S.".
func NameSimilarity(name1, name2 string) float64 {
	n1 := strings.ToLower(strings.TrimSpace(name1))
	n2 := strings.ToLower(strings.TrimSpace(name2))

	if n1 == n2 {
		return 1.0
	}

	tokens1 := strings.Fields(n1)
	tokens2 := strings.Fields(n2)

	firstNameMatch := len(tokens1) > 0 && len(tokens2) > 0 &&
		Similarity(tokens1[0], tokens2[0]) > TokenMatchThreshold

	lastNameMatch := false
	if len(tokens1) > 1 && len(tokens2) > 1 {
		last1 := tokens1[len(tokens1)-1]
		last2 := tokens2[len(tokens2)-1]
		lastNameMatch = lastTokensMatch(last1, last2)
	}

	switch {
	case firstNameMatch && lastNameMatch:
		return BothNamesScore
	case firstNameMatch:
		return FirstNameOnlyScore
	default:
		return Similarity(n1, n2)
	}
}

// lastTokensMatch reports whether two last-name tokens should be treated as
// the same surname.
func lastTokensMatch(a, b string) bool {
	if Similarity(a, b) > TokenMatchThreshold {
		return true
	}
	if strings.HasPrefix(a, b) || strings.HasPrefix(b, a) {
		return true
	}

	ra, _ := utf8.DecodeRuneInString(a)
	rb, _ := utf8.DecodeRuneInString(b)
	return ra == rb
}
