package matching

import (
	"regexp"
	"strings"
)

var (
	nonWordPattern    = regexp.MustCompile(`[^\w\s]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// TextSimilarity compares two review bodies and returns a similarity score
// between 0.0 and 1.0.
//
// Both texts are normalized first: lowercased, stripped of everything that
// is not a word character or whitespace, whitespace runs collapsed to a
// single space, and trimmed. Equal normalized texts score 1.0; otherwise
// the score is a weighted combination of whole-text similarity and
// opening-prefix similarity. Externally posted reviews are sometimes
// lightly edited or truncated by the hosting platform, and the opening
// sentence is the least likely part to change.
func TextSimilarity(text1, text2 string) float64 {
	n1 := normalizeText(text1)
	n2 := normalizeText(text2)

	if n1 == n2 {
		return 1.0
	}

	whole := Similarity(n1, n2)
	prefix := Similarity(textPrefix(n1), textPrefix(n2))

	return WholeTextWeight*whole + PrefixTextWeight*prefix
}

// normalizeText lowercases s, removes non-word non-space characters,
// collapses whitespace runs and trims the result.
func normalizeText(s string) string {
	s = strings.ToLower(s)
	s = nonWordPattern.ReplaceAllString(s, "")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// textPrefix returns the first TextPrefixLength characters of s, or all of
// s when it is shorter.
func textPrefix(s string) string {
	runes := []rune(s)
	if len(runes) <= TextPrefixLength {
		return s
	}
	return string(runes[:TextPrefixLength])
}
