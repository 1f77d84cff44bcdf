package matching

import (
	"strings"

	"github.com/hbollon/go-edlib"
)

// Weights for the combined similarity score. Character-level closeness is
// favored over bag-of-words overlap so near-duplicate strings dominate
// subtitle reorderings.
const (
	editDistanceWeight = 0.6
	tokenOverlapWeight = 0.4
)

// minTokenLength filters short filler tokens ("of", "the", roman "ii" stays
// out too) from the token-overlap signal.
const minTokenLength = 2

// EditDistanceScore returns 1 - levenshtein(a,b)/max(len(a),len(b)) on
// already-normalized titles. Two empty strings score 0, not 1, to avoid a
// false positive on two empty titles.
func EditDistanceScore(a, b string) float64 {
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 0
	}
	dist := edlib.LevenshteinDistance(a, b)
	return 1 - float64(dist)/float64(maxLen)
}

// TokenOverlapScore returns the Jaccard similarity of the whitespace-split
// token sets of a and b, ignoring tokens of minTokenLength runes or fewer.
// An empty union scores 0.
func TokenOverlapScore(a, b string) float64 {
	tokensA := tokenSet(a)
	tokensB := tokenSet(b)

	intersection := 0
	union := len(tokensB)
	for tok := range tokensA {
		if _, ok := tokensB[tok]; ok {
			intersection++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// CombinedScore blends the edit-distance and token-overlap signals.
func CombinedScore(a, b string) float64 {
	return editDistanceWeight*EditDistanceScore(a, b) + tokenOverlapWeight*TokenOverlapScore(a, b)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		if len([]rune(tok)) > minTokenLength {
			set[tok] = struct{}{}
		}
	}
	return set
}
