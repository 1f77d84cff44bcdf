package matching

import (
	"game-deals-service/internal/timeutil"
)

// Strategy names a matching policy. Strategies trade recall for precision
// differently: exact never false-positives, fuzzy recovers formatting
// variants, hybrid folds in release-year and platform signals.
type Strategy string

const (
	StrategyExact  Strategy = "exact"
	StrategyFuzzy  Strategy = "fuzzy"
	StrategyHybrid Strategy = "hybrid"
)

// Default thresholds for the score-based strategies.
const (
	FuzzyThreshold  = 0.60
	HybridThreshold = 0.55
)

// Hybrid score adjustments.
const (
	sameYearBonus     = 0.10
	adjacentYearBonus = 0.05
	farYearPenalty    = 0.20
	noDesktopPenalty  = 0.15
	farYearDifference = 3
)

// ParseStrategy maps a strategy name to a Strategy, defaulting to hybrid for
// unknown input.
func ParseStrategy(name string) Strategy {
	switch Strategy(name) {
	case StrategyExact, StrategyFuzzy, StrategyHybrid:
		return Strategy(name)
	default:
		return StrategyHybrid
	}
}

// ExactMatch reports whether two titles are equal after normalization.
func ExactMatch(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// FuzzyMatch scores two titles with the combined similarity and compares
// against threshold. Normalized-equal titles short-circuit to a 1.0 score.
func FuzzyMatch(a, b string, threshold float64) (bool, float64) {
	na, nb := Normalize(a), Normalize(b)
	if na == nb {
		return true, 1.0
	}
	score := CombinedScore(na, nb)
	return score >= threshold, score
}

// HybridInput carries the auxiliary signals the hybrid strategy folds into
// the fuzzy score.
type HybridInput struct {
	CanonicalTitle       string
	CandidateTitle       string
	CanonicalReleaseDate string
	CandidateReleaseDate string
	HasDesktopPlatform   bool
	Threshold            float64 // zero means HybridThreshold
}

// HybridMatch starts from the fuzzy combined score and adjusts it using
// release-year proximity and platform availability, clamping to [0,1].
// Year comparison is skipped entirely when either date has no parseable
// year; no bonus or penalty applies in that case.
func HybridMatch(in HybridInput) (bool, float64) {
	threshold := in.Threshold
	if threshold == 0 {
		threshold = HybridThreshold
	}

	_, score := FuzzyMatch(in.CanonicalTitle, in.CandidateTitle, threshold)

	if yearA, okA := timeutil.YearOf(in.CanonicalReleaseDate); okA {
		if yearB, okB := timeutil.YearOf(in.CandidateReleaseDate); okB {
			diff := yearA - yearB
			if diff < 0 {
				diff = -diff
			}
			switch {
			case diff == 0:
				score += sameYearBonus
			case diff == 1:
				score += adjacentYearBonus
			case diff > farYearDifference:
				score -= farYearPenalty
			}
		}
	}

	if !in.HasDesktopPlatform {
		score -= noDesktopPenalty
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	return score >= threshold, score
}
