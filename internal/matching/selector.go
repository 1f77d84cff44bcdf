package matching

import "game-deals-service/internal/domain/deals"

// Match reasons reported on MatchResult.
const (
	ReasonNoGames  = "no_games"
	ReasonExact    = "exact"
	ReasonFuzzy    = "fuzzy"
	ReasonHybrid   = "hybrid_match"
	ReasonLowScore = "low_score"
)

// MatchQuery describes the canonical side of a match attempt.
type MatchQuery struct {
	Title              string
	ReleaseDate        string
	HasDesktopPlatform bool
}

// MatchResult reports the outcome of matching one canonical game against a
// candidate list. When Matched is false the External fields still identify
// the top-scoring candidate; that identity is diagnostic only and must not
// be treated as a match by enrichment callers.
type MatchResult struct {
	Matched        bool    `json:"matched"`
	Score          float64 `json:"score"`
	ExternalGameID string  `json:"externalGameId,omitempty"`
	ExternalTitle  string  `json:"externalTitle,omitempty"`
	Reason         string  `json:"reason,omitempty"`
}

// SelectBestMatch scores every candidate under the requested strategy and
// returns the best one. An exact normalized-title match anywhere in the list
// wins immediately with score 1.0 regardless of strategy. Otherwise the
// maximum-scoring candidate is returned even when it misses the strategy's
// threshold, with Matched reporting whether the threshold was cleared.
// Ties are broken by first-seen order.
func SelectBestMatch(query MatchQuery, candidates []deals.Candidate, strategy Strategy) MatchResult {
	if len(candidates) == 0 {
		return MatchResult{Matched: false, Score: 0, Reason: ReasonNoGames}
	}

	for _, c := range candidates {
		if ExactMatch(query.Title, c.Title) {
			return MatchResult{
				Matched:        true,
				Score:          1.0,
				ExternalGameID: c.ExternalGameID,
				ExternalTitle:  c.Title,
				Reason:         ReasonExact,
			}
		}
	}

	// Seed with the first candidate so the result always carries an
	// identity and reason, even when every score is zero.
	best := scoreCandidate(query, candidates[0], strategy)
	for _, c := range candidates[1:] {
		result := scoreCandidate(query, c, strategy)
		if result.Score > best.Score {
			best = result
		}
	}
	return best
}

func scoreCandidate(query MatchQuery, c deals.Candidate, strategy Strategy) MatchResult {
	switch strategy {
	case StrategyExact:
		// Exact matches were consumed by the scan above.
		return MatchResult{
			Matched:        false,
			Score:          0,
			ExternalGameID: c.ExternalGameID,
			ExternalTitle:  c.Title,
			Reason:         ReasonLowScore,
		}
	case StrategyFuzzy:
		matched, score := FuzzyMatch(query.Title, c.Title, FuzzyThreshold)
		return MatchResult{
			Matched:        matched,
			Score:          score,
			ExternalGameID: c.ExternalGameID,
			ExternalTitle:  c.Title,
			Reason:         ReasonFuzzy,
		}
	default:
		matched, score := HybridMatch(HybridInput{
			CanonicalTitle:       query.Title,
			CandidateTitle:       c.Title,
			CanonicalReleaseDate: query.ReleaseDate,
			CandidateReleaseDate: c.ReleaseDate,
			HasDesktopPlatform:   query.HasDesktopPlatform,
		})
		reason := ReasonHybrid
		if !matched {
			reason = ReasonLowScore
		}
		return MatchResult{
			Matched:        matched,
			Score:          score,
			ExternalGameID: c.ExternalGameID,
			ExternalTitle:  c.Title,
			Reason:         reason,
		}
	}
}
