package evaldata

import (
	"context"
	"log/slog"

	"game-deals-service/internal/domain/deals"
	"game-deals-service/internal/domain/games"
	"game-deals-service/internal/logging"
	"game-deals-service/internal/matching"
	"game-deals-service/internal/providers"
)

// Runner evaluates every matching strategy over a labeled dataset using a
// deals provider as the candidate source.
type Runner struct {
	provider providers.DealProvider
	logger   *slog.Logger
}

// NewRunner constructs a Runner.
func NewRunner(provider providers.DealProvider, logger *slog.Logger) *Runner {
	return &Runner{provider: provider, logger: logger}
}

// Run fetches candidates once per dataset entry, scores them under each
// strategy and returns the cross-strategy comparison. A fetch failure fails
// the whole run: a report over partial candidates would misstate recall.
func (r *Runner) Run(ctx context.Context, dataset []matching.LabeledGame) (matching.Comparison, error) {
	strategies := []matching.Strategy{matching.StrategyExact, matching.StrategyFuzzy, matching.StrategyHybrid}
	outcomes := make(map[matching.Strategy][]matching.StrategyOutcome, len(strategies))

	for _, item := range dataset {
		if err := ctx.Err(); err != nil {
			return matching.Comparison{}, err
		}

		rows, err := r.provider.SearchDeals(ctx, item.Title)
		if err != nil {
			return matching.Comparison{}, err
		}
		candidates := deals.Candidates(rows)

		game := games.Game{Title: item.Title, ReleaseDate: item.ReleaseDate, Platforms: item.Platforms}
		query := matching.MatchQuery{
			Title:              game.Title,
			ReleaseDate:        game.ReleaseDate,
			HasDesktopPlatform: game.HasDesktopPlatform(),
		}

		for _, strategy := range strategies {
			result := matching.SelectBestMatch(query, candidates, strategy)
			outcomes[strategy] = append(outcomes[strategy], matching.StrategyOutcome{
				Title:         item.Title,
				Matched:       result.Matched,
				MatchedGameID: result.ExternalGameID,
				MatchedTitle:  result.ExternalTitle,
				Score:         result.Score,
			})
		}
	}

	evaluations := make([]matching.Evaluation, 0, len(strategies))
	for _, strategy := range strategies {
		eval := matching.EvaluateStrategy(strategy, dataset, outcomes[strategy])
		evaluations = append(evaluations, eval)
		logging.Info(r.logger, "strategy evaluated",
			logging.FieldStrategy, string(strategy),
			"precision", eval.Precision, "recall", eval.Recall, "f1", eval.F1)
	}
	return matching.CompareStrategies(evaluations...), nil
}
