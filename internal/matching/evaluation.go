package matching

// LabeledGame is one entry of an evaluation dataset: a canonical title and
// the deals-catalog id it is expected to resolve to, or "" when the catalog
// is known to have no comparable entry.
type LabeledGame struct {
	Title              string   `json:"title"`
	ReleaseDate        string   `json:"releaseDate,omitempty"`
	Platforms          []string `json:"platforms,omitempty"`
	ExpectedExternalID string   `json:"expectedExternalId,omitempty"`
}

// StrategyOutcome pairs a dataset entry with the match the strategy produced
// for it.
type StrategyOutcome struct {
	Title         string
	Matched       bool
	MatchedGameID string
	MatchedTitle  string
	Score         float64
}

// Evaluation holds the quality metrics for one strategy over a dataset.
type Evaluation struct {
	Strategy       Strategy `json:"strategy"`
	TruePositives  int      `json:"truePositives"`
	FalsePositives int      `json:"falsePositives"`
	FalseNegatives int      `json:"falseNegatives"`
	Precision      float64  `json:"precision"`
	Recall         float64  `json:"recall"`
	F1             float64  `json:"f1"`
	TotalGames     int      `json:"totalGames"`
	MatchedGames   int      `json:"matchedGames"`
	UnmatchedGames int      `json:"unmatchedGames"`
}

// Metrics derives precision, recall and F1 from raw counts. Every metric is
// 0 when its denominator is 0.
func Metrics(truePositives, falsePositives, falseNegatives int) (precision, recall, f1 float64) {
	if truePositives+falsePositives > 0 {
		precision = float64(truePositives) / float64(truePositives+falsePositives)
	}
	if truePositives+falseNegatives > 0 {
		recall = float64(truePositives) / float64(truePositives+falseNegatives)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return precision, recall, f1
}

// EvaluateStrategy compares a strategy's outcomes against the labeled
// dataset. Matching the wrong id counts as both a false positive and a false
// negative; an agreed "no match" counts toward neither.
func EvaluateStrategy(strategy Strategy, dataset []LabeledGame, outcomes []StrategyOutcome) Evaluation {
	actual := make(map[string]StrategyOutcome, len(outcomes))
	for _, o := range outcomes {
		actual[o.Title] = o
	}

	eval := Evaluation{Strategy: strategy, TotalGames: len(dataset)}
	for _, item := range dataset {
		outcome, ok := actual[item.Title]
		if !ok {
			continue
		}

		expectedHasMatch := item.ExpectedExternalID != ""
		actualHasMatch := outcome.Matched && outcome.MatchedGameID != ""

		switch {
		case expectedHasMatch && actualHasMatch:
			if item.ExpectedExternalID == outcome.MatchedGameID {
				eval.TruePositives++
			} else {
				eval.FalsePositives++
				eval.FalseNegatives++
			}
		case expectedHasMatch && !actualHasMatch:
			eval.FalseNegatives++
		case !expectedHasMatch && actualHasMatch:
			eval.FalsePositives++
		}
	}

	eval.Precision, eval.Recall, eval.F1 = Metrics(eval.TruePositives, eval.FalsePositives, eval.FalseNegatives)
	for _, o := range outcomes {
		if o.Matched {
			eval.MatchedGames++
		}
	}
	eval.UnmatchedGames = len(outcomes) - eval.MatchedGames
	return eval
}

// BestMetric names the strategy that won one metric.
type BestMetric struct {
	Strategy Strategy `json:"strategy"`
	Value    float64  `json:"value"`
}

// Comparison summarizes all evaluated strategies and the per-metric winners.
// The winners may differ: exact tends to take precision while fuzzy or
// hybrid take recall.
type Comparison struct {
	BestF1        BestMetric   `json:"bestF1"`
	BestPrecision BestMetric   `json:"bestPrecision"`
	BestRecall    BestMetric   `json:"bestRecall"`
	Evaluations   []Evaluation `json:"evaluations"`
}

// CompareStrategies identifies the strategy with the highest F1, precision
// and recall independently. Ties keep the earlier strategy.
func CompareStrategies(evaluations ...Evaluation) Comparison {
	cmp := Comparison{Evaluations: evaluations}
	if len(evaluations) == 0 {
		return cmp
	}

	first := evaluations[0]
	cmp.BestF1 = BestMetric{Strategy: first.Strategy, Value: first.F1}
	cmp.BestPrecision = BestMetric{Strategy: first.Strategy, Value: first.Precision}
	cmp.BestRecall = BestMetric{Strategy: first.Strategy, Value: first.Recall}

	for _, e := range evaluations[1:] {
		if e.F1 > cmp.BestF1.Value {
			cmp.BestF1 = BestMetric{Strategy: e.Strategy, Value: e.F1}
		}
		if e.Precision > cmp.BestPrecision.Value {
			cmp.BestPrecision = BestMetric{Strategy: e.Strategy, Value: e.Precision}
		}
		if e.Recall > cmp.BestRecall.Value {
			cmp.BestRecall = BestMetric{Strategy: e.Strategy, Value: e.Recall}
		}
	}
	return cmp
}
