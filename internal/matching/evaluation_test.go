package matching

import "testing"

func TestMetricsZeroDenominators(t *testing.T) {
	precision, recall, f1 := Metrics(0, 0, 0)
	if precision != 0 || recall != 0 || f1 != 0 {
		t.Fatalf("expected all-zero metrics, got p=%v r=%v f1=%v", precision, recall, f1)
	}
}

func TestMetricsKnownValues(t *testing.T) {
	precision, recall, f1 := Metrics(8, 2, 2)
	if !almostEqual(precision, 0.8) || !almostEqual(recall, 0.8) || !almostEqual(f1, 0.8) {
		t.Fatalf("unexpected metrics p=%v r=%v f1=%v", precision, recall, f1)
	}
}

func TestEvaluateStrategyPerfectMatching(t *testing.T) {
	dataset := []LabeledGame{
		{Title: "Celeste", ExpectedExternalID: "1"},
		{Title: "Hades", ExpectedExternalID: "2"},
		{Title: "Obscure Console Exclusive"},
	}
	outcomes := []StrategyOutcome{
		{Title: "Celeste", Matched: true, MatchedGameID: "1", Score: 1},
		{Title: "Hades", Matched: true, MatchedGameID: "2", Score: 1},
		{Title: "Obscure Console Exclusive", Matched: false},
	}

	eval := EvaluateStrategy(StrategyExact, dataset, outcomes)
	if eval.TruePositives != 2 || eval.FalsePositives != 0 || eval.FalseNegatives != 0 {
		t.Fatalf("unexpected counts: %+v", eval)
	}
	if eval.Precision != 1.0 || eval.Recall != 1.0 || eval.F1 != 1.0 {
		t.Fatalf("expected perfect metrics, got %+v", eval)
	}
	if eval.MatchedGames != 2 || eval.UnmatchedGames != 1 {
		t.Fatalf("unexpected matched/unmatched counts: %+v", eval)
	}
}

func TestEvaluateStrategyZeroRecallWhenNothingMatched(t *testing.T) {
	dataset := []LabeledGame{
		{Title: "Celeste", ExpectedExternalID: "1"},
		{Title: "Hades", ExpectedExternalID: "2"},
	}
	outcomes := []StrategyOutcome{
		{Title: "Celeste", Matched: false},
		{Title: "Hades", Matched: false},
	}

	eval := EvaluateStrategy(StrategyFuzzy, dataset, outcomes)
	if eval.Recall != 0 {
		t.Fatalf("expected zero recall, got %v", eval.Recall)
	}
	if eval.FalseNegatives != 2 {
		t.Fatalf("expected 2 false negatives, got %d", eval.FalseNegatives)
	}
}

func TestEvaluateStrategyWrongIDCountsBothWays(t *testing.T) {
	dataset := []LabeledGame{{Title: "Celeste", ExpectedExternalID: "1"}}
	outcomes := []StrategyOutcome{{Title: "Celeste", Matched: true, MatchedGameID: "999"}}

	eval := EvaluateStrategy(StrategyHybrid, dataset, outcomes)
	if eval.FalsePositives != 1 || eval.FalseNegatives != 1 || eval.TruePositives != 0 {
		t.Fatalf("expected wrong id to count as FP and FN, got %+v", eval)
	}
}

func TestEvaluateStrategyUnexpectedMatchIsFalsePositive(t *testing.T) {
	dataset := []LabeledGame{{Title: "Obscure Console Exclusive"}}
	outcomes := []StrategyOutcome{{Title: "Obscure Console Exclusive", Matched: true, MatchedGameID: "7"}}

	eval := EvaluateStrategy(StrategyFuzzy, dataset, outcomes)
	if eval.FalsePositives != 1 || eval.FalseNegatives != 0 {
		t.Fatalf("expected lone false positive, got %+v", eval)
	}
}

func TestCompareStrategiesIndependentWinners(t *testing.T) {
	exact := Evaluation{Strategy: StrategyExact, Precision: 1.0, Recall: 0.4, F1: 0.57}
	fuzzy := Evaluation{Strategy: StrategyFuzzy, Precision: 0.7, Recall: 0.9, F1: 0.79}
	hybrid := Evaluation{Strategy: StrategyHybrid, Precision: 0.8, Recall: 0.85, F1: 0.82}

	cmp := CompareStrategies(exact, fuzzy, hybrid)
	if cmp.BestPrecision.Strategy != StrategyExact {
		t.Fatalf("expected exact to win precision, got %s", cmp.BestPrecision.Strategy)
	}
	if cmp.BestRecall.Strategy != StrategyFuzzy {
		t.Fatalf("expected fuzzy to win recall, got %s", cmp.BestRecall.Strategy)
	}
	if cmp.BestF1.Strategy != StrategyHybrid {
		t.Fatalf("expected hybrid to win f1, got %s", cmp.BestF1.Strategy)
	}
	if len(cmp.Evaluations) != 3 {
		t.Fatalf("expected 3 evaluations in summary, got %d", len(cmp.Evaluations))
	}
}
