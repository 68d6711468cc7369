package bench

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackzampolin/optbench/internal/providers"
	"github.com/jackzampolin/optbench/internal/strategy"
)

const validResponse = `{"recommendations":[{"product_id":"p1","title":"Widget","reason":"matches the query","confidence":0.9}],"total_products_reviewed":5,"answer":"The Widget fits best."}`

func testContext() map[string]any {
	return map[string]any{
		"products": []any{
			map[string]any{"id": "p1", "title": "Widget", "price": 9.99},
			map[string]any{"id": "p2", "title": "Gadget", "price": 19.99},
		},
	}
}

func mustStrategy(t *testing.T, name string) *strategy.Strategy {
	t.Helper()
	s, err := strategy.Get(name)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestAnalyzerRun(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseText = validResponse

	a, err := New(Config{
		Client:       mock,
		Strategies:   []*strategy.Strategy{mustStrategy(t, "baseline"), mustStrategy(t, "zon")},
		Model:        "openai/gpt-4o-mini",
		RunsPerQuery: 2,
	})
	if err != nil {
		t.Fatal(err)
	}

	results, err := a.Run(context.Background(), []string{"best widget?"}, testContext())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if results.RunID == "" {
		t.Error("RunID not assigned")
	}
	if len(results.Strategies) != 2 {
		t.Fatalf("strategies recorded = %d", len(results.Strategies))
	}
	for _, sr := range results.Strategies {
		if len(sr.Queries) != 1 {
			t.Fatalf("%s: queries recorded = %d", sr.Strategy, len(sr.Queries))
		}
		q := sr.Queries[0]
		if !q.ParseSuccess {
			t.Errorf("%s: parse failed: %+v", sr.Strategy, q)
		}
		if q.FieldCompletionRate != 1.0 {
			t.Errorf("%s: FieldCompletionRate = %v", sr.Strategy, q.FieldCompletionRate)
		}
		if q.TotalTokens == 0 {
			t.Errorf("%s: no token usage recorded", sr.Strategy)
		}
	}

	// 2 strategies x 1 query x 2 runs
	if mock.RequestCount() != 4 {
		t.Errorf("RequestCount() = %d, want 4", mock.RequestCount())
	}
}

func TestAnalyzerRun_RetriesOnParseError(t *testing.T) {
	mock := providers.NewMockClient()
	mock.Responses = []string{"I could not find anything useful.", validResponse}

	a, err := New(Config{
		Client:       mock,
		Strategies:   []*strategy.Strategy{mustStrategy(t, "baseline")},
		RunsPerQuery: 1,
		ParseRetries: 2,
	})
	if err != nil {
		t.Fatal(err)
	}

	results, err := a.Run(context.Background(), []string{"best widget?"}, testContext())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	q := results.Strategies[0].Queries[0]
	if !q.ParseSuccess {
		t.Fatalf("parse should succeed on the second attempt: %+v", q)
	}
	if mock.RequestCount() != 2 {
		t.Errorf("RequestCount() = %d, want 2 (one re-ask)", mock.RequestCount())
	}
}

func TestAnalyzerRun_ParseFailureRecorded(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ResponseText = `{"answer": "partial only"}`

	a, err := New(Config{
		Client:       mock,
		Strategies:   []*strategy.Strategy{mustStrategy(t, "baseline")},
		RunsPerQuery: 1,
		ParseRetries: 1,
	})
	if err != nil {
		t.Fatal(err)
	}

	results, err := a.Run(context.Background(), []string{"best widget?"}, testContext())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	q := results.Strategies[0].Queries[0]
	if q.ParseSuccess {
		t.Fatal("parse should fail on an incomplete response")
	}
	if q.Error != "" {
		t.Errorf("parse failure should not count as a transport error: %q", q.Error)
	}
	// answer present, recommendations and total_products_reviewed missing.
	if q.FieldCompletionRate <= 0 || q.FieldCompletionRate >= 1 {
		t.Errorf("FieldCompletionRate = %v, want partial credit", q.FieldCompletionRate)
	}
}

func TestNewReport(t *testing.T) {
	results := &Results{
		Baseline: "baseline",
		Strategies: []*StrategyResult{
			{
				Strategy: "baseline",
				Queries: []QueryMetric{
					{TotalTokens: 1000, Latency: 100 * time.Millisecond, ParseSuccess: true, FieldCompletionRate: 1},
					{TotalTokens: 1200, Latency: 120 * time.Millisecond, ParseSuccess: true, FieldCompletionRate: 1},
				},
			},
			{
				Strategy: "zon",
				Queries: []QueryMetric{
					{TotalTokens: 600, Latency: 105 * time.Millisecond, ParseSuccess: true, FieldCompletionRate: 1},
					{TotalTokens: 700, Latency: 110 * time.Millisecond, ParseSuccess: true, FieldCompletionRate: 1},
				},
			},
			{
				Strategy: "toon-strict",
				Queries: []QueryMetric{
					{TotalTokens: 800, Latency: 90 * time.Millisecond, ParseSuccess: false, FieldCompletionRate: 0.4},
					{TotalTokens: 820, Latency: 95 * time.Millisecond, ParseSuccess: true, FieldCompletionRate: 1},
				},
			},
		},
	}

	report := NewReport(results)

	if report.TotalQueries != 2 {
		t.Errorf("TotalQueries = %d", report.TotalQueries)
	}
	if report.BaselineTokens != 1100 {
		t.Errorf("BaselineTokens = %v", report.BaselineTokens)
	}

	// zon: (1100-650)/1100 ≈ 40.9% reduction, ranked first.
	if report.Rankings[0].Strategy != "zon" {
		t.Errorf("top ranking = %q", report.Rankings[0].Strategy)
	}
	if r := report.Rankings[0].TokenReductionPct; r < 40 || r > 42 {
		t.Errorf("zon TokenReductionPct = %v", r)
	}

	if got := report.Recommendations["max_token_reduction"]; got != "zon" {
		t.Errorf("max_token_reduction = %q", got)
	}
	if got := report.Recommendations["highest_reliability"]; got != "baseline" && got != "zon" {
		t.Errorf("highest_reliability = %q", got)
	}
	if got := report.Recommendations["balanced_choice"]; got != "zon" {
		t.Errorf("balanced_choice = %q, want the >15%% reduction with least latency drift", got)
	}
}

func TestSystemPrompt_GrammarRules(t *testing.T) {
	sig := ResponseSignature()

	zon := mustStrategy(t, "zon")
	prompt := systemPrompt(sig, zon)
	if !strings.Contains(prompt, "ZON Format") {
		t.Errorf("zon prompt missing grammar rules: %q", prompt)
	}
	if !strings.Contains(prompt, "recommendations: list[{product_id: string, title: string, reason: string, confidence: float}]") {
		t.Errorf("prompt missing field structure: %q", prompt)
	}

	baseline := mustStrategy(t, "baseline")
	if !strings.Contains(systemPrompt(sig, baseline), "JSON Format") {
		t.Error("baseline prompt missing JSON rules")
	}
}

func TestFieldCompletion(t *testing.T) {
	sig := ResponseSignature()

	full := map[string]any{
		"recommendations": []any{
			map[string]any{"product_id": "p1", "title": "t", "reason": "r", "confidence": 0.5},
		},
		"total_products_reviewed": int64(3),
		"answer":                  "x",
	}
	if got := fieldCompletion(sig, full); got != 1.0 {
		t.Errorf("fieldCompletion(full) = %v", got)
	}

	halfRecs := map[string]any{
		"recommendations": []any{
			map[string]any{"product_id": "p1", "title": "t"}, // 2 of 4 sub-fields
		},
		"total_products_reviewed": int64(3),
		"answer":                  "x",
	}
	// (0.5 + 1 + 1) / 3
	if got := fieldCompletion(sig, halfRecs); got < 0.83 || got > 0.84 {
		t.Errorf("fieldCompletion(halfRecs) = %v", got)
	}

	if got := fieldCompletion(sig, map[string]any{}); got != 0 {
		t.Errorf("fieldCompletion(empty) = %v", got)
	}
}
