package bench

import (
	"sort"
	"time"
)

// QueryMetric holds the averaged measurements for one query under one
// strategy.
type QueryMetric struct {
	Strategy            string        `json:"strategy"`
	Query               string        `json:"query"`
	Latency             time.Duration `json:"latency"`
	PromptTokens        int           `json:"prompt_tokens"`
	CompletionTokens    int           `json:"completion_tokens"`
	TotalTokens         int           `json:"total_tokens"`
	ParseSuccess        bool          `json:"parse_success"`
	FieldCompletionRate float64       `json:"field_completion_rate"`
	Error               string        `json:"error,omitempty"`
}

// StrategyResult collects metrics for one strategy across all queries.
type StrategyResult struct {
	Strategy string        `json:"strategy"`
	Queries  []QueryMetric `json:"queries"`

	// TokenReductionPct is filled in against the baseline by Report.
	TokenReductionPct float64 `json:"token_reduction_pct"`
}

// AvgLatency averages latency over error-free queries.
func (r *StrategyResult) AvgLatency() time.Duration {
	var sum time.Duration
	n := 0
	for _, q := range r.Queries {
		if q.Error == "" {
			sum += q.Latency
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / time.Duration(n)
}

// AvgTotalTokens averages total token usage over error-free queries.
func (r *StrategyResult) AvgTotalTokens() float64 {
	sum := 0
	n := 0
	for _, q := range r.Queries {
		if q.Error == "" {
			sum += q.TotalTokens
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// ParseSuccessRate returns the fraction of queries that parsed, in percent.
func (r *StrategyResult) ParseSuccessRate() float64 {
	if len(r.Queries) == 0 {
		return 0
	}
	ok := 0
	for _, q := range r.Queries {
		if q.ParseSuccess {
			ok++
		}
	}
	return float64(ok) / float64(len(r.Queries)) * 100
}

// AvgFieldCompletionRate averages field completion over parsed queries.
func (r *StrategyResult) AvgFieldCompletionRate() float64 {
	sum := 0.0
	n := 0
	for _, q := range r.Queries {
		if q.ParseSuccess {
			sum += q.FieldCompletionRate
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Results holds every strategy's result for one benchmark run.
type Results struct {
	RunID      string            `json:"run_id"`
	Model      string            `json:"model"`
	Strategies []*StrategyResult `json:"strategies"`
	Baseline   string            `json:"baseline"`
}

// BaselineResult returns the baseline strategy's result, or nil.
func (r *Results) BaselineResult() *StrategyResult {
	for _, s := range r.Strategies {
		if s.Strategy == r.Baseline {
			return s
		}
	}
	return nil
}

// Ranking is one row of the report's strategy ranking table.
type Ranking struct {
	Strategy            string  `json:"strategy"`
	TokenReductionPct   float64 `json:"token_reduction_pct"`
	LatencyImpactPct    float64 `json:"latency_impact_pct"`
	ParseSuccessRate    float64 `json:"parse_success_rate"`
	FieldCompletionRate float64 `json:"field_completion_rate"`
}

// Report summarizes a benchmark run with rankings and recommendations.
type Report struct {
	Results         *Results          `json:"results"`
	TotalQueries    int               `json:"total_queries"`
	BaselineTokens  float64           `json:"baseline_avg_tokens"`
	BaselineLatency time.Duration     `json:"baseline_avg_latency"`
	Rankings        []Ranking         `json:"rankings"`
	Recommendations map[string]string `json:"recommendations"`
}

// balancedReductionThreshold is the minimum token reduction (percent) a
// strategy needs to qualify for the balanced-choice recommendation.
const balancedReductionThreshold = 15.0

// NewReport computes token reductions against the baseline, ranks strategies
// by reduction, and derives recommendations.
func NewReport(results *Results) *Report {
	report := &Report{
		Results:         results,
		Recommendations: make(map[string]string),
	}

	baseline := results.BaselineResult()
	if baseline == nil {
		return report
	}
	report.TotalQueries = len(baseline.Queries)
	report.BaselineTokens = baseline.AvgTotalTokens()
	report.BaselineLatency = baseline.AvgLatency()

	for _, s := range results.Strategies {
		if s.Strategy == results.Baseline {
			continue
		}
		if report.BaselineTokens > 0 {
			s.TokenReductionPct = (report.BaselineTokens - s.AvgTotalTokens()) / report.BaselineTokens * 100
		}
	}

	sorted := make([]*StrategyResult, len(results.Strategies))
	copy(sorted, results.Strategies)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TokenReductionPct > sorted[j].TokenReductionPct
	})

	for _, s := range sorted {
		rank := Ranking{
			Strategy:            s.Strategy,
			TokenReductionPct:   s.TokenReductionPct,
			ParseSuccessRate:    s.ParseSuccessRate(),
			FieldCompletionRate: s.AvgFieldCompletionRate(),
		}
		if report.BaselineLatency > 0 {
			rank.LatencyImpactPct = float64(s.AvgLatency()-report.BaselineLatency) / float64(report.BaselineLatency) * 100
		}
		report.Rankings = append(report.Rankings, rank)
	}

	report.recommend(sorted, baseline)
	return report
}

func (r *Report) recommend(sorted []*StrategyResult, baseline *StrategyResult) {
	if len(sorted) == 0 {
		return
	}

	best := sorted[0]
	for _, s := range sorted {
		if s.TokenReductionPct > best.TokenReductionPct {
			best = s
		}
	}
	r.Recommendations["max_token_reduction"] = best.Strategy

	fastest := sorted[0]
	for _, s := range sorted {
		if s.AvgLatency() < fastest.AvgLatency() {
			fastest = s
		}
	}
	r.Recommendations["minimal_latency"] = fastest.Strategy

	reliable := sorted[0]
	for _, s := range sorted {
		if s.ParseSuccessRate() > reliable.ParseSuccessRate() {
			reliable = s
		}
	}
	r.Recommendations["highest_reliability"] = reliable.Strategy

	// Balanced choice: meaningful token savings with the least latency drift
	// from the baseline.
	var balanced *StrategyResult
	baselineLatency := baseline.AvgLatency()
	for _, s := range sorted {
		if s.TokenReductionPct <= balancedReductionThreshold || baselineLatency == 0 {
			continue
		}
		if balanced == nil {
			balanced = s
			continue
		}
		drift := func(c *StrategyResult) float64 {
			d := float64(c.AvgLatency() - baselineLatency)
			if d < 0 {
				d = -d
			}
			return d / float64(baselineLatency)
		}
		if drift(s) < drift(balanced) {
			balanced = s
		}
	}
	if balanced == nil {
		balanced = sorted[0]
	}
	r.Recommendations["balanced_choice"] = balanced.Strategy
}
