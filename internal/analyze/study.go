// Package analyze holds the pure arithmetic calculators around the benchmark:
// study-derived token constants, cost economics, scale impact, and latency
// summaries. Everything here is deterministic math over inputs; no I/O.
package analyze

// PromptStudy holds prompt-only (input) token counts per request from a
// published benchmark run. Centralized so the calculators cannot drift apart.
type PromptStudy struct {
	Dataset            string
	BaselineTokens     int
	CombinedTokens     int
	ZONCombinedTokens  int
	JSONMinifiedTokens int
}

// CombinedReductionPct returns the combined strategy's fractional reduction.
func (s PromptStudy) CombinedReductionPct() float64 {
	return float64(s.BaselineTokens-s.CombinedTokens) / float64(s.BaselineTokens)
}

// ZONCombinedReductionPct returns the zon-combined fractional reduction.
func (s PromptStudy) ZONCombinedReductionPct() float64 {
	return float64(s.BaselineTokens-s.ZONCombinedTokens) / float64(s.BaselineTokens)
}

// TokensSavedPerRequest returns baseline minus combined tokens.
func (s PromptStudy) TokensSavedPerRequest() int {
	return s.BaselineTokens - s.CombinedTokens
}

// PromptStudyDefault is the reference benchmark run's prompt-only table.
var PromptStudyDefault = PromptStudy{
	Dataset:            "Shopify test store (17 products; benchmark queries)",
	BaselineTokens:     7777,
	CombinedTokens:     4836,
	ZONCombinedTokens:  5086,
	JSONMinifiedTokens: 5520,
}

// EndToEndStudy holds prompt+completion averages. Illustrative only:
// completion length is workload-dependent.
type EndToEndStudy struct {
	Dataset           string
	BaselineAvgTokens int
	CombinedAvgTokens int
}

// CombinedReductionPct returns the end-to-end fractional reduction.
func (s EndToEndStudy) CombinedReductionPct() float64 {
	return float64(s.BaselineAvgTokens-s.CombinedAvgTokens) / float64(s.BaselineAvgTokens)
}

// EndToEndStudyDefault is the reference end-to-end summary.
var EndToEndStudyDefault = EndToEndStudy{
	Dataset:           "API benchmark run summary",
	BaselineAvgTokens: 9043,
	CombinedAvgTokens: 5985,
}
