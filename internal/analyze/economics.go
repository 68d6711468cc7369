package analyze

import "fmt"

// CostModel is per-1M-token pricing for one model.
type CostModel struct {
	Name             string
	InputPricePer1M  float64 // USD per 1M input tokens
	OutputPricePer1M float64 // USD per 1M output tokens
}

// Models is the pricing reference table (Jan 2026).
var Models = map[string]CostModel{
	"gpt-4o-mini":    {Name: "GPT-4o-mini", InputPricePer1M: 0.15, OutputPricePer1M: 0.60},
	"gpt-4o":         {Name: "GPT-4o", InputPricePer1M: 5.00, OutputPricePer1M: 15.00},
	"claude-3-haiku": {Name: "Claude 3 Haiku", InputPricePer1M: 0.25, OutputPricePer1M: 1.25},
}

// Savings projects daily and annual inference cost savings from the study's
// token reduction at a given request volume and input price.
type Savings struct {
	DailyInferences int
	InputPricePer1M float64
	ModelName       string

	BaselineDailyTokens  float64
	OptimizedDailyTokens float64
	DailyTokensSaved     float64

	BaselineDailyCostUSD  float64
	OptimizedDailyCostUSD float64
	DailySavingsUSD       float64
	AnnualSavingsUSD      float64

	TokenReductionPct float64
}

// CalculateSavings projects savings for the study's combined strategy.
func CalculateSavings(study PromptStudy, dailyInferences int, inputPricePer1M float64, modelName string) (*Savings, error) {
	if dailyInferences <= 0 {
		return nil, fmt.Errorf("daily inferences must be > 0")
	}
	if inputPricePer1M < 0 {
		return nil, fmt.Errorf("input price must be >= 0")
	}

	s := &Savings{
		DailyInferences:   dailyInferences,
		InputPricePer1M:   inputPricePer1M,
		ModelName:         modelName,
		TokenReductionPct: study.CombinedReductionPct(),
	}

	s.BaselineDailyTokens = float64(dailyInferences) * float64(study.BaselineTokens)
	s.OptimizedDailyTokens = float64(dailyInferences) * float64(study.CombinedTokens)
	s.DailyTokensSaved = s.BaselineDailyTokens - s.OptimizedDailyTokens

	s.BaselineDailyCostUSD = s.BaselineDailyTokens / 1_000_000 * inputPricePer1M
	s.OptimizedDailyCostUSD = s.OptimizedDailyTokens / 1_000_000 * inputPricePer1M
	s.DailySavingsUSD = s.BaselineDailyCostUSD - s.OptimizedDailyCostUSD
	s.AnnualSavingsUSD = s.DailySavingsUSD * 365

	return s, nil
}
