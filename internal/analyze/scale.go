package analyze

import "fmt"

// ScaleImpact answers: if prompts shrink from A tokens to B tokens, what does
// that mean at N requests?
type ScaleImpact struct {
	Requests                  int
	BaselineTokensPerRequest  float64
	OptimizedTokensPerRequest float64
	TokenReductionPct         float64

	TotalTokensBaseline  float64
	TotalTokensOptimized float64
	TotalTokensSaved     float64

	BaselineCostUSD  float64
	OptimizedCostUSD float64
	SavingsUSD       float64

	// Throughput modeling against a tokens-per-minute limit. Zero when no
	// limit was supplied.
	TPMLimit       float64
	HoursBaseline  float64
	HoursOptimized float64
	HoursSaved     float64

	// Extra requests the baseline token budget covers at the optimized rate.
	ExtraRequestsForSameBudget float64
}

// CalculateScaleImpact computes total tokens, cost, throughput hours, and
// spare capacity for a token reduction at scale. tpmLimit of zero skips
// throughput modeling.
func CalculateScaleImpact(requests int, baselineTokens, optimizedTokens, inputPricePer1M, tpmLimit float64) (*ScaleImpact, error) {
	if requests <= 0 {
		return nil, fmt.Errorf("requests must be > 0")
	}
	if baselineTokens <= 0 {
		return nil, fmt.Errorf("baseline tokens per request must be > 0")
	}
	if optimizedTokens <= 0 {
		return nil, fmt.Errorf("optimized tokens per request must be > 0")
	}
	if inputPricePer1M < 0 {
		return nil, fmt.Errorf("input price must be >= 0")
	}
	if tpmLimit < 0 {
		return nil, fmt.Errorf("tpm limit must be >= 0")
	}

	impact := &ScaleImpact{
		Requests:                  requests,
		BaselineTokensPerRequest:  baselineTokens,
		OptimizedTokensPerRequest: optimizedTokens,
		TokenReductionPct:         (baselineTokens - optimizedTokens) / baselineTokens,
		TPMLimit:                  tpmLimit,
	}

	impact.TotalTokensBaseline = float64(requests) * baselineTokens
	impact.TotalTokensOptimized = float64(requests) * optimizedTokens
	impact.TotalTokensSaved = impact.TotalTokensBaseline - impact.TotalTokensOptimized

	impact.BaselineCostUSD = impact.TotalTokensBaseline / 1_000_000 * inputPricePer1M
	impact.OptimizedCostUSD = impact.TotalTokensOptimized / 1_000_000 * inputPricePer1M
	impact.SavingsUSD = impact.BaselineCostUSD - impact.OptimizedCostUSD

	if tpmLimit > 0 {
		impact.HoursBaseline = impact.TotalTokensBaseline / tpmLimit / 60
		impact.HoursOptimized = impact.TotalTokensOptimized / tpmLimit / 60
		impact.HoursSaved = impact.HoursBaseline - impact.HoursOptimized
	}

	impact.ExtraRequestsForSameBudget = impact.TotalTokensBaseline/optimizedTokens - float64(requests)

	return impact, nil
}
