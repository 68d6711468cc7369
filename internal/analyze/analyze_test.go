package analyze

import (
	"math"
	"testing"
	"time"
)

func approx(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestPromptStudyReductions(t *testing.T) {
	s := PromptStudyDefault
	approx(t, "CombinedReductionPct", s.CombinedReductionPct(), 0.378, 0.001)
	approx(t, "ZONCombinedReductionPct", s.ZONCombinedReductionPct(), 0.346, 0.001)
	if s.TokensSavedPerRequest() != 2941 {
		t.Errorf("TokensSavedPerRequest = %d", s.TokensSavedPerRequest())
	}
}

func TestEndToEndStudyReduction(t *testing.T) {
	approx(t, "CombinedReductionPct", EndToEndStudyDefault.CombinedReductionPct(), 0.338, 0.001)
}

func TestCalculateSavings(t *testing.T) {
	// 1M daily requests at GPT-4o-mini input pricing.
	s, err := CalculateSavings(PromptStudyDefault, 1_000_000, Models["gpt-4o-mini"].InputPricePer1M, "gpt-4o-mini")
	if err != nil {
		t.Fatal(err)
	}

	approx(t, "BaselineDailyCostUSD", s.BaselineDailyCostUSD, 1166.55, 0.01)
	approx(t, "OptimizedDailyCostUSD", s.OptimizedDailyCostUSD, 725.40, 0.01)
	approx(t, "DailySavingsUSD", s.DailySavingsUSD, 441.15, 0.01)
	approx(t, "AnnualSavingsUSD", s.AnnualSavingsUSD, 161019.75, 0.01)
	if s.DailyTokensSaved != 2_941_000_000 {
		t.Errorf("DailyTokensSaved = %v", s.DailyTokensSaved)
	}
}

func TestCalculateSavings_Validation(t *testing.T) {
	if _, err := CalculateSavings(PromptStudyDefault, 0, 0.15, "x"); err == nil {
		t.Error("zero inferences accepted")
	}
	if _, err := CalculateSavings(PromptStudyDefault, 100, -1, "x"); err == nil {
		t.Error("negative price accepted")
	}
}

func TestCalculateScaleImpact(t *testing.T) {
	impact, err := CalculateScaleImpact(1_000_000, 7777, 4836, 0.15, 2_000_000)
	if err != nil {
		t.Fatal(err)
	}

	approx(t, "TokenReductionPct", impact.TokenReductionPct, 0.378, 0.001)
	if impact.TotalTokensSaved != 2_941_000_000 {
		t.Errorf("TotalTokensSaved = %v", impact.TotalTokensSaved)
	}
	approx(t, "SavingsUSD", impact.SavingsUSD, 441.15, 0.01)
	// 7.777B tokens / 2M tpm = 3888.5 min = 64.8 hours baseline.
	approx(t, "HoursBaseline", impact.HoursBaseline, 64.8, 0.01)
	approx(t, "HoursSaved", impact.HoursSaved, 24.5, 0.01)
	// 7.777B / 4836 per request ≈ 1.608M requests for the old budget.
	approx(t, "ExtraRequestsForSameBudget", impact.ExtraRequestsForSameBudget, 608_147, 1)
}

func TestCalculateScaleImpact_NoTPMLimit(t *testing.T) {
	impact, err := CalculateScaleImpact(100, 1000, 500, 0.15, 0)
	if err != nil {
		t.Fatal(err)
	}
	if impact.HoursBaseline != 0 || impact.HoursSaved != 0 {
		t.Errorf("throughput modeled without a limit: %+v", impact)
	}
}

func TestCalculateScaleImpact_Validation(t *testing.T) {
	cases := []struct {
		name                                string
		requests                            int
		baseline, optimized, price, tpm     float64
	}{
		{"zero requests", 0, 1000, 500, 0.15, 0},
		{"zero baseline", 100, 0, 500, 0.15, 0},
		{"zero optimized", 100, 1000, 0, 0.15, 0},
		{"negative price", 100, 1000, 500, -1, 0},
		{"negative tpm", 100, 1000, 500, 0.15, -1},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CalculateScaleImpact(tt.requests, tt.baseline, tt.optimized, tt.price, tt.tpm); err == nil {
				t.Error("invalid input accepted")
			}
		})
	}
}

func TestProfileLatencies(t *testing.T) {
	samples := make([]time.Duration, 0, 100)
	for i := 1; i <= 100; i++ {
		samples = append(samples, time.Duration(i)*time.Millisecond)
	}

	profile, err := ProfileLatencies(samples)
	if err != nil {
		t.Fatal(err)
	}
	if profile.Samples != 100 {
		t.Errorf("Samples = %d", profile.Samples)
	}
	if profile.Avg != 50500*time.Microsecond {
		t.Errorf("Avg = %v", profile.Avg)
	}
	if profile.Median != 50*time.Millisecond {
		t.Errorf("Median = %v", profile.Median)
	}
	if profile.P95 != 95*time.Millisecond {
		t.Errorf("P95 = %v", profile.P95)
	}
	if profile.P99 != 99*time.Millisecond {
		t.Errorf("P99 = %v", profile.P99)
	}
	if profile.StdDev == 0 {
		t.Error("StdDev not computed")
	}
}

func TestProfileLatencies_Empty(t *testing.T) {
	if _, err := ProfileLatencies(nil); err == nil {
		t.Error("empty samples accepted")
	}
}
