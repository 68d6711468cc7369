package analyze

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// LatencyProfile summarizes a set of latency samples.
type LatencyProfile struct {
	Samples int           `json:"samples"`
	Avg     time.Duration `json:"avg"`
	Median  time.Duration `json:"median"`
	P95     time.Duration `json:"p95"`
	P99     time.Duration `json:"p99"`
	StdDev  time.Duration `json:"std_dev"`
}

// ProfileLatencies computes summary statistics over raw samples.
func ProfileLatencies(samples []time.Duration) (*LatencyProfile, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no latency samples")
	}

	sorted := make([]time.Duration, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, s := range sorted {
		sum += s
	}
	avg := sum / time.Duration(len(sorted))

	profile := &LatencyProfile{
		Samples: len(sorted),
		Avg:     avg,
		Median:  percentile(sorted, 50),
		P95:     percentile(sorted, 95),
		P99:     percentile(sorted, 99),
	}

	if len(sorted) > 1 {
		var variance float64
		for _, s := range sorted {
			d := float64(s - avg)
			variance += d * d
		}
		variance /= float64(len(sorted) - 1)
		profile.StdDev = time.Duration(math.Sqrt(variance))
	}

	return profile, nil
}

// percentile returns the nearest-rank percentile of sorted samples.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}
