package metrics

import (
	"context"
	"fmt"
	"strings"
)

// Filter narrows metric queries. Zero-value fields are ignored.
type Filter struct {
	RunID    string
	Strategy string
	Model    string
}

func (f Filter) where() (string, []any) {
	var clauses []string
	var args []any
	if f.RunID != "" {
		clauses = append(clauses, "run_id = ?")
		args = append(args, f.RunID)
	}
	if f.Strategy != "" {
		clauses = append(clauses, "strategy = ?")
		args = append(args, f.Strategy)
	}
	if f.Model != "" {
		clauses = append(clauses, "model = ?")
		args = append(args, f.Model)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// List returns metrics matching the filter, newest first. A limit of 0 means
// no limit.
func (s *Store) List(ctx context.Context, f Filter, limit int) ([]Metric, error) {
	query := `SELECT * FROM call_metrics`
	where, args := f.where()
	query += where + ` ORDER BY id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	var out []Metric
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("listing metrics: %w", err)
	}
	return out, nil
}

// TotalCost returns the total cost in USD for metrics matching the filter.
func (s *Store) TotalCost(ctx context.Context, f Filter) (float64, error) {
	where, args := f.where()
	var total float64
	err := s.db.GetContext(ctx, &total,
		`SELECT COALESCE(SUM(cost_usd), 0) FROM call_metrics`+where, args...)
	if err != nil {
		return 0, fmt.Errorf("summing cost: %w", err)
	}
	return total, nil
}

// TotalTokens returns the total token usage for metrics matching the filter.
func (s *Store) TotalTokens(ctx context.Context, f Filter) (int, error) {
	where, args := f.where()
	var total int
	err := s.db.GetContext(ctx, &total,
		`SELECT COALESCE(SUM(total_tokens), 0) FROM call_metrics`+where, args...)
	if err != nil {
		return 0, fmt.Errorf("summing tokens: %w", err)
	}
	return total, nil
}

// StrategyCost is the per-strategy spend breakdown row for one run.
type StrategyCost struct {
	Strategy    string  `db:"strategy" json:"strategy"`
	Calls       int     `db:"calls" json:"calls"`
	CostUSD     float64 `db:"cost_usd" json:"cost_usd"`
	TotalTokens int     `db:"total_tokens" json:"total_tokens"`
	Failures    int     `db:"failures" json:"failures"`
}

// RunBreakdown returns per-strategy totals for one run, ordered by spend.
func (s *Store) RunBreakdown(ctx context.Context, runID string) ([]StrategyCost, error) {
	var out []StrategyCost
	err := s.db.SelectContext(ctx, &out, `
		SELECT strategy,
		       COUNT(*) AS calls,
		       COALESCE(SUM(cost_usd), 0) AS cost_usd,
		       COALESCE(SUM(total_tokens), 0) AS total_tokens,
		       SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END) AS failures
		FROM call_metrics
		WHERE run_id = ?
		GROUP BY strategy
		ORDER BY cost_usd DESC`, runID)
	if err != nil {
		return nil, fmt.Errorf("run breakdown: %w", err)
	}
	return out, nil
}
