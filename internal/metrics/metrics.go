// Package metrics provides cost and usage tracking for benchmark LLM calls.
// Every chat call is an append-only row with run/strategy attribution, so
// spend can be broken down after the fact.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/jackzampolin/optbench/internal/providers"
)

const schema = `
CREATE TABLE IF NOT EXISTS call_metrics (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	strategy TEXT NOT NULL,
	query TEXT,
	provider TEXT,
	model TEXT,
	cost_usd REAL,
	prompt_tokens INTEGER,
	completion_tokens INTEGER,
	total_tokens INTEGER,
	execution_seconds REAL,
	success INTEGER NOT NULL,
	error_type TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_call_metrics_run ON call_metrics(run_id, strategy);
`

// Metric is a single recorded LLM call.
type Metric struct {
	ID int64 `db:"id" json:"id,omitempty"`

	// Attribution
	RunID    string `db:"run_id" json:"run_id"`
	Strategy string `db:"strategy" json:"strategy"`
	Query    string `db:"query" json:"query,omitempty"`

	// Provider info
	Provider string `db:"provider" json:"provider,omitempty"`
	Model    string `db:"model" json:"model,omitempty"`

	// Cost and tokens
	CostUSD          float64 `db:"cost_usd" json:"cost_usd,omitempty"`
	PromptTokens     int     `db:"prompt_tokens" json:"prompt_tokens,omitempty"`
	CompletionTokens int     `db:"completion_tokens" json:"completion_tokens,omitempty"`
	TotalTokens      int     `db:"total_tokens" json:"total_tokens,omitempty"`

	// Timing
	ExecutionSeconds float64 `db:"execution_seconds" json:"execution_seconds,omitempty"`

	// Status
	Success   bool   `db:"success" json:"success"`
	ErrorType string `db:"error_type" json:"error_type,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at,omitempty"`
}

// Store records call metrics in SQLite.
type Store struct {
	db *sqlx.DB
}

// Open opens (or creates) the metrics store at path and initializes the
// schema. The path may be shared with the catalog database.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening metrics database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing metrics schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a single metric.
func (s *Store) Record(ctx context.Context, m Metric) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO call_metrics
			(run_id, strategy, query, provider, model, cost_usd,
			 prompt_tokens, completion_tokens, total_tokens,
			 execution_seconds, success, error_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.RunID, m.Strategy, m.Query, m.Provider, m.Model, m.CostUSD,
		m.PromptTokens, m.CompletionTokens, m.TotalTokens,
		m.ExecutionSeconds, m.Success, m.ErrorType, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("recording metric: %w", err)
	}
	return nil
}

// RecordOpts provides attribution for a chat call recording.
type RecordOpts struct {
	RunID    string
	Strategy string
	Query    string
}

// RecordChat records metrics from an LLM chat result.
func (s *Store) RecordChat(ctx context.Context, opts RecordOpts, result *providers.ChatResult) error {
	if result == nil {
		return fmt.Errorf("nil chat result")
	}
	return s.Record(ctx, Metric{
		RunID:            opts.RunID,
		Strategy:         opts.Strategy,
		Query:            opts.Query,
		Provider:         result.Provider,
		Model:            result.ModelUsed,
		CostUSD:          result.CostUSD,
		PromptTokens:     result.PromptTokens,
		CompletionTokens: result.CompletionTokens,
		TotalTokens:      result.TotalTokens,
		ExecutionSeconds: result.ExecutionTime.Seconds(),
		Success:          result.Success,
		ErrorType:        result.ErrorType,
	})
}

// RecordError records a failed call as a metric.
func (s *Store) RecordError(ctx context.Context, opts RecordOpts, provider, model, errorType string, duration time.Duration) error {
	return s.Record(ctx, Metric{
		RunID:            opts.RunID,
		Strategy:         opts.Strategy,
		Query:            opts.Query,
		Provider:         provider,
		Model:            model,
		ExecutionSeconds: duration.Seconds(),
		Success:          false,
		ErrorType:        errorType,
	})
}
