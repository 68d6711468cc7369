package bench

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"

	"github.com/jackzampolin/optbench/internal/adapter"
	"github.com/jackzampolin/optbench/internal/metrics"
	"github.com/jackzampolin/optbench/internal/providers"
	"github.com/jackzampolin/optbench/internal/signature"
	"github.com/jackzampolin/optbench/internal/strategy"
)

// Config configures a benchmark run.
type Config struct {
	Client     providers.LLMClient
	Strategies []*strategy.Strategy
	Signature  *signature.Signature // defaults to ResponseSignature()

	Model        string
	RunsPerQuery int // defaults to 3
	ParseRetries uint // LLM re-asks on ParseError, defaults to 2
	Temperature  float64
	MaxTokens    int

	Logger *slog.Logger

	// Metrics, when set, records every chat call for after-the-fact cost
	// attribution.
	Metrics *metrics.Store
}

// Analyzer drives strategies through an LLM client and collects metrics.
type Analyzer struct {
	client       providers.LLMClient
	strategies   []*strategy.Strategy
	sig          *signature.Signature
	model        string
	runsPerQuery int
	parseRetries uint
	temperature  float64
	maxTokens    int
	log          *slog.Logger
	metrics      *metrics.Store
}

// New validates the config and builds an analyzer.
func New(cfg Config) (*Analyzer, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("benchmark requires an LLM client")
	}
	if len(cfg.Strategies) == 0 {
		return nil, fmt.Errorf("benchmark requires at least one strategy")
	}
	if cfg.Signature == nil {
		cfg.Signature = ResponseSignature()
	}
	if cfg.RunsPerQuery <= 0 {
		cfg.RunsPerQuery = 3
	}
	if cfg.ParseRetries == 0 {
		cfg.ParseRetries = 2
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Analyzer{
		client:       cfg.Client,
		strategies:   cfg.Strategies,
		sig:          cfg.Signature,
		model:        cfg.Model,
		runsPerQuery: cfg.RunsPerQuery,
		parseRetries: cfg.ParseRetries,
		temperature:  cfg.Temperature,
		maxTokens:    cfg.MaxTokens,
		log:          cfg.Logger,
		metrics:      cfg.Metrics,
	}, nil
}

// Run benchmarks every strategy over the query set. contextPayload is the
// retrieval context (typically a product list) serialized per strategy.
func (a *Analyzer) Run(ctx context.Context, queries []string, contextPayload any) (*Results, error) {
	if len(queries) == 0 {
		return nil, fmt.Errorf("benchmark requires at least one query")
	}

	runID := uuid.New().String()
	results := &Results{
		RunID:    runID,
		Model:    a.model,
		Baseline: strategy.Baseline,
	}

	a.log.Info("starting benchmark",
		"run_id", runID,
		"model", a.model,
		"queries", len(queries),
		"runs_per_query", a.runsPerQuery,
		"strategies", len(a.strategies))

	for _, strat := range a.strategies {
		contextText, err := strat.EncodeContext(contextPayload)
		if err != nil {
			return nil, fmt.Errorf("encoding context for %s: %w", strat.Name(), err)
		}

		sr := &StrategyResult{Strategy: strat.Name()}
		a.log.Info("benchmarking strategy", "strategy", strat.Name(), "context_bytes", len(contextText))

		for _, query := range queries {
			runs := make([]QueryMetric, 0, a.runsPerQuery)
			for run := 0; run < a.runsPerQuery; run++ {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				m := a.runOnce(ctx, runID, strat, contextText, query)
				runs = append(runs, m)
				if m.Error != "" {
					a.log.Warn("run failed", "strategy", strat.Name(), "query", query, "error", m.Error)
				}
			}
			avg := averageRuns(runs)
			sr.Queries = append(sr.Queries, avg)
			a.log.Debug("query done",
				"strategy", strat.Name(),
				"query", query,
				"avg_tokens", avg.TotalTokens,
				"avg_latency", avg.Latency,
				"parse_success", avg.ParseSuccess)
		}

		results.Strategies = append(results.Strategies, sr)
	}

	return results, nil
}

// runOnce executes one query attempt, re-asking the model (bounded) when the
// completion fails to parse.
func (a *Analyzer) runOnce(ctx context.Context, runID string, strat *strategy.Strategy, contextText, query string) QueryMetric {
	m := QueryMetric{Strategy: strat.Name(), Query: query}

	var parsed map[string]any
	err := retry.Do(
		func() error {
			start := time.Now()
			result, err := a.client.Chat(ctx, &providers.ChatRequest{
				Messages: []providers.Message{
					{Role: "system", Content: systemPrompt(a.sig, strat)},
					{Role: "user", Content: userPrompt(contextText, query)},
				},
				Model:       a.model,
				Temperature: a.temperature,
				MaxTokens:   a.maxTokens,
				RequestID:   uuid.New().String(),
			})
			if err != nil {
				return retry.Unrecoverable(err)
			}
			a.recordCall(ctx, runID, strat.Name(), query, result)

			m.Latency = time.Since(start)
			m.PromptTokens = result.PromptTokens
			m.CompletionTokens = result.CompletionTokens
			m.TotalTokens = result.TotalTokens

			fields, perr := strat.Parse(a.sig, result.Content)
			if perr != nil {
				return perr
			}
			parsed = fields
			return nil
		},
		retry.Attempts(a.parseRetries+1),
		retry.RetryIf(isParseError),
		retry.Context(ctx),
		retry.Delay(100*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		var pe *adapter.ParseError
		if errors.As(err, &pe) {
			m.ParseSuccess = false
			m.FieldCompletionRate = fieldCompletion(a.sig, pe.Partial)
			return m
		}
		m.Error = err.Error()
		return m
	}

	m.ParseSuccess = true
	m.FieldCompletionRate = fieldCompletion(a.sig, parsed)
	return m
}

// recordCall stores per-call spend attribution. Recording failures are logged
// rather than failing the run.
func (a *Analyzer) recordCall(ctx context.Context, runID, strat, query string, result *providers.ChatResult) {
	if a.metrics == nil {
		return
	}
	opts := metrics.RecordOpts{RunID: runID, Strategy: strat, Query: query}
	if err := a.metrics.RecordChat(ctx, opts, result); err != nil {
		a.log.Warn("failed to record call metric", "error", err)
	}
}

func isParseError(err error) bool {
	var pe *adapter.ParseError
	return errors.As(err, &pe)
}

// fieldCompletion scores how much of the declared schema a field map fills:
// one point per top-level field, with sequence-of-record fields scored as the
// mean completeness of their elements.
func fieldCompletion(sig *signature.Signature, fields map[string]any) float64 {
	if sig.Len() == 0 {
		return 0
	}
	score := 0.0
	for _, f := range sig.Fields() {
		v, ok := fields[f.Name]
		if !ok {
			continue
		}
		if f.Spec.Kind == signature.KindSequence && f.Spec.Inner.Kind == signature.KindRecord {
			score += sequenceCompleteness(f.Spec.Inner.Record, v)
			continue
		}
		score += 1
	}
	return score / float64(sig.Len())
}

func sequenceCompleteness(rec *signature.Signature, v any) float64 {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		// An empty list is a complete (if unhelpful) value.
		if ok {
			return 1
		}
		return 0
	}
	sum := 0.0
	for _, elem := range list {
		m, ok := elem.(map[string]any)
		if !ok {
			continue
		}
		present := 0
		for _, name := range rec.Names() {
			if _, ok := m[name]; ok {
				present++
			}
		}
		sum += float64(present) / float64(rec.Len())
	}
	return sum / float64(len(list))
}

// averageRuns folds per-run metrics into one QueryMetric, the same way the
// report treats a query: successful runs averaged, parse success only when
// every run parsed.
func averageRuns(runs []QueryMetric) QueryMetric {
	if len(runs) == 0 {
		return QueryMetric{}
	}
	avg := QueryMetric{
		Strategy:     runs[0].Strategy,
		Query:        runs[0].Query,
		ParseSuccess: true,
	}
	for _, r := range runs {
		if r.Error != "" && avg.Error == "" {
			avg.Error = r.Error
		}
		if !r.ParseSuccess {
			avg.ParseSuccess = false
		}
	}

	var latency time.Duration
	prompt, completion, n := 0, 0, 0
	completionRate, parsedRuns := 0.0, 0
	for _, r := range runs {
		if r.Error != "" {
			continue
		}
		latency += r.Latency
		prompt += r.PromptTokens
		completion += r.CompletionTokens
		n++
		if r.ParseSuccess {
			completionRate += r.FieldCompletionRate
			parsedRuns++
		}
	}
	if n > 0 {
		avg.Latency = latency / time.Duration(n)
		avg.PromptTokens = prompt / n
		avg.CompletionTokens = completion / n
		avg.TotalTokens = avg.PromptTokens + avg.CompletionTokens
	}
	if parsedRuns > 0 {
		avg.FieldCompletionRate = completionRate / float64(parsedRuns)
	}
	return avg
}
