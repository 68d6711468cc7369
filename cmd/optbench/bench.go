package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/optbench/internal/bench"
	"github.com/jackzampolin/optbench/internal/catalog"
	"github.com/jackzampolin/optbench/internal/config"
	"github.com/jackzampolin/optbench/internal/metrics"
	"github.com/jackzampolin/optbench/internal/providers"
	"github.com/jackzampolin/optbench/internal/strategy"
)

// defaultQueries is the shared question set every strategy answers, so that
// token counts are comparable across runs.
var defaultQueries = []string{
	"What products are available?",
	"Show me the prices of all products",
	"Which is the most expensive product?",
	"Are there any products under $50?",
	"What product do you recommend I add to my storefront?",
}

// mockCompletion is a schema-complete answer for --mock dry runs.
const mockCompletion = `{
  "recommendations": [
    {"product_id": "101", "title": "Trail Running Shoes", "reason": "Popular category with strong margins", "confidence": 0.9}
  ],
  "total_products_reviewed": 17,
  "answer": "Reviewed the catalog and picked the strongest addition."
}`

var (
	benchModel      string
	benchProvider   string
	benchStrategies []string
	benchQueries    []string
	benchRuns       int
	benchMock       bool
	benchOut        string
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run the strategy benchmark against the cached catalog",
	Long: `Encodes the cached product catalog under each strategy's context grammar,
runs the query set through the configured LLM, and reports token reduction,
latency impact, parse reliability, and field completion per strategy.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		strategies, err := resolveStrategies(cfg)
		if err != nil {
			return err
		}

		client, err := buildClient(cfg)
		if err != nil {
			return err
		}

		store, err := catalog.Open(cfg.Catalog.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		products, err := store.Products(cmd.Context())
		if err != nil {
			return err
		}
		if len(products) == 0 {
			return fmt.Errorf("product cache is empty; run `optbench db sync` first")
		}

		model := cfg.Bench.Model
		if benchModel != "" {
			model = benchModel
		}
		runs := cfg.Bench.RunsPerQuery
		if benchRuns > 0 {
			runs = benchRuns
		}
		queries := defaultQueries
		if len(benchQueries) > 0 {
			queries = benchQueries
		}

		// Call metrics share the catalog's SQLite file.
		recorder, err := metrics.Open(cfg.Catalog.Path)
		if err != nil {
			return err
		}
		defer recorder.Close()

		analyzer, err := bench.New(bench.Config{
			Client:       client,
			Strategies:   strategies,
			Model:        model,
			RunsPerQuery: runs,
			ParseRetries: uint(cfg.Bench.ParseRetries),
			Temperature:  cfg.Bench.Temperature,
			MaxTokens:    cfg.Bench.MaxTokens,
			Logger:       slog.Default(),
			Metrics:      recorder,
		})
		if err != nil {
			return err
		}

		results, err := analyzer.Run(cmd.Context(), queries, products)
		if err != nil {
			return err
		}
		report := bench.NewReport(results)

		if breakdown, err := recorder.RunBreakdown(cmd.Context(), results.RunID); err == nil {
			for _, row := range breakdown {
				slog.Info("strategy spend",
					"strategy", row.Strategy,
					"calls", row.Calls,
					"cost_usd", row.CostUSD,
					"tokens", row.TotalTokens,
					"failures", row.Failures)
			}
		}

		if err := writeReport(cfg, report); err != nil {
			return err
		}
		return printResult(report)
	},
}

func init() {
	benchCmd.Flags().StringVar(&benchModel, "model", "", "model identifier (overrides config)")
	benchCmd.Flags().StringVar(&benchProvider, "provider", "", "LLM provider: openrouter, openai, or mock (overrides config)")
	benchCmd.Flags().StringSliceVar(&benchStrategies, "strategies", nil, "strategies to run (default: all registered)")
	benchCmd.Flags().StringArrayVar(&benchQueries, "query", nil, "query to benchmark (repeatable; default: built-in set)")
	benchCmd.Flags().IntVar(&benchRuns, "runs", 0, "runs per query (overrides config)")
	benchCmd.Flags().BoolVar(&benchMock, "mock", false, "use the mock client (no API calls)")
	benchCmd.Flags().StringVar(&benchOut, "out", "", "results file (default: <output_dir>/<run_id>.json)")
}

func resolveStrategies(cfg *config.Config) ([]*strategy.Strategy, error) {
	names := cfg.Bench.Strategies
	if len(benchStrategies) > 0 {
		names = benchStrategies
	}
	if len(names) == 0 {
		return strategy.All(), nil
	}

	out := make([]*strategy.Strategy, 0, len(names)+1)
	seen := map[string]bool{}
	for _, name := range names {
		s, err := strategy.Get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
		seen[name] = true
	}
	// Rankings need the baseline even when it was not asked for.
	if !seen[strategy.Baseline] {
		s, err := strategy.Get(strategy.Baseline)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func buildClient(cfg *config.Config) (providers.LLMClient, error) {
	provider := cfg.Bench.Provider
	if benchProvider != "" {
		provider = benchProvider
	}
	if benchMock {
		provider = "mock"
	}

	switch provider {
	case "mock":
		mock := providers.NewMockClient()
		mock.ResponseText = mockCompletion
		return mock, nil
	case "openrouter":
		key := cfg.ResolveAPIKey("openrouter")
		if key == "" {
			return nil, fmt.Errorf("no openrouter API key configured (set OPENROUTER_API_KEY)")
		}
		return providers.NewOpenRouterClient(providers.OpenRouterConfig{
			APIKey:       key,
			DefaultModel: cfg.Bench.Model,
			RPM:          cfg.Bench.RPM,
		}), nil
	case "openai":
		key := cfg.ResolveAPIKey("openai")
		if key == "" {
			return nil, fmt.Errorf("no openai API key configured (set OPENAI_API_KEY)")
		}
		return providers.NewOpenAIClient(providers.OpenAIConfig{
			APIKey:       key,
			DefaultModel: cfg.Bench.Model,
			RPM:          cfg.Bench.RPM,
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (want openrouter, openai, or mock)", provider)
	}
}

func writeReport(cfg *config.Config, report *bench.Report) error {
	path := benchOut
	if path == "" {
		dir := cfg.Bench.OutputDir
		if dir == "" {
			dir = "results"
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
		path = filepath.Join(dir, report.Results.RunID+".json")
	}

	data, err := jsonIndent(report)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	slog.Info("wrote benchmark results", "path", path, "run_id", report.Results.RunID)
	return nil
}
