package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/optbench/internal/analyze"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Project cost and scale impact from the published study numbers",
}

var (
	econDaily int
	econModel string
)

var analyzeEconomicsCmd = &cobra.Command{
	Use:   "economics",
	Short: "Project daily and annual savings at a request volume",
	RunE: func(cmd *cobra.Command, args []string) error {
		model, ok := analyze.Models[econModel]
		if !ok {
			names := make([]string, 0, len(analyze.Models))
			for name := range analyze.Models {
				names = append(names, name)
			}
			return fmt.Errorf("unknown model %q (have %v)", econModel, names)
		}

		savings, err := analyze.CalculateSavings(analyze.PromptStudyDefault, econDaily, model.InputPricePer1M, econModel)
		if err != nil {
			return err
		}
		return printResult(savings)
	},
}

var (
	scaleRequests  int
	scaleBaseline  float64
	scaleOptimized float64
	scalePrice     float64
	scaleTPM       float64
)

var analyzeScaleCmd = &cobra.Command{
	Use:   "scale",
	Short: "Model total tokens, cost, and throughput hours at scale",
	RunE: func(cmd *cobra.Command, args []string) error {
		impact, err := analyze.CalculateScaleImpact(scaleRequests, scaleBaseline, scaleOptimized, scalePrice, scaleTPM)
		if err != nil {
			return err
		}
		return printResult(impact)
	},
}

func init() {
	analyzeEconomicsCmd.Flags().IntVar(&econDaily, "daily", 1_000_000, "daily inference volume")
	analyzeEconomicsCmd.Flags().StringVar(&econModel, "model", "gpt-4o-mini", "pricing model")

	analyzeScaleCmd.Flags().IntVar(&scaleRequests, "requests", 1_000_000, "total requests")
	analyzeScaleCmd.Flags().Float64Var(&scaleBaseline, "baseline", float64(analyze.PromptStudyDefault.BaselineTokens), "baseline tokens per request")
	analyzeScaleCmd.Flags().Float64Var(&scaleOptimized, "optimized", float64(analyze.PromptStudyDefault.CombinedTokens), "optimized tokens per request")
	analyzeScaleCmd.Flags().Float64Var(&scalePrice, "price", analyze.Models["gpt-4o-mini"].InputPricePer1M, "input price per 1M tokens (USD)")
	analyzeScaleCmd.Flags().Float64Var(&scaleTPM, "tpm", 2_000_000, "tokens-per-minute limit (0 to skip throughput modeling)")

	analyzeCmd.AddCommand(analyzeEconomicsCmd)
	analyzeCmd.AddCommand(analyzeScaleCmd)
}
