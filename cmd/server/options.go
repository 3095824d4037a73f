package main

import (
	"fmt"

	"github.com/ogurasousui/talent-guard/internal/core/analysis"
	"github.com/ogurasousui/talent-guard/internal/core/compensation"
	"github.com/ogurasousui/talent-guard/internal/platform/config"
	"github.com/shopspring/decimal"
)

// analysisOptions は設定から Analyzer と分析サービスのオプションを組み立てます。
func analysisOptions(cfg config.AnalysisConfig) (*compensation.Analyzer, []analysis.Option, error) {
	policy := compensation.DefaultPolicy()
	if cfg.ReplacementCostMultiplier != "" {
		multiplier, err := decimal.NewFromString(cfg.ReplacementCostMultiplier)
		if err != nil {
			return nil, nil, fmt.Errorf("config: analysis.replacement_cost_multiplier: %w", err)
		}
		policy = policy.WithReplacementCostMultiplier(multiplier)
	}

	analyzer, err := compensation.NewAnalyzer(policy)
	if err != nil {
		return nil, nil, err
	}

	selection, err := compensation.ParseSelectionPolicy(cfg.SelectionPolicy)
	if err != nil {
		return nil, nil, err
	}

	schema, err := riskSchema(cfg)
	if err != nil {
		return nil, nil, err
	}

	opts := []analysis.Option{
		analysis.WithResolver(compensation.NewResolver(selection)),
		analysis.WithRiskSchema(schema),
		analysis.WithSignals(compensation.DeterministicSignals{}),
		analysis.WithConcurrency(cfg.BatchConcurrency),
	}
	return analyzer, opts, nil
}

func riskSchema(cfg config.AnalysisConfig) (compensation.RiskSchema, error) {
	return compensation.ParseRiskSchema(cfg.RiskSchema)
}
