package main

import (
	"errors"
	"testing"

	"github.com/ogurasousui/talent-guard/internal/core/compensation"
	"github.com/ogurasousui/talent-guard/internal/platform/config"
	"github.com/shopspring/decimal"
)

func TestAnalysisOptions_Defaults(t *testing.T) {
	t.Parallel()

	analyzer, opts, err := analysisOptions(config.AnalysisConfig{BatchConcurrency: 4})
	if err != nil {
		t.Fatalf("analysisOptions returned error: %v", err)
	}
	if !analyzer.Policy().ReplacementCostMultiplier.Equal(decimal.RequireFromString("4.5")) {
		t.Fatalf("expected default multiplier, got %s", analyzer.Policy().ReplacementCostMultiplier)
	}
	if len(opts) != 4 {
		t.Fatalf("expected 4 options, got %d", len(opts))
	}
}

func TestAnalysisOptions_Overrides(t *testing.T) {
	t.Parallel()

	analyzer, _, err := analysisOptions(config.AnalysisConfig{
		ReplacementCostMultiplier: "3.25",
		RiskSchema:                "three_tier",
		SelectionPolicy:           "first_match",
	})
	if err != nil {
		t.Fatalf("analysisOptions returned error: %v", err)
	}
	if !analyzer.Policy().ReplacementCostMultiplier.Equal(decimal.RequireFromString("3.25")) {
		t.Fatalf("expected overridden multiplier, got %s", analyzer.Policy().ReplacementCostMultiplier)
	}
}

func TestAnalysisOptions_Invalid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		cfg  config.AnalysisConfig
		want error
	}{
		{"schema", config.AnalysisConfig{RiskSchema: "five_tier"}, compensation.ErrUnknownRiskSchema},
		{"selection", config.AnalysisConfig{SelectionPolicy: "random"}, compensation.ErrUnknownSelectionPolicy},
		{"multiplier", config.AnalysisConfig{ReplacementCostMultiplier: "-1"}, compensation.ErrInvalidPolicy},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if _, _, err := analysisOptions(tc.cfg); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if _, _, err := analysisOptions(config.AnalysisConfig{ReplacementCostMultiplier: "four"}); err == nil {
		t.Fatalf("expected parse error for non-numeric multiplier")
	}
}
