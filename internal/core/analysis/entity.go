package analysis

import (
	"time"

	"github.com/ogurasousui/talent-guard/internal/core/compensation"
	"github.com/shopspring/decimal"
)

// Snapshot は保存された分析結果の履歴 1 件です。Risk は保存時の RiskSchema のラベルです。
type Snapshot struct {
	ID                   string
	EmployeeID           string
	BenchmarkID          string
	RecordedSalary       decimal.Decimal
	MarketAverage        decimal.Decimal
	DifferencePercentage decimal.Decimal
	Risk                 string
	Recommendation       string
	AnalysisDate         time.Time
	CreatedAt            time.Time
}

// Summary は一括分析の集計値です。
type Summary struct {
	Employees           int
	AtRisk              int
	TotalSuggestedRaise decimal.Decimal
	// AverageCompaRatio はベンチマークが存在した社員のみの平均です。
	AverageCompaRatio decimal.Decimal
	ByRisk            map[compensation.Risk]int
}

func summarize(results []*compensation.AnalysisResult) Summary {
	summary := Summary{
		Employees:           len(results),
		TotalSuggestedRaise: decimal.Zero,
		AverageCompaRatio:   decimal.Zero,
		ByRisk:              make(map[compensation.Risk]int, len(compensation.Risks())),
	}

	compaSum := decimal.Zero
	compared := 0
	for _, r := range results {
		summary.ByRisk[r.Risk]++
		if r.Risk.Underpaid() {
			summary.AtRisk++
		}
		summary.TotalSuggestedRaise = summary.TotalSuggestedRaise.Add(r.SuggestedRaise)
		if r.HasMarketReference() {
			compaSum = compaSum.Add(r.CompaRatio)
			compared++
		}
	}
	if compared > 0 {
		summary.AverageCompaRatio = compaSum.Div(decimal.NewFromInt(int64(compared)))
	}
	return summary
}
