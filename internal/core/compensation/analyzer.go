package compensation

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.New(100, 0)

// Analyzer は社員とベンチマークからリスク区分と是正提案を算出します。
// 状態を持たないため、複数の goroutine から同時に呼び出せます。
type Analyzer struct {
	policy Policy
}

// NewAnalyzer は Analyzer を生成します。
func NewAnalyzer(policy Policy) (*Analyzer, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{policy: policy}, nil
}

// Policy は使用中の Policy を返します。
func (a *Analyzer) Policy() Policy {
	return a.policy
}

// Analyze は emp を bm と比較した AnalysisResult を返します。
// bm が nil または市場平均が 0 の場合は中立結果 (RiskNoData) を返し、エラーにはしません。
// 入力が不正な場合のみエラーを返し、部分的な結果は返しません。
func (a *Analyzer) Analyze(emp *Employee, bm *Benchmark, sig Signals) (*AnalysisResult, error) {
	if err := ValidateEmployee(emp); err != nil {
		return nil, err
	}
	if bm != nil {
		if err := ValidateBenchmark(bm); err != nil {
			return nil, err
		}
	}

	salary := emp.Salary
	result := &AnalysisResult{
		Employee:                *CloneEmployee(emp),
		Benchmark:               CloneBenchmark(bm),
		RecordedSalary:          salary,
		ReplacementCost:         a.ReplacementCost(salary),
		PerformanceRating:       sig.PerformanceRating,
		MonthsSinceLastIncrease: sig.MonthsSinceLastIncrease,
		SuggestedRaise:          decimal.Zero,
	}

	if bm == nil || bm.AverageSalary.IsZero() {
		result.MarketAverage = salary
		result.CompaRatio = decimal.New(1, 0)
		result.DifferencePercentage = decimal.Zero
		result.Percentile = PercentileAtMarket
		result.Risk = RiskNoData
		result.Recommendation = RecommendationFor(RiskNoData)
		return result, nil
	}

	market := bm.AverageSalary
	compa := salary.Div(market)

	result.MarketAverage = market
	result.CompaRatio = compa
	result.DifferencePercentage = salary.Sub(market).Div(market).Mul(hundred)
	result.Percentile = a.percentile(compa)
	result.Risk = a.classify(compa, sig.PerformanceRating)
	result.SuggestedRaise = a.suggestedRaise(result.Risk, market, salary)
	result.Recommendation = RecommendationFor(result.Risk)

	return result, nil
}

// ReplacementCost は給与に置換コスト係数を掛けた値です。リスク区分とは独立しています。
func (a *Analyzer) ReplacementCost(salary decimal.Decimal) decimal.Decimal {
	return salary.Mul(a.policy.ReplacementCostMultiplier)
}

func (a *Analyzer) percentile(compa decimal.Decimal) Percentile {
	switch {
	case compa.GreaterThan(a.policy.PercentileUpperBound):
		return PercentileAboveAverage
	case compa.LessThan(a.policy.PercentileLowerBound):
		return PercentileBelowAverage
	default:
		return PercentileAtMarket
	}
}

// classify は評価の高い社員の過少支払いを汎用閾値より先に判定します。
func (a *Analyzer) classify(compa decimal.Decimal, rating PerformanceRating) Risk {
	switch {
	case rating == PerformanceTopPerformer && compa.LessThan(a.policy.CriticalCompaThreshold):
		return RiskCritical
	case compa.LessThan(a.policy.SevereUnderpayThreshold):
		return RiskHigh
	case compa.GreaterThan(a.policy.AboveCeilingThreshold):
		return RiskAboveCeiling
	default:
		return RiskOnTarget
	}
}

func (a *Analyzer) suggestedRaise(risk Risk, market, salary decimal.Decimal) decimal.Decimal {
	var raise decimal.Decimal
	switch risk {
	case RiskCritical:
		raise = market.Mul(a.policy.CriticalRaiseTarget).Sub(salary)
	case RiskHigh:
		raise = market.Sub(salary)
	default:
		return decimal.Zero
	}
	return decimal.Max(decimal.Zero, raise)
}
