package compensation

import (
	"time"

	"github.com/shopspring/decimal"
)

// Level は職位の等級を表します。
type Level string

const (
	LevelJunior Level = "JUNIOR"
	LevelPleno  Level = "PLENO"
	LevelSenior Level = "SENIOR"
)

// Valid は定義済みの等級かどうかを返します。
func (l Level) Valid() bool {
	switch l {
	case LevelJunior, LevelPleno, LevelSenior:
		return true
	default:
		return false
	}
}

// MaxAmount は保存できる金額の上限です。給与やレンジはこれを超えられません。
var MaxAmount = decimal.RequireFromString("999999999999.99")

// Role は職種と等級の組です。分析時には値として埋め込まれます。
type Role struct {
	Name  string `validate:"required"`
	Level Level  `validate:"level"`
}

// Employee は社員エンティティです。Salary が現在の報酬の正です。
type Employee struct {
	ID             string
	FullName       string
	BirthDate      *time.Time
	HireDate       *time.Time
	Salary         decimal.Decimal `validate:"gte=0"`
	Department     string
	EducationLevel string
	Role           Role
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Benchmark は職種・等級ごとの市場給与レンジです。
type Benchmark struct {
	ID            string
	Role          Role
	FloorSalary   decimal.Decimal `validate:"gte=0"`
	AverageSalary decimal.Decimal `validate:"gte=0"`
	CeilingSalary decimal.Decimal `validate:"gte=0"`
	ReferenceDate time.Time
	Region        string
	CompanySize   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Percentile は compa-ratio から導出される市場内の位置です。
type Percentile string

const (
	PercentileAboveAverage Percentile = "above average"
	PercentileAtMarket     Percentile = "at market"
	PercentileBelowAverage Percentile = "below average"
)

// PerformanceRating は評価区分です。
type PerformanceRating string

const (
	PerformanceLow          PerformanceRating = "low"
	PerformanceMedium       PerformanceRating = "medium"
	PerformanceHigh         PerformanceRating = "high"
	PerformanceTopPerformer PerformanceRating = "top performer"
)

// Signals は分析に用いる補助シグナルです。
type Signals struct {
	PerformanceRating       PerformanceRating
	MonthsSinceLastIncrease int
}

// AnalysisResult は社員 1 名分の分析結果です。永続化されない限り都度計算されます。
type AnalysisResult struct {
	Employee                Employee
	Benchmark               *Benchmark
	RecordedSalary          decimal.Decimal
	MarketAverage           decimal.Decimal
	CompaRatio              decimal.Decimal
	DifferencePercentage    decimal.Decimal
	Percentile              Percentile
	Risk                    Risk
	SuggestedRaise          decimal.Decimal
	ReplacementCost         decimal.Decimal
	Recommendation          string
	PerformanceRating       PerformanceRating
	MonthsSinceLastIncrease int
}

// HasMarketReference は比較可能なベンチマークが存在したかどうかを返します。
func (r *AnalysisResult) HasMarketReference() bool {
	return r != nil && r.Benchmark != nil && r.Risk != RiskNoData
}

// CloneBenchmark は Benchmark のディープコピーを返します。
func CloneBenchmark(b *Benchmark) *Benchmark {
	if b == nil {
		return nil
	}
	clone := *b
	return &clone
}

// CloneEmployee は Employee のディープコピーを返します。
func CloneEmployee(e *Employee) *Employee {
	if e == nil {
		return nil
	}
	clone := *e
	if e.BirthDate != nil {
		birth := *e.BirthDate
		clone.BirthDate = &birth
	}
	if e.HireDate != nil {
		hire := *e.HireDate
		clone.HireDate = &hire
	}
	return &clone
}
