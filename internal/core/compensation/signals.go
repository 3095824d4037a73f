package compensation

import (
	"context"
	"fmt"
	"hash/fnv"
)

// PerformanceSignalProvider は評価区分と前回昇給からの月数を提供します。
// 評価システム連携が入るまでは DeterministicSignals で代替します。
type PerformanceSignalProvider interface {
	Signals(ctx context.Context, emp *Employee) (Signals, error)
}

var deterministicRatings = [...]PerformanceRating{
	PerformanceMedium,
	PerformanceHigh,
	PerformanceTopPerformer,
	PerformanceMedium,
}

const deterministicMonthBuckets = 9

// DeterministicSignals は社員 ID のハッシュからシグナルを導出します。
// 同じ ID には常に同じ値を返し、乱数は使いません。
type DeterministicSignals struct{}

// Signals は PerformanceSignalProvider を実装します。
func (DeterministicSignals) Signals(_ context.Context, emp *Employee) (Signals, error) {
	if emp == nil {
		return Signals{}, fmt.Errorf("%w: employee is required", ErrInvalidEmployee)
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(emp.ID))
	sum := h.Sum32()

	return Signals{
		PerformanceRating:       deterministicRatings[sum%uint32(len(deterministicRatings))],
		MonthsSinceLastIncrease: 2 + 4*int(sum%deterministicMonthBuckets),
	}, nil
}

// StaticSignals は常に同じシグナルを返します。
type StaticSignals Signals

// Signals は PerformanceSignalProvider を実装します。
func (s StaticSignals) Signals(_ context.Context, _ *Employee) (Signals, error) {
	return Signals(s), nil
}
