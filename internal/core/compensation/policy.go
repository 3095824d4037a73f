package compensation

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// DefaultReplacementCostMultiplier は採用・オンボーディング・生産性損失を給与の倍数で近似した値です。
	DefaultReplacementCostMultiplier = decimal.New(45, -1)
	// DefaultCriticalRaiseTarget は CRITICAL 時に目標とする市場平均に対する倍率です。
	DefaultCriticalRaiseTarget = decimal.New(110, -2)

	defaultSevereUnderpayThreshold = decimal.New(85, -2)
	defaultCriticalCompaThreshold  = decimal.New(1, 0)
	defaultAboveCeilingThreshold   = decimal.New(120, -2)
	defaultPercentileUpperBound    = decimal.New(105, -2)
	defaultPercentileLowerBound    = decimal.New(95, -2)
)

// Policy は分析に用いる閾値と係数をまとめます。
type Policy struct {
	ReplacementCostMultiplier decimal.Decimal
	CriticalRaiseTarget       decimal.Decimal
	SevereUnderpayThreshold   decimal.Decimal
	CriticalCompaThreshold    decimal.Decimal
	AboveCeilingThreshold     decimal.Decimal
	PercentileUpperBound      decimal.Decimal
	PercentileLowerBound      decimal.Decimal
}

// DefaultPolicy は既定の Policy を返します。
func DefaultPolicy() Policy {
	return Policy{
		ReplacementCostMultiplier: DefaultReplacementCostMultiplier,
		CriticalRaiseTarget:       DefaultCriticalRaiseTarget,
		SevereUnderpayThreshold:   defaultSevereUnderpayThreshold,
		CriticalCompaThreshold:    defaultCriticalCompaThreshold,
		AboveCeilingThreshold:     defaultAboveCeilingThreshold,
		PercentileUpperBound:      defaultPercentileUpperBound,
		PercentileLowerBound:      defaultPercentileLowerBound,
	}
}

// WithReplacementCostMultiplier は置換コスト係数のみを差し替えた Policy を返します。
func (p Policy) WithReplacementCostMultiplier(m decimal.Decimal) Policy {
	p.ReplacementCostMultiplier = m
	return p
}

// Validate は閾値の大小関係を検証します。
func (p Policy) Validate() error {
	if !p.ReplacementCostMultiplier.IsPositive() {
		return fmt.Errorf("%w: replacement cost multiplier must be positive", ErrInvalidPolicy)
	}
	if !p.CriticalRaiseTarget.IsPositive() {
		return fmt.Errorf("%w: critical raise target must be positive", ErrInvalidPolicy)
	}
	if p.PercentileLowerBound.GreaterThan(p.PercentileUpperBound) {
		return fmt.Errorf("%w: percentile bounds are inverted", ErrInvalidPolicy)
	}
	if p.SevereUnderpayThreshold.GreaterThan(p.AboveCeilingThreshold) {
		return fmt.Errorf("%w: underpay threshold exceeds ceiling threshold", ErrInvalidPolicy)
	}
	return nil
}
