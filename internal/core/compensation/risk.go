package compensation

import (
	"fmt"
	"strings"
)

// Risk は報酬起因のリテンション/コストリスク区分です。
// ラベルの文字列は RiskSchema 側で決まり、ここでは区分と重大度のみを扱います。
type Risk int

const (
	RiskNoData Risk = iota
	RiskOnTarget
	RiskAboveCeiling
	RiskHigh
	RiskCritical
)

var allRisks = []Risk{RiskNoData, RiskOnTarget, RiskAboveCeiling, RiskHigh, RiskCritical}

// Risks は定義済みの全区分を重大度順に返します。
func Risks() []Risk {
	out := make([]Risk, len(allRisks))
	copy(out, allRisks)
	return out
}

func (r Risk) String() string {
	switch r {
	case RiskNoData:
		return "no_data"
	case RiskOnTarget:
		return "on_target"
	case RiskAboveCeiling:
		return "above_ceiling"
	case RiskHigh:
		return "high"
	case RiskCritical:
		return "critical"
	default:
		return fmt.Sprintf("risk(%d)", int(r))
	}
}

// Valid は定義済みの区分かどうかを返します。
func (r Risk) Valid() bool {
	return r >= RiskNoData && r <= RiskCritical
}

// Severity は on-target < above-ceiling < high < critical の順序を返します。no-data は on-target と同等です。
func (r Risk) Severity() int {
	switch r {
	case RiskAboveCeiling:
		return 1
	case RiskHigh:
		return 2
	case RiskCritical:
		return 3
	default:
		return 0
	}
}

// RetentionSeverity は過少支払い軸のみの重大度です。above-ceiling はコスト指標のため 0 になります。
// 給与が下がる方向に対して単調非減少です。
func (r Risk) RetentionSeverity() int {
	switch r {
	case RiskHigh:
		return 1
	case RiskCritical:
		return 2
	default:
		return 0
	}
}

// Underpaid は昇給提案の対象となる区分かどうかを返します。
func (r Risk) Underpaid() bool {
	return r == RiskHigh || r == RiskCritical
}

// ParseRisk は String() の出力から Risk を復元します。
func ParseRisk(s string) (Risk, error) {
	for _, r := range allRisks {
		if strings.EqualFold(strings.TrimSpace(s), r.String()) {
			return r, nil
		}
	}
	return RiskNoData, fmt.Errorf("compensation: unknown risk %q", s)
}

// RiskSchema は Risk を外部の永続化スキーマのラベルへ写像します。
type RiskSchema struct {
	name   string
	labels map[Risk]string
}

const (
	RiskSchemaFourTier  = "four_tier"
	RiskSchemaThreeTier = "three_tier"
)

// FourTierSchema は LOW/MEDIUM/HIGH/CRITICAL スキーマです。
var FourTierSchema = RiskSchema{
	name: RiskSchemaFourTier,
	labels: map[Risk]string{
		RiskNoData:       "LOW",
		RiskOnTarget:     "LOW",
		RiskAboveCeiling: "MEDIUM",
		RiskHigh:         "HIGH",
		RiskCritical:     "CRITICAL",
	},
}

// ThreeTierSchema は BELOW_FLOOR/ON_TARGET/ABOVE_CEILING スキーマです。
var ThreeTierSchema = RiskSchema{
	name: RiskSchemaThreeTier,
	labels: map[Risk]string{
		RiskNoData:       "ON_TARGET",
		RiskOnTarget:     "ON_TARGET",
		RiskAboveCeiling: "ABOVE_CEILING",
		RiskHigh:         "BELOW_FLOOR",
		RiskCritical:     "BELOW_FLOOR",
	},
}

// ParseRiskSchema は設定値から RiskSchema を返します。空文字は four_tier とみなします。
func ParseRiskSchema(name string) (RiskSchema, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", RiskSchemaFourTier:
		return FourTierSchema, nil
	case RiskSchemaThreeTier:
		return ThreeTierSchema, nil
	default:
		return RiskSchema{}, fmt.Errorf("%w: %q", ErrUnknownRiskSchema, name)
	}
}

// Name はスキーマ名を返します。
func (s RiskSchema) Name() string {
	return s.name
}

// Label は r に対応するラベルを返します。
func (s RiskSchema) Label(r Risk) string {
	if label, ok := s.labels[r]; ok {
		return label
	}
	return s.labels[RiskNoData]
}

// Labels はスキーマが取りうるラベルの集合を返します。
func (s RiskSchema) Labels() []string {
	seen := make(map[string]struct{}, len(s.labels))
	out := make([]string, 0, len(s.labels))
	for _, r := range allRisks {
		label := s.labels[r]
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	return out
}
