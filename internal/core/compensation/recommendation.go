package compensation

var recommendations = map[Risk]string{
	RiskNoData:       "No market data available for this role and level; register a benchmark before reviewing this salary.",
	RiskOnTarget:     "Salary aligned with the market; no action needed.",
	RiskAboveCeiling: "Salary above the market ceiling; review cost and role scope before the next cycle.",
	RiskHigh:         "Severe gap against the market; plan a corrective adjustment up to the market average.",
	RiskCritical:     "Critical retention risk: top performer paid below market; adjust urgently.",
}

// RecommendationFor はリスク区分に対応する推奨文を返します。
func RecommendationFor(r Risk) string {
	if text, ok := recommendations[r]; ok {
		return text
	}
	return recommendations[RiskNoData]
}
