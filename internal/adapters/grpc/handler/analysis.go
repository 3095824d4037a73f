package handler

import (
	"context"

	"github.com/ogurasousui/talent-guard/internal/core/analysis"
	"github.com/ogurasousui/talent-guard/internal/core/compensation"
	"google.golang.org/protobuf/types/known/structpb"
)

// AnalyzeEmployee は社員 1 名の報酬を市場と比較し、保存せずに結果を返します。
func (h *CompensationGrpcHandler) AnalyzeEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	id, err := newFields(req).str("employee_id")
	if err != nil {
		return nil, invalidArgument(err)
	}

	result, err := h.analyses.AnalyzeEmployee(ctx, analysis.AnalyzeEmployeeInput{EmployeeID: id})
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{"analysis": h.resultToMap(result)})
}

// AnalyzeAll は全社員 (または部署) を一括分析し、集計とともに返します。
func (h *CompensationGrpcHandler) AnalyzeAll(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	department, err := newFields(req).optStr("department")
	if err != nil {
		return nil, invalidArgument(err)
	}

	result, err := h.analyses.AnalyzeAll(ctx, analysis.AnalyzeAllInput{Department: department})
	if err != nil {
		return nil, toStatusError(err)
	}

	items := make([]any, 0, len(result.Results))
	for _, r := range result.Results {
		items = append(items, h.resultToMap(r))
	}
	return respond(map[string]any{
		"analyses": items,
		"summary":  summaryToMap(result.Summary),
	})
}

// SaveAnalysis は社員を分析し、その結果を履歴として保存します。
func (h *CompensationGrpcHandler) SaveAnalysis(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	id, err := newFields(req).str("employee_id")
	if err != nil {
		return nil, invalidArgument(err)
	}

	saved, err := h.analyses.SaveAnalysis(ctx, analysis.SaveAnalysisInput{EmployeeID: id})
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{
		"analysis": h.resultToMap(saved.Analysis),
		"snapshot": snapshotToMap(saved.Snapshot),
	})
}

// ListAnalyses は社員の分析履歴を新しい順に返します。
func (h *CompensationGrpcHandler) ListAnalyses(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	f := newFields(req)

	id, err := f.str("employee_id")
	if err != nil {
		return nil, invalidArgument(err)
	}
	pageSize, err := f.integer("page_size")
	if err != nil {
		return nil, invalidArgument(err)
	}
	pageToken, err := f.str("page_token")
	if err != nil {
		return nil, invalidArgument(err)
	}

	result, err := h.analyses.ListAnalyses(ctx, analysis.ListAnalysesInput{
		EmployeeID: id,
		PageSize:   pageSize,
		PageToken:  pageToken,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	items := make([]any, 0, len(result.Snapshots))
	for _, s := range result.Snapshots {
		items = append(items, snapshotToMap(s))
	}
	return respond(map[string]any{
		"snapshots":       items,
		"next_page_token": result.NextPageToken,
	})
}

func (h *CompensationGrpcHandler) resultToMap(r *compensation.AnalysisResult) map[string]any {
	if r == nil {
		return nil
	}
	var benchmarkID any
	if r.Benchmark != nil {
		benchmarkID = r.Benchmark.ID
	}
	return map[string]any{
		"employee_id":                r.Employee.ID,
		"employee_name":              r.Employee.FullName,
		"role_name":                  r.Employee.Role.Name,
		"role_level":                 string(r.Employee.Role.Level),
		"benchmark_id":               benchmarkID,
		"has_market_reference":       r.HasMarketReference(),
		"recorded_salary":            r.RecordedSalary.StringFixed(2),
		"market_average":             r.MarketAverage.StringFixed(2),
		"compa_ratio":                r.CompaRatio.StringFixed(4),
		"difference_percentage":      r.DifferencePercentage.StringFixed(2),
		"percentile":                 string(r.Percentile),
		"risk":                       h.schema.Label(r.Risk),
		"classification":             r.Risk.String(),
		"suggested_raise":            r.SuggestedRaise.StringFixed(2),
		"replacement_cost":           r.ReplacementCost.StringFixed(2),
		"recommendation":             r.Recommendation,
		"performance_rating":         string(r.PerformanceRating),
		"months_since_last_increase": r.MonthsSinceLastIncrease,
	}
}

func summaryToMap(s analysis.Summary) map[string]any {
	byRisk := make(map[string]any, len(s.ByRisk))
	for _, r := range compensation.Risks() {
		byRisk[r.String()] = s.ByRisk[r]
	}
	return map[string]any{
		"employees":             s.Employees,
		"at_risk":               s.AtRisk,
		"total_suggested_raise": s.TotalSuggestedRaise.StringFixed(2),
		"average_compa_ratio":   s.AverageCompaRatio.StringFixed(4),
		"by_risk":               byRisk,
	}
}

func snapshotToMap(s *analysis.Snapshot) map[string]any {
	if s == nil {
		return nil
	}
	day := s.AnalysisDate
	return map[string]any{
		"id":                    s.ID,
		"employee_id":           s.EmployeeID,
		"benchmark_id":          s.BenchmarkID,
		"recorded_salary":       s.RecordedSalary.StringFixed(2),
		"market_average":        s.MarketAverage.StringFixed(2),
		"difference_percentage": s.DifferencePercentage.StringFixed(2),
		"risk":                  s.Risk,
		"recommendation":        s.Recommendation,
		"analysis_date":         formatDate(&day),
		"created_at":            formatTimestamp(s.CreatedAt),
	}
}
