package handler

import (
	"context"

	"github.com/ogurasousui/talent-guard/internal/core/benchmark"
	"github.com/ogurasousui/talent-guard/internal/core/compensation"
	"google.golang.org/protobuf/types/known/structpb"
)

// CreateBenchmark は市場ベンチマークを登録します。
func (h *CompensationGrpcHandler) CreateBenchmark(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	f := newFields(req)

	in := benchmark.CreateBenchmarkInput{}
	var err error
	if in.RoleName, err = f.str("role_name"); err != nil {
		return nil, invalidArgument(err)
	}
	level, err := f.str("role_level")
	if err != nil {
		return nil, invalidArgument(err)
	}
	in.RoleLevel = compensation.Level(level)
	if in.FloorSalary, err = f.decimal("floor_salary"); err != nil {
		return nil, invalidArgument(err)
	}
	if in.AverageSalary, err = f.decimal("average_salary"); err != nil {
		return nil, invalidArgument(err)
	}
	if in.CeilingSalary, err = f.decimal("ceiling_salary"); err != nil {
		return nil, invalidArgument(err)
	}
	ref, err := f.date("reference_date")
	if err != nil {
		return nil, invalidArgument(err)
	}
	if ref != nil {
		in.ReferenceDate = *ref
	}
	if in.Region, err = f.str("region"); err != nil {
		return nil, invalidArgument(err)
	}
	if in.CompanySize, err = f.str("company_size"); err != nil {
		return nil, invalidArgument(err)
	}

	created, err := h.benchmarks.CreateBenchmark(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{"benchmark": benchmarkToMap(created)})
}

// GetBenchmark はベンチマークを取得します。
func (h *CompensationGrpcHandler) GetBenchmark(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	id, err := newFields(req).str("id")
	if err != nil {
		return nil, invalidArgument(err)
	}

	found, err := h.benchmarks.GetBenchmark(ctx, benchmark.GetBenchmarkInput{ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{"benchmark": benchmarkToMap(found)})
}

// ListBenchmarks はベンチマークの一覧を取得します。
func (h *CompensationGrpcHandler) ListBenchmarks(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	f := newFields(req)

	roleName, err := f.optStr("role_name")
	if err != nil {
		return nil, invalidArgument(err)
	}
	level, err := f.optStr("role_level")
	if err != nil {
		return nil, invalidArgument(err)
	}
	var levelPtr *compensation.Level
	if level != nil {
		l := compensation.Level(*level)
		levelPtr = &l
	}
	pageSize, err := f.integer("page_size")
	if err != nil {
		return nil, invalidArgument(err)
	}
	pageToken, err := f.str("page_token")
	if err != nil {
		return nil, invalidArgument(err)
	}

	result, err := h.benchmarks.ListBenchmarks(ctx, benchmark.ListBenchmarksInput{
		RoleName:  roleName,
		RoleLevel: levelPtr,
		PageSize:  pageSize,
		PageToken: pageToken,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	items := make([]any, 0, len(result.Benchmarks))
	for _, b := range result.Benchmarks {
		items = append(items, benchmarkToMap(b))
	}
	return respond(map[string]any{
		"benchmarks":      items,
		"next_page_token": result.NextPageToken,
	})
}

// DeleteBenchmark はベンチマークを削除します。
func (h *CompensationGrpcHandler) DeleteBenchmark(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	id, err := newFields(req).str("id")
	if err != nil {
		return nil, invalidArgument(err)
	}

	if err := h.benchmarks.DeleteBenchmark(ctx, benchmark.DeleteBenchmarkInput{ID: id}); err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{})
}

func benchmarkToMap(b *compensation.Benchmark) map[string]any {
	if b == nil {
		return nil
	}
	ref := b.ReferenceDate
	return map[string]any{
		"id":             b.ID,
		"role_name":      b.Role.Name,
		"role_level":     string(b.Role.Level),
		"floor_salary":   b.FloorSalary.StringFixed(2),
		"average_salary": b.AverageSalary.StringFixed(2),
		"ceiling_salary": b.CeilingSalary.StringFixed(2),
		"reference_date": formatDate(&ref),
		"region":         b.Region,
		"company_size":   b.CompanySize,
		"created_at":     formatTimestamp(b.CreatedAt),
		"updated_at":     formatTimestamp(b.UpdatedAt),
	}
}
