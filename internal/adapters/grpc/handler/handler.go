package handler

import (
	"fmt"

	"github.com/ogurasousui/talent-guard/internal/core/analysis"
	"github.com/ogurasousui/talent-guard/internal/core/benchmark"
	"github.com/ogurasousui/talent-guard/internal/core/compensation"
	"github.com/ogurasousui/talent-guard/internal/core/employee"
	"github.com/ogurasousui/talent-guard/internal/core/role"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// CompensationGrpcHandler は CompensationService の gRPC 実装です。
type CompensationGrpcHandler struct {
	analyses   analysis.UseCase
	employees  employee.UseCase
	benchmarks benchmark.UseCase
	roles      role.UseCase
	schema     compensation.RiskSchema
}

var _ CompensationServiceServer = (*CompensationGrpcHandler)(nil)

// NewCompensationGrpcHandler は CompensationGrpcHandler を生成します。schema は応答のリスクラベルに用います。
func NewCompensationGrpcHandler(analyses analysis.UseCase, employees employee.UseCase, benchmarks benchmark.UseCase, roles role.UseCase, schema compensation.RiskSchema) *CompensationGrpcHandler {
	if schema.Name() == "" {
		schema = compensation.FourTierSchema
	}
	return &CompensationGrpcHandler{
		analyses:   analyses,
		employees:  employees,
		benchmarks: benchmarks,
		roles:      roles,
		schema:     schema,
	}
}

func invalidArgument(err error) error {
	return status.Error(codes.InvalidArgument, err.Error())
}

func requireRequest(req *structpb.Struct) error {
	if req == nil {
		return status.Error(codes.InvalidArgument, "request is required")
	}
	return nil
}

func respond(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	return out, nil
}
