package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName は公開する gRPC サービスの完全修飾名です。
const ServiceName = "talentguard.v1.CompensationService"

// CompensationServiceServer は CompensationService のサーバー側インターフェースです。
// 要求・応答はいずれも google.protobuf.Struct です。
type CompensationServiceServer interface {
	AnalyzeEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AnalyzeAll(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SaveAnalysis(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListAnalyses(context.Context, *structpb.Struct) (*structpb.Struct, error)

	CreateBenchmark(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetBenchmark(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListBenchmarks(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteBenchmark(context.Context, *structpb.Struct) (*structpb.Struct, error)

	CreateEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListEmployees(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteEmployee(context.Context, *structpb.Struct) (*structpb.Struct, error)

	CreateRole(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRole(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRoles(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateRole(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteRole(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(CompensationServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// FullMethod は name の完全修飾メソッド名を返します。
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

func unaryHandler(name string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		if interceptor == nil {
			return call(srv.(CompensationServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CompensationServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func method(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{MethodName: name, Handler: unaryHandler(name, call)}
}

// CompensationServiceDesc は CompensationService の grpc.ServiceDesc です。
var CompensationServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CompensationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method("AnalyzeEmployee", CompensationServiceServer.AnalyzeEmployee),
		method("AnalyzeAll", CompensationServiceServer.AnalyzeAll),
		method("SaveAnalysis", CompensationServiceServer.SaveAnalysis),
		method("ListAnalyses", CompensationServiceServer.ListAnalyses),
		method("CreateBenchmark", CompensationServiceServer.CreateBenchmark),
		method("GetBenchmark", CompensationServiceServer.GetBenchmark),
		method("ListBenchmarks", CompensationServiceServer.ListBenchmarks),
		method("DeleteBenchmark", CompensationServiceServer.DeleteBenchmark),
		method("CreateEmployee", CompensationServiceServer.CreateEmployee),
		method("GetEmployee", CompensationServiceServer.GetEmployee),
		method("ListEmployees", CompensationServiceServer.ListEmployees),
		method("UpdateEmployee", CompensationServiceServer.UpdateEmployee),
		method("DeleteEmployee", CompensationServiceServer.DeleteEmployee),
		method("CreateRole", CompensationServiceServer.CreateRole),
		method("GetRole", CompensationServiceServer.GetRole),
		method("ListRoles", CompensationServiceServer.ListRoles),
		method("UpdateRole", CompensationServiceServer.UpdateRole),
		method("DeleteRole", CompensationServiceServer.DeleteRole),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "talentguard/v1/compensation.proto",
}

// RegisterCompensationServiceServer は srv を s に登録します。
func RegisterCompensationServiceServer(s grpc.ServiceRegistrar, srv CompensationServiceServer) {
	s.RegisterService(&CompensationServiceDesc, srv)
}
