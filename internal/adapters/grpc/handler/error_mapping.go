package handler

import (
	"context"
	"errors"

	"github.com/ogurasousui/talent-guard/internal/core/analysis"
	"github.com/ogurasousui/talent-guard/internal/core/benchmark"
	"github.com/ogurasousui/talent-guard/internal/core/compensation"
	"github.com/ogurasousui/talent-guard/internal/core/employee"
	"github.com/ogurasousui/talent-guard/internal/core/role"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func toStatusError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidFullName),
		errors.Is(err, employee.ErrInvalidSalary),
		errors.Is(err, employee.ErrInvalidRole),
		errors.Is(err, employee.ErrUnknownRole),
		errors.Is(err, employee.ErrInvalidDepartment),
		errors.Is(err, employee.ErrInvalidDateRange),
		errors.Is(err, employee.ErrInvalidPageSize),
		errors.Is(err, employee.ErrInvalidPageToken),
		errors.Is(err, benchmark.ErrInvalidID),
		errors.Is(err, benchmark.ErrInvalidRange),
		errors.Is(err, benchmark.ErrInvalidRole),
		errors.Is(err, benchmark.ErrUnknownRole),
		errors.Is(err, benchmark.ErrInvalidReferenceDate),
		errors.Is(err, benchmark.ErrInvalidPageSize),
		errors.Is(err, benchmark.ErrInvalidPageToken),
		errors.Is(err, analysis.ErrInvalidEmployeeID),
		errors.Is(err, analysis.ErrInvalidPageSize),
		errors.Is(err, analysis.ErrInvalidPageToken),
		errors.Is(err, role.ErrInvalidID),
		errors.Is(err, role.ErrInvalidRole),
		errors.Is(err, role.ErrInvalidPageSize),
		errors.Is(err, role.ErrInvalidPageToken),
		errors.Is(err, compensation.ErrInvalidEmployee),
		errors.Is(err, compensation.ErrInvalidBenchmark):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, analysis.ErrNoBenchmark),
		errors.Is(err, benchmark.ErrBenchmarkInUse),
		errors.Is(err, role.ErrRoleInUse):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, analysis.ErrValueOutOfRange):
		return status.Error(codes.OutOfRange, err.Error())
	case errors.Is(err, employee.ErrEmployeeAlreadyExists),
		errors.Is(err, benchmark.ErrBenchmarkAlreadyExists),
		errors.Is(err, role.ErrRoleAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, benchmark.ErrBenchmarkNotFound),
		errors.Is(err, role.ErrRoleNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
