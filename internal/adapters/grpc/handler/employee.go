package handler

import (
	"context"

	"github.com/ogurasousui/talent-guard/internal/core/compensation"
	"github.com/ogurasousui/talent-guard/internal/core/employee"
	"google.golang.org/protobuf/types/known/structpb"
)

// CreateEmployee は社員を作成します。
func (h *CompensationGrpcHandler) CreateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	f := newFields(req)

	in := employee.CreateEmployeeInput{}
	var err error
	if in.FullName, err = f.str("full_name"); err != nil {
		return nil, invalidArgument(err)
	}
	if in.BirthDate, err = f.date("birth_date"); err != nil {
		return nil, invalidArgument(err)
	}
	if in.HireDate, err = f.date("hire_date"); err != nil {
		return nil, invalidArgument(err)
	}
	if in.Salary, err = f.decimal("salary"); err != nil {
		return nil, invalidArgument(err)
	}
	if in.Department, err = f.str("department"); err != nil {
		return nil, invalidArgument(err)
	}
	if in.EducationLevel, err = f.str("education_level"); err != nil {
		return nil, invalidArgument(err)
	}
	if in.RoleName, err = f.str("role_name"); err != nil {
		return nil, invalidArgument(err)
	}
	level, err := f.str("role_level")
	if err != nil {
		return nil, invalidArgument(err)
	}
	in.RoleLevel = compensation.Level(level)

	created, err := h.employees.CreateEmployee(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{"employee": employeeToMap(created)})
}

// UpdateEmployee は社員情報を更新します。指定されたフィールドのみ変更されます。
func (h *CompensationGrpcHandler) UpdateEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	f := newFields(req)

	id, err := f.str("id")
	if err != nil {
		return nil, invalidArgument(err)
	}
	in := employee.UpdateEmployeeInput{ID: id}

	if in.FullName, err = f.optStr("full_name"); err != nil {
		return nil, invalidArgument(err)
	}
	if in.Salary, err = f.optDecimal("salary"); err != nil {
		return nil, invalidArgument(err)
	}
	if in.Department, err = f.optStr("department"); err != nil {
		return nil, invalidArgument(err)
	}
	if in.EducationLevel, err = f.optStr("education_level"); err != nil {
		return nil, invalidArgument(err)
	}
	if in.RoleName, err = f.optStr("role_name"); err != nil {
		return nil, invalidArgument(err)
	}
	level, err := f.optStr("role_level")
	if err != nil {
		return nil, invalidArgument(err)
	}
	if level != nil {
		l := compensation.Level(*level)
		in.RoleLevel = &l
	}
	if in.BirthDate, in.BirthDateSet, err = f.dateUpdate("birth_date"); err != nil {
		return nil, invalidArgument(err)
	}
	if in.HireDate, in.HireDateSet, err = f.dateUpdate("hire_date"); err != nil {
		return nil, invalidArgument(err)
	}

	updated, err := h.employees.UpdateEmployee(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{"employee": employeeToMap(updated)})
}

// DeleteEmployee は社員を削除します。
func (h *CompensationGrpcHandler) DeleteEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	id, err := newFields(req).str("id")
	if err != nil {
		return nil, invalidArgument(err)
	}

	if err := h.employees.DeleteEmployee(ctx, employee.DeleteEmployeeInput{ID: id}); err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{})
}

// GetEmployee は社員を取得します。
func (h *CompensationGrpcHandler) GetEmployee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	id, err := newFields(req).str("id")
	if err != nil {
		return nil, invalidArgument(err)
	}

	found, err := h.employees.GetEmployee(ctx, employee.GetEmployeeInput{ID: id})
	if err != nil {
		return nil, toStatusError(err)
	}
	return respond(map[string]any{"employee": employeeToMap(found)})
}

// ListEmployees は社員の一覧を取得します。
func (h *CompensationGrpcHandler) ListEmployees(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := requireRequest(req); err != nil {
		return nil, err
	}
	f := newFields(req)

	department, err := f.optStr("department")
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

	result, err := h.employees.ListEmployees(ctx, employee.ListEmployeesInput{
		Department: department,
		PageSize:   pageSize,
		PageToken:  pageToken,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	items := make([]any, 0, len(result.Employees))
	for _, emp := range result.Employees {
		items = append(items, employeeToMap(emp))
	}
	return respond(map[string]any{
		"employees":       items,
		"next_page_token": result.NextPageToken,
	})
}

func employeeToMap(emp *compensation.Employee) map[string]any {
	if emp == nil {
		return nil
	}
	return map[string]any{
		"id":              emp.ID,
		"full_name":       emp.FullName,
		"birth_date":      formatDate(emp.BirthDate),
		"hire_date":       formatDate(emp.HireDate),
		"salary":          emp.Salary.StringFixed(2),
		"department":      emp.Department,
		"education_level": emp.EducationLevel,
		"role_name":       emp.Role.Name,
		"role_level":      string(emp.Role.Level),
		"created_at":      formatTimestamp(emp.CreatedAt),
		"updated_at":      formatTimestamp(emp.UpdatedAt),
	}
}
