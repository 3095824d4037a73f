package employee

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ogurasousui/talent-guard/internal/core/compensation"
	"github.com/shopspring/decimal"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeEmployeeRepo struct {
	employees map[string]*compensation.Employee
	sequence  int
	order     []string
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{employees: make(map[string]*compensation.Employee)}
}

func (r *fakeEmployeeRepo) Create(_ context.Context, e *compensation.Employee) (*compensation.Employee, error) {
	clone := compensation.CloneEmployee(e)
	r.sequence++
	id := fmt.Sprintf("emp-%d", r.sequence)
	clone.ID = id
	r.employees[id] = clone
	r.order = append(r.order, id)
	return compensation.CloneEmployee(clone), nil
}

func (r *fakeEmployeeRepo) Update(_ context.Context, e *compensation.Employee) (*compensation.Employee, error) {
	if _, ok := r.employees[e.ID]; !ok {
		return nil, ErrEmployeeNotFound
	}
	r.employees[e.ID] = compensation.CloneEmployee(e)
	return compensation.CloneEmployee(e), nil
}

func (r *fakeEmployeeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.employees[id]; !ok {
		return ErrEmployeeNotFound
	}
	delete(r.employees, id)
	for idx, existingID := range r.order {
		if existingID == id {
			r.order = append(r.order[:idx], r.order[idx+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeEmployeeRepo) FindByID(_ context.Context, id string) (*compensation.Employee, error) {
	emp, ok := r.employees[id]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	return compensation.CloneEmployee(emp), nil
}

func (r *fakeEmployeeRepo) List(_ context.Context, filter ListEmployeesFilter) ([]*compensation.Employee, string, error) {
	var filtered []*compensation.Employee
	for _, id := range r.order {
		emp := r.employees[id]
		if filter.Department != nil && emp.Department != *filter.Department {
			continue
		}
		filtered = append(filtered, compensation.CloneEmployee(emp))
	}

	if filter.Offset > len(filtered) {
		return []*compensation.Employee{}, "", nil
	}

	end := filter.Offset + filter.Limit
	if end > len(filtered) {
		end = len(filtered)
	}

	page := filtered[filter.Offset:end]

	nextToken := ""
	if end < len(filtered) {
		nextToken = strconv.Itoa(end)
	}

	return page, nextToken, nil
}

func validInput() CreateEmployeeInput {
	return CreateEmployeeInput{
		FullName:   "Maria Silva",
		Salary:     decimal.NewFromInt(9000),
		Department: "Engineering",
		RoleName:   "Backend Developer",
		RoleLevel:  compensation.LevelPleno,
	}
}

func TestService_CreateEmployee_Success(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService(repo, &stubClock{now: now}, nil)

	birth := time.Date(1990, 3, 4, 15, 0, 0, 0, time.UTC)
	hire := time.Date(2020, 2, 1, 9, 30, 0, 0, time.UTC)

	created, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{
		FullName:       "  Maria   Silva ",
		BirthDate:      &birth,
		HireDate:       &hire,
		Salary:         decimal.RequireFromString("9000.456"),
		Department:     " Engineering ",
		EducationLevel: " Bachelor ",
		RoleName:       " Backend  Developer ",
		RoleLevel:      compensation.Level("pleno"),
	})
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	if created.ID == "" {
		t.Fatal("expected id to be assigned")
	}
	if created.FullName != "Maria Silva" {
		t.Fatalf("expected normalized name, got %q", created.FullName)
	}
	if !created.Salary.Equal(decimal.RequireFromString("9000.46")) {
		t.Fatalf("expected salary rounded to cents, got %s", created.Salary)
	}
	if created.Role.Name != "Backend Developer" || created.Role.Level != compensation.LevelPleno {
		t.Fatalf("expected normalized role, got %+v", created.Role)
	}
	if created.Department != "Engineering" || created.EducationLevel != "Bachelor" {
		t.Fatalf("expected trimmed department/education, got %q %q", created.Department, created.EducationLevel)
	}
	if created.HireDate == nil || !created.HireDate.Equal(time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected hire date: %+v", created.HireDate)
	}
	if !created.CreatedAt.Equal(now) || !created.UpdatedAt.Equal(now) {
		t.Fatalf("expected timestamps to use clock now")
	}
}

func TestService_CreateEmployee_Validation(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), &stubClock{now: time.Now().UTC()}, nil)

	cases := []struct {
		name   string
		mutate func(*CreateEmployeeInput)
		want   error
	}{
		{"empty name", func(in *CreateEmployeeInput) { in.FullName = "  " }, ErrInvalidFullName},
		{"negative salary", func(in *CreateEmployeeInput) { in.Salary = decimal.NewFromInt(-1) }, ErrInvalidSalary},
		{"salary above storable maximum", func(in *CreateEmployeeInput) {
			in.Salary = compensation.MaxAmount.Add(decimal.NewFromInt(1))
		}, ErrInvalidSalary},
		{"missing role", func(in *CreateEmployeeInput) { in.RoleName = "" }, ErrInvalidRole},
		{"unknown level", func(in *CreateEmployeeInput) { in.RoleLevel = "INTERN" }, ErrInvalidRole},
		{"empty department", func(in *CreateEmployeeInput) { in.Department = "" }, ErrInvalidDepartment},
		{"hire before birth", func(in *CreateEmployeeInput) {
			birth := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
			hire := time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
			in.BirthDate, in.HireDate = &birth, &hire
		}, ErrInvalidDateRange},
	}

	for _, tc := range cases {
		in := validInput()
		tc.mutate(&in)
		if _, err := svc.CreateEmployee(context.Background(), in); !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestService_UpdateEmployee_Success(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	clk := &stubClock{now: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)}
	svc := NewService(repo, clk, nil)

	created, err := svc.CreateEmployee(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	clk.now = clk.now.Add(time.Hour)

	newSalary := decimal.NewFromInt(11000)
	newLevel := compensation.LevelSenior
	newDepartment := "Platform"

	updated, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{
		ID:         created.ID,
		Salary:     &newSalary,
		RoleLevel:  &newLevel,
		Department: &newDepartment,
	})
	if err != nil {
		t.Fatalf("UpdateEmployee returned error: %v", err)
	}

	if !updated.Salary.Equal(newSalary) {
		t.Fatalf("expected salary update, got %s", updated.Salary)
	}
	if updated.Role.Name != "Backend Developer" || updated.Role.Level != compensation.LevelSenior {
		t.Fatalf("expected level-only role change, got %+v", updated.Role)
	}
	if updated.Department != "Platform" {
		t.Fatalf("expected department update, got %s", updated.Department)
	}
	if !updated.UpdatedAt.Equal(clk.now) {
		t.Fatalf("expected updated timestamp to use clock")
	}
}

func TestService_UpdateEmployee_InvalidSalary(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), &stubClock{now: time.Now().UTC()}, nil)

	created, err := svc.CreateEmployee(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	negative := decimal.NewFromInt(-100)
	_, err = svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{ID: created.ID, Salary: &negative})
	if !errors.Is(err, ErrInvalidSalary) {
		t.Fatalf("expected ErrInvalidSalary, got %v", err)
	}
}

func TestService_UpdateEmployee_NotFound(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), nil, nil)

	name := "Someone"
	if _, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{ID: "missing", FullName: &name}); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
	if _, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{ID: " "}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestService_DeleteAndGetEmployee(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), nil, nil)

	created, err := svc.CreateEmployee(context.Background(), validInput())
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	found, err := svc.GetEmployee(context.Background(), GetEmployeeInput{ID: created.ID})
	if err != nil {
		t.Fatalf("GetEmployee returned error: %v", err)
	}
	if found.FullName != created.FullName {
		t.Fatalf("expected %s, got %s", created.FullName, found.FullName)
	}

	if err := svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{ID: created.ID}); err != nil {
		t.Fatalf("DeleteEmployee returned error: %v", err)
	}

	if _, err := svc.GetEmployee(context.Background(), GetEmployeeInput{ID: created.ID}); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestService_ListEmployees_FilterAndPagination(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), &stubClock{now: time.Now().UTC()}, nil)

	departments := []string{"Engineering", "Sales", "Engineering"}
	for i, department := range departments {
		in := validInput()
		in.FullName = fmt.Sprintf("Seed %d", i)
		in.Department = department
		if _, err := svc.CreateEmployee(context.Background(), in); err != nil {
			t.Fatalf("unexpected seed error: %v", err)
		}
	}

	sales := "Sales"
	result, err := svc.ListEmployees(context.Background(), ListEmployeesInput{Department: &sales})
	if err != nil {
		t.Fatalf("ListEmployees returned error: %v", err)
	}
	if len(result.Employees) != 1 {
		t.Fatalf("expected 1 sales employee, got %d", len(result.Employees))
	}

	engineering := "Engineering"
	page1, err := svc.ListEmployees(context.Background(), ListEmployeesInput{Department: &engineering, PageSize: 1})
	if err != nil {
		t.Fatalf("ListEmployees returned error: %v", err)
	}
	if len(page1.Employees) != 1 || page1.NextPageToken == "" {
		t.Fatalf("expected first page with next token, got %d %q", len(page1.Employees), page1.NextPageToken)
	}

	page2, err := svc.ListEmployees(context.Background(), ListEmployeesInput{
		Department: &engineering,
		PageSize:   1,
		PageToken:  page1.NextPageToken,
	})
	if err != nil {
		t.Fatalf("ListEmployees page2 returned error: %v", err)
	}
	if len(page2.Employees) != 1 || page2.NextPageToken != "" {
		t.Fatalf("expected last page, got %d %q", len(page2.Employees), page2.NextPageToken)
	}
}

func TestService_ListEmployees_InvalidPaging(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), nil, nil)

	if _, err := svc.ListEmployees(context.Background(), ListEmployeesInput{PageSize: maxListPageSize + 1}); !errors.Is(err, ErrInvalidPageSize) {
		t.Fatalf("expected ErrInvalidPageSize, got %v", err)
	}
	if _, err := svc.ListEmployees(context.Background(), ListEmployeesInput{PageToken: "abc"}); !errors.Is(err, ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken, got %v", err)
	}
}

type fakeCatalog struct {
	roles map[string]compensation.Role
}

func (c *fakeCatalog) Lookup(_ context.Context, role compensation.Role) (compensation.Role, bool, error) {
	found, ok := c.roles[strings.ToLower(role.Name)+"/"+string(role.Level)]
	return found, ok, nil
}

func TestService_RoleCatalog(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{roles: map[string]compensation.Role{
		"backend developer/PLENO":  {Name: "Backend Developer", Level: compensation.LevelPleno},
		"backend developer/SENIOR": {Name: "Backend Developer", Level: compensation.LevelSenior},
	}}
	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}, nil, WithRoleCatalog(catalog))

	in := validInput()
	in.RoleName = "BACKEND developer"
	created, err := svc.CreateEmployee(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}
	if created.Role.Name != "Backend Developer" {
		t.Fatalf("expected catalogue spelling, got %q", created.Role.Name)
	}

	typo := validInput()
	typo.RoleName = "Backend Develloper"
	if _, err := svc.CreateEmployee(context.Background(), typo); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}

	senior := compensation.LevelSenior
	promoted, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{ID: created.ID, RoleLevel: &senior})
	if err != nil {
		t.Fatalf("UpdateEmployee returned error: %v", err)
	}
	if promoted.Role.Level != compensation.LevelSenior {
		t.Fatalf("expected promotion to senior, got %+v", promoted.Role)
	}

	junior := compensation.LevelJunior
	if _, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{ID: created.ID, RoleLevel: &junior}); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole for unregistered level, got %v", err)
	}
}
