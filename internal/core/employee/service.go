package employee

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ogurasousui/talent-guard/internal/core/compensation"
	"github.com/shopspring/decimal"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// RoleCatalog は登録済みの職種を照合し、正規化された職種を返します。found が false の場合は未登録です。
type RoleCatalog interface {
	Lookup(ctx context.Context, role compensation.Role) (canonical compensation.Role, found bool, err error)
}

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

// Service は社員に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
	roles RoleCatalog
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*compensation.Employee, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*compensation.Employee, error)
	ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*compensation.Employee, error)
	DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error
}

// Option は Service の任意設定です。
type Option func(*Service)

// WithRoleCatalog は作成・更新時に照合する職種カタログを設定します。未設定の場合は照合しません。
func WithRoleCatalog(c RoleCatalog) Option {
	return func(s *Service) {
		s.roles = c
	}
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager, opts ...Option) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	s := &Service{repo: repo, clock: clock, tx: tx}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateEmployeeInput は社員作成時の入力です。
type CreateEmployeeInput struct {
	FullName       string
	BirthDate      *time.Time
	HireDate       *time.Time
	Salary         decimal.Decimal
	Department     string
	EducationLevel string
	RoleName       string
	RoleLevel      compensation.Level
}

// UpdateEmployeeInput は社員更新時の入力です。nil のフィールドは変更しません。
type UpdateEmployeeInput struct {
	ID             string
	FullName       *string
	BirthDate      *time.Time
	BirthDateSet   bool
	HireDate       *time.Time
	HireDateSet    bool
	Salary         *decimal.Decimal
	Department     *string
	EducationLevel *string
	RoleName       *string
	RoleLevel      *compensation.Level
}

// DeleteEmployeeInput は社員削除時の入力です。
type DeleteEmployeeInput struct {
	ID string
}

// GetEmployeeInput は社員取得時の入力です。
type GetEmployeeInput struct {
	ID string
}

// ListEmployeesInput は一覧取得時の入力です。
type ListEmployeesInput struct {
	Department *string
	PageSize   int
	PageToken  string
}

// ListEmployeesResult は一覧取得結果を表します。
type ListEmployeesResult struct {
	Employees     []*compensation.Employee
	NextPageToken string
}

// CreateEmployee は新しい社員を作成します。
func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*compensation.Employee, error) {
	fullName, err := normalizeFullName(in.FullName)
	if err != nil {
		return nil, err
	}

	salary, err := normalizeSalary(in.Salary)
	if err != nil {
		return nil, err
	}

	role, err := normalizeRole(in.RoleName, in.RoleLevel)
	if err != nil {
		return nil, err
	}

	department, err := normalizeDepartment(in.Department)
	if err != nil {
		return nil, err
	}

	birthDate := normalizeDate(in.BirthDate)
	hireDate := normalizeDate(in.HireDate)
	if err := validateDates(birthDate, hireDate); err != nil {
		return nil, err
	}

	var created *compensation.Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		canonical, err := s.lookupRole(txCtx, role)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		emp := &compensation.Employee{
			FullName:       fullName,
			BirthDate:      birthDate,
			HireDate:       hireDate,
			Salary:         salary,
			Department:     department,
			EducationLevel: strings.TrimSpace(in.EducationLevel),
			Role:           canonical,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		result, err := s.repo.Create(txCtx, emp)
		if err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateEmployee は社員情報を更新します。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*compensation.Employee, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *compensation.Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.FullName != nil {
			name, err := normalizeFullName(*in.FullName)
			if err != nil {
				return err
			}
			existing.FullName = name
		}

		if in.Salary != nil {
			salary, err := normalizeSalary(*in.Salary)
			if err != nil {
				return err
			}
			existing.Salary = salary
		}

		if in.Department != nil {
			department, err := normalizeDepartment(*in.Department)
			if err != nil {
				return err
			}
			existing.Department = department
		}

		if in.EducationLevel != nil {
			existing.EducationLevel = strings.TrimSpace(*in.EducationLevel)
		}

		if in.RoleName != nil || in.RoleLevel != nil {
			name, level := existing.Role.Name, existing.Role.Level
			if in.RoleName != nil {
				name = *in.RoleName
			}
			if in.RoleLevel != nil {
				level = *in.RoleLevel
			}
			role, err := normalizeRole(name, level)
			if err != nil {
				return err
			}
			canonical, err := s.lookupRole(txCtx, role)
			if err != nil {
				return err
			}
			existing.Role = canonical
		}

		if in.BirthDateSet {
			existing.BirthDate = normalizeDate(in.BirthDate)
		}

		if in.HireDateSet {
			existing.HireDate = normalizeDate(in.HireDate)
		}

		if err := validateDates(existing.BirthDate, existing.HireDate); err != nil {
			return err
		}

		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}

		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteEmployee は社員を削除します。
func (s *Service) DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, in.ID)
	})
}

// GetEmployee は社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*compensation.Employee, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *compensation.Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListEmployees は社員の一覧を取得します。
func (s *Service) ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var departmentPtr *string
	if in.Department != nil {
		department, err := normalizeDepartment(*in.Department)
		if err != nil {
			return nil, err
		}
		departmentPtr = &department
	}

	var (
		employees []*compensation.Employee
		nextToken string
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		resultEmployees, token, err := s.repo.List(txCtx, ListEmployeesFilter{
			Department: departmentPtr,
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			return err
		}
		employees = resultEmployees
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListEmployeesResult{Employees: employees, NextPageToken: nextToken}, nil
}

func (s *Service) lookupRole(ctx context.Context, role compensation.Role) (compensation.Role, error) {
	if s.roles == nil {
		return role, nil
	}
	canonical, found, err := s.roles.Lookup(ctx, role)
	if err != nil {
		return compensation.Role{}, err
	}
	if !found {
		return compensation.Role{}, fmt.Errorf("%w: %s %s", ErrUnknownRole, role.Name, role.Level)
	}
	return canonical, nil
}

func normalizeFullName(raw string) (string, error) {
	trimmed := strings.Join(strings.Fields(raw), " ")
	if trimmed == "" {
		return "", ErrInvalidFullName
	}
	return trimmed, nil
}

func normalizeSalary(salary decimal.Decimal) (decimal.Decimal, error) {
	if salary.IsNegative() || salary.GreaterThan(compensation.MaxAmount) {
		return decimal.Zero, ErrInvalidSalary
	}
	return salary.Round(2), nil
}

func normalizeRole(name string, level compensation.Level) (compensation.Role, error) {
	role := compensation.Role{
		Name:  strings.Join(strings.Fields(name), " "),
		Level: compensation.Level(strings.ToUpper(strings.TrimSpace(string(level)))),
	}
	if err := compensation.ValidateRole(role); err != nil {
		return compensation.Role{}, fmt.Errorf("%w: %v", ErrInvalidRole, err)
	}
	return role, nil
}

func normalizeDepartment(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidDepartment
	}
	return trimmed, nil
}

func normalizeDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	normalized := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &normalized
}

func validateDates(birthDate, hireDate *time.Time) error {
	if birthDate == nil || hireDate == nil {
		return nil
	}
	if !birthDate.Before(*hireDate) {
		return ErrInvalidDateRange
	}
	return nil
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
