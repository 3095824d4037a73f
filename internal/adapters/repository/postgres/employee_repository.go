package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/talent-guard/internal/core/compensation"
	"github.com/ogurasousui/talent-guard/internal/core/employee"
	pgdb "github.com/ogurasousui/talent-guard/internal/platform/db/postgres"
	"github.com/shopspring/decimal"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	invalidTextCode         = "22P02"
	numericOverflowCode     = "22003"
)

const employeeColumns = `id, full_name, birth_date, hire_date, salary, department, education_level, role_name, role_level, created_at, updated_at`

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は社員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *compensation.Employee) (*compensation.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employees (full_name, birth_date, hire_date, salary, department, education_level, role_name, role_level, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING `+employeeColumns+`
    `,
		e.FullName,
		nullableDate(e.BirthDate),
		nullableDate(e.HireDate),
		e.Salary.String(),
		e.Department,
		e.EducationLevel,
		e.Role.Name,
		string(e.Role.Level),
		e.CreatedAt,
		e.UpdatedAt,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// Update は社員情報を更新します。
func (r *EmployeeRepository) Update(ctx context.Context, e *compensation.Employee) (*compensation.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE employees
           SET full_name = $1,
               birth_date = $2,
               hire_date = $3,
               salary = $4,
               department = $5,
               education_level = $6,
               role_name = $7,
               role_level = $8,
               updated_at = $9
         WHERE id = $10
        RETURNING `+employeeColumns+`
    `,
		e.FullName,
		nullableDate(e.BirthDate),
		nullableDate(e.HireDate),
		e.Salary.String(),
		e.Department,
		e.EducationLevel,
		e.Role.Name,
		string(e.Role.Level),
		e.UpdatedAt,
		e.ID,
	)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return updated, nil
}

// Delete は社員を削除します。分析履歴は外部キーによりまとめて削除されます。
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*compensation.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// List は社員の一覧を取得します。並び順は登録順で、一括分析の結果順序もこれに従います。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*compensation.Employee, string, error) {
	if filter.Limit <= 0 {
		return nil, "", employee.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", employee.ErrInvalidPageToken
	}

	args := make([]any, 0, 3)
	conditions := make([]string, 0, 1)

	if filter.Department != nil {
		args = append(args, *filter.Department)
		conditions = append(conditions, "department = $"+strconv.Itoa(len(args)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, filter.Limit+1)
	limitPlaceholder := "$" + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	offsetPlaceholder := "$" + strconv.Itoa(len(args))

	query := `
        SELECT ` + employeeColumns + `
          FROM employees` + whereClause + `
         ORDER BY created_at ASC, id ASC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := make([]*compensation.Employee, 0, filter.Limit)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, "", translateEmployeePgError(err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, "", translateEmployeePgError(err)
	}

	var nextToken string
	if len(employees) > filter.Limit {
		employees = employees[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return employees, nextToken, nil
}

func scanEmployee(row pgx.Row) (*compensation.Employee, error) {
	var (
		id             string
		fullName       string
		birthDate      sql.NullTime
		hireDate       sql.NullTime
		salary         decimal.Decimal
		department     string
		educationLevel string
		roleName       string
		roleLevel      string
		createdAt      time.Time
		updatedAt      time.Time
	)

	if err := row.Scan(
		&id,
		&fullName,
		&birthDate,
		&hireDate,
		&salary,
		&department,
		&educationLevel,
		&roleName,
		&roleLevel,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	return &compensation.Employee{
		ID:             id,
		FullName:       fullName,
		BirthDate:      datePtr(birthDate),
		HireDate:       datePtr(hireDate),
		Salary:         salary,
		Department:     department,
		EducationLevel: educationLevel,
		Role:           compensation.Role{Name: roleName, Level: compensation.Level(roleLevel)},
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}, nil
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return employee.ErrEmployeeAlreadyExists
		case invalidTextCode:
			return employee.ErrInvalidID
		case numericOverflowCode:
			return employee.ErrInvalidSalary
		case checkViolationCode:
			switch pgErr.ConstraintName {
			case "employees_salary_check":
				return employee.ErrInvalidSalary
			case "employees_role_level_check":
				return employee.ErrInvalidRole
			default:
				return employee.ErrInvalidDateRange
			}
		}
	}

	return err
}

func datePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	t := value.Time
	date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &date
}

func nullableDate(value *time.Time) any {
	if value == nil {
		return nil
	}
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
}
