package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/talent-guard/internal/core/benchmark"
	"github.com/ogurasousui/talent-guard/internal/core/compensation"
	pgdb "github.com/ogurasousui/talent-guard/internal/platform/db/postgres"
	"github.com/shopspring/decimal"
)

const benchmarkColumns = `id, role_name, role_level, floor_salary, average_salary, ceiling_salary, reference_date, region, company_size, created_at, updated_at`

// BenchmarkRepository は PostgreSQL を利用したベンチマーク永続化の実装です。
type BenchmarkRepository struct {
	pool pgdb.Queryer
}

// NewBenchmarkRepository は BenchmarkRepository を生成します。
func NewBenchmarkRepository(pool pgdb.Queryer) *BenchmarkRepository {
	return &BenchmarkRepository{pool: pool}
}

// Create はベンチマークを登録します。
func (r *BenchmarkRepository) Create(ctx context.Context, b *compensation.Benchmark) (*compensation.Benchmark, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO benchmarks (role_name, role_level, floor_salary, average_salary, ceiling_salary, reference_date, region, company_size, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING `+benchmarkColumns+`
    `,
		b.Role.Name,
		string(b.Role.Level),
		b.FloorSalary.String(),
		b.AverageSalary.String(),
		b.CeilingSalary.String(),
		b.ReferenceDate,
		b.Region,
		b.CompanySize,
		b.CreatedAt,
		b.UpdatedAt,
	)

	created, err := scanBenchmark(row)
	if err != nil {
		return nil, translateBenchmarkPgError(err)
	}
	return created, nil
}

// Delete はベンチマークを削除します。
func (r *BenchmarkRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM benchmarks WHERE id = $1`, id)
	if err != nil {
		return translateBenchmarkPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return benchmark.ErrBenchmarkNotFound
	}
	return nil
}

// FindByID は ID でベンチマークを取得します。
func (r *BenchmarkRepository) FindByID(ctx context.Context, id string) (*compensation.Benchmark, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+benchmarkColumns+`
          FROM benchmarks
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanBenchmark(row)
	if err != nil {
		return nil, translateBenchmarkPgError(err)
	}
	return found, nil
}

// FindByKey は職種名 (大文字小文字を区別しない)・等級・基準日でベンチマークを取得します。
func (r *BenchmarkRepository) FindByKey(ctx context.Context, key benchmark.Key) (*compensation.Benchmark, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+benchmarkColumns+`
          FROM benchmarks
         WHERE lower(role_name) = lower($1)
           AND role_level = $2
           AND reference_date = $3
         LIMIT 1
    `, key.RoleName, string(key.Level), key.ReferenceDate)

	found, err := scanBenchmark(row)
	if err != nil {
		return nil, translateBenchmarkPgError(err)
	}
	return found, nil
}

// List はベンチマークの一覧を取得します。
func (r *BenchmarkRepository) List(ctx context.Context, filter benchmark.ListBenchmarksFilter) ([]*compensation.Benchmark, string, error) {
	if filter.Limit <= 0 {
		return nil, "", benchmark.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", benchmark.ErrInvalidPageToken
	}

	args := make([]any, 0, 4)
	conditions := make([]string, 0, 2)

	if filter.RoleName != nil {
		args = append(args, *filter.RoleName)
		conditions = append(conditions, "lower(role_name) = lower($"+strconv.Itoa(len(args))+")")
	}
	if filter.Level != nil {
		args = append(args, string(*filter.Level))
		conditions = append(conditions, "role_level = $"+strconv.Itoa(len(args)))
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
        SELECT ` + benchmarkColumns + `
          FROM benchmarks` + whereClause + `
         ORDER BY reference_date DESC, id ASC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	benchmarks, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, "", err
	}

	var nextToken string
	if len(benchmarks) > filter.Limit {
		benchmarks = benchmarks[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return benchmarks, nextToken, nil
}

// ListAll は照合用にベンチマーク全件を登録順で取得します。
func (r *BenchmarkRepository) ListAll(ctx context.Context) ([]*compensation.Benchmark, error) {
	return r.query(ctx, `
        SELECT `+benchmarkColumns+`
          FROM benchmarks
         ORDER BY created_at ASC, id ASC
    `)
}

func (r *BenchmarkRepository) query(ctx context.Context, query string, args ...any) ([]*compensation.Benchmark, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateBenchmarkPgError(err)
	}
	defer rows.Close()

	benchmarks := make([]*compensation.Benchmark, 0)
	for rows.Next() {
		found, err := scanBenchmark(rows)
		if err != nil {
			return nil, translateBenchmarkPgError(err)
		}
		benchmarks = append(benchmarks, found)
	}
	if err := rows.Err(); err != nil {
		return nil, translateBenchmarkPgError(err)
	}
	return benchmarks, nil
}

func scanBenchmark(row pgx.Row) (*compensation.Benchmark, error) {
	var (
		id            string
		roleName      string
		roleLevel     string
		floor         decimal.Decimal
		average       decimal.Decimal
		ceiling       decimal.Decimal
		referenceDate time.Time
		region        string
		companySize   string
		createdAt     time.Time
		updatedAt     time.Time
	)

	if err := row.Scan(
		&id,
		&roleName,
		&roleLevel,
		&floor,
		&average,
		&ceiling,
		&referenceDate,
		&region,
		&companySize,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	return &compensation.Benchmark{
		ID:            id,
		Role:          compensation.Role{Name: roleName, Level: compensation.Level(roleLevel)},
		FloorSalary:   floor,
		AverageSalary: average,
		CeilingSalary: ceiling,
		ReferenceDate: time.Date(referenceDate.Year(), referenceDate.Month(), referenceDate.Day(), 0, 0, 0, 0, time.UTC),
		Region:        region,
		CompanySize:   companySize,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}

func translateBenchmarkPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return benchmark.ErrBenchmarkNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return benchmark.ErrBenchmarkAlreadyExists
		case foreignKeyViolationCode:
			return benchmark.ErrBenchmarkInUse
		case invalidTextCode:
			return benchmark.ErrInvalidID
		case numericOverflowCode:
			return benchmark.ErrInvalidRange
		case checkViolationCode:
			if pgErr.ConstraintName == "benchmarks_role_level_check" {
				return benchmark.ErrInvalidRole
			}
			return benchmark.ErrInvalidRange
		}
	}

	return err
}
