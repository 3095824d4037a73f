package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/talent-guard/internal/core/analysis"
	"github.com/ogurasousui/talent-guard/internal/core/employee"
	pgdb "github.com/ogurasousui/talent-guard/internal/platform/db/postgres"
	"github.com/shopspring/decimal"
)

const snapshotColumns = `id, employee_id, benchmark_id, recorded_salary, market_average, difference_percentage, risk, recommendation, analysis_date, created_at`

// AnalysisRepository は salary_analyses テーブルへ分析履歴を保存します。
type AnalysisRepository struct {
	pool pgdb.Queryer
}

// NewAnalysisRepository は AnalysisRepository を生成します。
func NewAnalysisRepository(pool pgdb.Queryer) *AnalysisRepository {
	return &AnalysisRepository{pool: pool}
}

// Create は分析履歴を 1 件保存します。
func (r *AnalysisRepository) Create(ctx context.Context, s *analysis.Snapshot) (*analysis.Snapshot, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO salary_analyses (employee_id, benchmark_id, recorded_salary, market_average, difference_percentage, risk, recommendation, analysis_date, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING `+snapshotColumns+`
    `,
		s.EmployeeID,
		s.BenchmarkID,
		s.RecordedSalary.String(),
		s.MarketAverage.String(),
		s.DifferencePercentage.String(),
		s.Risk,
		s.Recommendation,
		s.AnalysisDate,
		s.CreatedAt,
	)

	created, err := scanSnapshot(row)
	if err != nil {
		return nil, translateAnalysisPgError(err)
	}
	return created, nil
}

// ListByEmployee は社員の分析履歴を新しい順に取得します。
func (r *AnalysisRepository) ListByEmployee(ctx context.Context, filter analysis.ListSnapshotsFilter) ([]*analysis.Snapshot, string, error) {
	if filter.Limit <= 0 {
		return nil, "", analysis.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", analysis.ErrInvalidPageToken
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+snapshotColumns+`
          FROM salary_analyses
         WHERE employee_id = $1
         ORDER BY analysis_date DESC, created_at DESC, id DESC
         LIMIT $2
        OFFSET $3
    `, filter.EmployeeID, filter.Limit+1, filter.Offset)
	if err != nil {
		return nil, "", translateAnalysisPgError(err)
	}
	defer rows.Close()

	snapshots := make([]*analysis.Snapshot, 0, filter.Limit)
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, "", translateAnalysisPgError(err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, "", translateAnalysisPgError(err)
	}

	var nextToken string
	if len(snapshots) > filter.Limit {
		snapshots = snapshots[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return snapshots, nextToken, nil
}

func scanSnapshot(row pgx.Row) (*analysis.Snapshot, error) {
	var (
		s            analysis.Snapshot
		recorded     decimal.Decimal
		market       decimal.Decimal
		difference   decimal.Decimal
		analysisDate time.Time
	)

	if err := row.Scan(
		&s.ID,
		&s.EmployeeID,
		&s.BenchmarkID,
		&recorded,
		&market,
		&difference,
		&s.Risk,
		&s.Recommendation,
		&analysisDate,
		&s.CreatedAt,
	); err != nil {
		return nil, err
	}

	s.RecordedSalary = recorded
	s.MarketAverage = market
	s.DifferencePercentage = difference
	s.AnalysisDate = time.Date(analysisDate.Year(), analysisDate.Month(), analysisDate.Day(), 0, 0, 0, 0, time.UTC)
	return &s, nil
}

func translateAnalysisPgError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case foreignKeyViolationCode:
			if pgErr.ConstraintName == "salary_analyses_employee_id_fkey" {
				return employee.ErrEmployeeNotFound
			}
			return analysis.ErrNoBenchmark
		case invalidTextCode:
			return analysis.ErrInvalidEmployeeID
		case numericOverflowCode:
			return analysis.ErrValueOutOfRange
		}
	}

	return err
}
