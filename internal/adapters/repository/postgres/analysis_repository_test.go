package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/talent-guard/internal/core/analysis"
	"github.com/ogurasousui/talent-guard/internal/core/employee"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
)

var snapshotRowColumns = []string{"id", "employee_id", "benchmark_id", "recorded_salary", "market_average", "difference_percentage", "risk", "recommendation", "analysis_date", "created_at"}

func TestAnalysisRepository_Create(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewAnalysisRepository(mock)

	day := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	now := day.Add(15 * time.Hour)
	in := &analysis.Snapshot{
		EmployeeID:           "emp-1",
		BenchmarkID:          "bm-1",
		RecordedSalary:       decimal.NewFromInt(8000),
		MarketAverage:        decimal.NewFromInt(10000),
		DifferencePercentage: decimal.NewFromInt(-20),
		Risk:                 "CRITICAL",
		Recommendation:       "raise",
		AnalysisDate:         day,
		CreatedAt:            now,
	}

	query := regexp.QuoteMeta(`INSERT INTO salary_analyses`)
	mock.ExpectQuery(query).
		WithArgs("emp-1", "bm-1", "8000", "10000", "-20", "CRITICAL", "raise", day, now).
		WillReturnRows(pgxmock.NewRows(snapshotRowColumns).
			AddRow("snap-1", "emp-1", "bm-1", "8000.00", "10000.00", "-20.00", "CRITICAL", "raise", day, now))

	saved, err := repo.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if saved.ID != "snap-1" || !saved.DifferencePercentage.Equal(decimal.NewFromInt(-20)) {
		t.Fatalf("unexpected snapshot %+v", saved)
	}

	mock.ExpectQuery(query).
		WithArgs("emp-1", "bm-1", "8000", "10000", "-20", "CRITICAL", "raise", day, now).
		WillReturnError(&pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "salary_analyses_employee_id_fkey"})

	if _, err := repo.Create(context.Background(), in); !errors.Is(err, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAnalysisRepository_ListByEmployee(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewAnalysisRepository(mock)

	query := regexp.QuoteMeta(`
        SELECT ` + snapshotColumns + `
          FROM salary_analyses
         WHERE employee_id = $1
         ORDER BY analysis_date DESC, created_at DESC, id DESC
         LIMIT $2
        OFFSET $3
    `)

	d1 := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows(snapshotRowColumns).
		AddRow("snap-2", "emp-1", "bm-1", "9000", "10000", "-10", "LOW", "", d1, d1).
		AddRow("snap-1", "emp-1", "bm-1", "8000", "10000", "-20", "HIGH", "", d2, d2)

	mock.ExpectQuery(query).
		WithArgs("emp-1", 2, 0).
		WillReturnRows(rows)

	snapshots, next, err := repo.ListByEmployee(context.Background(), analysis.ListSnapshotsFilter{EmployeeID: "emp-1", Limit: 1})
	if err != nil {
		t.Fatalf("ListByEmployee returned error: %v", err)
	}
	if len(snapshots) != 1 || snapshots[0].ID != "snap-2" {
		t.Fatalf("expected newest snapshot only, got %+v", snapshots)
	}
	if next != "1" {
		t.Fatalf("expected next token '1', got %q", next)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTranslateAnalysisPgError(t *testing.T) {
	t.Parallel()

	bmErr := &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "salary_analyses_benchmark_id_fkey"}
	if !errors.Is(translateAnalysisPgError(bmErr), analysis.ErrNoBenchmark) {
		t.Fatalf("expected benchmark fk to map to ErrNoBenchmark")
	}

	if !errors.Is(translateAnalysisPgError(&pgconn.PgError{Code: invalidTextCode}), analysis.ErrInvalidEmployeeID) {
		t.Fatalf("expected malformed uuid to map to ErrInvalidEmployeeID")
	}

	if !errors.Is(translateAnalysisPgError(&pgconn.PgError{Code: numericOverflowCode}), analysis.ErrValueOutOfRange) {
		t.Fatalf("expected numeric overflow to map to ErrValueOutOfRange")
	}

	other := errors.New("timeout")
	if translateAnalysisPgError(other) != other {
		t.Fatalf("repository errors must propagate unchanged")
	}
}
