//go:build integration

package integration

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	repo "github.com/ogurasousui/talent-guard/internal/adapters/repository/postgres"
	"github.com/ogurasousui/talent-guard/internal/core/analysis"
	"github.com/ogurasousui/talent-guard/internal/core/benchmark"
	"github.com/ogurasousui/talent-guard/internal/core/compensation"
	"github.com/ogurasousui/talent-guard/internal/core/employee"
	"github.com/ogurasousui/talent-guard/internal/core/role"
	"github.com/ogurasousui/talent-guard/internal/platform/config"
	pg "github.com/ogurasousui/talent-guard/internal/platform/db/postgres"
	"github.com/shopspring/decimal"
)

const migrationsDir = "../assets/migrations"

func TestCompensationAnalysisIntegration(t *testing.T) {
	cfg, err := config.Load(configPathFromEnv())
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if err := resetMigrations(cfg.Database.DSN(), migrationsDir); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	ctx := context.Background()
	pool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	now := time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)
	clock := stubClock{now: now}
	tx := pg.NewTransactionManager(pool)

	employeeRepo := repo.NewEmployeeRepository(pool)
	benchmarkRepo := repo.NewBenchmarkRepository(pool)
	analysisRepo := repo.NewAnalysisRepository(pool)

	roleSvc := role.NewService(repo.NewRoleRepository(pool), clock, tx)
	employeeSvc := employee.NewService(employeeRepo, clock, tx, employee.WithRoleCatalog(roleSvc))
	benchmarkSvc := benchmark.NewService(benchmarkRepo, clock, tx, benchmark.WithRoleCatalog(roleSvc))
	analyzer, err := compensation.NewAnalyzer(compensation.DefaultPolicy())
	if err != nil {
		t.Fatalf("NewAnalyzer error: %v", err)
	}
	analysisSvc := analysis.NewService(employeeRepo, benchmarkRepo, analysisRepo, analyzer,
		analysis.WithClock(clock),
		analysis.WithTransactionManager(tx),
		analysis.WithSignals(compensation.StaticSignals{PerformanceRating: compensation.PerformanceTopPerformer, MonthsSinceLastIncrease: 14}),
	)

	if _, err := roleSvc.CreateRole(ctx, role.CreateRoleInput{Name: "Backend Developer", Level: compensation.LevelPleno}); err != nil {
		t.Fatalf("CreateRole error: %v", err)
	}
	if _, err := employeeSvc.CreateEmployee(ctx, employee.CreateEmployeeInput{
		FullName:  "Bruno Lima",
		Salary:    decimal.NewFromInt(5000),
		RoleName:  "Backend Develloper",
		RoleLevel: compensation.LevelPleno,
	}); !errors.Is(err, employee.ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}

	bm, err := benchmarkSvc.CreateBenchmark(ctx, benchmark.CreateBenchmarkInput{
		RoleName:      "backend developer",
		RoleLevel:     compensation.LevelPleno,
		FloorSalary:   decimal.NewFromInt(8000),
		AverageSalary: decimal.NewFromInt(10000),
		CeilingSalary: decimal.NewFromInt(12000),
		ReferenceDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateBenchmark error: %v", err)
	}

	if bm.Role.Name != "Backend Developer" {
		t.Fatalf("expected catalogue spelling, got %q", bm.Role.Name)
	}

	if _, err := benchmarkSvc.CreateBenchmark(ctx, benchmark.CreateBenchmarkInput{
		RoleName:      "BACKEND DEVELOPER",
		RoleLevel:     compensation.LevelPleno,
		FloorSalary:   decimal.NewFromInt(1),
		AverageSalary: decimal.NewFromInt(2),
		CeilingSalary: decimal.NewFromInt(3),
		ReferenceDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}); !errors.Is(err, benchmark.ErrBenchmarkAlreadyExists) {
		t.Fatalf("expected ErrBenchmarkAlreadyExists, got %v", err)
	}

	emp, err := employeeSvc.CreateEmployee(ctx, employee.CreateEmployeeInput{
		FullName:   "Ana Souza",
		Salary:     decimal.NewFromInt(8000),
		Department: "Engineering",
		RoleName:   "Backend Developer",
		RoleLevel:  compensation.LevelPleno,
	})
	if err != nil {
		t.Fatalf("CreateEmployee error: %v", err)
	}

	saved, err := analysisSvc.SaveAnalysis(ctx, analysis.SaveAnalysisInput{EmployeeID: emp.ID})
	if err != nil {
		t.Fatalf("SaveAnalysis error: %v", err)
	}
	if saved.Analysis.Risk != compensation.RiskCritical {
		t.Fatalf("expected critical risk, got %s", saved.Analysis.Risk)
	}
	if saved.Snapshot.BenchmarkID != bm.ID || saved.Snapshot.Risk != "CRITICAL" {
		t.Fatalf("unexpected snapshot %+v", saved.Snapshot)
	}

	history, err := analysisSvc.ListAnalyses(ctx, analysis.ListAnalysesInput{EmployeeID: emp.ID})
	if err != nil {
		t.Fatalf("ListAnalyses error: %v", err)
	}
	if len(history.Snapshots) != 1 || !history.Snapshots[0].DifferencePercentage.Equal(decimal.NewFromInt(-20)) {
		t.Fatalf("unexpected history %+v", history.Snapshots)
	}

	if err := benchmarkSvc.DeleteBenchmark(ctx, benchmark.DeleteBenchmarkInput{ID: bm.ID}); !errors.Is(err, benchmark.ErrBenchmarkInUse) {
		t.Fatalf("expected ErrBenchmarkInUse, got %v", err)
	}

	if err := employeeSvc.DeleteEmployee(ctx, employee.DeleteEmployeeInput{ID: emp.ID}); err != nil {
		t.Fatalf("DeleteEmployee error: %v", err)
	}
	if err := benchmarkSvc.DeleteBenchmark(ctx, benchmark.DeleteBenchmarkInput{ID: bm.ID}); err != nil {
		t.Fatalf("expected benchmark delete after cascade, got %v", err)
	}
}

func resetMigrations(dsn, dir string) error {
	m, err := migrate.New("file://"+dir, dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func configPathFromEnv() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "../assets/local.yaml"
}

type stubClock struct {
	now time.Time
}

func (s stubClock) Now() time.Time {
	return s.now
}
