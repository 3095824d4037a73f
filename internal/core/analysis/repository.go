package analysis

import (
	"context"

	"github.com/ogurasousui/talent-guard/internal/core/compensation"
	"github.com/ogurasousui/talent-guard/internal/core/employee"
)

// EmployeeFinder は分析対象の社員を取得します。
type EmployeeFinder interface {
	FindByID(ctx context.Context, id string) (*compensation.Employee, error)
	List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*compensation.Employee, string, error)
}

// BenchmarkSource は照合用のベンチマーク全件を提供します。
type BenchmarkSource interface {
	ListAll(ctx context.Context) ([]*compensation.Benchmark, error)
}

// SnapshotRepository は分析結果の履歴を永続化します。
type SnapshotRepository interface {
	Create(ctx context.Context, snapshot *Snapshot) (*Snapshot, error)
	ListByEmployee(ctx context.Context, filter ListSnapshotsFilter) ([]*Snapshot, string, error)
}

// ListSnapshotsFilter は履歴一覧の検索条件です。
type ListSnapshotsFilter struct {
	EmployeeID string
	Limit      int
	Offset     int
}

// Recorder は分析件数などのメトリクスを記録します。
type Recorder interface {
	AnalysisCompleted(risk compensation.Risk)
	BatchCompleted(size int)
}

type noopRecorder struct{}

func (noopRecorder) AnalysisCompleted(compensation.Risk) {}
func (noopRecorder) BatchCompleted(int)                  {}
