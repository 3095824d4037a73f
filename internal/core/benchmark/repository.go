package benchmark

import (
	"context"
	"time"

	"github.com/ogurasousui/talent-guard/internal/core/compensation"
)

// Repository はベンチマークの永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, b *compensation.Benchmark) (*compensation.Benchmark, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*compensation.Benchmark, error)
	FindByKey(ctx context.Context, key Key) (*compensation.Benchmark, error)
	List(ctx context.Context, filter ListBenchmarksFilter) ([]*compensation.Benchmark, string, error)
	ListAll(ctx context.Context) ([]*compensation.Benchmark, error)
}

// Key はベンチマークの一意キーです。RoleName は大文字小文字を区別しません。
type Key struct {
	RoleName      string
	Level         compensation.Level
	ReferenceDate time.Time
}

// ListBenchmarksFilter は一覧取得時の検索条件を表します。
type ListBenchmarksFilter struct {
	RoleName *string
	Level    *compensation.Level
	Limit    int
	Offset   int
}
