package employee

import (
	"context"

	"github.com/ogurasousui/talent-guard/internal/core/compensation"
)

// Repository は社員永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, employee *compensation.Employee) (*compensation.Employee, error)
	Update(ctx context.Context, employee *compensation.Employee) (*compensation.Employee, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*compensation.Employee, error)
	List(ctx context.Context, filter ListEmployeesFilter) ([]*compensation.Employee, string, error)
}

// ListEmployeesFilter は一覧取得用フィルタです。
type ListEmployeesFilter struct {
	Department *string
	Limit      int
	Offset     int
}
