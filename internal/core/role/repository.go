package role

import (
	"context"

	"github.com/ogurasousui/talent-guard/internal/core/compensation"
)

// Repository は職種カタログの永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, r *Role) (*Role, error)
	Update(ctx context.Context, r *Role) (*Role, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Role, error)
	// FindByKey は職種名を大文字小文字を区別せずに、等級は完全一致で検索します。
	FindByKey(ctx context.Context, key compensation.Role) (*Role, error)
	List(ctx context.Context, filter ListRolesFilter) ([]*Role, string, error)
	// InUse は社員またはベンチマークがその職種を参照しているかを返します。
	InUse(ctx context.Context, key compensation.Role) (bool, error)
}

// ListRolesFilter は一覧取得時の検索条件を表します。
type ListRolesFilter struct {
	Level  *compensation.Level
	Limit  int
	Offset int
}
