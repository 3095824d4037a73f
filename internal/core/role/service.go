package role

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ogurasousui/talent-guard/internal/core/compensation"
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

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

// Service は職種カタログに関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
}

// UseCase は職種ユースケースの公開インターフェースです。
type UseCase interface {
	CreateRole(ctx context.Context, in CreateRoleInput) (*Role, error)
	GetRole(ctx context.Context, in GetRoleInput) (*Role, error)
	ListRoles(ctx context.Context, in ListRolesInput) (*ListRolesResult, error)
	UpdateRole(ctx context.Context, in UpdateRoleInput) (*Role, error)
	DeleteRole(ctx context.Context, in DeleteRoleInput) error
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, clock: clock, tx: tx}
}

// CreateRoleInput は職種登録時の入力です。
type CreateRoleInput struct {
	Name  string
	Level compensation.Level
}

// GetRoleInput は職種取得時の入力です。
type GetRoleInput struct {
	ID string
}

// UpdateRoleInput は職種更新時の入力です。nil のフィールドは変更しません。
type UpdateRoleInput struct {
	ID    string
	Name  *string
	Level *compensation.Level
}

// DeleteRoleInput は職種削除時の入力です。
type DeleteRoleInput struct {
	ID string
}

// ListRolesInput は一覧取得時の入力です。
type ListRolesInput struct {
	Level     *compensation.Level
	PageSize  int
	PageToken string
}

// ListRolesResult は一覧取得結果を表します。
type ListRolesResult struct {
	Roles         []*Role
	NextPageToken string
}

// CreateRole は職種を登録します。
func (s *Service) CreateRole(ctx context.Context, in CreateRoleInput) (*Role, error) {
	key, err := normalizeKey(in.Name, in.Level)
	if err != nil {
		return nil, err
	}

	var created *Role
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureKeyNotExists(txCtx, key, ""); err != nil {
			return err
		}

		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Role{
			Name:      key.Name,
			Level:     key.Level,
			CreatedAt: now,
			UpdatedAt: now,
		})
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

// GetRole は ID で職種を取得します。
func (s *Service) GetRole(ctx context.Context, in GetRoleInput) (*Role, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *Role
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

// ListRoles は職種の一覧を職種名・等級順に取得します。
func (s *Service) ListRoles(ctx context.Context, in ListRolesInput) (*ListRolesResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	filter := ListRolesFilter{Limit: limit, Offset: offset}
	if in.Level != nil {
		level := normalizeLevel(*in.Level)
		if !level.Valid() {
			return nil, ErrInvalidRole
		}
		filter.Level = &level
	}

	var result *ListRolesResult
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		roles, next, err := s.repo.List(txCtx, filter)
		if err != nil {
			return err
		}
		result = &ListRolesResult{Roles: roles, NextPageToken: next}
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateRole は職種名または等級を変更します。
// 社員やベンチマークが参照している職種の名前・等級は変更できません。表記の大文字小文字の修正は許可します。
func (s *Service) UpdateRole(ctx context.Context, in UpdateRoleInput) (*Role, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *Role
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		name, level := existing.Name, existing.Level
		if in.Name != nil {
			name = *in.Name
		}
		if in.Level != nil {
			level = *in.Level
		}
		key, err := normalizeKey(name, level)
		if err != nil {
			return err
		}

		current := existing.Key()
		if !sameKey(current, key) {
			if err := s.ensureKeyNotExists(txCtx, key, existing.ID); err != nil {
				return err
			}
			inUse, err := s.repo.InUse(txCtx, current)
			if err != nil {
				return err
			}
			if inUse {
				return ErrRoleInUse
			}
		}

		existing.Name = key.Name
		existing.Level = key.Level
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

// DeleteRole は職種を削除します。参照されている職種は削除できません。
func (s *Service) DeleteRole(ctx context.Context, in DeleteRoleInput) error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		inUse, err := s.repo.InUse(txCtx, existing.Key())
		if err != nil {
			return err
		}
		if inUse {
			return ErrRoleInUse
		}
		return s.repo.Delete(txCtx, existing.ID)
	})
}

// Lookup は職種がカタログに登録されているかを照合し、登録済みの表記を返します。
// employee.RoleCatalog と benchmark.RoleCatalog を実装します。
func (s *Service) Lookup(ctx context.Context, key compensation.Role) (compensation.Role, bool, error) {
	normalized, err := normalizeKey(key.Name, key.Level)
	if err != nil {
		return compensation.Role{}, false, nil
	}

	var (
		canonical compensation.Role
		found     bool
	)
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		r, err := s.repo.FindByKey(txCtx, normalized)
		if errors.Is(err, ErrRoleNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		canonical = r.Key()
		found = true
		return nil
	}); err != nil {
		return compensation.Role{}, false, err
	}

	return canonical, found, nil
}

func (s *Service) ensureKeyNotExists(ctx context.Context, key compensation.Role, selfID string) error {
	existing, err := s.repo.FindByKey(ctx, key)
	if err != nil && !errors.Is(err, ErrRoleNotFound) {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return ErrRoleAlreadyExists
	}
	return nil
}

func normalizeKey(name string, level compensation.Level) (compensation.Role, error) {
	key := compensation.Role{
		Name:  strings.Join(strings.Fields(name), " "),
		Level: normalizeLevel(level),
	}
	if err := compensation.ValidateRole(key); err != nil {
		return compensation.Role{}, fmt.Errorf("%w: %v", ErrInvalidRole, err)
	}
	return key, nil
}

func normalizeLevel(level compensation.Level) compensation.Level {
	return compensation.Level(strings.ToUpper(strings.TrimSpace(string(level))))
}

func sameKey(a, b compensation.Role) bool {
	return strings.EqualFold(a.Name, b.Name) && a.Level == b.Level
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
