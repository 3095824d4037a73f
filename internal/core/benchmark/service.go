package benchmark

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ogurasousui/talent-guard/internal/core/compensation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
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

// ChangeNotifier はベンチマーク集合の変更を通知します。キャッシュの失効に利用されます。
type ChangeNotifier interface {
	BenchmarksChanged(ctx context.Context) error
}

type noopNotifier struct{}

func (noopNotifier) BenchmarksChanged(context.Context) error { return nil }

// RoleCatalog は登録済みの職種を照合し、正規化された職種を返します。found が false の場合は未登録です。
type RoleCatalog interface {
	Lookup(ctx context.Context, role compensation.Role) (canonical compensation.Role, found bool, err error)
}

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

// Service はベンチマークに関するユースケースをまとめます。
type Service struct {
	repo     Repository
	clock    Clock
	tx       TransactionManager
	notifier ChangeNotifier
	roles    RoleCatalog
	logger   *zap.Logger
}

// UseCase はベンチマークユースケースの公開インターフェースです。
type UseCase interface {
	CreateBenchmark(ctx context.Context, in CreateBenchmarkInput) (*compensation.Benchmark, error)
	GetBenchmark(ctx context.Context, in GetBenchmarkInput) (*compensation.Benchmark, error)
	ListBenchmarks(ctx context.Context, in ListBenchmarksInput) (*ListBenchmarksResult, error)
	DeleteBenchmark(ctx context.Context, in DeleteBenchmarkInput) error
}

// Option は Service の任意設定です。
type Option func(*Service)

// WithNotifier は変更通知先を設定します。
func WithNotifier(n ChangeNotifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithRoleCatalog は登録時に照合する職種カタログを設定します。未設定の場合は照合しません。
func WithRoleCatalog(c RoleCatalog) Option {
	return func(s *Service) {
		s.roles = c
	}
}

// WithLogger はロガーを設定します。
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager, opts ...Option) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	s := &Service{repo: repo, clock: clock, tx: tx, notifier: noopNotifier{}, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateBenchmarkInput はベンチマーク登録時の入力です。
type CreateBenchmarkInput struct {
	RoleName      string
	RoleLevel     compensation.Level
	FloorSalary   decimal.Decimal
	AverageSalary decimal.Decimal
	CeilingSalary decimal.Decimal
	ReferenceDate time.Time
	Region        string
	CompanySize   string
}

// GetBenchmarkInput はベンチマーク取得時の入力です。
type GetBenchmarkInput struct {
	ID string
}

// DeleteBenchmarkInput はベンチマーク削除時の入力です。
type DeleteBenchmarkInput struct {
	ID string
}

// ListBenchmarksInput は一覧取得時の入力です。
type ListBenchmarksInput struct {
	RoleName  *string
	RoleLevel *compensation.Level
	PageSize  int
	PageToken string
}

// ListBenchmarksResult は一覧取得結果を表します。
type ListBenchmarksResult struct {
	Benchmarks    []*compensation.Benchmark
	NextPageToken string
}

// CreateBenchmark はベンチマークを登録します。
func (s *Service) CreateBenchmark(ctx context.Context, in CreateBenchmarkInput) (*compensation.Benchmark, error) {
	role, err := normalizeRole(in.RoleName, in.RoleLevel)
	if err != nil {
		return nil, err
	}

	if in.ReferenceDate.IsZero() {
		return nil, ErrInvalidReferenceDate
	}
	ref := in.ReferenceDate.UTC()
	referenceDate := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)

	bm := &compensation.Benchmark{
		Role:          role,
		FloorSalary:   in.FloorSalary.Round(2),
		AverageSalary: in.AverageSalary.Round(2),
		CeilingSalary: in.CeilingSalary.Round(2),
		ReferenceDate: referenceDate,
		Region:        strings.TrimSpace(in.Region),
		CompanySize:   strings.TrimSpace(in.CompanySize),
	}
	if err := compensation.ValidateBenchmark(bm); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	if bm.CeilingSalary.GreaterThan(compensation.MaxAmount) {
		return nil, fmt.Errorf("%w: ceiling exceeds %s", ErrInvalidRange, compensation.MaxAmount)
	}

	var created *compensation.Benchmark
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		canonical, err := s.lookupRole(txCtx, bm.Role)
		if err != nil {
			return err
		}
		bm.Role = canonical

		if err := s.ensureKeyNotExists(txCtx, Key{RoleName: canonical.Name, Level: canonical.Level, ReferenceDate: referenceDate}); err != nil {
			return err
		}

		now := s.clock.Now()
		bm.CreatedAt = now
		bm.UpdatedAt = now

		result, err := s.repo.Create(txCtx, bm)
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	s.notify(ctx)
	return created, nil
}

// GetBenchmark は ID でベンチマークを取得します。
func (s *Service) GetBenchmark(ctx context.Context, in GetBenchmarkInput) (*compensation.Benchmark, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *compensation.Benchmark
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

// ListBenchmarks はベンチマークの一覧を取得します。
func (s *Service) ListBenchmarks(ctx context.Context, in ListBenchmarksInput) (*ListBenchmarksResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	filter := ListBenchmarksFilter{Limit: limit, Offset: offset}
	if in.RoleName != nil {
		name := strings.Join(strings.Fields(*in.RoleName), " ")
		if name != "" {
			filter.RoleName = &name
		}
	}
	if in.RoleLevel != nil {
		level := compensation.Level(strings.ToUpper(strings.TrimSpace(string(*in.RoleLevel))))
		if !level.Valid() {
			return nil, ErrInvalidRole
		}
		filter.Level = &level
	}

	var (
		benchmarks []*compensation.Benchmark
		nextToken  string
	)
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, token, err := s.repo.List(txCtx, filter)
		if err != nil {
			return err
		}
		benchmarks = result
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListBenchmarksResult{Benchmarks: benchmarks, NextPageToken: nextToken}, nil
}

// ListAll は照合用にベンチマーク全件を取得します。
func (s *Service) ListAll(ctx context.Context) ([]*compensation.Benchmark, error) {
	var benchmarks []*compensation.Benchmark
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.ListAll(txCtx)
		if err != nil {
			return err
		}
		benchmarks = result
		return nil
	}); err != nil {
		return nil, err
	}
	return benchmarks, nil
}

// DeleteBenchmark はベンチマークを削除します。
func (s *Service) DeleteBenchmark(ctx context.Context, in DeleteBenchmarkInput) error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, in.ID)
	}); err != nil {
		return err
	}

	s.notify(ctx)
	return nil
}

// notify の失敗は書き込み結果に影響させず、ログに残します。
func (s *Service) notify(ctx context.Context) {
	if err := s.notifier.BenchmarksChanged(ctx); err != nil {
		s.logger.Error("benchmark change notification failed, cached benchmarks may be stale until ttl",
			zap.Error(err))
	}
}

func (s *Service) lookupRole(ctx context.Context, role compensation.Role) (compensation.Role, error) {
	if s.roles == nil {
		return role, nil
	}
	canonical, found, err := s.roles.Lookup(ctx, role)
	if err != nil {
		return compensation.Role{}, err
	}
	if !found {
		return compensation.Role{}, fmt.Errorf("%w: %s %s", ErrUnknownRole, role.Name, role.Level)
	}
	return canonical, nil
}

func (s *Service) ensureKeyNotExists(ctx context.Context, key Key) error {
	existing, err := s.repo.FindByKey(ctx, key)
	if err != nil && !errors.Is(err, ErrBenchmarkNotFound) {
		return err
	}
	if existing != nil {
		return ErrBenchmarkAlreadyExists
	}
	return nil
}

func normalizeRole(name string, level compensation.Level) (compensation.Role, error) {
	role := compensation.Role{
		Name:  strings.Join(strings.Fields(name), " "),
		Level: compensation.Level(strings.ToUpper(strings.TrimSpace(string(level)))),
	}
	if err := compensation.ValidateRole(role); err != nil {
		return compensation.Role{}, fmt.Errorf("%w: %v", ErrInvalidRole, err)
	}
	return role, nil
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
