package analysis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ogurasousui/talent-guard/internal/core/compensation"
	"github.com/ogurasousui/talent-guard/internal/core/employee"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
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
	batchFetchPageSize  = 200
	defaultBatchWorkers = 4
)

// Service は社員取得・ベンチマーク照合・分析・履歴保存をまとめるユースケースです。
type Service struct {
	employees  EmployeeFinder
	benchmarks BenchmarkSource
	snapshots  SnapshotRepository
	analyzer   *compensation.Analyzer
	resolver   *compensation.Resolver
	signals    compensation.PerformanceSignalProvider
	schema     compensation.RiskSchema
	clock      Clock
	tx         TransactionManager
	recorder   Recorder
	logger     *zap.Logger
	workers    int
}

// UseCase は分析ユースケースの公開インターフェースです。
type UseCase interface {
	AnalyzeEmployee(ctx context.Context, in AnalyzeEmployeeInput) (*compensation.AnalysisResult, error)
	AnalyzeAll(ctx context.Context, in AnalyzeAllInput) (*AnalyzeAllResult, error)
	SaveAnalysis(ctx context.Context, in SaveAnalysisInput) (*SaveAnalysisResult, error)
	ListAnalyses(ctx context.Context, in ListAnalysesInput) (*ListAnalysesResult, error)
}

// Option は Service の任意設定です。
type Option func(*Service)

// WithClock は時刻の取得元を設定します。
func WithClock(c Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithTransactionManager はトランザクション管理を設定します。
func WithTransactionManager(tx TransactionManager) Option {
	return func(s *Service) {
		if tx != nil {
			s.tx = tx
		}
	}
}

// WithSignals は評価シグナルの取得元を設定します。
func WithSignals(p compensation.PerformanceSignalProvider) Option {
	return func(s *Service) {
		if p != nil {
			s.signals = p
		}
	}
}

// WithResolver はベンチマークの照合方法を設定します。
func WithResolver(r *compensation.Resolver) Option {
	return func(s *Service) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithRiskSchema は保存時に使うリスクラベルを設定します。
func WithRiskSchema(schema compensation.RiskSchema) Option {
	return func(s *Service) {
		if schema.Name() != "" {
			s.schema = schema
		}
	}
}

// WithRecorder はメトリクスの記録先を設定します。
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
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

// WithConcurrency は一括分析の並列数を設定します。0 以下は既定値です。
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// NewService は Service を生成します。
func NewService(employees EmployeeFinder, benchmarks BenchmarkSource, snapshots SnapshotRepository, analyzer *compensation.Analyzer, opts ...Option) *Service {
	s := &Service{
		employees:  employees,
		benchmarks: benchmarks,
		snapshots:  snapshots,
		analyzer:   analyzer,
		resolver:   compensation.NewResolver(nil),
		signals:    compensation.DeterministicSignals{},
		schema:     compensation.FourTierSchema,
		clock:      realClock{},
		tx:         noopTransactionManager{},
		recorder:   noopRecorder{},
		logger:     zap.NewNop(),
		workers:    defaultBatchWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeEmployeeInput は単一社員の分析入力です。
type AnalyzeEmployeeInput struct {
	EmployeeID string
}

// AnalyzeAllInput は一括分析の入力です。Department が nil なら全社員が対象です。
type AnalyzeAllInput struct {
	Department *string
}

// AnalyzeAllResult は一括分析の結果です。Results は社員一覧の取得順です。
type AnalyzeAllResult struct {
	Results []*compensation.AnalysisResult
	Summary Summary
}

// SaveAnalysisInput は分析結果保存の入力です。
type SaveAnalysisInput struct {
	EmployeeID string
}

// SaveAnalysisResult は保存した分析結果と履歴です。
type SaveAnalysisResult struct {
	Analysis *compensation.AnalysisResult
	Snapshot *Snapshot
}

// ListAnalysesInput は履歴一覧取得の入力です。
type ListAnalysesInput struct {
	EmployeeID string
	PageSize   int
	PageToken  string
}

// ListAnalysesResult は履歴一覧の結果です。
type ListAnalysesResult struct {
	Snapshots     []*Snapshot
	NextPageToken string
}

// AnalyzeEmployee は社員 1 名を分析します。ベンチマークが無い場合も中立結果を返します。
func (s *Service) AnalyzeEmployee(ctx context.Context, in AnalyzeEmployeeInput) (*compensation.AnalysisResult, error) {
	id := strings.TrimSpace(in.EmployeeID)
	if id == "" {
		return nil, ErrInvalidEmployeeID
	}

	var result *compensation.AnalysisResult
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		analyzed, err := s.analyzeByID(txCtx, id)
		if err != nil {
			return err
		}
		result = analyzed
		return nil
	}); err != nil {
		return nil, err
	}

	s.recorder.AnalysisCompleted(result.Risk)
	return result, nil
}

// AnalyzeAll は対象社員全員を分析します。1 名でも失敗した場合は全体をエラーとし、部分結果は返しません。
func (s *Service) AnalyzeAll(ctx context.Context, in AnalyzeAllInput) (*AnalyzeAllResult, error) {
	var department *string
	if in.Department != nil {
		trimmed := strings.TrimSpace(*in.Department)
		if trimmed != "" {
			department = &trimmed
		}
	}

	var (
		employees  []*compensation.Employee
		benchmarks []*compensation.Benchmark
	)
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		loaded, err := s.loadEmployees(txCtx, department)
		if err != nil {
			return err
		}
		all, err := s.benchmarks.ListAll(txCtx)
		if err != nil {
			return fmt.Errorf("analysis: list benchmarks: %w", err)
		}
		employees = loaded
		benchmarks = all
		return nil
	}); err != nil {
		return nil, err
	}

	started := s.clock.Now()
	results := make([]*compensation.AnalysisResult, len(employees))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, emp := range employees {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			result, err := s.analyze(gCtx, emp, benchmarks)
			if err != nil {
				return fmt.Errorf("analysis: employee %s: %w", emp.ID, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("batch analysis failed",
			zap.Int("employees", len(employees)),
			zap.Error(err))
		return nil, err
	}

	for _, r := range results {
		s.recorder.AnalysisCompleted(r.Risk)
	}
	s.recorder.BatchCompleted(len(results))

	summary := summarize(results)
	s.logger.Info("batch analysis completed",
		zap.Int("employees", summary.Employees),
		zap.Int("at_risk", summary.AtRisk),
		zap.Duration("elapsed", s.clock.Now().Sub(started)))

	return &AnalyzeAllResult{Results: results, Summary: summary}, nil
}

// SaveAnalysis は社員を分析し、その結果を履歴として保存します。
// 比較可能なベンチマークが無い場合は ErrNoBenchmark を返し、何も保存しません。
func (s *Service) SaveAnalysis(ctx context.Context, in SaveAnalysisInput) (*SaveAnalysisResult, error) {
	id := strings.TrimSpace(in.EmployeeID)
	if id == "" {
		return nil, ErrInvalidEmployeeID
	}

	var out *SaveAnalysisResult
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		result, err := s.analyzeByID(txCtx, id)
		if err != nil {
			return err
		}
		if !result.HasMarketReference() {
			return fmt.Errorf("%w: %s %s", ErrNoBenchmark, result.Employee.Role.Name, result.Employee.Role.Level)
		}

		now := s.clock.Now()
		snapshot := &Snapshot{
			EmployeeID:           result.Employee.ID,
			BenchmarkID:          result.Benchmark.ID,
			RecordedSalary:       result.RecordedSalary,
			MarketAverage:        result.MarketAverage,
			DifferencePercentage: result.DifferencePercentage.Round(2),
			Risk:                 s.schema.Label(result.Risk),
			Recommendation:       result.Recommendation,
			AnalysisDate:         time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
			CreatedAt:            now,
		}

		saved, err := s.snapshots.Create(txCtx, snapshot)
		if err != nil {
			return err
		}
		out = &SaveAnalysisResult{Analysis: result, Snapshot: saved}
		return nil
	}); err != nil {
		return nil, err
	}

	s.recorder.AnalysisCompleted(out.Analysis.Risk)
	s.logger.Info("analysis saved",
		zap.String("employee_id", out.Snapshot.EmployeeID),
		zap.String("risk", out.Snapshot.Risk))
	return out, nil
}

// ListAnalyses は社員の分析履歴を新しい順に取得します。
func (s *Service) ListAnalyses(ctx context.Context, in ListAnalysesInput) (*ListAnalysesResult, error) {
	id := strings.TrimSpace(in.EmployeeID)
	if id == "" {
		return nil, ErrInvalidEmployeeID
	}

	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}
	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var result *ListAnalysesResult
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		snapshots, next, err := s.snapshots.ListByEmployee(txCtx, ListSnapshotsFilter{
			EmployeeID: id,
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			return err
		}
		result = &ListAnalysesResult{Snapshots: snapshots, NextPageToken: next}
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *Service) analyzeByID(ctx context.Context, id string) (*compensation.AnalysisResult, error) {
	emp, err := s.employees.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	benchmarks, err := s.benchmarks.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("analysis: list benchmarks: %w", err)
	}
	return s.analyze(ctx, emp, benchmarks)
}

func (s *Service) analyze(ctx context.Context, emp *compensation.Employee, benchmarks []*compensation.Benchmark) (*compensation.AnalysisResult, error) {
	sig, err := s.signals.Signals(ctx, emp)
	if err != nil {
		return nil, fmt.Errorf("analysis: signals: %w", err)
	}

	bm := s.resolver.Resolve(emp, benchmarks)
	if bm == nil {
		s.logger.Debug("no benchmark for role",
			zap.String("employee_id", emp.ID),
			zap.String("role", emp.Role.Name),
			zap.String("level", string(emp.Role.Level)))
	}

	return s.analyzer.Analyze(emp, bm, sig)
}

func (s *Service) loadEmployees(ctx context.Context, department *string) ([]*compensation.Employee, error) {
	var (
		all    []*compensation.Employee
		offset int
	)
	for {
		page, next, err := s.employees.List(ctx, employee.ListEmployeesFilter{
			Department: department,
			Limit:      batchFetchPageSize,
			Offset:     offset,
		})
		if err != nil {
			return nil, fmt.Errorf("analysis: list employees: %w", err)
		}
		all = append(all, page...)
		if next == "" {
			return all, nil
		}
		offset, err = strconv.Atoi(next)
		if err != nil {
			return nil, fmt.Errorf("analysis: employee page token %q: %w", next, err)
		}
	}
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
