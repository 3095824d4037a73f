package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/ogurasousui/talent-guard/internal/core/analysis"
	"github.com/ogurasousui/talent-guard/internal/core/compensation"
	"github.com/ogurasousui/talent-guard/internal/platform/config"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	generationKey     = "talentguard:benchmarks:generation"
	benchmarksKeyBase = "talentguard:benchmarks:all:"
)

// benchmarksKey は世代ごとのペイロードキーです。
// 失効は世代を進めて行うため、古い世代への書き込みは以降の読み取りから見えません。
func benchmarksKey(generation int64) string {
	return benchmarksKeyBase + strconv.FormatInt(generation, 10)
}

// Client はキャッシュが利用する Redis コマンドの部分集合です。
type Client interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	Incr(ctx context.Context, key string) *goredis.IntCmd
}

// ResultObserver はキャッシュ参照結果を受け取ります。
type ResultObserver interface {
	CacheResult(result string)
}

type noopObserver struct{}

func (noopObserver) CacheResult(string) {}

// BenchmarkCache はベンチマーク一覧を Redis にキャッシュする analysis.BenchmarkSource です。
// Redis が失敗した場合は元のソースにフォールバックします。
type BenchmarkCache struct {
	client   Client
	source   analysis.BenchmarkSource
	ttl      time.Duration
	logger   *zap.Logger
	observer ResultObserver
}

// Option は BenchmarkCache の任意設定です。
type Option func(*BenchmarkCache)

// WithLogger はロガーを設定します。
func WithLogger(l *zap.Logger) Option {
	return func(c *BenchmarkCache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver はヒット率の計測先を設定します。
func WithObserver(o ResultObserver) Option {
	return func(c *BenchmarkCache) {
		if o != nil {
			c.observer = o
		}
	}
}

// NewBenchmarkCache は BenchmarkCache を生成します。
func NewBenchmarkCache(client Client, source analysis.BenchmarkSource, ttl time.Duration, opts ...Option) *BenchmarkCache {
	c := &BenchmarkCache{
		client:   client,
		source:   source,
		ttl:      ttl,
		logger:   zap.NewNop(),
		observer: noopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClient は設定から Redis クライアントを生成します。
func NewClient(cfg config.RedisConfig) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// ListAll はキャッシュ済みのベンチマーク一覧を返します。未キャッシュの場合はソースから読み込み保存します。
// 読み込み中に BenchmarksChanged が呼ばれた場合、読み込んだ一覧はキャッシュしません。
func (c *BenchmarkCache) ListAll(ctx context.Context) ([]*compensation.Benchmark, error) {
	generation, err := c.generation(ctx)
	if err != nil {
		c.logger.Warn("benchmark cache generation read failed", zap.Error(err))
		c.observer.CacheResult("error")
		return c.source.ListAll(ctx)
	}

	key := benchmarksKey(generation)
	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		benchmarks, decodeErr := decodeBenchmarks(raw)
		if decodeErr == nil {
			c.observer.CacheResult("hit")
			return benchmarks, nil
		}
		c.logger.Warn("discarding undecodable benchmark cache entry", zap.Error(decodeErr))
		c.observer.CacheResult("error")
	case errors.Is(err, goredis.Nil):
		c.observer.CacheResult("miss")
	default:
		c.logger.Warn("benchmark cache read failed", zap.Error(err))
		c.observer.CacheResult("error")
	}

	benchmarks, err := c.source.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	current, err := c.generation(ctx)
	if err != nil || current != generation {
		c.logger.Debug("benchmarks changed while loading, skipping cache write",
			zap.Int64("read_generation", generation),
			zap.Int64("current_generation", current))
		return benchmarks, nil
	}

	payload, err := encodeBenchmarks(benchmarks)
	if err != nil {
		c.logger.Warn("benchmark cache encode failed", zap.Error(err))
		return benchmarks, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("benchmark cache write failed", zap.Error(err))
	}
	return benchmarks, nil
}

// BenchmarksChanged は世代を進めてキャッシュを失効させます。benchmark.ChangeNotifier を実装します。
func (c *BenchmarkCache) BenchmarksChanged(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		c.logger.Warn("benchmark cache invalidation failed", zap.Error(err))
		return fmt.Errorf("redis: invalidate benchmarks: %w", err)
	}
	return nil
}

func (c *BenchmarkCache) generation(ctx context.Context) (int64, error) {
	generation, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return generation, err
}

type benchmarkDTO struct {
	ID            string    `json:"id"`
	RoleName      string    `json:"role_name"`
	RoleLevel     string    `json:"role_level"`
	FloorSalary   string    `json:"floor_salary"`
	AverageSalary string    `json:"average_salary"`
	CeilingSalary string    `json:"ceiling_salary"`
	ReferenceDate time.Time `json:"reference_date"`
	Region        string    `json:"region,omitempty"`
	CompanySize   string    `json:"company_size,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func encodeBenchmarks(benchmarks []*compensation.Benchmark) ([]byte, error) {
	dtos := make([]benchmarkDTO, 0, len(benchmarks))
	for _, b := range benchmarks {
		if b == nil {
			continue
		}
		dtos = append(dtos, benchmarkDTO{
			ID:            b.ID,
			RoleName:      b.Role.Name,
			RoleLevel:     string(b.Role.Level),
			FloorSalary:   b.FloorSalary.String(),
			AverageSalary: b.AverageSalary.String(),
			CeilingSalary: b.CeilingSalary.String(),
			ReferenceDate: b.ReferenceDate,
			Region:        b.Region,
			CompanySize:   b.CompanySize,
			CreatedAt:     b.CreatedAt,
			UpdatedAt:     b.UpdatedAt,
		})
	}
	return json.Marshal(dtos)
}

func decodeBenchmarks(raw []byte) ([]*compensation.Benchmark, error) {
	var dtos []benchmarkDTO
	if err := json.Unmarshal(raw, &dtos); err != nil {
		return nil, err
	}

	out := make([]*compensation.Benchmark, 0, len(dtos))
	for _, d := range dtos {
		floor, err := decimal.NewFromString(d.FloorSalary)
		if err != nil {
			return nil, fmt.Errorf("floor_salary: %w", err)
		}
		avg, err := decimal.NewFromString(d.AverageSalary)
		if err != nil {
			return nil, fmt.Errorf("average_salary: %w", err)
		}
		ceiling, err := decimal.NewFromString(d.CeilingSalary)
		if err != nil {
			return nil, fmt.Errorf("ceiling_salary: %w", err)
		}
		out = append(out, &compensation.Benchmark{
			ID:            d.ID,
			Role:          compensation.Role{Name: d.RoleName, Level: compensation.Level(d.RoleLevel)},
			FloorSalary:   floor,
			AverageSalary: avg,
			CeilingSalary: ceiling,
			ReferenceDate: d.ReferenceDate,
			Region:        d.Region,
			CompanySize:   d.CompanySize,
			CreatedAt:     d.CreatedAt,
			UpdatedAt:     d.UpdatedAt,
		})
	}
	return out, nil
}
