package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

// ServerConfig は gRPC サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr         string        `yaml:"listen_addr"`
	ShutdownTimeout    time.Duration `yaml:"-"`
	ShutdownTimeoutRaw string        `yaml:"shutdown_timeout"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

// RedisConfig はベンチマークキャッシュに関する設定です。Addr が空の場合キャッシュは無効です。
type RedisConfig struct {
	Addr            string        `yaml:"addr"`
	Password        string        `yaml:"password"`
	DB              int           `yaml:"db"`
	BenchmarkTTL    time.Duration `yaml:"-"`
	BenchmarkTTLRaw string        `yaml:"benchmark_ttl"`
}

// Enabled はキャッシュを利用するかどうかを返します。
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// LogConfig はロガーの設定です。
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// MetricsConfig はメトリクス公開に関する設定です。ListenAddr が空の場合は公開しません。
type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	Path       string `yaml:"path"`
}

// AnalysisConfig は報酬分析の挙動に関する設定です。
type AnalysisConfig struct {
	ReplacementCostMultiplier string `yaml:"replacement_cost_multiplier"`
	RiskSchema                string `yaml:"risk_schema"`
	SelectionPolicy           string `yaml:"selection_policy"`
	BatchConcurrency          int    `yaml:"batch_concurrency"`
}

const (
	defaultShutdownTimeout  = 10 * time.Second
	defaultBenchmarkTTL     = 5 * time.Minute
	defaultMetricsPath      = "/metrics"
	defaultLogLevel         = "info"
	defaultBatchConcurrency = 4
)

// Load は指定されたパスから設定ファイルを読み込みます。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if err := c.Server.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Database.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Redis.validateAndNormalize(); err != nil {
		return err
	}
	c.Log.normalize()
	c.Metrics.normalize()
	return c.Analysis.validateAndNormalize()
}

func (s *ServerConfig) validateAndNormalize() error {
	if s.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}

	timeout, err := parseDurationAllowEmpty(s.ShutdownTimeoutRaw)
	if err != nil {
		return fmt.Errorf("config: server.shutdown_timeout: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	s.ShutdownTimeout = timeout
	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func (r *RedisConfig) validateAndNormalize() error {
	if r.DB < 0 {
		return fmt.Errorf("config: redis.db must not be negative")
	}

	ttl, err := parseDurationAllowEmpty(r.BenchmarkTTLRaw)
	if err != nil {
		return fmt.Errorf("config: redis.benchmark_ttl: %w", err)
	}
	if ttl <= 0 {
		ttl = defaultBenchmarkTTL
	}
	r.BenchmarkTTL = ttl
	return nil
}

func (l *LogConfig) normalize() {
	l.Level = strings.ToLower(strings.TrimSpace(l.Level))
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
}

func (m *MetricsConfig) normalize() {
	if m.Path == "" {
		m.Path = defaultMetricsPath
	}
}

func (a *AnalysisConfig) validateAndNormalize() error {
	if a.BatchConcurrency < 0 {
		return fmt.Errorf("config: analysis.batch_concurrency must not be negative")
	}
	if a.BatchConcurrency == 0 {
		a.BatchConcurrency = defaultBatchConcurrency
	}
	a.RiskSchema = strings.ToLower(strings.TrimSpace(a.RiskSchema))
	a.SelectionPolicy = strings.ToLower(strings.TrimSpace(a.SelectionPolicy))
	a.ReplacementCostMultiplier = strings.TrimSpace(a.ReplacementCostMultiplier)
	return nil
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。認証情報は URL エスケープされます。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}
