package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ogurasousui/talent-guard/internal/core/compensation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "talentguard"

// Metrics はサービスのメトリクス群です。analysis.Recorder を実装します。
type Metrics struct {
	registry *prometheus.Registry

	analysesTotal   *prometheus.CounterVec
	batchSize       prometheus.Histogram
	grpcRequests    *prometheus.CounterVec
	grpcDuration    *prometheus.HistogramVec
	cacheOperations *prometheus.CounterVec
}

// New は専用レジストリ上にメトリクスを登録します。
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		analysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Completed employee compensation analyses by risk",
		}, []string{"risk"}),
		batchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_batch_size",
			Help:      "Number of employees analyzed per batch",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		grpcRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grpc_requests_total",
			Help:      "gRPC requests by method and status code",
		}, []string{"method", "code"}),
		grpcDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "grpc_request_duration_seconds",
			Help:      "gRPC request latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"method"}),
		cacheOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "benchmark_cache_operations_total",
			Help:      "Benchmark cache lookups by result",
		}, []string{"result"}),
	}
}

// Registry は内部のレジストリを返します。
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// AnalysisCompleted は分析 1 件の完了を記録します。
func (m *Metrics) AnalysisCompleted(risk compensation.Risk) {
	m.analysesTotal.WithLabelValues(risk.String()).Inc()
}

// BatchCompleted は一括分析の件数を記録します。
func (m *Metrics) BatchCompleted(size int) {
	m.batchSize.Observe(float64(size))
}

// ObserveRPC は gRPC 呼び出しの結果と所要時間を記録します。
func (m *Metrics) ObserveRPC(method, code string, elapsed time.Duration) {
	m.grpcRequests.WithLabelValues(method, code).Inc()
	m.grpcDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// CacheResult はキャッシュ参照結果 (hit, miss, error) を記録します。
func (m *Metrics) CacheResult(result string) {
	m.cacheOperations.WithLabelValues(result).Inc()
}

// Handler は Prometheus 形式でメトリクスを公開する http.Handler を返します。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve は addr でメトリクスを公開し、ctx が終了するまでブロックします。
func (m *Metrics) Serve(ctx context.Context, addr, path string, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics server listening", zap.String("addr", addr), zap.String("path", path))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return err
	}
}
