package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	rediscache "github.com/ogurasousui/talent-guard/internal/adapters/cache/redis"
	"github.com/ogurasousui/talent-guard/internal/adapters/grpc/handler"
	"github.com/ogurasousui/talent-guard/internal/adapters/repository/postgres"
	"github.com/ogurasousui/talent-guard/internal/core/analysis"
	"github.com/ogurasousui/talent-guard/internal/core/benchmark"
	"github.com/ogurasousui/talent-guard/internal/core/employee"
	"github.com/ogurasousui/talent-guard/internal/core/role"
	"github.com/ogurasousui/talent-guard/internal/platform/config"
	pg "github.com/ogurasousui/talent-guard/internal/platform/db/postgres"
	"github.com/ogurasousui/talent-guard/internal/platform/logger"
	"github.com/ogurasousui/talent-guard/internal/platform/metrics"
	"github.com/ogurasousui/talent-guard/internal/platform/server"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, zl *zap.Logger) error {
	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	txManager := pg.NewTransactionManager(dbPool)
	m := metrics.New()

	employeeRepo := postgres.NewEmployeeRepository(dbPool)
	benchmarkRepo := postgres.NewBenchmarkRepository(dbPool)
	analysisRepo := postgres.NewAnalysisRepository(dbPool)

	var (
		source          analysis.BenchmarkSource = benchmarkRepo
		benchmarkOption []benchmark.Option
	)
	if cfg.Redis.Enabled() {
		client := rediscache.NewClient(cfg.Redis)
		defer func() { _ = client.Close() }()
		if err := client.Ping(ctx).Err(); err != nil {
			zl.Warn("redis unreachable, benchmark cache will fall back to postgres", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		cache := rediscache.NewBenchmarkCache(client, benchmarkRepo, cfg.Redis.BenchmarkTTL,
			rediscache.WithLogger(zl.Named("benchmark_cache")),
			rediscache.WithObserver(m),
		)
		source = cache
		benchmarkOption = append(benchmarkOption, benchmark.WithNotifier(cache))
	}

	analyzer, analysisOpts, err := analysisOptions(cfg.Analysis)
	if err != nil {
		return err
	}
	analysisOpts = append(analysisOpts,
		analysis.WithTransactionManager(txManager),
		analysis.WithRecorder(m),
		analysis.WithLogger(zl.Named("analysis")),
	)

	roleSvc := role.NewService(postgres.NewRoleRepository(dbPool), nil, txManager)
	benchmarkOption = append(benchmarkOption,
		benchmark.WithRoleCatalog(roleSvc),
		benchmark.WithLogger(zl.Named("benchmark")),
	)

	employeeSvc := employee.NewService(employeeRepo, nil, txManager, employee.WithRoleCatalog(roleSvc))
	benchmarkSvc := benchmark.NewService(benchmarkRepo, nil, txManager, benchmarkOption...)
	analysisSvc := analysis.NewService(employeeRepo, source, analysisRepo, analyzer, analysisOpts...)

	schema, err := riskSchema(cfg.Analysis)
	if err != nil {
		return err
	}
	compensationHandler := handler.NewCompensationGrpcHandler(analysisSvc, employeeSvc, benchmarkSvc, roleSvc, schema)

	grpcServer := server.New(cfg.Server,
		[]server.Registrar{func(r grpc.ServiceRegistrar) {
			handler.RegisterCompensationServiceServer(r, compensationHandler)
		}},
		server.WithLogger(zl.Named("grpc")),
		server.WithObserver(m),
		server.WithHealthCheck(pg.HealthCheck(dbPool), 0),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return grpcServer.Run(gctx)
	})
	if cfg.Metrics.ListenAddr != "" {
		g.Go(func() error {
			return m.Serve(gctx, cfg.Metrics.ListenAddr, cfg.Metrics.Path, zl.Named("metrics"))
		})
	}

	zl.Info("talent-guard started",
		zap.String("grpc_addr", cfg.Server.ListenAddr),
		zap.String("risk_schema", schema.Name()),
		zap.Bool("benchmark_cache", cfg.Redis.Enabled()),
	)
	return g.Wait()
}
